package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockpredictor/config"
	"stockpredictor/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func TestJWTMiddleware(t *testing.T) {
	config.AppConfig = &config.Config{JWTKey: "secret"}
	app := fiber.New()
	app.Get("/me", JWTMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": c.Locals("userId")})
	})

	token, err := GenerateJWT(7, "alice")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 7,
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 7}).SignedString([]byte("other"))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"name": "x"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"expired", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"wrong key", "Bearer " + otherKey, http.StatusUnauthorized},
		{"no user claim", "Bearer " + noUser, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			status, body := call(t, app, req)
			assert.Equal(t, tc.status, status)
			if status == http.StatusOK {
				assert.EqualValues(t, 7, body["userId"])
			} else {
				assert.Equal(t, false, body["status"])
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/kind", func(c *fiber.Ctx) error {
		return ErrorResponse(c, &services.Error{Kind: services.KindStockNotFound, Message: "Stock with ticker X does not exist."}, 0)
	})
	app.Get("/override", func(c *fiber.Ctx) error {
		return ErrorResponse(c, &services.Error{Kind: services.KindStockNotFound, Message: "gone"}, fiber.StatusBadRequest)
	})
	app.Get("/detail", func(c *fiber.Ctx) error {
		return ErrorResponse(c, &services.Error{Kind: services.KindBadUpstreamResponse, Message: "bad", Detail: "raw text"}, 0)
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return ErrorResponse(c, errors.New("db down"), 0)
	})

	status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/kind", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Stock with ticker X does not exist.", body["error"])
	assert.NotContains(t, body, "model_response")

	status, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/override", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/detail", nil))
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "raw text", body["model_response"])

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "db down", body["error"])
}

func TestRequestIDAndAccessLog(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID(), AccessLog())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "nope") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(fiber.HeaderXRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get(fiber.HeaderXRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}
