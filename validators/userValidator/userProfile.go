package userValidator

import (
	"strings"

	"stockpredictor/validators"

	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateProfile validator middleware
func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateProfileRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		reqData.Email = strings.TrimSpace(reqData.Email)

		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}
