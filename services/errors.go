package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies workflow failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindStockNotFound
	KindInsufficientData
	KindNoDataAvailable
	KindInvalidTicker
	KindConfiguration
	KindBadUpstreamResponse
	KindFitError
)

var kindNames = map[Kind]string{
	KindUnknown:             "Unknown",
	KindStockNotFound:       "StockNotFound",
	KindInsufficientData:    "InsufficientData",
	KindNoDataAvailable:     "NoDataAvailable",
	KindInvalidTicker:       "InvalidTicker",
	KindConfiguration:       "ConfigurationError",
	KindBadUpstreamResponse: "BadUpstreamResponse",
	KindFitError:            "FitError",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Status is the HTTP status a failure of this kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindInvalidTicker, KindInsufficientData:
		return http.StatusBadRequest
	case KindStockNotFound, KindNoDataAvailable:
		return http.StatusNotFound
	case KindBadUpstreamResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type every workflow returns for expected failures.
type Error struct {
	Kind    Kind
	Message string
	// Detail is extra payload for the response body, e.g. the raw model reply.
	Detail any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrStockNotFound       = &Error{Kind: KindStockNotFound}
	ErrInsufficientData    = &Error{Kind: KindInsufficientData}
	ErrNoDataAvailable     = &Error{Kind: KindNoDataAvailable}
	ErrInvalidTicker       = &Error{Kind: KindInvalidTicker}
	ErrConfiguration       = &Error{Kind: KindConfiguration}
	ErrBadUpstreamResponse = &Error{Kind: KindBadUpstreamResponse}
	ErrFit                 = &Error{Kind: KindFitError}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
