package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Success   bool   `json:"success"`
	Status    int    `json:"status"`
	Code      string `json:"code"`  // bad_request, not_found, duplicate, upstream_error, internal_error
	Error     string `json:"error"` // human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Error:     message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// ErrorHandler is installed as the Fiber error handler. Handlers return domain
// errors and this maps each taxonomy kind onto a status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return newError(c, fiber.StatusNotFound, "not_found", domain.Message(err))
	case errors.Is(err, domain.ErrValidation):
		return errBadRequest(c, domain.Message(err))
	case errors.Is(err, domain.ErrConflict):
		return newError(c, fiber.StatusBadRequest, "duplicate", domain.Message(err))
	case errors.Is(err, domain.ErrUpstream):
		logging.FromContext(c.UserContext()).Error("upstream failure",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
		return newError(c, fiber.StatusInternalServerError, "upstream_error", "Server Error")
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return newError(c, fe.Code, codeFor(fe.Code), fe.Message)
	}

	logging.FromContext(c.UserContext()).Error("unhandled error",
		slog.String("path", c.Path()), slog.String("error", err.Error()))
	return newError(c, fiber.StatusInternalServerError, "internal_error", "Server Error")
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	case fiber.StatusRequestTimeout:
		return "timeout"
	case fiber.StatusUpgradeRequired:
		return "upgrade_required"
	}
	if status >= 500 {
		return "internal_error"
	}
	return "error"
}
