package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/devcamper/internal/pkg/logging"
)

// RequestIDLogMiddleware stores a request-scoped logger carrying the Fiber
// request ID in the user context, where services pick it up through
// logging.FromContext.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ridStr, _ := c.Locals("requestid").(string)
		if ridStr == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", ridStr)
		c.SetUserContext(logging.WithLogger(c.UserContext(), reqLogger))

		return c.Next()
	}
}
