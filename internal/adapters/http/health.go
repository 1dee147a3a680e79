package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": Version,
		})
	}
}

// ReadyHandler checks database, NATS and cache connectivity. Only the database
// is required; NATS and the cache degrade the service but do not stop it.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		if deps.DB != nil {
			checks["database"] = pingStatus(ctx, deps.DB)
			allOK = checks["database"] == "ok"
		} else {
			checks["database"] = "not configured"
			allOK = false
		}

		switch {
		case deps.NATS == nil:
			checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			checks["nats"] = "ok"
		default:
			checks["nats"] = "disconnected"
			allOK = false
		}

		if deps.Cache != nil {
			checks["cache"] = pingStatus(ctx, deps.Cache)
			if checks["cache"] != "ok" {
				allOK = false
			}
		} else {
			checks["cache"] = "not configured"
		}

		status, code := "ready", fiber.StatusOK
		if !allOK {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"success": allOK,
			"status":  status,
			"checks":  checks,
		})
	}
}

func pingStatus(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
