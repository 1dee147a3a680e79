package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses the handler left alone.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == apiPrefix+"/health" || path == apiPrefix+"/ready":
			ttl = "no-cache"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, apiPrefix+"/bootcamps/radius/"):
			ttl = "public, max-age=300" // geocoded lookups

		case strings.HasPrefix(path, apiPrefix+"/bootcamps"), strings.HasPrefix(path, apiPrefix+"/courses"):
			ttl = "public, max-age=60" // directory changes on every write

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
