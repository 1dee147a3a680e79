package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/devcamper/internal/pkg/metrics"
)

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 15 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get(apiPrefix+"/health", HealthHandler(deps))
	app.Get(apiPrefix+"/ready", ReadyHandler(deps))

	v1 := app.Group(apiPrefix)
	with := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, requestTimeout) }

	bootcamps := v1.Group("/bootcamps")
	bootcamps.Get("/", with(ListBootcampsHandler(deps)))
	bootcamps.Post("/", with(CreateBootcampHandler(deps)))
	bootcamps.Get("/radius/:zipcode/:distance", with(BootcampsInRadiusHandler(deps)))
	bootcamps.Get("/:bootcampId/courses", with(ListCoursesHandler(deps)))
	bootcamps.Post("/:bootcampId/courses", with(AddCourseHandler(deps)))
	bootcamps.Get("/:id", with(GetBootcampHandler(deps)))
	bootcamps.Put("/:id", with(UpdateBootcampHandler(deps)))
	bootcamps.Delete("/:id", with(DeleteBootcampHandler(deps)))

	courses := v1.Group("/courses")
	courses.Get("/", with(ListCoursesHandler(deps)))
	courses.Get("/:id", with(GetCourseHandler(deps)))
	courses.Put("/:id", with(UpdateCourseHandler(deps)))
	courses.Delete("/:id", with(DeleteCourseHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	// WebSocket relay of directory events
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
