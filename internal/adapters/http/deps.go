package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/devcamper/internal/core/usecases"
)

// Pinger is a backing service the readiness probe can reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Bootcamps *usecases.BootcampService
	Courses   *usecases.CourseService
	NATS      *nats.Conn
	DB        Pinger
	Cache     Pinger
}
