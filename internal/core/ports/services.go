package ports

import (
	"context"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// Geocoder resolves an address or postal code to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]domain.GeoResult, error)
}

// GeocodeScheduler re-geocodes a bootcamp outside the request path.
type GeocodeScheduler interface {
	ScheduleGeocode(ctx context.Context, bootcampID, address string) error
}

// EventPublisher publishes directory events to a message broker.
type EventPublisher interface {
	PublishDirectoryEvent(ctx context.Context, event *domain.DirectoryEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
