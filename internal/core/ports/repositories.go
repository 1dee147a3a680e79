package ports

import (
	"context"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/query"
)

// BootcampRepository persists bootcamps.
type BootcampRepository interface {
	// Find returns the window of bootcamps matching q, with only the projected fields set.
	Find(ctx context.Context, q query.Query) ([]domain.Bootcamp, error)
	Count(ctx context.Context, filter query.Filter) (int, error)
	GetByID(ctx context.Context, id string) (*domain.Bootcamp, error)
	Create(ctx context.Context, b *domain.Bootcamp) error
	// Update applies patch and returns the updated bootcamp, or domain.ErrNotFound.
	Update(ctx context.Context, id string, patch domain.BootcampPatch) (*domain.Bootcamp, error)
	// Delete removes the bootcamp and its courses.
	Delete(ctx context.Context, id string) error
	FindWithin(ctx context.Context, region domain.SphereRegion) ([]domain.Bootcamp, error)
	SetLocation(ctx context.Context, id string, loc *domain.Location) error
}

// CourseRepository persists courses.
type CourseRepository interface {
	// List returns every course with its bootcamp summary populated.
	List(ctx context.Context) ([]domain.Course, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]domain.Course, error)
	// ListByBootcamps groups the courses of several bootcamps by bootcamp id.
	ListByBootcamps(ctx context.Context, bootcampIDs []string) (map[string][]domain.Course, error)
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	Create(ctx context.Context, c *domain.Course) error
	Update(ctx context.Context, id string, patch domain.CoursePatch) (*domain.Course, error)
	Delete(ctx context.Context, id string) error
	// RecalculateAverageCost stores the rounded average tuition on the bootcamp.
	RecalculateAverageCost(ctx context.Context, bootcampID string) error
}
