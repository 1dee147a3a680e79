package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/ports"
	"github.com/samirrijal/devcamper/internal/pkg/logging"
	"github.com/samirrijal/devcamper/internal/pkg/metrics"
)

// CourseService handles course-related business logic.
type CourseService struct {
	courses   ports.CourseRepository
	bootcamps ports.BootcampRepository
	cache     ports.CacheService
	events    ports.EventPublisher
}

// NewCourseService creates a new CourseService. cache may be nil.
func NewCourseService(courses ports.CourseRepository, bootcamps ports.BootcampRepository, cache ports.CacheService) *CourseService {
	return &CourseService{courses: courses, bootcamps: bootcamps, cache: cache}
}

// WithEvents publishes a directory event after every write.
func (s *CourseService) WithEvents(p ports.EventPublisher) *CourseService {
	s.events = p
	return s
}

// List returns every course, or only those of bootcampID when it is set.
func (s *CourseService) List(ctx context.Context, bootcampID string) ([]domain.Course, error) {
	if bootcampID == "" {
		courses, err := s.courses.List(ctx)
		if err != nil {
			return nil, upstream("list courses", err)
		}
		return courses, nil
	}

	if !validID(bootcampID) {
		return nil, noBootcamp(bootcampID)
	}
	courses, err := s.courses.ListByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, upstream("list courses of bootcamp", err)
	}
	return courses, nil
}

// Get returns a single course with its bootcamp summary.
func (s *CourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	if !validID(id) {
		return nil, courseNotFound(id)
	}
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, courseNotFound(id)
		}
		return nil, upstream("get course", err)
	}
	return c, nil
}

// Add creates a course under an existing bootcamp.
func (s *CourseService) Add(ctx context.Context, bootcampID string, in domain.CourseInput) (*domain.Course, error) {
	if !validID(bootcampID) {
		return nil, noBootcamp(bootcampID)
	}
	if _, err := s.bootcamps.GetByID(ctx, bootcampID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, noBootcamp(bootcampID)
		}
		return nil, upstream("get bootcamp", err)
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	c := &domain.Course{
		Title:                strings.TrimSpace(in.Title),
		Description:          in.Description,
		Weeks:                in.Weeks,
		Tuition:              in.Tuition,
		MinimumSkill:         in.MinimumSkill,
		ScholarshipAvailable: in.ScholarshipAvailable,
		BootcampID:           bootcampID,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, upstream("create course", err)
	}

	s.afterWrite(ctx, "created", c.ID, bootcampID)
	return c, nil
}

// Update applies a validated patch to a course.
func (s *CourseService) Update(ctx context.Context, id string, patch domain.CoursePatch) (*domain.Course, error) {
	if !validID(id) {
		return nil, courseNotFound(id)
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	c, err := s.courses.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, courseNotFound(id)
		}
		return nil, upstream("update course", err)
	}

	s.afterWrite(ctx, "updated", id, c.BootcampID)
	return c, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return courseNotFound(id)
	}
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return courseNotFound(id)
		}
		return upstream("get course", err)
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return courseNotFound(id)
		}
		return upstream("delete course", err)
	}

	s.afterWrite(ctx, "deleted", id, c.BootcampID)
	return nil
}

// afterWrite keeps the parent's average cost current and announces the change.
// The course write has already committed, so failures here are only logged.
func (s *CourseService) afterWrite(ctx context.Context, action, id, bootcampID string) {
	log := logging.FromContext(ctx)
	metrics.DirectoryWrites.WithLabelValues("course", action).Inc()

	if err := s.courses.RecalculateAverageCost(ctx, bootcampID); err != nil {
		log.Error("recalculate average cost failed", "bootcamp_id", bootcampID, "error", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, bootcampCacheKey(bootcampID))
	}
	if s.events == nil {
		return
	}
	ev := &domain.DirectoryEvent{Kind: "course", Action: action, ID: id, Bootcamp: bootcampID, Time: time.Now().UTC()}
	if err := s.events.PublishDirectoryEvent(ctx, ev); err != nil {
		log.Warn("publish directory event failed", "kind", ev.Kind, "action", action, "id", id, "error", err)
	}
}

func courseNotFound(id string) error {
	return domain.NotFound("No course with the id of %s", id)
}

func noBootcamp(id string) error {
	return domain.NotFound("No bootcamp with the id of %s", id)
}
