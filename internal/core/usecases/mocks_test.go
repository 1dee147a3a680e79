package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/query"
)

const (
	bootcampID = "5d713995-b721-c3a5-4117-1d4cfa2d0b36"
	courseID   = "5d725a4a-7b29-2b4e-a5a8-8b2c3d1e4f50"
	missingID  = "00000000-0000-4000-8000-000000000000"
)

// --- Mock BootcampRepository ---

type mockBootcampRepo struct {
	findFn        func(ctx context.Context, q query.Query) ([]domain.Bootcamp, error)
	countFn       func(ctx context.Context, f query.Filter) (int, error)
	getByIDFn     func(ctx context.Context, id string) (*domain.Bootcamp, error)
	createFn      func(ctx context.Context, b *domain.Bootcamp) error
	updateFn      func(ctx context.Context, id string, p domain.BootcampPatch) (*domain.Bootcamp, error)
	deleteFn      func(ctx context.Context, id string) error
	findWithinFn  func(ctx context.Context, r domain.SphereRegion) ([]domain.Bootcamp, error)
	setLocationFn func(ctx context.Context, id string, loc *domain.Location) error
}

func (m *mockBootcampRepo) Find(ctx context.Context, q query.Query) ([]domain.Bootcamp, error) {
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return nil, nil
}

func (m *mockBootcampRepo) Count(ctx context.Context, f query.Filter) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, f)
	}
	return 0, nil
}

func (m *mockBootcampRepo) GetByID(ctx context.Context, id string) (*domain.Bootcamp, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockBootcampRepo) Create(ctx context.Context, b *domain.Bootcamp) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	b.ID = bootcampID
	return nil
}

func (m *mockBootcampRepo) Update(ctx context.Context, id string, p domain.BootcampPatch) (*domain.Bootcamp, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	return nil, domain.ErrNotFound
}

func (m *mockBootcampRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockBootcampRepo) FindWithin(ctx context.Context, r domain.SphereRegion) ([]domain.Bootcamp, error) {
	if m.findWithinFn != nil {
		return m.findWithinFn(ctx, r)
	}
	return nil, nil
}

func (m *mockBootcampRepo) SetLocation(ctx context.Context, id string, loc *domain.Location) error {
	if m.setLocationFn != nil {
		return m.setLocationFn(ctx, id, loc)
	}
	return nil
}

// --- Mock CourseRepository ---

type mockCourseRepo struct {
	listFn             func(ctx context.Context) ([]domain.Course, error)
	listByBootcampFn   func(ctx context.Context, id string) ([]domain.Course, error)
	listByBootcampsFn  func(ctx context.Context, ids []string) (map[string][]domain.Course, error)
	getByIDFn          func(ctx context.Context, id string) (*domain.Course, error)
	createFn           func(ctx context.Context, c *domain.Course) error
	updateFn           func(ctx context.Context, id string, p domain.CoursePatch) (*domain.Course, error)
	deleteFn           func(ctx context.Context, id string) error
	recalculateCalls   []string
	recalculateFailErr error
}

func (m *mockCourseRepo) List(ctx context.Context) ([]domain.Course, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCourseRepo) ListByBootcamp(ctx context.Context, id string) ([]domain.Course, error) {
	if m.listByBootcampFn != nil {
		return m.listByBootcampFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCourseRepo) ListByBootcamps(ctx context.Context, ids []string) (map[string][]domain.Course, error) {
	if m.listByBootcampsFn != nil {
		return m.listByBootcampsFn(ctx, ids)
	}
	return map[string][]domain.Course{}, nil
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCourseRepo) Create(ctx context.Context, c *domain.Course) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = courseID
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, id string, p domain.CoursePatch) (*domain.Course, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCourseRepo) RecalculateAverageCost(ctx context.Context, id string) error {
	m.recalculateCalls = append(m.recalculateCalls, id)
	return m.recalculateFailErr
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	calls     int
	geocodeFn func(ctx context.Context, address string) ([]domain.GeoResult, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) ([]domain.GeoResult, error) {
	m.calls++
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return []domain.GeoResult{{Latitude: 42.3601, Longitude: -71.0589, City: "Boston", StateCode: "MA", Zipcode: "02118", CountryCode: "US"}}, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []domain.DirectoryEvent
}

func (m *mockPublisher) PublishDirectoryEvent(_ context.Context, ev *domain.DirectoryEvent) error {
	m.events = append(m.events, *ev)
	return nil
}

// --- Mock GeocodeScheduler ---

type mockScheduler struct {
	scheduled map[string]string
}

func (m *mockScheduler) ScheduleGeocode(_ context.Context, id, address string) error {
	if m.scheduled == nil {
		m.scheduled = map[string]string{}
	}
	m.scheduled[id] = address
	return nil
}
