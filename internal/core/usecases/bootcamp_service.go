package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/ports"
	"github.com/samirrijal/devcamper/internal/core/query"
	"github.com/samirrijal/devcamper/internal/pkg/geospatial"
	"github.com/samirrijal/devcamper/internal/pkg/logging"
	"github.com/samirrijal/devcamper/internal/pkg/metrics"
	"github.com/samirrijal/devcamper/internal/pkg/slug"
	"github.com/samirrijal/devcamper/internal/pkg/telemetry"
)

const (
	bootcampCacheTTL = 600   // 10 min for a single bootcamp
	geocodeCacheTTL  = 86400 // postal codes rarely move
)

// BootcampList is one page of bootcamps plus its pagination metadata.
type BootcampList struct {
	Data       []domain.Bootcamp
	Projection query.Projection
	Pagination query.Pagination
	Window     query.Window
	Total      int
}

// BootcampService handles bootcamp-related business logic.
type BootcampService struct {
	bootcamps ports.BootcampRepository
	courses   ports.CourseRepository
	geocoder  ports.Geocoder
	cache     ports.CacheService
	events    ports.EventPublisher
	scheduler ports.GeocodeScheduler
}

// NewBootcampService creates a new BootcampService. geocoder and cache may be nil.
func NewBootcampService(bootcamps ports.BootcampRepository, courses ports.CourseRepository, geocoder ports.Geocoder, cache ports.CacheService) *BootcampService {
	return &BootcampService{bootcamps: bootcamps, courses: courses, geocoder: geocoder, cache: cache}
}

// WithEvents publishes a directory event after every write.
func (s *BootcampService) WithEvents(p ports.EventPublisher) *BootcampService {
	s.events = p
	return s
}

// WithScheduler moves re-geocoding after an address change out of the request path.
func (s *BootcampService) WithScheduler(sch ports.GeocodeScheduler) *BootcampService {
	s.scheduler = sch
	return s
}

// List translates request parameters, counts the matching bootcamps and returns
// the requested window with courses populated.
func (s *BootcampService) List(ctx context.Context, params query.Params) (*BootcampList, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanBootcampList)
	defer span.End()

	q := query.Parse(params)

	total, err := s.bootcamps.Count(ctx, q.Filter)
	if err != nil {
		return nil, upstream("count bootcamps", err)
	}

	bootcamps, err := s.bootcamps.Find(ctx, q)
	if err != nil {
		return nil, upstream("find bootcamps", err)
	}

	if len(bootcamps) > 0 && q.Projection.Includes("courses") {
		if err := s.populateCourses(ctx, bootcamps); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("bootcamps.total", total), attribute.Int("bootcamps.page", q.Window.Page))

	return &BootcampList{
		Data:       bootcamps,
		Projection: q.Projection,
		Pagination: query.Paginate(q.Window, total),
		Window:     q.Window,
		Total:      total,
	}, nil
}

func (s *BootcampService) populateCourses(ctx context.Context, bootcamps []domain.Bootcamp) error {
	ids := make([]string, len(bootcamps))
	for i, b := range bootcamps {
		ids[i] = b.ID
	}
	byBootcamp, err := s.courses.ListByBootcamps(ctx, ids)
	if err != nil {
		return upstream("populate courses", err)
	}
	for i := range bootcamps {
		bootcamps[i].Courses = byBootcamp[bootcamps[i].ID]
	}
	return nil
}

// Get returns a single bootcamp.
func (s *BootcampService) Get(ctx context.Context, id string) (*domain.Bootcamp, error) {
	if !validID(id) {
		return nil, bootcampNotFound(id)
	}

	cacheKey := bootcampCacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var b domain.Bootcamp
			if err := json.Unmarshal(data, &b); err == nil {
				metrics.CacheHits.WithLabelValues("bootcamp").Inc()
				return &b, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("bootcamp").Inc()
	}

	b, err := s.bootcamps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, bootcampNotFound(id)
		}
		return nil, upstream("get bootcamp", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(b); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, bootcampCacheTTL)
		}
	}

	return b, nil
}

// Create validates input, geocodes the address and stores the bootcamp.
func (s *BootcampService) Create(ctx context.Context, in domain.BootcampInput) (*domain.Bootcamp, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	b := &domain.Bootcamp{
		Name:          strings.TrimSpace(in.Name),
		Slug:          slug.Make(in.Name),
		Description:   in.Description,
		Website:       in.Website,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		Careers:       in.Careers,
		AverageRating: in.AverageRating,
		Photo:         in.Photo,
		Housing:       in.Housing,
		JobAssistance: in.JobAssistance,
		JobGuarantee:  in.JobGuarantee,
		AcceptGi:      in.AcceptGi,
	}
	if b.Photo == "" {
		b.Photo = domain.DefaultPhoto
	}

	if s.geocoder != nil {
		loc, err := s.Locate(ctx, in.Address)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, domain.Invalid("Could not geocode address %q", in.Address)
		}
		b.Location = domain.NewLocation(*loc)
	}

	if err := s.bootcamps.Create(ctx, b); err != nil {
		return nil, upstream("create bootcamp", err)
	}

	s.publish(ctx, "created", b.ID)
	return b, nil
}

// Update applies a validated patch and returns the updated bootcamp.
func (s *BootcampService) Update(ctx context.Context, id string, patch domain.BootcampPatch) (*domain.Bootcamp, error) {
	if !validID(id) {
		return nil, bootcampNotFound(id)
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		sl := slug.Make(*patch.Name)
		patch.Slug = &sl
	}

	b, err := s.bootcamps.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, bootcampNotFound(id)
		}
		return nil, upstream("update bootcamp", err)
	}

	s.invalidate(ctx, id)

	if patch.Address != nil {
		s.relocate(ctx, b, *patch.Address)
	}

	s.publish(ctx, "updated", id)
	return b, nil
}

// relocate refreshes the location after an address change. Failures are logged;
// the update itself already succeeded.
func (s *BootcampService) relocate(ctx context.Context, b *domain.Bootcamp, address string) {
	log := logging.FromContext(ctx)

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleGeocode(ctx, b.ID, address); err != nil {
			log.Warn("schedule geocode failed", "bootcamp_id", b.ID, "error", err)
		}
		return
	}
	if s.geocoder == nil {
		return
	}

	loc, err := s.SetLocation(ctx, b.ID, address)
	if err != nil {
		log.Warn("geocode after update failed", "bootcamp_id", b.ID, "address", address, "error", err)
		return
	}
	if loc != nil {
		b.Location = loc
	}
}

// Delete removes a bootcamp together with its courses.
func (s *BootcampService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return bootcampNotFound(id)
	}
	if err := s.bootcamps.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return bootcampNotFound(id)
		}
		return upstream("delete bootcamp", err)
	}
	s.invalidate(ctx, id)
	s.publish(ctx, "deleted", id)
	return nil
}

// WithinRadius returns bootcamps within distance miles of a postal code.
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distance float64) ([]domain.Bootcamp, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanBootcampRadius)
	defer span.End()

	if strings.TrimSpace(zipcode) == "" {
		return nil, domain.Invalid("zipcode is required")
	}
	if !(distance > 0) || math.IsInf(distance, 1) {
		return nil, domain.Invalid("distance must be a positive number of miles")
	}
	if s.geocoder == nil {
		return nil, domain.Upstream("geocode zipcode", errors.New("geocoder not configured"))
	}

	res, err := s.Locate(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.NotFound("No location found for zipcode %s", zipcode)
	}

	region := domain.SphereRegion{
		Center: domain.GeoPoint{Lat: res.Latitude, Lon: res.Longitude},
		Radius: geospatial.AngularRadius(distance),
	}
	span.SetAttributes(attribute.Float64("region.radius_rad", region.Radius))

	bootcamps, err := s.bootcamps.FindWithin(ctx, region)
	if err != nil {
		return nil, upstream("find bootcamps in radius", err)
	}
	return bootcamps, nil
}

// SetLocation geocodes address and stores the result on the bootcamp.
func (s *BootcampService) SetLocation(ctx context.Context, id, address string) (*domain.Location, error) {
	if s.geocoder == nil {
		return nil, domain.Upstream("geocode address", errors.New("geocoder not configured"))
	}
	res, err := s.Locate(ctx, address)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.Invalid("Could not geocode address %q", address)
	}
	return s.ApplyLocation(ctx, id, address, *res)
}

// ApplyLocation stores res as the location of bootcamp id, provided its address
// is still address. A bootcamp whose address changed again in the meantime is
// left alone and (nil, nil) is returned.
func (s *BootcampService) ApplyLocation(ctx context.Context, id, address string, res domain.GeoResult) (*domain.Location, error) {
	current, err := s.bootcamps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, bootcampNotFound(id)
		}
		return nil, upstream("get bootcamp", err)
	}
	if current.Address != address {
		logging.FromContext(ctx).Info("skipping stale location", "bootcamp_id", id, "address", address)
		return nil, nil
	}

	loc := domain.NewLocation(res)
	if err := s.bootcamps.SetLocation(ctx, id, loc); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, bootcampNotFound(id)
		}
		return nil, upstream("store location", err)
	}
	s.invalidate(ctx, id)
	s.publish(ctx, "updated", id)
	return loc, nil
}

// Locate returns the first geocoder candidate for address, or nil when there is none.
// Results are cached by normalised address.
func (s *BootcampService) Locate(ctx context.Context, address string) (*domain.GeoResult, error) {
	if s.geocoder == nil {
		return nil, domain.Upstream("geocode "+address, errors.New("geocoder not configured"))
	}
	cacheKey := "geocode:" + strings.ToLower(strings.TrimSpace(address))
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var r domain.GeoResult
			if err := json.Unmarshal(data, &r); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return &r, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanGeocode)
	defer span.End()

	results, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, upstream("geocode "+address, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	if s.cache != nil {
		if data, err := json.Marshal(results[0]); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, geocodeCacheTTL)
		}
	}
	return &results[0], nil
}

// Evict drops the cached copy of the bootcamp an event refers to. Replicas
// consume directory events through it so a failed delete on the writer does
// not leave a stale entry behind.
func (s *BootcampService) Evict(ctx context.Context, ev *domain.DirectoryEvent) error {
	if s.cache == nil {
		return nil
	}
	id := ev.Bootcamp
	if id == "" && ev.Kind == "bootcamp" {
		id = ev.ID
	}
	if id == "" {
		return nil
	}
	return s.cache.Delete(ctx, bootcampCacheKey(id))
}

func (s *BootcampService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, bootcampCacheKey(id))
	}
}

func (s *BootcampService) publish(ctx context.Context, action, id string) {
	metrics.DirectoryWrites.WithLabelValues("bootcamp", action).Inc()
	if s.events == nil {
		return
	}
	ev := &domain.DirectoryEvent{Kind: "bootcamp", Action: action, ID: id, Bootcamp: id, Time: time.Now().UTC()}
	if err := s.events.PublishDirectoryEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish directory event failed", "kind", ev.Kind, "action", action, "id", id, "error", err)
	}
}

func bootcampCacheKey(id string) string { return "bootcamps:id:" + id }

func bootcampNotFound(id string) error {
	return domain.NotFound("Bootcamp not found with id of %s", id)
}
