package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/usecases"
)

func validCourseInput() domain.CourseInput {
	return domain.CourseInput{
		Title:        "Front End Web Development",
		Description:  "HTML, CSS and JavaScript",
		Weeks:        "8",
		Tuition:      8000,
		MinimumSkill: "beginner",
	}
}

func existingBootcamp() *mockBootcampRepo {
	return &mockBootcampRepo{
		getByIDFn: func(_ context.Context, id string) (*domain.Bootcamp, error) {
			if id != bootcampID {
				return nil, domain.ErrNotFound
			}
			return &domain.Bootcamp{ID: id, Name: "Devworks"}, nil
		},
	}
}

func TestCourseService_List(t *testing.T) {
	courses := &mockCourseRepo{
		listFn: func(context.Context) ([]domain.Course, error) {
			return []domain.Course{
				{ID: "1", Title: "Front End", Bootcamp: &domain.BootcampSummary{ID: bootcampID, Name: "Devworks"}},
				{ID: "2", Title: "Full Stack"},
			}, nil
		},
		listByBootcampFn: func(_ context.Context, id string) ([]domain.Course, error) {
			return []domain.Course{{ID: "1", BootcampID: id}}, nil
		},
	}
	svc := usecases.NewCourseService(courses, &mockBootcampRepo{}, nil)

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(all))
	}
	if all[0].Bootcamp == nil || all[0].Bootcamp.Name != "Devworks" {
		t.Errorf("expected populated bootcamp, got %+v", all[0].Bootcamp)
	}

	one, err := svc.List(context.Background(), bootcampID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(one) != 1 || one[0].BootcampID != bootcampID {
		t.Errorf("expected one course of %s, got %+v", bootcampID, one)
	}
}

func TestCourseService_Get_NotFound(t *testing.T) {
	svc := usecases.NewCourseService(&mockCourseRepo{}, &mockBootcampRepo{}, nil)

	for _, id := range []string{missingID, "garbage"} {
		_, err := svc.Get(context.Background(), id)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found for %q, got %v", id, err)
		}
		if got, want := domain.Message(err), "No course with the id of "+id; got != want {
			t.Errorf("message = %q, want %q", got, want)
		}
	}
}

func TestCourseService_Add(t *testing.T) {
	courses := &mockCourseRepo{}
	pub := &mockPublisher{}
	cache := newMockCache()
	_ = cache.Set(context.Background(), "bootcamps:id:"+bootcampID, []byte(`{}`), 60)
	svc := usecases.NewCourseService(courses, existingBootcamp(), cache).WithEvents(pub)

	c, err := svc.Add(context.Background(), bootcampID, validCourseInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != courseID || c.BootcampID != bootcampID {
		t.Errorf("unexpected course %+v", c)
	}
	if len(courses.recalculateCalls) != 1 || courses.recalculateCalls[0] != bootcampID {
		t.Errorf("expected average cost recalculation for %s, got %v", bootcampID, courses.recalculateCalls)
	}
	if _, err := cache.Get(context.Background(), "bootcamps:id:"+bootcampID); err == nil {
		t.Error("expected cached bootcamp to be evicted")
	}
	if len(pub.events) != 1 || pub.events[0].Kind != "course" || pub.events[0].Bootcamp != bootcampID {
		t.Errorf("unexpected events %+v", pub.events)
	}
}

func TestCourseService_Add_MissingBootcamp(t *testing.T) {
	courses := &mockCourseRepo{createFn: func(context.Context, *domain.Course) error {
		t.Fatal("course must not be created")
		return nil
	}}
	svc := usecases.NewCourseService(courses, existingBootcamp(), nil)

	_, err := svc.Add(context.Background(), missingID, validCourseInput())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got, want := domain.Message(err), "No bootcamp with the id of "+missingID; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestCourseService_Add_Validation(t *testing.T) {
	svc := usecases.NewCourseService(&mockCourseRepo{}, existingBootcamp(), nil)

	in := validCourseInput()
	in.MinimumSkill = "expert"
	in.Tuition = 0

	_, err := svc.Add(context.Background(), bootcampID, in)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCourseService_Update(t *testing.T) {
	courses := &mockCourseRepo{
		updateFn: func(_ context.Context, id string, p domain.CoursePatch) (*domain.Course, error) {
			return &domain.Course{ID: id, Tuition: *p.Tuition, BootcampID: bootcampID}, nil
		},
	}
	svc := usecases.NewCourseService(courses, &mockBootcampRepo{}, nil)

	tuition := 12000.0
	c, err := svc.Update(context.Background(), courseID, domain.CoursePatch{Tuition: &tuition})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Tuition != tuition {
		t.Errorf("expected tuition %v, got %v", tuition, c.Tuition)
	}
	if len(courses.recalculateCalls) != 1 {
		t.Errorf("expected one recalculation, got %d", len(courses.recalculateCalls))
	}

	courses.updateFn = nil
	if _, err := svc.Update(context.Background(), missingID, domain.CoursePatch{Tuition: &tuition}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCourseService_Delete(t *testing.T) {
	deleted := ""
	courses := &mockCourseRepo{
		getByIDFn: func(_ context.Context, id string) (*domain.Course, error) {
			if id != courseID {
				return nil, domain.ErrNotFound
			}
			return &domain.Course{ID: id, BootcampID: bootcampID}, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := usecases.NewCourseService(courses, &mockBootcampRepo{}, nil)

	if err := svc.Delete(context.Background(), courseID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != courseID {
		t.Errorf("expected %s deleted, got %q", courseID, deleted)
	}
	if len(courses.recalculateCalls) != 1 || courses.recalculateCalls[0] != bootcampID {
		t.Errorf("expected recalculation for parent, got %v", courses.recalculateCalls)
	}

	err := svc.Delete(context.Background(), missingID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got, want := domain.Message(err), "No course with the id of "+missingID; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestCourseService_RecalculateFailureDoesNotFailWrite(t *testing.T) {
	courses := &mockCourseRepo{recalculateFailErr: errors.New("deadlock")}
	svc := usecases.NewCourseService(courses, existingBootcamp(), nil)

	if _, err := svc.Add(context.Background(), bootcampID, validCourseInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
