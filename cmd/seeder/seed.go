package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// seedBootcamp is one entry of bootcamps.json. ID is a local handle that
// courses.json refers to; the stored id is assigned by the database.
type seedBootcamp struct {
	ID string `json:"id"`
	domain.BootcampInput
}

// seedCourse is one entry of courses.json.
type seedCourse struct {
	Bootcamp string `json:"bootcamp"`
	domain.CourseInput
}

type seedData struct {
	Bootcamps []seedBootcamp
	Courses   []seedCourse
}

func loadSeed(dir string) (*seedData, error) {
	var d seedData
	if err := readJSON(filepath.Join(dir, "bootcamps.json"), &d.Bootcamps); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "courses.json"), &d.Courses); err != nil {
		return nil, err
	}

	handles := make(map[string]bool, len(d.Bootcamps))
	for _, b := range d.Bootcamps {
		if b.ID == "" {
			return nil, fmt.Errorf("bootcamp %q has no id", b.Name)
		}
		if handles[b.ID] {
			return nil, fmt.Errorf("duplicate bootcamp id %q", b.ID)
		}
		handles[b.ID] = true
	}
	for _, c := range d.Courses {
		if !handles[c.Bootcamp] {
			return nil, fmt.Errorf("course %q refers to unknown bootcamp %q", c.Title, c.Bootcamp)
		}
	}
	return &d, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

type bootcampCreator interface {
	Create(ctx context.Context, in domain.BootcampInput) (*domain.Bootcamp, error)
}

type courseAdder interface {
	Add(ctx context.Context, bootcampID string, in domain.CourseInput) (*domain.Course, error)
}

// importSeed creates every bootcamp, at most four at a time since each create
// geocodes its address, then adds the courses of each bootcamp in file order.
func importSeed(ctx context.Context, d *seedData, bootcamps bootcampCreator, courses courseAdder) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  = make(map[string]string, len(d.Bootcamps))
		errs []error
		sem  = make(chan struct{}, 4)
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, sb := range d.Bootcamps {
		wg.Add(1)
		go func(sb seedBootcamp) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			b, err := bootcamps.Create(ctx, sb.BootcampInput)
			if err != nil {
				fail(fmt.Errorf("bootcamp %s: %s", sb.ID, domain.Message(err)))
				return
			}
			mu.Lock()
			ids[sb.ID] = b.ID
			mu.Unlock()
			slog.Info("bootcamp imported", "handle", sb.ID, "id", b.ID, "located", b.Location != nil)
		}(sb)
	}
	wg.Wait()

	for _, sc := range d.Courses {
		id, ok := ids[sc.Bootcamp]
		if !ok {
			continue // bootcamp failed above
		}
		if _, err := courses.Add(ctx, id, sc.CourseInput); err != nil {
			fail(fmt.Errorf("course %q: %s", sc.Title, domain.Message(err)))
		}
	}

	if len(errs) > 0 {
		for _, err := range errs {
			slog.Error("import failed", "error", err)
		}
		return fmt.Errorf("%d of %d records failed", len(errs), len(d.Bootcamps)+len(d.Courses))
	}
	slog.Info("data imported", "bootcamps", len(ids), "courses", len(d.Courses))
	return nil
}
