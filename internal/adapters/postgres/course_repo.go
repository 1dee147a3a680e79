package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// CourseRepo implements ports.CourseRepository.
type CourseRepo struct {
	db *DB
}

func NewCourseRepo(db *DB) *CourseRepo {
	return &CourseRepo{db: db}
}

const courseSelect = `
	SELECT c.id, c.title, c.description, c.weeks, c.tuition, c.minimum_skill,
	       c.scholarship_available, c.created_at, c.bootcamp_id,
	       b.name, COALESCE(b.description, '')
	FROM courses c
	JOIN bootcamps b ON b.id = c.bootcamp_id`

func scanCourse(row pgx.Row) (domain.Course, error) {
	var (
		c       domain.Course
		summary domain.BootcampSummary
	)
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Weeks, &c.Tuition, &c.MinimumSkill,
		&c.ScholarshipAvailable, &c.CreatedAt, &c.BootcampID,
		&summary.Name, &summary.Description)
	if err != nil {
		return c, err
	}
	summary.ID = c.BootcampID
	c.Bootcamp = &summary
	return c, nil
}

func (r *CourseRepo) collect(ctx context.Context, op, sql string, args ...any) ([]domain.Course, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	courses := []domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		courses = append(courses, c)
	}
	return courses, mapErr(op, rows.Err())
}

// List returns every course with its bootcamp summary.
func (r *CourseRepo) List(ctx context.Context) ([]domain.Course, error) {
	return r.collect(ctx, "list courses", courseSelect+` ORDER BY c.created_at, c.id`)
}

func (r *CourseRepo) ListByBootcamp(ctx context.Context, bootcampID string) ([]domain.Course, error) {
	return r.collect(ctx, "list courses of bootcamp",
		courseSelect+` WHERE c.bootcamp_id = $1 ORDER BY c.created_at, c.id`, bootcampID)
}

// ListByBootcamps loads the courses of several bootcamps in one round trip.
func (r *CourseRepo) ListByBootcamps(ctx context.Context, bootcampIDs []string) (map[string][]domain.Course, error) {
	out := make(map[string][]domain.Course, len(bootcampIDs))
	if len(bootcampIDs) == 0 {
		return out, nil
	}
	courses, err := r.collect(ctx, "list courses of bootcamps",
		courseSelect+` WHERE c.bootcamp_id::text = ANY($1) ORDER BY c.created_at, c.id`, bootcampIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		out[c.BootcampID] = append(out[c.BootcampID], c)
	}
	return out, nil
}

func (r *CourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	c, err := scanCourse(r.db.Pool.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapErr("get course", err)
	}
	return &c, nil
}

// Create inserts c and fills its id and creation time.
func (r *CourseRepo) Create(ctx context.Context, c *domain.Course) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO courses (title, description, weeks, tuition, minimum_skill, scholarship_available, bootcamp_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, c.Title, c.Description, c.Weeks, c.Tuition, c.MinimumSkill, c.ScholarshipAvailable, c.BootcampID,
	).Scan(&c.ID, &c.CreatedAt)
	return mapErr("insert course", err)
}

// Update applies the non-nil fields of patch and returns the course.
func (r *CourseRepo) Update(ctx context.Context, id string, patch domain.CoursePatch) (*domain.Course, error) {
	var (
		args argList
		sets []string
	)
	set := func(col string, v any) { sets = append(sets, col+" = "+args.add(v)) }

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Weeks != nil {
		set("weeks", *patch.Weeks)
	}
	if patch.Tuition != nil {
		set("tuition", *patch.Tuition)
	}
	if patch.MinimumSkill != nil {
		set("minimum_skill", *patch.MinimumSkill)
	}
	if patch.ScholarshipAvailable != nil {
		set("scholarship_available", *patch.ScholarshipAvailable)
	}

	if len(sets) > 0 {
		tag, err := r.db.Pool.Exec(ctx,
			`UPDATE courses SET `+strings.Join(sets, ", ")+` WHERE id = `+args.add(id), args...)
		if err != nil {
			return nil, mapErr("update course", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, domain.ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *CourseRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete course", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecalculateAverageCost stores the mean tuition rounded up to the next ten.
// A bootcamp without courses gets NULL.
func (r *CourseRepo) RecalculateAverageCost(ctx context.Context, bootcampID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE bootcamps
		SET average_cost = (
			SELECT CEIL(AVG(tuition) / 10) * 10 FROM courses WHERE bootcamp_id = $1
		)
		WHERE id = $1
	`, bootcampID)
	return mapErr("recalculate average cost", err)
}
