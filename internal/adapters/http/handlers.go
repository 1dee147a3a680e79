package http

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/query"
)

// envelope is the body of every successful response.
type envelope struct {
	Success    bool              `json:"success"`
	Count      *int              `json:"count,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Data       any               `json:"data"`
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Data: data})
}

func okList[T any](c *fiber.Ctx, items []T) error {
	n := len(items)
	return c.JSON(envelope{Success: true, Count: &n, Data: items})
}

func rawParams(c *fiber.Ctx) query.Params {
	return query.ParseRawQuery(string(c.Request().URI().QueryString()))
}

func bindBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return domain.Invalid("Request body is required")
	}
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("Invalid request body: %v", err)
	}
	return nil
}

// ---- Bootcamps ----

// ListBootcampsHandler handles GET /bootcamps with filter, select, sort and
// page parameters.
func ListBootcampsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := rawParams(c)
		list, err := deps.Bootcamps.List(c.UserContext(), params)
		if err != nil {
			return err
		}

		data, err := project(list.Data, list.Projection)
		if err != nil {
			return err
		}

		SetLinkHeaders(c, params, list.Window, list.Pagination, list.Total)
		n := len(list.Data)
		return c.JSON(envelope{
			Success:    true,
			Count:      &n,
			Pagination: &list.Pagination,
			Data:       data,
		})
	}
}

// GetBootcampHandler handles GET /bootcamps/:id.
func GetBootcampHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := deps.Bootcamps.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, b)
	}
}

// CreateBootcampHandler handles POST /bootcamps.
func CreateBootcampHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.BootcampInput
		if err := bindBody(c, &in); err != nil {
			return err
		}
		b, err := deps.Bootcamps.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusCreated, b)
	}
}

// UpdateBootcampHandler handles PUT /bootcamps/:id.
func UpdateBootcampHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch domain.BootcampPatch
		if err := bindBody(c, &patch); err != nil {
			return err
		}
		b, err := deps.Bootcamps.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, b)
	}
}

// DeleteBootcampHandler handles DELETE /bootcamps/:id.
func DeleteBootcampHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Bootcamps.Delete(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, fiber.Map{})
	}
}

// BootcampsInRadiusHandler handles GET /bootcamps/radius/:zipcode/:distance.
// distance is in miles.
func BootcampsInRadiusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		distance, err := strconv.ParseFloat(c.Params("distance"), 64)
		if err != nil {
			return domain.Invalid("Distance must be a number of miles, got %q", c.Params("distance"))
		}
		bootcamps, err := deps.Bootcamps.WithinRadius(c.UserContext(), c.Params("zipcode"), distance)
		if err != nil {
			return err
		}
		return okList(c, bootcamps)
	}
}

// ---- Courses ----

// ListCoursesHandler handles GET /courses and GET /bootcamps/:bootcampId/courses.
func ListCoursesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courses, err := deps.Courses.List(c.UserContext(), c.Params("bootcampId"))
		if err != nil {
			return err
		}
		return okList(c, courses)
	}
}

// GetCourseHandler handles GET /courses/:id.
func GetCourseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		course, err := deps.Courses.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, course)
	}
}

// AddCourseHandler handles POST /bootcamps/:bootcampId/courses.
func AddCourseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.CourseInput
		if err := bindBody(c, &in); err != nil {
			return err
		}
		course, err := deps.Courses.Add(c.UserContext(), c.Params("bootcampId"), in)
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, course)
	}
}

// UpdateCourseHandler handles PUT /courses/:id.
func UpdateCourseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch domain.CoursePatch
		if err := bindBody(c, &patch); err != nil {
			return err
		}
		course, err := deps.Courses.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, course)
	}
}

// DeleteCourseHandler handles DELETE /courses/:id.
func DeleteCourseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Courses.Delete(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, fiber.Map{})
	}
}

// project trims every bootcamp down to id plus the selected top-level fields.
// A dotted field such as location.city keeps its whole parent object.
func project(bootcamps []domain.Bootcamp, p query.Projection) (any, error) {
	if p.All() {
		return bootcamps, nil
	}

	keep := map[string]bool{"id": true}
	for _, f := range p.Fields {
		top, _, _ := strings.Cut(f, ".")
		keep[top] = true
	}

	out := make([]map[string]json.RawMessage, 0, len(bootcamps))
	for i := range bootcamps {
		raw, err := json.Marshal(&bootcamps[i])
		if err != nil {
			return nil, err
		}
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		for k := range doc {
			if !keep[k] {
				delete(doc, k)
			}
		}
		out = append(out, doc)
	}
	return out, nil
}
