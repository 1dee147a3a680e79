package query

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100

	// CreatedAtField is the default sort key.
	CreatedAtField = "createdAt"
)

// Projection lists the fields to return. An empty projection means all fields.
type Projection struct {
	Fields []string
}

// All reports whether every field is selected.
func (p Projection) All() bool { return len(p.Fields) == 0 }

// Includes reports whether field, or one of its dotted subfields such as
// location.city, is part of the projection.
func (p Projection) Includes(field string) bool {
	if p.All() {
		return true
	}
	for _, f := range p.Fields {
		if f == field || strings.HasPrefix(f, field+".") {
			return true
		}
	}
	return false
}

// SortKey orders by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// Sort is applied left to right; earlier keys take precedence.
type Sort []SortKey

// DefaultSort returns newest first.
func DefaultSort() Sort {
	return Sort{{Field: CreatedAtField, Desc: true}}
}

// Window is the page slice of a sorted, filtered result.
type Window struct {
	Page       int
	Limit      int
	StartIndex int
	EndIndex   int
}

// NewWindow computes the start and end indexes for page and limit. limit is
// clamped to MaxLimit and page to the last page whose end index fits an int.
func NewWindow(page, limit int) Window {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)
	page = min(page, math.MaxInt/limit)
	return Window{
		Page:       page,
		Limit:      limit,
		StartIndex: (page - 1) * limit,
		EndIndex:   page * limit,
	}
}

// Query is the storage-facing result of translating request parameters.
type Query struct {
	Filter     Filter
	Projection Projection
	Sort       Sort
	Window     Window
}

// Parse translates params into a Query. It never fails.
func Parse(p Params) Query {
	q := Query{
		Filter: parseFilter(p),
		Sort:   DefaultSort(),
		Window: NewWindow(positiveInt(p.Get(ParamPage), DefaultPage), positiveInt(p.Get(ParamLimit), DefaultLimit)),
	}
	if p.Has(ParamSelect) {
		q.Projection = parseSelect(p.Get(ParamSelect))
	}
	if s := parseSort(p.Get(ParamSort)); len(s) > 0 {
		q.Sort = s
	}
	return q
}

// Translate parses params and computes pagination against total.
func Translate(p Params, total int) (Query, Pagination) {
	q := Parse(p)
	return q, Paginate(q.Window, total)
}

func parseSelect(raw string) Projection {
	var fields []string
	seen := make(map[string]bool)
	for _, f := range splitList(raw) {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	return Projection{Fields: fields}
}

func parseSort(raw string) Sort {
	var s Sort
	for _, f := range splitList(raw) {
		desc := strings.HasPrefix(f, "-")
		f = strings.TrimLeft(f, "-+")
		if f == "" {
			continue
		}
		s = append(s, SortKey{Field: f, Desc: desc})
	}
	return s
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
