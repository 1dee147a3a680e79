package query_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/devcamper/internal/core/query"
)

func TestParseRawQuery_PreservesOrder(t *testing.T) {
	p := query.ParseRawQuery("sort=name&careers%5Bin%5D=Business&page=2&careers%5Bin%5D=UI%2FUX&&=x")

	require.Len(t, p, 3)
	assert.Equal(t, "sort", p[0].Key)
	assert.Equal(t, "careers[in]", p[1].Key)
	assert.Equal(t, []string{"Business", "UI/UX"}, p[1].Values)
	assert.Equal(t, "page", p[2].Key)
}

func TestParseRawQuery_BadEscapeKeptVerbatim(t *testing.T) {
	p := query.ParseRawQuery("name=100%zz")
	assert.Equal(t, "100%zz", p.Get("name"))
}

func TestParams_EncodeOmitsKeys(t *testing.T) {
	p := query.ParseRawQuery("careers%5Bin%5D=UI%2FUX&page=2&housing=true&limit=5")
	assert.Equal(t, "careers%5Bin%5D=UI%2FUX&housing=true", p.Encode(query.ParamPage, query.ParamLimit))
	assert.Equal(t, "", query.Params{}.Encode())
}

func TestParse_DefaultWindow(t *testing.T) {
	q := query.Parse(query.ParseRawQuery("housing=true"))

	assert.Equal(t, query.Window{Page: 1, Limit: 25, StartIndex: 0, EndIndex: 25}, q.Window)
}

func TestParse_InvalidPageAndLimitFallBack(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		page  int
		limit int
	}{
		{"non numeric", "page=abc&limit=xyz", 1, 25},
		{"zero", "page=0&limit=0", 1, 25},
		{"negative", "page=-3&limit=-1", 1, 25},
		{"valid", "page=3&limit=5", 3, 5},
		{"empty", "page=&limit=", 1, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := query.Parse(query.ParseRawQuery(tt.raw))
			assert.Equal(t, tt.page, q.Window.Page)
			assert.Equal(t, tt.limit, q.Window.Limit)
			assert.Equal(t, (tt.page-1)*tt.limit, q.Window.StartIndex)
			assert.Equal(t, tt.page*tt.limit, q.Window.EndIndex)
		})
	}
}

func TestParse_OperatorTokens(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected query.Filter
	}{
		{
			name:     "plain literal",
			raw:      "age=18",
			expected: query.Filter{{Field: "age", Op: query.OpEq, Value: "18"}},
		},
		{
			name:     "gte clause",
			raw:      "age[gte]=18",
			expected: query.Filter{{Field: "age", Op: query.OpGte, Value: "18"}},
		},
		{
			name:     "gt is not confused with gte",
			raw:      "age[gt]=18",
			expected: query.Filter{{Field: "age", Op: query.OpGt, Value: "18"}},
		},
		{
			name:     "value containing operator words is untouched",
			raw:      "name=login%20gte%20in",
			expected: query.Filter{{Field: "name", Op: query.OpEq, Value: "login gte in"}},
		},
		{
			name:     "operator as substring of token is literal",
			raw:      "age[gtex]=3",
			expected: query.Filter{{Field: "age", Op: query.OpEq, Value: "3"}},
		},
		{
			name:     "in splits on commas",
			raw:      "careers[in]=Business,UI/UX",
			expected: query.Filter{{Field: "careers", Op: query.OpIn, Set: []string{"Business", "UI/UX"}}},
		},
		{
			name: "range on one field",
			raw:  "averageCost[gte]=1000&averageCost[lte]=10000",
			expected: query.Filter{
				{Field: "averageCost", Op: query.OpGte, Value: "1000"},
				{Field: "averageCost", Op: query.OpLte, Value: "10000"},
			},
		},
		{
			name:     "repeated literal becomes set",
			raw:      "minimumSkill=beginner&minimumSkill=advanced",
			expected: query.Filter{{Field: "minimumSkill", Op: query.OpIn, Set: []string{"beginner", "advanced"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := query.Parse(query.ParseRawQuery(tt.raw))
			assert.Equal(t, tt.expected, q.Filter)
		})
	}
}

func TestParse_LimitIsClamped(t *testing.T) {
	q := query.Parse(query.ParseRawQuery("limit=1000000000000"))

	assert.Equal(t, query.MaxLimit, q.Window.Limit)
	assert.Equal(t, query.MaxLimit, q.Window.EndIndex)
}

func TestTranslate_HugePageAndLimitDoNotOverflow(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"max limit", "page=2&limit=" + strconv.Itoa(math.MaxInt)},
		{"max page", "page=" + strconv.Itoa(math.MaxInt) + "&limit=50"},
		{"both", "page=" + strconv.Itoa(math.MaxInt) + "&limit=" + strconv.Itoa(math.MaxInt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, pg := query.Translate(query.ParseRawQuery(tt.raw), 5)
			w := q.Window

			assert.LessOrEqual(t, w.Limit, query.MaxLimit)
			assert.Equal(t, (w.Page-1)*w.Limit, w.StartIndex)
			assert.Equal(t, w.Page*w.Limit, w.EndIndex)
			assert.Positive(t, w.EndIndex)
			assert.Nil(t, pg.Next)
		})
	}
}

func TestParse_ControlParamsAreNotFilters(t *testing.T) {
	q := query.Parse(query.ParseRawQuery("select=name&sort=name&page=1&limit=2"))
	assert.True(t, q.Filter.Empty())
}

func TestParse_Select(t *testing.T) {
	q := query.Parse(query.ParseRawQuery("select=name,description"))

	assert.Equal(t, []string{"name", "description"}, q.Projection.Fields)
	assert.False(t, q.Projection.All())
	assert.True(t, q.Projection.Includes("name"))
	assert.False(t, q.Projection.Includes("website"))
}

func TestProjection_IncludesParentOfDottedField(t *testing.T) {
	q := query.Parse(query.ParseRawQuery("select=name,location.city"))

	assert.True(t, q.Projection.Includes("location"))
	assert.True(t, q.Projection.Includes("location.city"))
	assert.False(t, q.Projection.Includes("loc"))
	assert.False(t, q.Projection.Includes("location.state"))
}

func TestParse_SelectDeduplicates(t *testing.T) {
	q := query.Parse(query.ParseRawQuery("select=name,%20name,,description"))
	assert.Equal(t, []string{"name", "description"}, q.Projection.Fields)
}

func TestParse_NoSelectMeansAllFields(t *testing.T) {
	q := query.Parse(nil)
	assert.True(t, q.Projection.All())
}

func TestParse_Sort(t *testing.T) {
	q := query.Parse(query.ParseRawQuery("sort=name,-createdAt"))

	assert.Equal(t, query.Sort{
		{Field: "name", Desc: false},
		{Field: "createdAt", Desc: true},
	}, q.Sort)
}

func TestParse_DefaultSort(t *testing.T) {
	q := query.Parse(query.ParseRawQuery("sort="))
	assert.Equal(t, query.Sort{{Field: "createdAt", Desc: true}}, q.Sort)
}

func TestPaginate_Neighbours(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int
		next     *query.PageRef
		previous *query.PageRef
	}{
		{"single page", 1, 25, 5, nil, nil},
		{"exact fit", 1, 25, 25, nil, nil},
		{"more after first", 1, 10, 11, &query.PageRef{Page: 2, Limit: 10}, nil},
		{"middle", 2, 10, 25, &query.PageRef{Page: 3, Limit: 10}, &query.PageRef{Page: 1, Limit: 10}},
		{"last", 3, 10, 25, nil, &query.PageRef{Page: 2, Limit: 10}},
		{"past the end", 9, 10, 25, nil, &query.PageRef{Page: 8, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := query.Paginate(query.NewWindow(tt.page, tt.limit), tt.total)
			assert.Equal(t, tt.next, p.Next)
			assert.Equal(t, tt.previous, p.Previous)
		})
	}
}

func TestTranslate_BeginnerSecondPage(t *testing.T) {
	q, pg := query.Translate(query.Params{
		{Key: "difficulty", Values: []string{"beginner"}},
		{Key: "page", Values: []string{"2"}},
		{Key: "limit", Values: []string{"10"}},
	}, 25)

	assert.Equal(t, query.Filter{{Field: "difficulty", Op: query.OpEq, Value: "beginner"}}, q.Filter)
	assert.Equal(t, query.Window{Page: 2, Limit: 10, StartIndex: 10, EndIndex: 20}, q.Window)
	assert.Equal(t, &query.PageRef{Page: 3, Limit: 10}, pg.Next)
	assert.Equal(t, &query.PageRef{Page: 1, Limit: 10}, pg.Previous)
}

func TestTranslate_Empty(t *testing.T) {
	q, pg := query.Translate(nil, 5)

	assert.True(t, q.Filter.Empty())
	assert.Equal(t, query.DefaultSort(), q.Sort)
	assert.Equal(t, query.Window{Page: 1, Limit: 25, StartIndex: 0, EndIndex: 25}, q.Window)
	assert.Nil(t, pg.Next)
	assert.Nil(t, pg.Previous)
}
