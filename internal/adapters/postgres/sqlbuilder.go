package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/query"
)

type valueKind int

const (
	kindText valueKind = iota
	kindNumber
	kindBool
	kindTime
	kindTextArray
)

// bootcampRow receives whichever columns a projection selects. Unselected
// columns stay nil.
type bootcampRow struct {
	id               string
	name             *string
	slug             *string
	description      *string
	website          *string
	phone            *string
	email            *string
	address          *string
	careers          []string
	averageRating    *float64
	averageCost      *float64
	photo            *string
	housing          *bool
	jobAssistance    *bool
	jobGuarantee     *bool
	acceptGi         *bool
	createdAt        *time.Time
	lat              *float64
	lon              *float64
	formattedAddress *string
	street           *string
	city             *string
	state            *string
	zipcode          *string
	country          *string
}

// bootcampField maps an API field name to SQL. filter is the column compared in
// WHERE and ORDER BY; selects and targets are empty for filter-only fields.
type bootcampField struct {
	name    string
	filter  string
	kind    valueKind
	selects []string
	targets func(r *bootcampRow) []any
}

var bootcampFields = []bootcampField{
	textField("name", "name", func(r *bootcampRow) []any { return []any{&r.name} }),
	textField("slug", "slug", func(r *bootcampRow) []any { return []any{&r.slug} }),
	textField("description", "description", func(r *bootcampRow) []any { return []any{&r.description} }),
	textField("website", "website", func(r *bootcampRow) []any { return []any{&r.website} }),
	textField("phone", "phone", func(r *bootcampRow) []any { return []any{&r.phone} }),
	textField("email", "email", func(r *bootcampRow) []any { return []any{&r.email} }),
	textField("address", "address", func(r *bootcampRow) []any { return []any{&r.address} }),
	{
		name: "careers", filter: "careers", kind: kindTextArray,
		selects: []string{"careers"},
		targets: func(r *bootcampRow) []any { return []any{&r.careers} },
	},
	{
		name: "averageRating", filter: "average_rating", kind: kindNumber,
		selects: []string{"average_rating"},
		targets: func(r *bootcampRow) []any { return []any{&r.averageRating} },
	},
	{
		name: "averageCost", filter: "average_cost", kind: kindNumber,
		selects: []string{"average_cost"},
		targets: func(r *bootcampRow) []any { return []any{&r.averageCost} },
	},
	textField("photo", "photo", func(r *bootcampRow) []any { return []any{&r.photo} }),
	boolField("housing", "housing", func(r *bootcampRow) []any { return []any{&r.housing} }),
	boolField("jobAssistance", "job_assistance", func(r *bootcampRow) []any { return []any{&r.jobAssistance} }),
	boolField("jobGuarantee", "job_guarantee", func(r *bootcampRow) []any { return []any{&r.jobGuarantee} }),
	boolField("acceptGi", "accept_gi", func(r *bootcampRow) []any { return []any{&r.acceptGi} }),
	{
		name: query.CreatedAtField, filter: "created_at", kind: kindTime,
		selects: []string{"created_at"},
		targets: func(r *bootcampRow) []any { return []any{&r.createdAt} },
	},
	{
		name: "location",
		selects: []string{
			"ST_Y(location::geometry)", "ST_X(location::geometry)",
			"formatted_address", "street", "city", "state", "zipcode", "country",
		},
		targets: func(r *bootcampRow) []any {
			return []any{&r.lat, &r.lon, &r.formattedAddress, &r.street, &r.city, &r.state, &r.zipcode, &r.country}
		},
	},
	{name: "location.city", filter: "city", kind: kindText},
	{name: "location.state", filter: "state", kind: kindText},
	{name: "location.zipcode", filter: "zipcode", kind: kindText},
	{name: "location.country", filter: "country", kind: kindText},
	{name: "id", filter: "id::text", kind: kindText},
}

var bootcampFieldIndex = func() map[string]*bootcampField {
	m := make(map[string]*bootcampField, len(bootcampFields))
	for i := range bootcampFields {
		m[bootcampFields[i].name] = &bootcampFields[i]
	}
	return m
}()

func textField(name, col string, t func(*bootcampRow) []any) bootcampField {
	return bootcampField{name: name, filter: col, kind: kindText, selects: []string{col}, targets: t}
}

func boolField(name, col string, t func(*bootcampRow) []any) bootcampField {
	return bootcampField{name: name, filter: col, kind: kindBool, selects: []string{col}, targets: t}
}

// argList collects positional arguments for a pgx query.
type argList []any

func (a *argList) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

var comparison = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// whereClause renders f as a WHERE clause, or "" for an empty filter.
// Unknown fields and values that do not fit the column type are validation errors.
func whereClause(f query.Filter, args *argList) (string, error) {
	if f.Empty() {
		return "", nil
	}
	conds := make([]string, 0, len(f))
	for _, p := range f {
		fld, ok := bootcampFieldIndex[p.Field]
		if !ok || fld.filter == "" {
			return "", domain.Invalid("Unknown filter field %q", p.Field)
		}
		cond, err := predicateSQL(fld, p, args)
		if err != nil {
			return "", err
		}
		conds = append(conds, cond)
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func predicateSQL(fld *bootcampField, p query.Predicate, args *argList) (string, error) {
	if p.Op == query.OpIn {
		if len(p.Set) == 0 {
			return "FALSE", nil
		}
		if fld.kind == kindTextArray {
			return fmt.Sprintf("%s && %s::text[]", fld.filter, args.add(p.Set)), nil
		}
		vals, err := convertAll(fld, p.Set)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = ANY(%s)", fld.filter, args.add(vals)), nil
	}

	if fld.kind == kindTextArray {
		if p.Op != query.OpEq {
			return "", domain.Invalid("Operator %s is not supported on %s", strings.TrimPrefix(string(p.Op), "$"), fld.name)
		}
		return fmt.Sprintf("%s = ANY(%s)", args.add(p.Value), fld.filter), nil
	}

	v, err := convert(fld, p.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", fld.filter, comparison[p.Op], args.add(v)), nil
}

func convert(fld *bootcampField, raw string) (any, error) {
	switch fld.kind {
	case kindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, domain.Invalid("Invalid number %q for %s", raw, fld.name)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, domain.Invalid("Invalid boolean %q for %s", raw, fld.name)
		}
		return b, nil
	case kindTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, domain.Invalid("Invalid date %q for %s", raw, fld.name)
	default:
		return raw, nil
	}
}

// convertAll returns a typed slice so pgx can encode it as a Postgres array.
func convertAll(fld *bootcampField, raws []string) (any, error) {
	switch fld.kind {
	case kindNumber:
		out := make([]float64, len(raws))
		for i, r := range raws {
			v, err := convert(fld, r)
			if err != nil {
				return nil, err
			}
			out[i] = v.(float64)
		}
		return out, nil
	case kindBool:
		out := make([]bool, len(raws))
		for i, r := range raws {
			v, err := convert(fld, r)
			if err != nil {
				return nil, err
			}
			out[i] = v.(bool)
		}
		return out, nil
	case kindTime:
		out := make([]time.Time, len(raws))
		for i, r := range raws {
			v, err := convert(fld, r)
			if err != nil {
				return nil, err
			}
			out[i] = v.(time.Time)
		}
		return out, nil
	default:
		return raws, nil
	}
}

// selectList returns the SELECT expressions for p and the row targets to scan
// into, in the same order. id is always selected; unknown names are ignored.
func selectList(p query.Projection, row *bootcampRow) (string, []any) {
	cols := []string{"id"}
	targets := []any{&row.id}
	for i := range bootcampFields {
		fld := &bootcampFields[i]
		if len(fld.selects) == 0 || !p.Includes(fld.name) {
			continue
		}
		cols = append(cols, fld.selects...)
		targets = append(targets, fld.targets(row)...)
	}
	return strings.Join(cols, ", "), targets
}

// orderBy renders s, skipping unknown fields. id breaks ties so pages are stable.
func orderBy(s query.Sort) string {
	var keys []string
	for _, k := range s {
		fld, ok := bootcampFieldIndex[k.Field]
		if !ok || fld.filter == "" || fld.kind == kindTextArray {
			continue
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		keys = append(keys, fld.filter+" "+dir)
	}
	if len(keys) == 0 {
		keys = append(keys, "created_at DESC")
	}
	return " ORDER BY " + strings.Join(append(keys, "id"), ", ")
}

// findSQL builds the full listing statement for q.
func findSQL(q query.Query, row *bootcampRow) (string, []any, []any, error) {
	var args argList
	where, err := whereClause(q.Filter, &args)
	if err != nil {
		return "", nil, nil, err
	}
	cols, targets := selectList(q.Projection, row)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM bootcamps")
	sb.WriteString(where)
	sb.WriteString(orderBy(q.Sort))
	sb.WriteString(" LIMIT ")
	sb.WriteString(args.add(q.Window.Limit))
	sb.WriteString(" OFFSET ")
	sb.WriteString(args.add(q.Window.StartIndex))
	return sb.String(), args, targets, nil
}

// countSQL builds the COUNT statement for the same filter the listing uses.
func countSQL(f query.Filter) (string, []any, error) {
	var args argList
	where, err := whereClause(f, &args)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM bootcamps" + where, args, nil
}

func (r *bootcampRow) toDomain() domain.Bootcamp {
	b := domain.Bootcamp{
		ID:            r.id,
		Name:          deref(r.name),
		Slug:          deref(r.slug),
		Description:   deref(r.description),
		Website:       deref(r.website),
		Phone:         deref(r.phone),
		Email:         deref(r.email),
		Address:       deref(r.address),
		Careers:       r.careers,
		AverageRating: r.averageRating,
		AverageCost:   r.averageCost,
		Photo:         deref(r.photo),
		Housing:       deref(r.housing),
		JobAssistance: deref(r.jobAssistance),
		JobGuarantee:  deref(r.jobGuarantee),
		AcceptGi:      deref(r.acceptGi),
	}
	if r.createdAt != nil {
		b.CreatedAt = *r.createdAt
	}
	if r.lat != nil && r.lon != nil {
		b.Location = &domain.Location{
			Type:             "Point",
			Coordinates:      []float64{*r.lon, *r.lat},
			FormattedAddress: deref(r.formattedAddress),
			Street:           deref(r.street),
			City:             deref(r.city),
			State:            deref(r.state),
			Zipcode:          deref(r.zipcode),
			Country:          deref(r.country),
		}
	}
	return b
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
