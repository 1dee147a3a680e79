package query

import (
	"regexp"
	"strings"
)

// Operator is a comparison operator inside a filter predicate.
type Operator string

const (
	OpEq  Operator = "$eq"
	OpGt  Operator = "$gt"
	OpGte Operator = "$gte"
	OpLt  Operator = "$lt"
	OpLte Operator = "$lte"
	OpIn  Operator = "$in"
)

// operatorToken matches a bracket token that is exactly one operator word.
var operatorToken = regexp.MustCompile(`^\b(gt|gte|lt|lte|in)\b$`)

// bracketSegment finds every [token] segment of a filter key.
var bracketSegment = regexp.MustCompile(`\[([^\[\]]*)\]`)

// Predicate is one condition on a field. Literal equality uses OpEq with Value;
// OpIn carries its members in Set.
type Predicate struct {
	Field string
	Op    Operator
	Value string
	Set   []string
}

// Filter is an ordered conjunction of predicates.
type Filter []Predicate

// Empty reports whether the filter matches every document.
func (f Filter) Empty() bool { return len(f) == 0 }

// Fields returns the distinct field names referenced, in order of first use.
func (f Filter) Fields() []string {
	var out []string
	seen := make(map[string]bool, len(f))
	for _, p := range f {
		if !seen[p.Field] {
			seen[p.Field] = true
			out = append(out, p.Field)
		}
	}
	return out
}

// parseFilter builds a Filter from the non-control parameters.
func parseFilter(p Params) Filter {
	var f Filter
	for _, kv := range p {
		if isControl(kv.Key) || len(kv.Values) == 0 {
			continue
		}
		field, op := splitKey(kv.Key)
		if field == "" {
			continue
		}
		f = append(f, predicatesFor(field, op, kv.Values)...)
	}
	return f
}

// splitKey separates "averageCost[lte]" into ("averageCost", OpLte). Every bracket
// segment is checked; the last recognised operator wins. Tokens that are not a
// whole operator word leave the key as a literal equality on the field.
func splitKey(key string) (string, Operator) {
	idx := strings.IndexByte(key, '[')
	if idx < 0 {
		return key, OpEq
	}
	field := key[:idx]
	op := OpEq
	for _, m := range bracketSegment.FindAllStringSubmatch(key[idx:], -1) {
		if operatorToken.MatchString(m[1]) {
			op = Operator("$" + m[1])
		}
	}
	return field, op
}

func predicatesFor(field string, op Operator, values []string) []Predicate {
	switch op {
	case OpIn:
		var set []string
		for _, v := range values {
			set = append(set, splitList(v)...)
		}
		return []Predicate{{Field: field, Op: OpIn, Set: set}}
	case OpEq:
		if len(values) > 1 {
			return []Predicate{{Field: field, Op: OpIn, Set: append([]string(nil), values...)}}
		}
		return []Predicate{{Field: field, Op: OpEq, Value: values[0]}}
	default:
		out := make([]Predicate, 0, len(values))
		for _, v := range values {
			out = append(out, Predicate{Field: field, Op: op, Value: v})
		}
		return out
	}
}

// splitList splits a comma separated value, trimming blanks and dropping empties.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
