// Package query translates HTTP query strings into filter, projection, sort and
// page-window values that repositories execute against storage.
//
// A request such as
//
//	/bootcamps?averageCost[lte]=10000&careers[in]=Business,UI/UX&select=name&sort=-averageCost&page=2
//
// becomes a Filter of two predicates, a one-field Projection, a descending Sort
// and a Window starting at the 26th document. The package never fails: malformed
// input falls back to defaults.
package query

import (
	"net/url"
	"slices"
	"strings"
)

// Control parameters. Every other key is a filter field.
const (
	ParamSelect = "select"
	ParamSort   = "sort"
	ParamPage   = "page"
	ParamLimit  = "limit"
)

// Param is a single query-string key with all its values, in arrival order.
type Param struct {
	Key    string
	Values []string
}

// Params is an ordered set of query parameters.
type Params []Param

// Get returns the first value for key, or "" when absent.
func (p Params) Get(key string) string {
	for _, kv := range p {
		if kv.Key == key && len(kv.Values) > 0 {
			return kv.Values[0]
		}
	}
	return ""
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	for _, kv := range p {
		if kv.Key == key {
			return true
		}
	}
	return false
}

// Add appends value under key, keeping the position of the first occurrence.
func (p Params) Add(key, value string) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Values = append(p[i].Values, value)
			return p
		}
	}
	return append(p, Param{Key: key, Values: []string{value}})
}

// Encode renders p back into a query string in its original order, leaving
// out the keys in omit.
func (p Params) Encode(omit ...string) string {
	var b strings.Builder
	for _, kv := range p {
		if slices.Contains(omit, kv.Key) {
			continue
		}
		for _, v := range kv.Values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(kv.Key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// ParseRawQuery decodes a raw query string preserving key order.
// Pairs whose escapes cannot be decoded are kept verbatim.
func ParseRawQuery(raw string) Params {
	var p Params
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescape(key)
		if key == "" {
			continue
		}
		p = p.Add(key, unescape(value))
	}
	return p
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

func isControl(key string) bool {
	switch key {
	case ParamSelect, ParamSort, ParamPage, ParamLimit:
		return true
	}
	return false
}
