package entity

import (
	"cmp"
	"reflect"
	"slices"
	"strings"
)

// DefaultSort lists newest records first.
const DefaultSort = "-" + FieldCreatedDate

// Query selects records from a collection.
type Query struct {
	// Match is an exact-match conjunction over top-level fields. Empty matches everything.
	Match Record
	// Sort is a field name, prefixed with "-" for descending order. Defaults to DefaultSort.
	Sort string
	// Limit caps the result size. Zero or negative means unbounded.
	Limit int
}

func matches(item, match Record) bool {
	for k, want := range match {
		got, ok := item[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// compareValues orders two decoded JSON values of the same kind. Values of
// different kinds, nulls and composites compare equal.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

func sortRecords(items []Record, sort string) {
	if sort == "" {
		sort = DefaultSort
	}
	field, desc := sort, false
	if strings.HasPrefix(sort, "-") {
		field, desc = sort[1:], true
	}
	slices.SortStableFunc(items, func(a, b Record) int {
		c := compareValues(a[field], b[field])
		if desc {
			return -c
		}
		return c
	})
}

func apply(items []Record, q Query) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if matches(item, q.Match) {
			out = append(out, item)
		}
	}
	sortRecords(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
