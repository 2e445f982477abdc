// Package query implements the filter/sort engine behind the dashboard list
// views. Filtering and sorting are pure: they take a snapshot of a collection
// and produce a new ordering without mutating the input elements.
package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction orders a sort ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// All bypasses the category or status predicate.
const All = "all"

// Spec describes one list query. Zero-value Search matches everything;
// Category and Status equal to All (or empty) are bypassed; an unknown
// SortField leaves the filtered order untouched.
type Spec struct {
	Search        string    `form:"search" json:"search"`
	Category      string    `form:"category" json:"category"`
	Status        string    `form:"status" json:"status"`
	SortField     string    `form:"sort_field" json:"sort_field"`
	SortDirection Direction `form:"sort_direction" json:"sort_direction"`
}

// SortKey extracts the sortable value for one field. Exactly one extractor
// is set: String keys compare with locale collation, Time keys numerically.
type SortKey[T any] struct {
	String func(T) string
	Time   func(T) time.Time
}

// Fields adapts an entity type to the engine. Text returns the fields the
// search term is matched against; a hit in any one of them keeps the entity.
type Fields[T any] struct {
	Text     func(T) []string
	Category func(T) string
	Status   func(T) string
	Sort     map[string]SortKey[T]
}

// Filter returns the elements of items satisfying every predicate in spec,
// in their original relative order. The result is always a subset of items.
func Filter[T any](items []T, spec Spec, fields Fields[T]) []T {
	search := strings.ToLower(spec.Search)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if search != "" && !matchesText(fields.Text(item), search) {
			continue
		}
		if spec.Category != "" && spec.Category != All && fields.Category(item) != spec.Category {
			continue
		}
		if spec.Status != "" && spec.Status != All &&
			!strings.EqualFold(fields.Status(item), spec.Status) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesText(values []string, search string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

// Sort orders items in place by the spec's sort field. The sort is stable:
// equal keys keep their filtered relative order. An unknown or empty sort
// field is a no-op.
func Sort[T any](items []T, spec Spec, fields Fields[T]) {
	key, ok := fields.Sort[spec.SortField]
	if !ok {
		return
	}

	var compare func(a, b T) int
	switch {
	case key.String != nil:
		coll := collate.New(language.English, collate.Loose)
		compare = func(a, b T) int {
			return coll.CompareString(key.String(a), key.String(b))
		}
	case key.Time != nil:
		compare = func(a, b T) int {
			ta, tb := key.Time(a), key.Time(b)
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	default:
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j])
		if spec.SortDirection == Desc {
			c = -c
		}
		return c < 0
	})
}

// Apply filters and then sorts, returning a new slice. Sorting never changes
// which elements are present, only their sequence.
func Apply[T any](items []T, spec Spec, fields Fields[T]) []T {
	out := Filter(items, spec, fields)
	Sort(out, spec, fields)
	return out
}

// SortState models the click-to-sort contract of the list headers: clicking
// the active field flips direction, clicking a new field selects it
// ascending.
type SortState struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Toggle updates the state for a click on field.
func (s *SortState) Toggle(field string) {
	if s.Field == field {
		if s.Direction == Asc {
			s.Direction = Desc
		} else {
			s.Direction = Asc
		}
		return
	}
	s.Field = field
	s.Direction = Asc
}

// Spec folds the sort state into a query spec.
func (s SortState) Spec(spec Spec) Spec {
	spec.SortField = s.Field
	spec.SortDirection = s.Direction
	return spec
}
