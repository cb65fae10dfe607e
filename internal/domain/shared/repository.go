package shared

import "time"

// Filter represents query filter options.
// A zero PageSize means no pagination: every matching row is returned.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter ordered newest first without pagination
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// WithFilter returns a copy of the filter with key set to value
func (f Filter) WithFilter(key string, value interface{}) Filter {
	filters := make(map[string]interface{}, len(f.Filters)+1)
	for k, v := range f.Filters {
		filters[k] = v
	}
	filters[key] = value
	f.Filters = filters
	return f
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.PageSize <= 0 || f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// DateRange is an inclusive-exclusive time window [From, To).
// Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls within the range
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}
