// Package levels selects the adjustable levels of a building model and
// collects form input into an ordering batch.
package levels

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/platechanges/internal/domain/model"
)

// DefaultExcludedNames are the levels the plate height form never offers.
var DefaultExcludedNames = []string{"First Floor", "Main Level"} //nolint:gochecknoglobals // read-only defaults

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithExcludedNames replaces the set of level names that are not adjustable.
// Names are matched exactly. An empty list excludes nothing.
func WithExcludedNames(names ...string) Option {
	return func(f *Filter) {
		f.excluded = make(map[string]struct{}, len(names))
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				f.excluded[n] = struct{}{}
			}
		}
	}
}

// Filter decides which levels can be adjusted.
type Filter struct {
	excluded map[string]struct{}
}

// NewFilter creates a Filter excluding DefaultExcludedNames unless overridden.
func NewFilter(opts ...Option) *Filter {
	f := &Filter{}
	WithExcludedNames(DefaultExcludedNames...)(f)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Excluded reports whether the named level is withheld from adjustment.
func (f *Filter) Excluded(name string) bool {
	_, ok := f.excluded[name]
	return ok
}

// Adjustable returns the non-excluded levels, lowest first. Levels at the
// same elevation are ordered by name.
func (f *Filter) Adjustable(all []model.Level) []model.Level {
	out := make([]model.Level, 0, len(all))
	for _, l := range all {
		if !f.Excluded(l.Name) {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Level) int {
		if c := cmp.Compare(a.Elevation, b.Elevation); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
