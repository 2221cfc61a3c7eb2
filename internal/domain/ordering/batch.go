// Package ordering checks whether a batch of level elevation adjustments
// would invert the existing bottom-to-top order of the levels.
package ordering

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/platechanges/internal/domain/elevation"
)

// Adjustment is one proposed change to a level's elevation.
// A zero Delta means no change was requested for the level.
type Adjustment struct {
	LevelID string
	Name    string
	Current float64
	Delta   float64
}

// New returns the elevation the level would have after the adjustment.
func (a Adjustment) New() float64 { return a.Current + a.Delta }

// Changed reports whether the adjustment moves the level.
func (a Adjustment) Changed() bool { return a.Delta != 0 }

// Batch is a set of adjustments keyed by level id, applied together.
// The zero value is an empty batch.
type Batch struct {
	items []Adjustment // sorted by Current, then LevelID
}

// NewBatch builds a Batch, rejecting the whole input on the first
// empty or duplicate level id or non-finite number.
func NewBatch(adjs ...Adjustment) (Batch, error) {
	seen := make(map[string]struct{}, len(adjs))
	items := make([]Adjustment, 0, len(adjs))
	for _, a := range adjs {
		if strings.TrimSpace(a.LevelID) == "" {
			return Batch{}, fmt.Errorf("%w: empty level id", ErrInvalidInput)
		}
		if _, dup := seen[a.LevelID]; dup {
			return Batch{}, fmt.Errorf("%w: duplicate level %q", ErrInvalidInput, a.LevelID)
		}
		if !elevation.IsFinite(a.Current) {
			return Batch{}, fmt.Errorf("%w: level %q current elevation is not finite", ErrInvalidInput, a.LevelID)
		}
		if !elevation.IsFinite(a.Delta) || !elevation.IsFinite(a.New()) {
			return Batch{}, fmt.Errorf("%w: level %q delta is not finite", ErrInvalidInput, a.LevelID)
		}
		if a.Name == "" {
			a.Name = a.LevelID
		}
		seen[a.LevelID] = struct{}{}
		items = append(items, a)
	}
	slices.SortFunc(items, func(x, y Adjustment) int {
		if c := cmp.Compare(x.Current, y.Current); c != 0 {
			return c
		}
		return cmp.Compare(x.LevelID, y.LevelID)
	})
	return Batch{items: items}, nil
}

// Len returns the number of levels in the batch.
func (b Batch) Len() int { return len(b.items) }

// Adjustments returns a copy of the batch, lowest current elevation first.
func (b Batch) Adjustments() []Adjustment { return slices.Clone(b.items) }

// Changed counts the adjustments with a non-zero delta.
func (b Batch) Changed() int {
	n := 0
	for _, a := range b.items {
		if a.Changed() {
			n++
		}
	}
	return n
}

// Deltas returns the non-zero deltas keyed by level id.
func (b Batch) Deltas() map[string]float64 {
	out := make(map[string]float64, len(b.items))
	for _, a := range b.items {
		if a.Changed() {
			out[a.LevelID] = a.Delta
		}
	}
	return out
}
