package levels

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/okian/platechanges/internal/domain/elevation"
	"github.com/okian/platechanges/internal/domain/model"
	"github.com/okian/platechanges/internal/domain/ordering"
)

// Accessor looks up a level's current state in the building model.
type Accessor interface {
	Level(ctx context.Context, id string) (model.Level, error)
}

// ParseDelta reads the text of one adjustment box. Blank or unreadable
// text means no change; NaN and infinities are rejected.
func ParseDelta(text string) (float64, error) {
	v, err := elevation.Parse(text)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, elevation.ErrNotFinite):
		return 0, fmt.Errorf("%w: %w", ordering.ErrInvalidInput, err)
	default:
		return 0, nil
	}
}

// Collect turns form input (level id -> typed text) into a batch, reading
// each current elevation through acc. Unknown ids fail with the
// accessor's error; excluded levels fail with ordering.ErrInvalidInput.
func (f *Filter) Collect(ctx context.Context, acc Accessor, deltas map[string]string) (ordering.Batch, error) {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	adjs := make([]ordering.Adjustment, 0, len(ids))
	for _, id := range ids {
		delta, err := ParseDelta(deltas[id])
		if err != nil {
			return ordering.Batch{}, fmt.Errorf("level %q: %w", id, err)
		}
		lvl, err := acc.Level(ctx, id)
		if err != nil {
			return ordering.Batch{}, fmt.Errorf("level %q: %w", id, err)
		}
		if f.Excluded(lvl.Name) {
			return ordering.Batch{}, fmt.Errorf("%w: level %q is not adjustable", ordering.ErrInvalidInput, lvl.Name)
		}
		adjs = append(adjs, ordering.Adjustment{
			LevelID: lvl.ID,
			Name:    lvl.Name,
			Current: lvl.Elevation,
			Delta:   delta,
		})
	}
	return ordering.NewBatch(adjs...)
}
