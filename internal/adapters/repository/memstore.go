package repository

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/okian/platechanges/internal/domain/model"
	"github.com/okian/platechanges/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemStore is an in-memory Store. Apply holds the write lock for the whole
// batch, so readers never observe a partially adjusted model.
type MemStore struct {
	mu     sync.RWMutex
	levels map[string]model.Level

	seed                  []model.Level
	metricsUpdateInterval time.Duration
	stopOnce              sync.Once
	stopChan              chan struct{}
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates a store seeded with the given levels and starts a
// background metrics refresher that runs until ctx is done or Close is called.
func NewMemStore(ctx context.Context, opts ...Option) (*MemStore, error) {
	s := &MemStore{
		levels:                make(map[string]model.Level),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, l := range s.seed {
		if l.ID == "" {
			return nil, fmt.Errorf("%w: %q", ErrMissingID, l.Name)
		}
		if _, dup := s.levels[l.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, l.ID)
		}
		s.levels[l.ID] = l
	}
	s.seed = nil

	metrics.UpdateLevelCount(len(s.levels))
	s.startMetricsUpdater(ctx)
	return s, nil
}

// Close stops the background metrics refresher.
func (s *MemStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	return nil
}

// Levels implements Store.
func (s *MemStore) Levels(_ context.Context) ([]model.Level, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(msSince(start)) }()

	s.mu.RLock()
	out := make([]model.Level, 0, len(s.levels))
	for _, l := range s.levels {
		out = append(out, l)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Level) int {
		if c := cmp.Compare(a.Elevation, b.Elevation); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Level implements Store.
func (s *MemStore) Level(_ context.Context, id string) (model.Level, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(msSince(start)) }()

	s.mu.RLock()
	l, ok := s.levels[id]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Level{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return l, nil
}

// Apply implements Store.
func (s *MemStore) Apply(ctx context.Context, deltas map[string]float64) (int, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(msSince(start)) }()

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("apply cancelled: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// validate everything before the first write
	for id, d := range deltas {
		l, ok := s.levels[id]
		if !ok {
			metrics.RecordErrorByComponent("repository", "not_found")
			return 0, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		if math.IsNaN(d) || math.IsInf(d, 0) || math.IsInf(l.Elevation+d, 0) {
			metrics.RecordErrorByComponent("repository", "invalid_delta")
			return 0, fmt.Errorf("%w: level %q", ErrInvalidDelta, id)
		}
	}

	adjusted := 0
	for id, d := range deltas {
		if d == 0 {
			continue
		}
		l := s.levels[id]
		l.Elevation += d
		s.levels[id] = l
		adjusted++
	}
	return adjusted, nil
}

// Count implements Store.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.levels)
}

func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateLevelCount(s.Count(ctx))
			}
		}
	}()
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
