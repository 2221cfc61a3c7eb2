package repository

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/okian/platechanges/internal/domain/model"
)

func seededStore(t *testing.T) *MemStore {
	t.Helper()
	s, err := NewMemStore(context.Background(), WithLevels(
		model.Level{ID: "l1", Name: "First Floor", Elevation: 0},
		model.Level{ID: "l2", Name: "Second Floor", Elevation: 10},
		model.Level{ID: "roof", Name: "Roof", Elevation: 19.5},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	if count := store.Count(ctx); count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	l, err := store.Level(ctx, "l2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Name != "Second Floor" || l.Elevation != 10 {
		t.Errorf("unexpected level %+v", l)
	}

	levels, err := store.Levels(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"l1", "l2", "roof"}
	for i, id := range want {
		if levels[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, levels[i].ID)
		}
	}
}

func TestMemStore_LevelNotFound(t *testing.T) {
	store := seededStore(t)

	_, err := store.Level(context.Background(), "basement")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStore_SeedValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewMemStore(ctx, WithLevels(
		model.Level{ID: "a", Name: "A"},
		model.Level{ID: "a", Name: "B"},
	))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}

	_, err = NewMemStore(ctx, WithLevels(model.Level{Name: "No Id"}))
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestMemStore_Apply(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	n, err := store.Apply(ctx, map[string]float64{"l2": 1.5, "roof": 0, "l1": -0.25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 adjusted levels, got %d", n)
	}

	l2, _ := store.Level(ctx, "l2")
	if l2.Elevation != 11.5 {
		t.Errorf("expected 11.5, got %f", l2.Elevation)
	}
	roof, _ := store.Level(ctx, "roof")
	if roof.Elevation != 19.5 {
		t.Errorf("zero delta must not move the level, got %f", roof.Elevation)
	}
	l1, _ := store.Level(ctx, "l1")
	if l1.Elevation != -0.25 {
		t.Errorf("expected -0.25, got %f", l1.Elevation)
	}
}

func TestMemStore_ApplyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()

	cases := map[string]map[string]float64{
		"unknown level":  {"l2": 1, "basement": 1},
		"nan delta":      {"l2": 1, "roof": math.NaN()},
		"infinite delta": {"l2": 1, "roof": math.Inf(1)},
	}
	for name, deltas := range cases {
		t.Run(name, func(t *testing.T) {
			store := seededStore(t)
			if _, err := store.Apply(ctx, deltas); err == nil {
				t.Fatal("expected error")
			}
			l2, _ := store.Level(ctx, "l2")
			if l2.Elevation != 10 {
				t.Errorf("failed apply must not write, l2 = %f", l2.Elevation)
			}
		})
	}
}

func TestMemStore_ApplyCancelled(t *testing.T) {
	store := seededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Apply(ctx, map[string]float64{"l2": 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMemStore_ConcurrentReadsSeeWholeBatches(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := store.Apply(ctx, map[string]float64{"l1": 1, "l2": 1, "roof": 1}); err != nil {
				t.Errorf("apply: %v", err)
				return
			}
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
		levels, _ := store.Levels(ctx)
		// every batch moves all three levels together
		if levels[1].Elevation-levels[0].Elevation != 10 || levels[2].Elevation-levels[1].Elevation != 9.5 {
			t.Fatalf("observed a partial batch: %+v", levels)
		}
	}
}

func TestMemStore_Close(t *testing.T) {
	s, err := NewMemStore(context.Background(), WithMetricsUpdateInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
