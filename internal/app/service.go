// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/platechanges/internal/adapters/repository"
	"github.com/okian/platechanges/internal/domain/dedupe"
	"github.com/okian/platechanges/internal/domain/levels"
	"github.com/okian/platechanges/internal/domain/model"
	"github.com/okian/platechanges/internal/domain/ordering"
	"github.com/okian/platechanges/internal/domain/types"
	"github.com/okian/platechanges/pkg/logger"
	"github.com/okian/platechanges/pkg/metrics"
)

// Service checks and applies plate height changes against a building model.
type Service struct {
	mu sync.RWMutex
	// applyMu serializes read-validate-write so a batch is validated
	// against the elevations it is applied to.
	applyMu sync.Mutex

	// Core components
	store     repository.Store
	ownsStore bool
	deduper   dedupe.Deduper
	filter    *levels.Filter
	validator *ordering.Validator

	// Configuration
	excludedNames         []string
	dedupeSize            int
	seed                  []model.Level
	metricsUpdateInterval time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore makes the service work on an existing building model. The
// caller keeps ownership of the store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLevels seeds the in-memory model created by Start. Ignored when
// WithStore is used.
func WithLevels(lvls ...model.Level) Option {
	return func(s *Service) {
		s.seed = append(s.seed, lvls...)
	}
}

// WithExcludedLevelNames replaces the names of levels that are never adjusted.
func WithExcludedLevelNames(names ...string) Option {
	return func(s *Service) {
		s.excludedNames = append([]string{}, names...)
	}
}

// WithDedupeSize sets how many submission ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMetricsUpdateInterval sets how often the owned store refreshes its gauges.
func WithMetricsUpdateInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.metricsUpdateInterval = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		excludedNames:         append([]string{}, levels.DefaultExcludedNames...),
		dedupeSize:            10_000,
		metricsUpdateInterval: 5 * time.Second,
		validator:             ordering.NewValidator(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting plate changes service...")

	if s.store == nil {
		store, err := repository.NewMemStore(ctx,
			repository.WithLevels(s.seed...),
			repository.WithMetricsUpdateInterval(s.metricsUpdateInterval),
		)
		if err != nil {
			return fmt.Errorf("seed building model: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.filter = levels.NewFilter(levels.WithExcludedNames(s.excludedNames...))

	s.started = true
	s.logger.Info(ctx, "plate changes service started",
		logger.Int("levels", s.store.Count(ctx)),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Any("excluded", s.excludedNames),
	)

	return nil
}

// Stop shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping plate changes service...")

	if s.ownsStore {
		if closer, ok := s.store.(io.Closer); ok {
			_ = closer.Close()
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "plate changes service stopped")
}

func (s *Service) components() (repository.Store, *levels.Filter, dedupe.Deduper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.store, s.filter, s.deduper, nil
}

// AdjustableLevels returns the levels offered for adjustment, bottom to top.
func (s *Service) AdjustableLevels(ctx context.Context) ([]types.Level, error) {
	store, filter, _, err := s.components()
	if err != nil {
		return nil, err
	}

	all, err := store.Levels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	adjustable := filter.Adjustable(all)
	metrics.UpdateAdjustableLevelCount(len(adjustable))

	out := make([]types.Level, len(adjustable))
	for i, l := range adjustable {
		out[i] = types.NewLevel(l)
	}
	return out, nil
}

// Level returns one level of the building model.
func (s *Service) Level(ctx context.Context, id string) (types.Level, error) {
	store, _, _, err := s.components()
	if err != nil {
		return types.Level{}, err
	}

	l, err := store.Level(ctx, id)
	if err != nil {
		return types.Level{}, err
	}
	return types.NewLevel(l), nil
}

// Check validates a plate change without writing it.
func (s *Service) Check(ctx context.Context, change model.PlateChange) (types.Outcome, error) {
	store, filter, _, err := s.components()
	if err != nil {
		return types.Outcome{}, err
	}

	batch, res, err := s.validate(ctx, store, filter, change)
	if err != nil {
		return types.Outcome{}, err
	}
	out := types.NewOutcome(batch, res)
	out.SubmissionID = change.SubmissionID
	return out, nil
}

// Apply validates a plate change and writes every non-zero adjustment in
// one step. A batch that would invert the level order is held back unless
// change.Force is set. A submission id that was already applied is
// reported as a duplicate and not written again.
func (s *Service) Apply(ctx context.Context, change model.PlateChange) (types.Outcome, error) {
	store, filter, deduper, err := s.components()
	if err != nil {
		return types.Outcome{}, err
	}

	id := change.SubmissionID
	if id == "" {
		id = uuid.NewString()
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if deduper.SeenAndRecord(ctx, id) {
		metrics.RecordDuplicateSubmission()
		s.logger.Debug(ctx, "duplicate submission, skipping", logger.String("submissionID", id))
		return types.Outcome{SubmissionID: id, Duplicate: true}, nil
	}

	applied := false
	defer func() {
		if !applied {
			deduper.Unrecord(ctx, id)
		}
	}()

	batch, res, err := s.validate(ctx, store, filter, change)
	if err != nil {
		return types.Outcome{}, err
	}
	out := types.NewOutcome(batch, res)
	out.SubmissionID = id

	if !res.OK && !change.Force {
		metrics.RecordBatchHeld()
		return out, nil
	}

	start := time.Now()
	n, err := store.Apply(ctx, batch.Deltas())
	if err != nil {
		metrics.RecordErrorByComponent("service", "apply_failed")
		metrics.RecordErrorLatency("service", "apply_failed", msSince(start))
		s.logger.Error(ctx, "failed to apply plate change",
			logger.String("submissionID", id),
			logger.Error(err),
		)
		return types.Outcome{}, fmt.Errorf("apply plate change: %w", err)
	}
	applied = true

	forced := !res.OK
	metrics.RecordBatchApplied(forced, n)
	s.logger.Info(ctx, "plate change applied",
		logger.String("submissionID", id),
		logger.Int("adjusted", n),
		logger.Bool("forced", forced),
	)

	out.Applied = true
	out.Forced = forced
	out.Adjusted = n
	out.Summary = Summary(n)
	return out, nil
}

// validate collects every adjustable level, defaulting to no change, plus
// whatever the submission names, so unchanged levels take part in the
// order check.
func (s *Service) validate(
	ctx context.Context,
	store repository.Store,
	filter *levels.Filter,
	change model.PlateChange,
) (ordering.Batch, ordering.Result, error) {
	start := time.Now()

	all, err := store.Levels(ctx)
	if err != nil {
		return ordering.Batch{}, ordering.Result{}, fmt.Errorf("list levels: %w", err)
	}
	deltas := make(map[string]string, len(all)+len(change.Deltas))
	for _, l := range filter.Adjustable(all) {
		deltas[l.ID] = ""
	}
	for id, text := range change.Deltas {
		deltas[id] = text
	}

	batch, err := filter.Collect(ctx, store, deltas)
	if err != nil {
		if errors.Is(err, ordering.ErrInvalidInput) {
			metrics.RecordInvalidInput()
		}
		return ordering.Batch{}, ordering.Result{}, err
	}

	res := s.validator.Check(batch)
	metrics.RecordValidation(res.OK, len(res.Violations), msSince(start))
	if !res.OK {
		s.logger.Warn(ctx, "plate change would invert level order",
			logger.Int("violations", len(res.Violations)),
			logger.String("report", res.Report()),
		)
	}
	return batch, res, nil
}

// Summary is the message shown after a batch is written back.
func Summary(adjusted int) string {
	if adjusted == 1 {
		return "1 level was adjusted."
	}
	return fmt.Sprintf("%d levels were adjusted.", adjusted)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"dedupeSize": s.dedupeSize,
		"excluded":   s.excludedNames,
	}

	if s.started {
		ctx := context.Background()
		stats["levelCount"] = s.store.Count(ctx)
		stats["submissionsRemembered"] = s.deduper.Size()
		if all, err := s.store.Levels(ctx); err == nil {
			adjustable := len(s.filter.Adjustable(all))
			stats["adjustableCount"] = adjustable
			metrics.UpdateAdjustableLevelCount(adjustable)
		}
	}

	return stats
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
