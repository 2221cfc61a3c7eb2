package repository

import (
	"time"

	"github.com/okian/platechanges/internal/domain/model"
)

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithLevels seeds the store. Levels are copied.
func WithLevels(levels ...model.Level) Option {
	return func(s *MemStore) {
		s.seed = append(s.seed, levels...)
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
