// Package dedupe tracks plate change submission ids so a form submitted
// twice is written back once.
package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of submission ids to remember.
// If maxSize > 0: bounded mode, the oldest id is forgotten first.
// If maxSize <= 0: unbounded mode.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
