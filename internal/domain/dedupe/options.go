// Package dedupe tracks which user handles were already scheduled.
package dedupe

// Option applies a configuration option to the handle deduper.
type Option func(*handleDeduper)

// WithCaseFolding makes handles that differ only in letter case count as the
// same user. Codeforces handles are case-insensitive, so this is the default.
func WithCaseFolding(enabled bool) Option {
	return func(d *handleDeduper) {
		d.fold = enabled
	}
}
