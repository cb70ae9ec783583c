// Package brains provides the Brain contract and a canned in-memory set.
package brains

import "time"

// Option applies a configuration option to a StaticBrain.
type Option func(*StaticBrain)

// WithThinkTime sets the simulated latency before answering. Zero
// disables the delay.
func WithThinkTime(d time.Duration) Option {
	return func(b *StaticBrain) {
		if d >= 0 {
			b.thinkTime = d
		}
	}
}

// WithFailure makes the brain fail every invocation with err. Useful
// for exercising partial-result collection.
func WithFailure(err error) Option {
	return func(b *StaticBrain) {
		b.failWith = err
	}
}
