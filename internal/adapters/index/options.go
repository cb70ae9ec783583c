package index

import "time"

// Option applies a configuration option to the InMemoryIndex.
type Option func(*InMemoryIndex)

// WithLatencyRange sets the simulated search latency range. Pass a zero
// max to disable the artificial delay entirely (useful in tests).
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(i *InMemoryIndex) {
		if maxLatency >= minLatency {
			i.minLatency = minLatency
			i.maxLatency = maxLatency
		}
	}
}

// WithFailure makes every call fail with err, standing in for an
// unreachable upstream index. Pass nil to clear.
func WithFailure(err error) Option {
	return func(i *InMemoryIndex) {
		i.failWith = err
	}
}
