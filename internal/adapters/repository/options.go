// Package repository defines the response history store interface and errors.
package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithHistoryLimit sets how many responses are retained per user.
func WithHistoryLimit(limit int) Option {
	return func(s *MemoryStore) {
		if limit > 0 {
			s.perUserLimit = limit
		}
	}
}
