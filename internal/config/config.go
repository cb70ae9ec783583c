// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of brain execution workers.
	WorkerCount int `koanf:"worker_count"`

	// TopK sets how many index matches augment the core set.
	TopK int `koanf:"top_k"`

	// IndexTimeoutMS bounds each brain index lookup.
	IndexTimeoutMS int `koanf:"index_timeout_ms"`

	// BrainTimeoutMS bounds each brain invocation.
	BrainTimeoutMS int `koanf:"brain_timeout_ms"`

	// SimilarityThreshold is the Jaccard similarity above which two
	// outputs count as duplicates. Must stay inside (0,1).
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// HistoryLimit caps how many responses are retained per user.
	HistoryLimit int `koanf:"history_limit"`

	// CoreBrains answer every query regardless of index matches.
	CoreBrains []string `koanf:"core_brains"`

	// ExecutionOrder positions each brain in the pipeline; lower runs earlier.
	ExecutionOrder map[string]int `koanf:"execution_order"`

	// Complexity rates each brain's preferred task complexity on 0-10.
	Complexity map[string]float64 `koanf:"complexity"`

	// LatencyMS is each brain's average historical latency in milliseconds.
	LatencyMS map[string]float64 `koanf:"latency_ms"`

	// Descriptions seed the in-memory brain index.
	Descriptions map[string]string `koanf:"descriptions"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           4096,
		WorkerCount:         runtime.NumCPU() * 4,
		TopK:                4,
		IndexTimeoutMS:      2000,
		BrainTimeoutMS:      5000,
		SimilarityThreshold: 0.6,
		HistoryLimit:        100,
		CoreBrains:          []string{"planner", "executor", "judge", "voice"},
		ExecutionOrder: map[string]int{
			"planner":  10,
			"executor": 20,
			"sql":      40,
			"regex":    50,
			"docs":     60,
			"judge":    90,
			"voice":    100,
		},
		Complexity: map[string]float64{
			"planner":  7,
			"executor": 6,
			"judge":    5,
			"voice":    4,
			"sql":      8,
			"regex":    4,
			"docs":     3,
		},
		LatencyMS: map[string]float64{
			"planner":  120,
			"executor": 100,
			"judge":    80,
			"voice":    60,
			"sql":      50,
			"regex":    400,
			"docs":     90,
		},
	}
}
