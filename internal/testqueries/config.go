package testqueries

import "time"

// Config holds configuration for the query load test
type Config struct {
	BaseURL    string        // Base URL of the service
	NumQueries int           // Number of queries to generate
	Users      int           // Number of distinct user IDs to spread queries across
	TopN       int           // Cap on contributing brains per query (0 = full selection)
	Workers    int           // Number of concurrent requests in flight
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated queries
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// AskRequest is the body posted to the ask endpoint
type AskRequest struct {
	Query           string `json:"query"`
	UserID          string `json:"user_id,omitempty"`
	ComplexityLevel int    `json:"complexity_level,omitempty"`
	TopN            int    `json:"top_n,omitempty"`
}

// AskResponse mirrors the unified response returned by the service
type AskResponse struct {
	Content        string   `json:"content"`
	Quality        float64  `json:"quality"`
	Sources        []string `json:"sources"`
	ResponseID     string   `json:"response_id"`
	UserID         string   `json:"user_id"`
	CreatedAtMilli int64    `json:"created_at_ms"`
}

// Selection is the brain list returned by the selection endpoint
type Selection struct {
	Brains []string `json:"brains"`
}

// Query pairs a generated query with the user submitting it
type Query struct {
	Text       string `json:"query"`
	UserID     string `json:"user_id"`
	Complexity int    `json:"complexity_level"`
}

// Stats holds test statistics
type Stats struct {
	QueriesGenerated   int
	QueriesSubmitted   int
	QueriesSuccessful  int
	QueriesFailed      int
	SelectionsProbed   int
	HistoriesRetrieved int
	HistoryResponses   int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
