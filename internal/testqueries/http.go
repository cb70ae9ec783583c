package testqueries

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitQueries posts all queries to the ask endpoint with a bounded
// number of requests in flight.
func submitQueries(ctx context.Context, config *Config, queries []Query, stats *Stats) ([]AskResponse, error) {
	log.Printf("📤 Submitting %d queries with %d workers...", len(queries), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/ask"

	responses := make([]AskResponse, len(queries))
	var (
		successful int64
		failed     int64
		submitted  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	start := time.Now()
	for i := range queries {
		i := i
		g.Go(func() error {
			resp, err := submitSingleQuery(gctx, client, url, config.TopN, queries[i])
			atomic.AddInt64(&submitted, 1)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				if config.Verbose {
					log.Printf("⚠️  Query %d failed: %v", i, err)
				}
				return nil // keep going, failures are counted
			}

			responses[i] = resp
			atomic.AddInt64(&successful, 1)

			total := atomic.LoadInt64(&submitted)
			if !config.Verbose && total%500 == 0 {
				fmt.Printf("\r📤 Submitted: %d/%d (success: %d, failed: %d)",
					total, len(queries), atomic.LoadInt64(&successful), atomic.LoadInt64(&failed))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("query submission aborted: %w", err)
	}

	if !config.Verbose {
		fmt.Println()
	}

	stats.QueriesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.QueriesSuccessful = int(atomic.LoadInt64(&successful))
	stats.QueriesFailed = int(atomic.LoadInt64(&failed))

	elapsed := time.Since(start)
	log.Printf(`✅ Query submission completed in %s:
   Successful: %d
   Failed: %d
`, elapsed.Round(time.Millisecond), stats.QueriesSuccessful, stats.QueriesFailed)

	// Drop failed slots so verification only sees real responses.
	answered := make([]AskResponse, 0, len(responses))
	for _, r := range responses {
		if r.ResponseID != "" {
			answered = append(answered, r)
		}
	}
	return answered, nil
}

// submitSingleQuery posts one query and parses the unified response.
func submitSingleQuery(ctx context.Context, client *HTTPClient, url string, topN int, q Query) (AskResponse, error) {
	body := AskRequest{
		Query:           q.Text,
		UserID:          q.UserID,
		ComplexityLevel: q.Complexity,
		TopN:            topN,
	}

	resp, err := client.Post(ctx, url, body)
	if err != nil {
		return AskResponse{}, fmt.Errorf("request failed: %w", err)
	}

	payload, err := readResponseBody(resp)
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return AskResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(payload))
	}

	var answer AskResponse
	if err := json.Unmarshal(payload, &answer); err != nil {
		return AskResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return answer, nil
}
