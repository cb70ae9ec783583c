package testqueries

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// probeSelections asks the selection endpoint for a sample of the
// generated queries and records how many brains each would engage.
func probeSelections(ctx context.Context, config *Config, queries []Query, stats *Stats) (map[string]int, error) {
	sample := len(queries)
	if sample > SelectionSampleSize {
		sample = SelectionSampleSize
	}
	log.Printf("🧭 Probing selection for %d queries...", sample)

	client := newHTTPClient(config.Timeout)

	var mu sync.Mutex
	engagement := make(map[string]int)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for i := 0; i < sample; i++ {
		q := queries[i]
		g.Go(func() error {
			sel, err := probeSingleSelection(gctx, client, config.BaseURL, q, config.TopN)
			if err != nil {
				if config.Verbose {
					log.Printf("⚠️  Selection probe failed for %q: %v", q.Text, err)
				}
				return nil
			}
			mu.Lock()
			for _, brain := range sel.Brains {
				engagement[brain]++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("selection probing aborted: %w", err)
	}

	stats.SelectionsProbed = sample
	log.Printf("✅ Probed %d selections across %d brains", sample, len(engagement))
	return engagement, nil
}

// probeSingleSelection fetches the brain selection for one query.
func probeSingleSelection(ctx context.Context, client *HTTPClient, baseURL string, q Query, topN int) (Selection, error) {
	params := url.Values{}
	params.Set("query", q.Text)
	if q.Complexity > 0 {
		params.Set("complexity", strconv.Itoa(q.Complexity))
	}
	if topN > 0 {
		params.Set("top_n", strconv.Itoa(topN))
	}

	resp, err := client.Get(ctx, baseURL+"/selection?"+params.Encode())
	if err != nil {
		return Selection{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return Selection{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var sel Selection
	if err := json.Unmarshal(body, &sel); err != nil {
		return Selection{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return sel, nil
}

// retrieveHistories fetches the stored response history for every user
// that submitted at least one query.
func retrieveHistories(ctx context.Context, config *Config, queries []Query, stats *Stats) (map[string][]AskResponse, error) {
	users := make(map[string]struct{})
	for _, q := range queries {
		users[q.UserID] = struct{}{}
	}
	log.Printf("📚 Retrieving histories for %d users with %d workers...", len(users), config.Workers)

	client := newHTTPClient(config.Timeout)

	var mu sync.Mutex
	histories := make(map[string][]AskResponse)
	var failed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for userID := range users {
		userID := userID
		g.Go(func() error {
			history, err := retrieveSingleHistory(gctx, client, config.BaseURL, userID, config.NumQueries)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if config.Verbose {
					log.Printf("⚠️  Failed to get history for %s: %v", userID, err)
				}
				return nil
			}
			histories[userID] = history
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("history retrieval aborted: %w", err)
	}

	total := 0
	for _, h := range histories {
		total += len(h)
	}
	stats.HistoriesRetrieved = len(histories)
	stats.HistoryResponses = total

	log.Printf(`✅ History retrieval completed:
   Users: %d
   Responses: %d
   Failed: %d
`, len(histories), total, failed)

	return histories, nil
}

// retrieveSingleHistory fetches one user's stored responses.
func retrieveSingleHistory(ctx context.Context, client *HTTPClient, baseURL, userID string, limit int) ([]AskResponse, error) {
	target := fmt.Sprintf("%s/responses/%s?limit=%d", baseURL, url.PathEscape(userID), limit)

	resp, err := client.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var history []AskResponse
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return history, nil
}
