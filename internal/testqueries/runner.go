package testqueries

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/quorum/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete query load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting quorum query test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("queries", config.NumQueries),
		logger.Int("users", config.Users),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate queries
	queries, err := generateQueries(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("query generation failed: %w", err)
	}

	// Step 3: Submit queries concurrently
	answers, err := submitQueries(ctx, config, queries, stats)
	if err != nil {
		return fmt.Errorf("query submission failed: %w", err)
	}

	// Step 4: Let history writes settle
	logger.Get().Info(ctx, "waiting for histories to settle")
	time.Sleep(SettleDelay)

	// Step 5: Probe the selection endpoint on a sample
	engagement, err := probeSelections(ctx, config, queries, stats)
	if err != nil {
		return fmt.Errorf("selection probing failed: %w", err)
	}

	// Step 6: Retrieve per-user histories
	histories, err := retrieveHistories(ctx, config, queries, stats)
	if err != nil {
		return fmt.Errorf("history retrieval failed: %w", err)
	}

	// Step 7: Verify results
	if err := verifyResults(config, answers, histories, engagement, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save queries to file
	if err := saveQueriesToFile(ctx, config, queries); err != nil {
		logger.Get().Warn(ctx, "failed to save queries to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveQueriesToFile saves the generated queries to a JSON file.
func saveQueriesToFile(ctx context.Context, config *Config, queries []Query) error {
	if len(queries) == 0 {
		return fmt.Errorf("no queries to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_queries_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	payload, err := json.MarshalIndent(queries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queries: %w", err)
	}

	if err := os.WriteFile(filename, payload, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "queries saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, queriesPerSecond float64

	if stats.QueriesSubmitted > 0 {
		successRate = float64(stats.QueriesSuccessful) / float64(stats.QueriesSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		queriesPerSecond = float64(stats.QueriesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("queriesGenerated", stats.QueriesGenerated),
		logger.Int("queriesSubmitted", stats.QueriesSubmitted),
		logger.Int("queriesSuccessful", stats.QueriesSuccessful),
		logger.Int("queriesFailed", stats.QueriesFailed),
		logger.Int("selectionsProbed", stats.SelectionsProbed),
		logger.Int("historiesRetrieved", stats.HistoriesRetrieved),
		logger.Int("historyResponses", stats.HistoryResponses),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("queriesPerSecond", queriesPerSecond))
}
