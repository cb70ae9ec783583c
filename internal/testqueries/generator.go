package testqueries

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/quorum/pkg/logger"
)

// Complexity distribution bounds.
const (
	complexityLevels = 11
	plainQueryShare  = 3
)

// Query templates exercising different parts of the brain catalog. The
// verbs and subjects are chosen so the keyword index has real matches
// to score against.
var queryVerbs = []string{
	"plan",
	"execute",
	"verify",
	"summarize",
	"translate",
	"query",
	"narrate",
}

var querySubjects = []string{
	"a rollout across three regions",
	"the quarterly sales figures",
	"the user onboarding checklist",
	"this contract clause into plain language",
	"the orders table for refunds",
	"a status update for stakeholders",
	"the incident timeline",
	"a migration away from the legacy system",
	"resource allocation for the next sprint",
	"the correctness of the proposed fix",
}

// randomIndex returns a uniform random index below n using crypto/rand.
func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateQueries creates the requested number of queries spread across
// a fixed pool of user IDs so per-user histories accumulate.
func generateQueries(ctx context.Context, config *Config, stats *Stats) ([]Query, error) {
	logger.Get().Info(ctx, "generating queries",
		logger.Int("numQueries", config.NumQueries),
		logger.Int("users", config.Users))

	userIDs := make([]string, config.Users)
	for i := range userIDs {
		userIDs[i] = "load-" + uuid.New().String()
	}

	queries := make([]Query, config.NumQueries)
	for i := range queries {
		queries[i] = Query{
			Text:       generateSingleQuery(),
			UserID:     userIDs[randomIndex(len(userIDs))],
			Complexity: generateComplexity(),
		}
	}

	stats.QueriesGenerated = len(queries)
	logger.Get().Info(ctx, "generated queries successfully", logger.Int("count", len(queries)))

	return queries, nil
}

// generateSingleQuery builds a query from a verb and subject pair.
func generateSingleQuery() string {
	verb := queryVerbs[randomIndex(len(queryVerbs))]
	subject := querySubjects[randomIndex(len(querySubjects))]

	var b strings.Builder
	b.WriteString("Please ")
	b.WriteString(verb)
	b.WriteString(" ")
	b.WriteString(subject)
	b.WriteString(".")
	return b.String()
}

// generateComplexity picks a complexity level. Most queries carry an
// explicit rating, a share are left at zero so the default selection
// path is exercised too.
func generateComplexity() int {
	if randomIndex(complexityLevels) < plainQueryShare {
		return 0
	}
	return 1 + randomIndex(complexityLevels-1)
}
