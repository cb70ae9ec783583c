package testqueries

import (
	"fmt"
	"log"
	"sort"
)

// Merge invariant bounds.
const (
	maxSources = 3
)

// verifyResults checks the answers and histories for consistency with
// the service's merge and provenance guarantees.
func verifyResults(config *Config, answers []AskResponse, histories map[string][]AskResponse, engagement map[string]int, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(answers) == 0 {
		return fmt.Errorf("no answers to verify")
	}

	var problems int

	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if a.Quality <= 0 || a.Quality > 1 {
			problems++
			if config.Verbose {
				log.Printf("⚠️  Response %s has quality %.3f outside (0, 1]", a.ResponseID, a.Quality)
			}
		}
		if len(a.Sources) == 0 || len(a.Sources) > maxSources {
			problems++
			if config.Verbose {
				log.Printf("⚠️  Response %s has %d sources", a.ResponseID, len(a.Sources))
			}
		}
		if _, dup := seen[a.ResponseID]; dup {
			problems++
			log.Printf("⚠️  Duplicate response ID %s", a.ResponseID)
		}
		seen[a.ResponseID] = struct{}{}
	}

	for userID, history := range histories {
		if err := verifyHistoryOrder(history); err != nil {
			problems++
			log.Printf("⚠️  History for %s: %v", userID, err)
		}
	}

	displayEngagement(engagement)
	displayQualitySpread(answers, config.Verbose)

	if problems > 0 {
		log.Printf("⚠️  Verification finished with %d problems", problems)
	} else {
		log.Println("✅ Result verification completed")
	}
	return nil
}

// verifyHistoryOrder checks that a history is newest first.
func verifyHistoryOrder(history []AskResponse) error {
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAtMilli > history[i-1].CreatedAtMilli {
			return fmt.Errorf("entry %d is newer than entry %d", i, i-1)
		}
	}
	return nil
}

// displayEngagement shows how often each brain was selected in the
// probed sample.
func displayEngagement(engagement map[string]int) {
	if len(engagement) == 0 {
		return
	}

	type pair struct {
		brain string
		count int
	}
	pairs := make([]pair, 0, len(engagement))
	for brain, count := range engagement {
		pairs = append(pairs, pair{brain, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].brain < pairs[j].brain
	})

	log.Printf("🧠 Brain engagement across probed selections:")
	for _, p := range pairs {
		log.Printf("   %s: %d", p.brain, p.count)
	}
}

// displayQualitySpread shows summary statistics over answer quality.
func displayQualitySpread(answers []AskResponse, verbose bool) {
	if !verbose || len(answers) == 0 {
		return
	}

	minQ, maxQ, sum := answers[0].Quality, answers[0].Quality, 0.0
	for _, a := range answers {
		if a.Quality < minQ {
			minQ = a.Quality
		}
		if a.Quality > maxQ {
			maxQ = a.Quality
		}
		sum += a.Quality
	}

	log.Printf(`📊 Quality statistics:
   Average: %.3f
   Maximum: %.3f
   Minimum: %.3f
`, sum/float64(len(answers)), maxQ, minQ)
}
