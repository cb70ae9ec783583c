// Package similarity provides the lexical heuristics used to suppress
// near-duplicate answers and to flag contradictory ones.
//
// Both checks are deliberately cheap: word-set Jaccard overlap for
// duplicates and substring pairs for contradictions. They are not
// semantic entailment; false positives and negatives are acceptable.
package similarity

import "strings"

// DefaultThreshold is the Jaccard similarity above which two texts are
// treated as near-duplicates.
const DefaultThreshold = 0.6

// contradictionPairs lists substring pairs that mark two texts as
// directly contradictory. Checked case-insensitively in both directions.
var contradictionPairs = [][2]string{ //nolint:gochecknoglobals // fixed reference data
	{"yes", "no"},
	{"always", "never"},
	{"must", "must not"},
}

// Jaccard computes word-set Jaccard similarity between two texts.
// Texts are tokenized on whitespace and lower-cased; repeated words
// count once. Two empty texts have similarity 0.
func Jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Similar reports whether two texts overlap enough to be treated as
// duplicates under DefaultThreshold.
func Similar(a, b string) bool {
	return SimilarAt(a, b, DefaultThreshold)
}

// SimilarAt is Similar with an explicit threshold. Similarity must
// strictly exceed the threshold.
func SimilarAt(a, b string, threshold float64) bool {
	return Jaccard(a, b) > threshold
}

// Conflicting reports whether two texts directly contradict each other.
// A pair conflicts when one side contains the first marker and the other
// contains the second (either direction). The must/must-not pair guards
// against "must not" matching the bare "must" marker.
func Conflicting(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	for _, pair := range contradictionPairs {
		if containsMarker(la, pair[0]) && containsMarker(lb, pair[1]) {
			return true
		}
		if containsMarker(lb, pair[0]) && containsMarker(la, pair[1]) {
			return true
		}
	}
	return false
}

// containsMarker checks for marker as a substring, except that the bare
// "must" marker must not be satisfied by an occurrence of "must not".
func containsMarker(text, marker string) bool {
	if marker == "must" {
		stripped := strings.ReplaceAll(text, "must not", "")
		return strings.Contains(stripped, "must")
	}
	return strings.Contains(text, marker)
}

// wordSet lower-cases and splits text on whitespace into a set.
func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
