// Package filter guards the dialogue loop against degenerate model
// output: near-duplicate utterances, empty or too-short text, and
// excessive intra-utterance repetition. All checks are pure functions
// of their inputs.
package filter

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Config carries the tunable thresholds. Defaults are deliberately
// conservative; the CLI exposes them as flags.
type Config struct {
	// SimilarityThreshold flags a candidate whose normalized edit
	// similarity to any recent same-speaker utterance reaches it.
	SimilarityThreshold float64

	// MinWords rejects trivially short output.
	MinWords int

	// NGramSize and NGramRatioThreshold flag utterances whose repeated
	// n-gram share is too high.
	NGramSize           int
	NGramRatioThreshold float64

	// Window bounds how many recent utterances are compared.
	Window int
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.82,
		MinWords:            2,
		NGramSize:           3,
		NGramRatioThreshold: 0.5,
		Window:              3,
	}
}

// IsDegenerate reports whether candidate should be rejected given the
// recent utterances by the same speaker (most recent last).
func (c Config) IsDegenerate(candidate string, recent []string) bool {
	words := strings.Fields(normalize(candidate))
	if len(words) < c.MinWords {
		return true
	}

	if c.repeatedNGramRatio(candidate) >= c.NGramRatioThreshold {
		return true
	}

	if len(recent) > c.Window {
		recent = recent[len(recent)-c.Window:]
	}
	for _, prev := range recent {
		if Similarity(candidate, prev) >= c.SimilarityThreshold {
			return true
		}
	}
	return false
}

// Similarity is the normalized edit similarity of two utterances in
// [0, 1], where 1 means identical after normalization.
func Similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == b {
		return 1.0
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// repeatedNGramRatio is the share of n-grams that occur more than once
// within the utterance.
func (c Config) repeatedNGramRatio(text string) float64 {
	n := c.NGramSize
	words := strings.Fields(normalize(text))
	if n <= 0 || len(words) < n+1 {
		return 0
	}

	counts := make(map[string]int)
	total := 0
	for i := 0; i+n <= len(words); i++ {
		counts[strings.Join(words[i:i+n], " ")]++
		total++
	}

	repeated := 0
	for _, cnt := range counts {
		if cnt > 1 {
			repeated += cnt
		}
	}
	return float64(repeated) / float64(total)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
