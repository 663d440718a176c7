package sentiment

import (
	"strings"

	"MarketPulse/internal/domain/models"
)

// Keyword polarity tables for the local fallback model. Matching is by token
// prefix so "surges" and "surge" score alike.
var positiveTokens = []string{
	"beat", "beats", "surge", "up", "gain", "bull", "strong",
	"optimistic", "positive", "record", "grow", "growth",
}

var negativeTokens = []string{
	"miss", "falls", "down", "drop", "bear", "weak",
	"pessimistic", "negative", "cut", "loss", "decline", "risk",
}

// Score computes one sentiment value from a headline set. Provider-supplied
// scores are preferred when any item carries one; otherwise the keyword model
// runs over the titles. The second return is the number of articles that
// contributed.
func Score(items []models.NewsItem) (float64, int) {
	if len(items) == 0 {
		return 0, 0
	}

	// Prefer provider scores if present.
	sum, n := 0.0, 0
	for _, it := range items {
		if it.Score != nil {
			sum += *it.Score
			n++
		}
	}
	if n > 0 {
		return sum / float64(n), len(items)
	}

	return keywordScore(items), len(items)
}

// keywordScore sums token polarities across all titles and normalizes by the
// number of matched tokens.
func keywordScore(items []models.NewsItem) float64 {
	scoreSum, tokenCount := 0.0, 0
	for _, it := range items {
		for _, tok := range tokenize(it.Title) {
			switch {
			case matchesAny(tok, positiveTokens):
				scoreSum++
				tokenCount++
			case matchesAny(tok, negativeTokens):
				scoreSum--
				tokenCount++
			}
		}
	}
	if tokenCount == 0 {
		return 0
	}
	return scoreSum / float64(tokenCount)
}

func tokenize(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	return fields
}

func matchesAny(token string, table []string) bool {
	for _, kw := range table {
		if token == kw || strings.HasPrefix(token, kw) {
			return true
		}
	}
	return false
}
