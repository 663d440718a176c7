package sentiment

import (
	"math"
	"testing"

	"MarketPulse/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func TestScoreEmpty(t *testing.T) {
	score, n := Score(nil)
	if score != 0 || n != 0 {
		t.Fatalf("got %v %d", score, n)
	}
}

func TestScorePrefersProviderScores(t *testing.T) {
	items := []models.NewsItem{
		{Title: "Shares drop on weak results", Score: fp(0.6)},
		{Title: "More bad news", Score: fp(0.2)},
		{Title: "Unscored headline about declines"},
	}
	score, n := Score(items)
	if math.Abs(score-0.4) > 1e-9 {
		t.Fatalf("score = %v, want average of provider scores 0.4", score)
	}
	if n != 3 {
		t.Fatalf("n = %d", n)
	}
}

func TestKeywordModelPositive(t *testing.T) {
	items := []models.NewsItem{
		{Title: "Acme beats estimates, shares surge on strong growth"},
	}
	score, _ := Score(items)
	if score != 1 {
		t.Fatalf("all-positive tokens should score 1, got %v", score)
	}
}

func TestKeywordModelNegative(t *testing.T) {
	items := []models.NewsItem{
		{Title: "Acme misses targets as stock falls, cut to underweight"},
	}
	score, _ := Score(items)
	if score >= 0 {
		t.Fatalf("expected negative score, got %v", score)
	}
}

func TestKeywordModelMixed(t *testing.T) {
	items := []models.NewsItem{
		{Title: "Stock gains despite risk warnings"}, // one positive, one negative
	}
	score, _ := Score(items)
	if score != 0 {
		t.Fatalf("balanced tokens should cancel, got %v", score)
	}
}

func TestKeywordModelNoMatches(t *testing.T) {
	items := []models.NewsItem{{Title: "Company schedules annual meeting"}}
	score, n := Score(items)
	if score != 0 {
		t.Fatalf("no matched tokens should score 0, got %v", score)
	}
	if n != 1 {
		t.Fatalf("n = %d", n)
	}
}

func TestTokenize(t *testing.T) {
	toks := tokenize("Acme Corp. beats Q3 estimates!")
	want := []string{"acme", "corp", "beats", "q3", "estimates"}
	if len(toks) != len(want) {
		t.Fatalf("toks = %v", toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("toks[%d] = %q, want %q", i, toks[i], want[i])
		}
	}
}
