package verify

import (
	"math"
	"strings"
)

// credibleCategoryHints are category names that nudge the score upward when
// present in the provider's classification.
var credibleCategoryHints = []string{"news", "law & government", "business"}

// scoreFeatures turns a feature set into a bounded score, label, and
// confidence. Pure and deterministic; performs no I/O.
func scoreFeatures(f Features) (int, Label, float64) {
	score := 50.0

	for _, c := range f.Categories {
		lower := strings.ToLower(c)
		matched := false
		for _, hint := range credibleCategoryHints {
			if strings.Contains(lower, hint) {
				matched = true
				break
			}
		}
		if matched {
			score += 5
			break
		}
	}

	bonus := float64(f.EntityWikiHits) * 0.03
	if bonus > 0.3 {
		bonus = 0.3
	}
	score += bonus * 100

	score -= math.Min(20, f.SentimentMagnitude*3)
	score -= f.SensationalPenalty * 100

	rounded := int(math.Round(score))
	if rounded < 0 {
		rounded = 0
	}
	if rounded > 100 {
		rounded = 100
	}

	return rounded, labelFor(rounded), confidenceFor(rounded)
}

// labelFor maps a score to its label under the fixed thresholds.
func labelFor(score int) Label {
	switch {
	case score >= 70:
		return LabelTrue
	case score <= 30:
		return LabelFake
	default:
		return LabelUncertain
	}
}

// confidenceFor is the distance from the neutral midpoint, rounded to
// 2 decimals: round(|score-50|/50, 2).
func confidenceFor(score int) float64 {
	return math.Round(math.Abs(float64(score)-50)/50*100) / 100
}
