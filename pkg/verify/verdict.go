package verify

import (
	"fmt"
	"strings"

	"github.com/credlens/credlens/pkg/factcheck"
)

var (
	fakeRatingMarkers = []string{"false", "fake", "pants on fire", "incorrect", "misleading"}
	trueRatingMarkers = []string{"true", "correct", "mostly true", "accurate"}
)

// SummarizeClaims derives an overall verdict and readable summary lines from
// fact-check claims. Claims are scanned in input order, first 5 claims, all
// reviews per claim. A fake-rated review always overrides the running
// verdict; a true-rated review only fills an empty one.
func SummarizeClaims(claims []factcheck.Claim) (Label, []string) {
	if len(claims) == 0 {
		return "", nil
	}

	if len(claims) > 5 {
		claims = claims[:5]
	}

	var summary []string
	var verdict Label

	for _, c := range claims {
		for _, r := range c.Reviews {
			publisher := r.Publisher
			if publisher == "" {
				publisher = "Unknown"
			}
			rating := strings.ToLower(r.TextualRating)
			summary = append(summary, fmt.Sprintf("%s: %s — %s (%s)", publisher, rating, r.Title, r.URL))

			if containsAny(rating, fakeRatingMarkers) {
				verdict = LabelFake
			}
			if containsAny(rating, trueRatingMarkers) && verdict == "" {
				verdict = LabelTrue
			}
		}
	}

	if verdict == "" {
		verdict = LabelUncertain
	}
	return verdict, summary
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// MergeVerdict reconciles an external fact-check verdict with the heuristic
// result. A "true" or "fake" verdict overrides score, label, and confidence,
// and its note is prepended ahead of all heuristic lines. Up to 3 claim
// summary lines are appended either way.
func MergeVerdict(result *Result, explanation []string, verdict Label, summary []string) []string {
	if verdict == LabelTrue || verdict == LabelFake {
		result.Label = verdict
		if verdict == LabelTrue {
			result.Score = 85
		} else {
			result.Score = 15
		}
		result.Confidence = 0.9
		explanation = append([]string{fmt.Sprintf("Fact Check verdict: %s", verdict)}, explanation...)
	}

	if len(summary) > 3 {
		summary = summary[:3]
	}
	explanation = append(explanation, summary...)

	if len(explanation) == 0 {
		explanation = append(explanation, genericExplanation)
	}
	return explanation
}
