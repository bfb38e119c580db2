package verify

import (
	"sort"
	"strings"
	"unicode"
)

// sensationalVocab is the fixed set of words associated with
// attention-grabbing, low-credibility writing style.
var sensationalVocab = map[string]bool{
	"shocking":     true,
	"unbelievable": true,
	"exposed":      true,
	"scandal":      true,
	"meltdown":     true,
	"destroyed":    true,
	"bombshell":    true,
	"secretly":     true,
	"banned":       true,
	"miracle":      true,
	"cure":         true,
	"guaranteed":   true,
	"instant":      true,
}

// capsRatio returns the fraction of uppercase characters in text.
// The divisor is floored at 1 so empty text yields 0.
func capsRatio(text string) float64 {
	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	length := len([]rune(text))
	if length < 1 {
		length = 1
	}
	return float64(upper) / float64(length)
}

// words splits text into lowercase alphabetic runs.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// RedFlagPenalty computes the sensational-writing penalty for raw text.
// Pure function, clamped to [0, 0.6]; tolerates empty input.
func RedFlagPenalty(text string) float64 {
	penalty := 0.0
	if capsRatio(text) > 0.12 {
		penalty += 0.20
	}
	if strings.Count(text, "!") >= 3 {
		penalty += 0.15
	}
	hits := 0
	for _, w := range words(text) {
		if sensationalVocab[w] {
			hits++
		}
	}
	extra := float64(hits) * 0.05
	if extra > 0.25 {
		extra = 0.25
	}
	penalty += extra
	if penalty > 0.6 {
		penalty = 0.6
	}
	return penalty
}

// SensationalTerms returns the distinct sensational-vocabulary words found
// in text, lexicographically sorted and capped at 10.
func SensationalTerms(text string) []string {
	seen := make(map[string]bool)
	for _, w := range words(text) {
		if sensationalVocab[w] {
			seen[w] = true
		}
	}
	terms := make([]string, 0, len(seen))
	for w := range seen {
		terms = append(terms, w)
	}
	sort.Strings(terms)
	if len(terms) > 10 {
		terms = terms[:10]
	}
	return terms
}

// splitSentences naively splits text on sentence-ending punctuation.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			// Consume trailing terminators ("!!!", "?!").
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
				i++
				b.WriteRune(runes[i])
			}
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				sentences = append(sentences, strings.TrimSpace(b.String()))
				b.Reset()
			}
		}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
