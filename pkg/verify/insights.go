package verify

import (
	"sort"
	"strings"

	"github.com/credlens/credlens/pkg/language"
)

// collectInsights ranks entities by salience, gathers sensational terms, and
// picks notable sentences by combined sentiment magnitude and shoutiness.
// Sorting is stable: ties keep provider-returned or textual order.
func collectInsights(text string, sentences []language.Sentence, entities []language.Entity) Insights {
	ranked := make([]language.Entity, len(entities))
	copy(ranked, entities)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Salience > ranked[j].Salience
	})
	if len(ranked) > 8 {
		ranked = ranked[:8]
	}

	var keyEntities []KeyEntity
	for _, e := range ranked {
		ke := KeyEntity{Name: e.Name, Type: e.Type, Salience: e.Salience}
		if e.Metadata != nil {
			ke.WikipediaURL = e.Metadata["wikipedia_url"]
			ke.MID = e.Metadata["mid"]
		}
		keyEntities = append(keyEntities, ke)
	}

	return Insights{
		KeyEntities:      keyEntities,
		SensationalTerms: SensationalTerms(text),
		NotableSentences: notableSentences(text, sentences),
	}
}

// fallbackInsights is the degraded insight set for the provider-unavailable
// path: sensational terms plus up to 2 naively split sentences.
func fallbackInsights(text string) Insights {
	notable := splitSentences(text)
	if len(notable) > 2 {
		notable = notable[:2]
	}
	return Insights{
		SensationalTerms: SensationalTerms(text),
		NotableSentences: notable,
	}
}

type sentenceCandidate struct {
	relevance float64
	text      string
}

// notableSentences scores each sentence as magnitude + 0.8 per shouty signal
// (any "!", caps ratio above 0.12) and keeps the top 3 non-empty sentences.
// Without provider sentences it falls back to bonus-only scoring over a naive
// split, capped at 8 candidates before ranking.
func notableSentences(text string, sentences []language.Sentence) []string {
	var candidates []sentenceCandidate
	for _, s := range sentences {
		candidates = append(candidates, sentenceCandidate{
			relevance: s.Magnitude + shoutBonus(s.Text),
			text:      strings.TrimSpace(s.Text),
		})
	}
	if len(candidates) == 0 {
		split := splitSentences(text)
		if len(split) > 8 {
			split = split[:8]
		}
		for _, s := range split {
			candidates = append(candidates, sentenceCandidate{
				relevance: shoutBonus(s),
				text:      strings.TrimSpace(s),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].relevance > candidates[j].relevance
	})

	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	var notable []string
	for _, c := range candidates {
		if c.text != "" {
			notable = append(notable, c.text)
		}
	}
	return notable
}

func shoutBonus(sentence string) float64 {
	bonus := 0.0
	if strings.Count(sentence, "!") >= 1 {
		bonus += 0.8
	}
	if capsRatio(sentence) > 0.12 {
		bonus += 0.8
	}
	return bonus
}
