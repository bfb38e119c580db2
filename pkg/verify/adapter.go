package verify

import "github.com/credlens/credlens/pkg/language"

// grounded reports whether an entity carries a knowledge-base identifier.
func grounded(e language.Entity) bool {
	if e.Metadata == nil {
		return false
	}
	_, hasWiki := e.Metadata["wikipedia_url"]
	_, hasMID := e.Metadata["mid"]
	return hasWiki || hasMID
}

// entityWikiHits counts grounded entities among the first 25.
func entityWikiHits(entities []language.Entity) int {
	if len(entities) > 25 {
		entities = entities[:25]
	}
	hits := 0
	for _, e := range entities {
		if grounded(e) {
			hits++
		}
	}
	return hits
}

// buildFeatures normalizes provider output plus the text-level penalty into
// the fixed feature set the scorer consumes.
func buildFeatures(text string, analysis *language.Analysis) Features {
	f := Features{
		SensationalPenalty: RedFlagPenalty(text),
		EntityWikiHits:     entityWikiHits(analysis.Entities),
	}
	if analysis.Sentiment != nil {
		f.SentimentMagnitude = analysis.Sentiment.Magnitude
	}
	for _, c := range analysis.Categories {
		f.Categories = append(f.Categories, c.Name)
		if len(f.Categories) >= 5 {
			break
		}
	}
	return f
}

// fallbackFeatures is the degraded feature set used when the analysis
// provider is unavailable. Only the text-level penalty survives.
func fallbackFeatures(text string) Features {
	return Features{
		SensationalPenalty: RedFlagPenalty(text),
		SentimentMagnitude: 0,
		EntityWikiHits:     0,
		Categories:         nil,
	}
}
