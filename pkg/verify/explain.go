package verify

import (
	"fmt"
	"strings"
)

// genericExplanation is emitted when no specific explanation condition fires.
const genericExplanation = "Computed from entity grounding, sentiment magnitude, and sensational-text heuristics."

// Explain converts a scored result into an ordered, deduplicated list of
// human-readable explanation lines.
func Explain(result *Result) []string {
	var lines []string
	f := result.Features
	i := result.Insights

	if f.SensationalPenalty > 0 {
		lines = append(lines, fmt.Sprintf("Sensational writing patterns detected (penalty %.2f)", f.SensationalPenalty))
	}
	if f.SentimentMagnitude >= 1.0 {
		lines = append(lines, fmt.Sprintf("High emotional tone (sentiment magnitude ≈ %.2f)", f.SentimentMagnitude))
	}
	if f.EntityWikiHits > 0 {
		lines = append(lines, fmt.Sprintf("Grounded entities found: %d linked to Wikipedia/Knowledge Graph", f.EntityWikiHits))
	}
	if cats := shortCategories(f.Categories); len(cats) > 0 {
		lines = append(lines, "Topical category hints: "+strings.Join(cats, ", "))
	}
	if names := entityNames(i.KeyEntities); len(names) > 0 {
		lines = append(lines, "Key entities: "+strings.Join(names, ", "))
	}
	if terms := dedupeOrdered(i.SensationalTerms, 6); len(terms) > 0 {
		lines = append(lines, "Sensational terms in text: "+strings.Join(terms, ", "))
	}
	for _, s := range notableLines(i.NotableSentences) {
		lines = append(lines, fmt.Sprintf(`Notable line: "%s"`, s))
	}

	if len(lines) == 0 {
		lines = append(lines, genericExplanation)
	}
	return lines
}

// shortCategories shortens slash-path taxonomy names to their last segment,
// dedupes case-insensitively, and keeps at most 3.
func shortCategories(categories []string) []string {
	var cats []string
	seen := make(map[string]bool)
	for _, c := range categories {
		if c == "" {
			continue
		}
		short := c
		if idx := strings.LastIndex(c, "/"); idx >= 0 {
			short = c[idx+1:]
		}
		key := strings.ToLower(short)
		if seen[key] {
			continue
		}
		seen[key] = true
		cats = append(cats, short)
		if len(cats) >= 3 {
			break
		}
	}
	return cats
}

// entityNames dedupes key entities by lowercase name, marks grounded ones,
// and keeps at most 4.
func entityNames(entities []KeyEntity) []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range entities {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		if e.WikipediaURL != "" {
			name += " (wiki)"
		}
		names = append(names, name)
		if len(names) >= 4 {
			break
		}
	}
	return names
}

// dedupeOrdered removes duplicates preserving first-seen order, capped at n.
func dedupeOrdered(items []string, n int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) >= n {
			break
		}
	}
	return out
}

// notableLines dedupes notable sentences by lowercase content, keeps at most
// 2, and truncates each to 160 characters.
func notableLines(sentences []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		if r := []rune(s); len(r) > 160 {
			s = string(r[:160]) + "…"
		}
		out = append(out, s)
		if len(out) >= 2 {
			break
		}
	}
	return out
}
