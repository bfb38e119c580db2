// Package topics collects trending news headlines for spot-checking.
package topics

import (
	"context"
	"strings"
	"time"
)

// Headline is a trending news item from any provider.
type Headline struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Provider is the interface every headline collector implements.
type Provider interface {
	Name() string
	Headlines(ctx context.Context) ([]Headline, error)
}

// Collect gathers headlines from all providers, skipping failed ones, and
// dedupes by lowercase title.
func Collect(ctx context.Context, providers []Provider) []Headline {
	var all []Headline
	seen := make(map[string]bool)

	for _, p := range providers {
		headlines, err := p.Headlines(ctx)
		if err != nil {
			continue
		}
		for _, h := range headlines {
			if h.Title == "" || h.URL == "" {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(h.Title))
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, h)
		}
	}
	return all
}
