package topics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
)

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// RSS collects headlines from RSS/Atom feeds.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []Feed
	limit  int
}

// NewRSS creates an RSS collector. limit caps headlines per feed.
func NewRSS(feeds []Feed, limit int) *RSS {
	if limit <= 0 {
		limit = 10
	}
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
		limit:  limit,
	}
}

func (r *RSS) Name() string { return "rss" }

// Headlines fetches recent items from every configured feed. Individual
// feed failures are logged and skipped.
func (r *RSS) Headlines(ctx context.Context) ([]Headline, error) {
	var all []Headline
	for _, feed := range r.feeds {
		headlines, err := r.collectFeed(ctx, feed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  rss feed %s error: %v\n", feed.Name, err)
			continue
		}
		all = append(all, headlines...)
	}
	return all, nil
}

func (r *RSS) collectFeed(ctx context.Context, feed Feed) ([]Headline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "credlens/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	var headlines []Headline
	for _, entry := range parsed.Items {
		if len(headlines) >= r.limit {
			break
		}

		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		headlines = append(headlines, Headline{
			Title:       entry.Title,
			URL:         link,
			Source:      feed.Name,
			PublishedAt: published,
		})
	}
	return headlines, nil
}
