// Package extract fetches a web page and pulls out clean article text.
package extract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Article is the extracted content of a web page.
type Article struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// LooksLikeURL reports whether input should be treated as a URL rather
// than plain text.
func LooksLikeURL(input string) bool {
	input = strings.TrimSpace(input)
	if strings.ContainsAny(input, " \t\n") {
		return false
	}
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FromURL fetches the page and extracts readable article text.
func FromURL(rawURL string, timeout time.Duration) (*Article, error) {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}

	article, err := readability.FromURL(rawURL, timeout)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", rawURL, err)
	}

	source := ""
	if u, err := url.Parse(rawURL); err == nil {
		source = u.Host
	}

	return &Article{
		Title:  strings.TrimSpace(article.Title),
		Text:   strings.TrimSpace(article.TextContent),
		URL:    rawURL,
		Source: source,
	}, nil
}
