// Package factcheck queries the Google Fact Check Tools claim search API.
// All lookups are best-effort: a failed search yields an empty claim list.
package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultBaseURL = "https://factchecktools.googleapis.com"

// ClaimReview is one publisher's review of a claim.
type ClaimReview struct {
	Publisher     string `json:"publisher"`
	Title         string `json:"title"`
	TextualRating string `json:"textual_rating"`
	URL           string `json:"url"`
}

// Claim is a fact-checked claim with zero or more reviews.
type Claim struct {
	Text    string        `json:"text"`
	Reviews []ClaimReview `json:"reviews"`
}

// Searcher is the claim lookup contract consumed by the verify layer.
type Searcher interface {
	Search(ctx context.Context, query, lang string) ([]Claim, error)
}

// Client queries the claims:search endpoint with API-key auth and caches
// responses in memory.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	cache      *gocache.Cache
}

// NewClient creates a fact-check client. cacheTTL <= 0 defaults to 15m.
func NewClient(apiKey, baseURL string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}
}

type searchResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
			} `json:"publisher"`
			Title         string `json:"title"`
			TextualRating string `json:"textualRating"`
			URL           string `json:"url"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Search returns claims matching the query. Transport and decode failures
// are reported so the caller can treat them as "no claims found".
func (c *Client) Search(ctx context.Context, query, lang string) ([]Claim, error) {
	if query == "" {
		return nil, nil
	}
	if lang == "" {
		lang = "en"
	}

	cacheKey := lang + "|" + query
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]Claim), nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("languageCode", lang)
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "/v1alpha1/claims:search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create factcheck request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search claims: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("factcheck status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}

	var claims []Claim
	for _, wc := range decoded.Claims {
		claim := Claim{Text: wc.Text}
		for _, r := range wc.ClaimReview {
			claim.Reviews = append(claim.Reviews, ClaimReview{
				Publisher:     r.Publisher.Name,
				Title:         r.Title,
				TextualRating: r.TextualRating,
				URL:           r.URL,
			})
		}
		claims = append(claims, claim)
	}

	c.cache.Set(cacheKey, claims, gocache.DefaultExpiration)
	return claims, nil
}
