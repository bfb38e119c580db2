package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const newsAPIBaseURL = "https://newsapi.org"

// NewsAPI collects top headlines from newsapi.org.
type NewsAPI struct {
	client   *http.Client
	apiKey   string
	baseURL  string
	pageSize int
}

// NewNewsAPI creates a NewsAPI collector.
func NewNewsAPI(apiKey, baseURL string, pageSize int) *NewsAPI {
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &NewsAPI{
		client:   &http.Client{Timeout: 15 * time.Second},
		apiKey:   apiKey,
		baseURL:  baseURL,
		pageSize: pageSize,
	}
}

func (n *NewsAPI) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Headlines fetches the current English top headlines.
func (n *NewsAPI) Headlines(ctx context.Context) ([]Headline, error) {
	params := url.Values{}
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprintf("%d", n.pageSize))
	params.Set("apiKey", n.apiKey)
	endpoint := n.baseURL + "/v2/top-headlines?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create newsapi request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch top headlines: %w", err)
	}
	defer resp.Body.Close()

	var decoded newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if decoded.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q", decoded.Status)
	}

	var headlines []Headline
	for _, a := range decoded.Articles {
		headlines = append(headlines, Headline{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return headlines, nil
}
