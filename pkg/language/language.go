// Package language wraps a Cloud Natural Language style REST API.
// Provider-native wire shapes never leave this package.
package language

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://language.googleapis.com"

// maxDocumentBytes caps how much text is sent to the provider.
const maxDocumentBytes = 20000

// Sentiment is the document-level sentiment.
type Sentiment struct {
	Score     float64
	Magnitude float64
}

// Sentence pairs sentence text with its sentiment magnitude.
type Sentence struct {
	Text      string
	Magnitude float64
}

// Entity is a named entity with provider metadata. Grounded entities carry
// a wikipedia_url or mid key in Metadata.
type Entity struct {
	Name     string
	Type     string
	Salience float64
	Metadata map[string]string
}

// Category is a text classification result, typically a slash-delimited
// taxonomy path like "/News/Politics".
type Category struct {
	Name       string
	Confidence float64
}

// Analysis is the normalized output of one provider round trip.
type Analysis struct {
	Sentiment  *Sentiment
	Sentences  []Sentence
	Entities   []Entity
	Categories []Category
}

// Provider is the analysis contract the scoring engine consumes.
type Provider interface {
	Analyze(ctx context.Context, text, languageCode string) (*Analysis, error)
}

// Client calls the Natural Language REST API with API-key auth.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a provider client. ratePerSecond <= 0 disables limiting.
func NewClient(apiKey, baseURL string, ratePerSecond float64) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		limiter:    limiter,
	}
}

type wireDocument struct {
	Type         string `json:"type"`
	Content      string `json:"content"`
	LanguageCode string `json:"languageCode,omitempty"`
}

type wireSentiment struct {
	Magnitude float64 `json:"magnitude"`
	Score     float64 `json:"score"`
}

type sentimentResponse struct {
	DocumentSentiment wireSentiment `json:"documentSentiment"`
	Sentences         []struct {
		Text struct {
			Content string `json:"content"`
		} `json:"text"`
		Sentiment wireSentiment `json:"sentiment"`
	} `json:"sentences"`
}

type entitiesResponse struct {
	Entities []struct {
		Name     string            `json:"name"`
		Type     string            `json:"type"`
		Salience float64           `json:"salience"`
		Metadata map[string]string `json:"metadata"`
	} `json:"entities"`
}

type classifyResponse struct {
	Categories []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"categories"`
}

// Analyze runs sentiment, entity, and (best-effort) category analysis.
// If sentiment fails with an explicit language code, it retries once with
// provider-side language detection before giving up.
func (c *Client) Analyze(ctx context.Context, text, languageCode string) (*Analysis, error) {
	if len(text) > maxDocumentBytes {
		text = text[:maxDocumentBytes]
	}

	var sresp sentimentResponse
	err := c.post(ctx, "/v2/documents:analyzeSentiment", map[string]any{
		"document":     wireDocument{Type: "PLAIN_TEXT", Content: text, LanguageCode: languageCode},
		"encodingType": "UTF8",
	}, &sresp)
	if err != nil && languageCode != "" {
		err = c.post(ctx, "/v2/documents:analyzeSentiment", map[string]any{
			"document":     wireDocument{Type: "PLAIN_TEXT", Content: text},
			"encodingType": "UTF8",
		}, &sresp)
	}
	if err != nil {
		return nil, fmt.Errorf("analyze sentiment: %w", err)
	}

	var eresp entitiesResponse
	err = c.post(ctx, "/v2/documents:analyzeEntities", map[string]any{
		"document":     wireDocument{Type: "PLAIN_TEXT", Content: text},
		"encodingType": "UTF8",
	}, &eresp)
	if err != nil {
		return nil, fmt.Errorf("analyze entities: %w", err)
	}

	// Category classification is best-effort: short documents are rejected
	// by the provider, which is not a reason to fail the request.
	var cresp classifyResponse
	if err := c.post(ctx, "/v2/documents:classifyText", map[string]any{
		"document": wireDocument{Type: "PLAIN_TEXT", Content: text},
	}, &cresp); err != nil {
		cresp.Categories = nil
	}

	analysis := &Analysis{
		Sentiment: &Sentiment{
			Score:     sresp.DocumentSentiment.Score,
			Magnitude: sresp.DocumentSentiment.Magnitude,
		},
	}
	for _, s := range sresp.Sentences {
		analysis.Sentences = append(analysis.Sentences, Sentence{
			Text:      s.Text.Content,
			Magnitude: s.Sentiment.Magnitude,
		})
	}
	for _, e := range eresp.Entities {
		analysis.Entities = append(analysis.Entities, Entity{
			Name:     e.Name,
			Type:     e.Type,
			Salience: e.Salience,
			Metadata: e.Metadata,
		})
	}
	for _, cat := range cresp.Categories {
		analysis.Categories = append(analysis.Categories, Category{
			Name:       cat.Name,
			Confidence: cat.Confidence,
		})
	}
	return analysis, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + path + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("provider status %d: %v", resp.StatusCode, errResp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
