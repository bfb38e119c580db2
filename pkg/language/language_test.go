package language

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func analysisServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "analyzeSentiment"):
			fmt.Fprint(w, `{
				"documentSentiment": {"score": -0.6, "magnitude": 1.8},
				"sentences": [
					{"text": {"content": "First sentence."}, "sentiment": {"score": -0.4, "magnitude": 0.9}}
				]
			}`)
		case strings.HasSuffix(r.URL.Path, "analyzeEntities"):
			fmt.Fprint(w, `{
				"entities": [
					{"name": "NASA", "type": "ORGANIZATION", "salience": 0.8,
					 "metadata": {"wikipedia_url": "https://en.wikipedia.org/wiki/NASA"}}
				]
			}`)
		case strings.HasSuffix(r.URL.Path, "classifyText"):
			fmt.Fprint(w, `{"categories": [{"name": "/News", "confidence": 0.9}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestAnalyze(t *testing.T) {
	srv := analysisServer(t)
	defer srv.Close()

	client := NewClient("test-key", srv.URL, 0)
	analysis, err := client.Analyze(context.Background(), "NASA announced a discovery.", "en")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if analysis.Sentiment == nil || analysis.Sentiment.Magnitude != 1.8 {
		t.Errorf("sentiment = %+v", analysis.Sentiment)
	}
	if len(analysis.Sentences) != 1 || analysis.Sentences[0].Magnitude != 0.9 {
		t.Errorf("sentences = %+v", analysis.Sentences)
	}
	if len(analysis.Entities) != 1 {
		t.Fatalf("entities = %d, want 1", len(analysis.Entities))
	}
	if analysis.Entities[0].Metadata["wikipedia_url"] == "" {
		t.Error("entity should carry wikipedia_url metadata")
	}
	if len(analysis.Categories) != 1 || analysis.Categories[0].Name != "/News" {
		t.Errorf("categories = %+v", analysis.Categories)
	}
}

func TestAnalyzeRetriesSentimentWithoutLanguage(t *testing.T) {
	sentimentCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "analyzeSentiment"):
			sentimentCalls++
			var payload struct {
				Document wireDocument `json:"document"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.Document.LanguageCode != "" {
				http.Error(w, `{"error": "unsupported language"}`, http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"documentSentiment": {"score": 0.1, "magnitude": 0.2}}`)
		case strings.HasSuffix(r.URL.Path, "analyzeEntities"):
			fmt.Fprint(w, `{"entities": []}`)
		case strings.HasSuffix(r.URL.Path, "classifyText"):
			fmt.Fprint(w, `{"categories": []}`)
		}
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, 0)
	analysis, err := client.Analyze(context.Background(), "some text", "xx")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sentimentCalls != 2 {
		t.Errorf("sentiment calls = %d, want 2 (retry without language code)", sentimentCalls)
	}
	if analysis.Sentiment.Magnitude != 0.2 {
		t.Errorf("magnitude = %v", analysis.Sentiment.Magnitude)
	}
}

func TestAnalyzeClassifyFailureTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "analyzeSentiment"):
			fmt.Fprint(w, `{"documentSentiment": {"score": 0, "magnitude": 0.1}}`)
		case strings.HasSuffix(r.URL.Path, "analyzeEntities"):
			fmt.Fprint(w, `{"entities": []}`)
		case strings.HasSuffix(r.URL.Path, "classifyText"):
			http.Error(w, `{"error": "too few tokens"}`, http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, 0)
	analysis, err := client.Analyze(context.Background(), "short", "en")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Categories) != 0 {
		t.Errorf("categories = %+v, want none", analysis.Categories)
	}
}

func TestAnalyzeTruncatesLongDocuments(t *testing.T) {
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Document wireDocument `json:"document"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(payload.Document.Content) > gotLen {
			gotLen = len(payload.Document.Content)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "analyzeSentiment"):
			fmt.Fprint(w, `{"documentSentiment": {"score": 0, "magnitude": 0}}`)
		case strings.HasSuffix(r.URL.Path, "analyzeEntities"):
			fmt.Fprint(w, `{"entities": []}`)
		case strings.HasSuffix(r.URL.Path, "classifyText"):
			fmt.Fprint(w, `{"categories": []}`)
		}
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, 0)
	long := strings.Repeat("a", maxDocumentBytes+500)
	if _, err := client.Analyze(context.Background(), long, "en"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if gotLen > maxDocumentBytes {
		t.Errorf("sent %d bytes, want at most %d", gotLen, maxDocumentBytes)
	}
}
