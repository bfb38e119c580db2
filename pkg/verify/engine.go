// Package verify scores text credibility and explains the result.
//
// The engine combines lexical red-flag signals with externally supplied
// linguistic features (sentiment, entities, categories) into a bounded
// 0-100 score, a three-way label, and ranked explanation lines. External
// calls are best-effort: provider failures degrade to a fixed
// low-confidence result instead of surfacing as errors.
package verify

import (
	"context"
	"strings"
	"sync"

	"github.com/credlens/credlens/pkg/language"
)

// Engine is the scoring engine. It holds no per-request state and is safe
// for concurrent use; the analysis provider is initialized at most once.
type Engine struct {
	once        sync.Once
	provider    language.Provider
	newProvider func() language.Provider
}

// NewEngine creates an engine whose analysis provider is built lazily on
// first use. A nil factory (or a factory returning nil) means every request
// takes the degraded fallback path.
func NewEngine(newProvider func() language.Provider) *Engine {
	return &Engine{newProvider: newProvider}
}

// NewEngineWithProvider creates an engine around an existing provider.
func NewEngineWithProvider(p language.Provider) *Engine {
	return &Engine{provider: p}
}

func (e *Engine) analysisProvider() language.Provider {
	e.once.Do(func() {
		if e.provider == nil && e.newProvider != nil {
			e.provider = e.newProvider()
		}
	})
	return e.provider
}

// Score classifies text and returns a complete result. It never fails: if
// the analysis provider is unreachable the result is the fixed
// {uncertain, 50, 0.3} with degraded features and insights.
func (e *Engine) Score(ctx context.Context, text, languageCode string) *Result {
	text = strings.TrimSpace(text)
	if languageCode == "" {
		languageCode = "en"
	}

	provider := e.analysisProvider()
	if provider == nil {
		return fallbackResult(text)
	}

	analysis, err := provider.Analyze(ctx, text, languageCode)
	if err != nil || analysis == nil || analysis.Sentiment == nil {
		return fallbackResult(text)
	}

	features := buildFeatures(text, analysis)
	score, label, confidence := scoreFeatures(features)

	return &Result{
		Label:      label,
		Score:      score,
		Confidence: confidence,
		Features:   features,
		Insights:   collectInsights(text, analysis.Sentences, analysis.Entities),
	}
}

// fallbackResult is the fixed low-confidence result for unanalyzable input:
// score 50, label uncertain, confidence 0.3 regardless of text content.
// Features and insights still carry the text-level signals so the
// explanation can report them.
func fallbackResult(text string) *Result {
	return &Result{
		Label:      LabelUncertain,
		Score:      50,
		Confidence: 0.3,
		Features:   fallbackFeatures(text),
		Insights:   fallbackInsights(text),
	}
}
