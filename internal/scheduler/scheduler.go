package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/credlens/credlens/internal/store"
	"github.com/credlens/credlens/pkg/alert"
	"github.com/credlens/credlens/pkg/topics"
	"github.com/credlens/credlens/pkg/verify"
)

// Scheduler runs periodic headline sweeps: collect, score, persist, alert.
type Scheduler struct {
	store     store.Store
	providers []topics.Provider
	engine    *verify.Engine
	alertMgr  *alert.Manager
	interval  time.Duration

	seen map[string]bool
}

// New creates a new scheduler.
func New(
	s store.Store,
	providers []topics.Provider,
	engine *verify.Engine,
	alertMgr *alert.Manager,
	interval time.Duration,
) *Scheduler {
	if interval == 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		store:     s,
		providers: providers,
		engine:    engine,
		alertMgr:  alertMgr,
		interval:  interval,
		seen:      make(map[string]bool),
	}
}

// Run starts the sweep loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start.
	fmt.Fprintln(os.Stderr, "scheduler: initial sweep...")
	s.sweep(ctx)

	fmt.Fprintf(os.Stderr, "scheduler: running (sweep every %s)\n", s.interval)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			fmt.Fprintln(os.Stderr, "scheduler: sweeping...")
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	headlines := topics.Collect(ctx, s.providers)
	fmt.Fprintf(os.Stderr, "  collected %d headlines\n", len(headlines))

	scored := 0
	for _, h := range headlines {
		if ctx.Err() != nil {
			return
		}
		key := h.URL
		if key == "" {
			key = h.Title
		}
		if s.seen[key] {
			continue
		}
		s.seen[key] = true

		result := s.engine.Score(ctx, h.Title, "en")
		explanation := verify.Explain(result)

		article := &store.Article{
			Title:  h.Title,
			Text:   h.Title,
			URL:    h.URL,
			Source: h.Source,
		}
		if err := s.store.SaveArticle(ctx, article); err != nil {
			fmt.Fprintf(os.Stderr, "  store article error: %v\n", err)
			continue
		}
		if err := s.store.SaveVerification(ctx, &store.Verification{
			ArticleID:   &article.ID,
			Score:       result.Score,
			Label:       string(result.Label),
			Confidence:  result.Confidence,
			Explanation: explanation,
			Features:    result.Features,
			Insights:    result.Insights,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "  store verification error: %v\n", err)
			continue
		}
		scored++

		if result.Label == verify.LabelFake {
			s.notify(ctx, h, result, explanation)
		}
	}
	fmt.Fprintf(os.Stderr, "  scored %d new headlines\n", scored)
}

func (s *Scheduler) notify(ctx context.Context, h topics.Headline, result *verify.Result, explanation []string) {
	if s.alertMgr == nil || !s.alertMgr.HasNotifiers() {
		return
	}

	notification := &alert.Notification{
		Title:       h.Title,
		Body:        fmt.Sprintf("Headline from %s flagged as likely fake", h.Source),
		URL:         h.URL,
		Label:       string(result.Label),
		Score:       result.Score,
		Confidence:  result.Confidence,
		Explanation: explanation,
	}

	if err := s.alertMgr.Broadcast(ctx, notification); err != nil {
		fmt.Fprintf(os.Stderr, "  alert error for %q: %v\n", h.Title, err)
		return
	}
	fmt.Fprintf(os.Stderr, "  alerted: %s (score: %d)\n", h.Title, result.Score)
}
