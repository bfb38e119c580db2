package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/credlens/credlens/internal/config"
	"github.com/credlens/credlens/internal/scheduler"
	"github.com/credlens/credlens/internal/store"
	"github.com/credlens/credlens/pkg/alert"
	"github.com/credlens/credlens/pkg/extract"
	"github.com/credlens/credlens/pkg/factcheck"
	"github.com/credlens/credlens/pkg/language"
	"github.com/credlens/credlens/pkg/server"
	"github.com/credlens/credlens/pkg/topics"
	"github.com/credlens/credlens/pkg/verify"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildEngine(cfg *config.Config) *verify.Engine {
	apiKey := cfg.Language.APIKey
	baseURL := cfg.Language.BaseURL
	ratePerSecond := cfg.Language.RatePerSecond
	return verify.NewEngine(func() language.Provider {
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "language api key not set, using fallback scoring")
			return nil
		}
		return language.NewClient(apiKey, baseURL, ratePerSecond)
	})
}

func buildChecker(cfg *config.Config) factcheck.Searcher {
	if !cfg.FactCheck.Enabled || cfg.FactCheck.APIKey == "" {
		return nil
	}
	return factcheck.NewClient(cfg.FactCheck.APIKey, cfg.FactCheck.BaseURL, cfg.FactCheck.ParseCacheTTL())
}

func buildProviders(cfg *config.Config) []topics.Provider {
	var providers []topics.Provider

	if cfg.Topics.NewsAPI.Enabled && cfg.Topics.NewsAPI.APIKey != "" {
		providers = append(providers, topics.NewNewsAPI(cfg.Topics.NewsAPI.APIKey, "", cfg.Topics.NewsAPI.PageSize))
	}
	if cfg.Topics.RSS.Enabled && len(cfg.Topics.RSS.Feeds) > 0 {
		feeds := make([]topics.Feed, len(cfg.Topics.RSS.Feeds))
		for i, f := range cfg.Topics.RSS.Feeds {
			feeds[i] = topics.Feed{Name: f.Name, URL: f.URL}
		}
		providers = append(providers, topics.NewRSS(feeds, cfg.Topics.RSS.LimitPerFeed))
	}

	return providers
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runVerify(args []string, jsonOutput bool, langCode string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	input := strings.TrimSpace(strings.Join(args, " "))
	if input == "" {
		return fmt.Errorf("nothing to verify")
	}

	ctx := context.Background()
	var title, text string
	if extract.LooksLikeURL(input) {
		fmt.Fprintf(os.Stderr, "extracting %s...\n", input)
		article, err := extract.FromURL(input, 12*time.Second)
		if err != nil {
			return err
		}
		title = article.Title
		text = article.Text
	} else {
		text = input
		title = headlineOf(input)
	}

	scoreText := text
	if title != "" {
		scoreText = title + ". " + text
	}

	engine := buildEngine(cfg)
	result := engine.Score(ctx, scoreText, langCode)
	explanation := verify.Explain(result)

	if checker := buildChecker(cfg); checker != nil {
		query := title
		if query == "" {
			query = text
		}
		if claims, err := checker.Search(ctx, query, langCode); err == nil && len(claims) > 0 {
			verdict, summary := verify.SummarizeClaims(claims)
			explanation = verify.MergeVerdict(result, explanation, verdict, summary)
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "fact check lookup failed: %v\n", err)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"label":       result.Label,
			"score":       result.Score,
			"confidence":  result.Confidence,
			"explanation": explanation,
			"features":    result.Features,
			"insights":    result.Insights,
		})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "LABEL\t%s\n", result.Label)
	fmt.Fprintf(w, "SCORE\t%d/100\n", result.Score)
	fmt.Fprintf(w, "CONFIDENCE\t%.2f\n", result.Confidence)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for _, line := range explanation {
		fmt.Printf("  - %s\n", line)
	}
	return nil
}

// headlineOf derives a short title from raw text.
func headlineOf(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, "\n"); idx > 0 {
		text = text[:idx]
	}
	runes := []rune(text)
	if len(runes) > 120 {
		return string(runes[:120])
	}
	return text
}

func runTopics(check bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	providers := buildProviders(cfg)
	if len(providers) == 0 {
		return fmt.Errorf("no headline providers enabled (configure topics.rss or topics.newsapi)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	headlines := topics.Collect(ctx, providers)
	if len(headlines) == 0 {
		fmt.Println("no headlines found")
		return nil
	}

	var engine *verify.Engine
	if check {
		engine = buildEngine(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if check {
		fmt.Fprintln(w, "LABEL\tSCORE\tSOURCE\tHEADLINE")
		for _, h := range headlines {
			result := engine.Score(ctx, h.Title, "en")
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", result.Label, result.Score, h.Source, h.Title)
		}
	} else {
		fmt.Fprintln(w, "SOURCE\tPUBLISHED\tHEADLINE")
		for _, h := range headlines {
			published := ""
			if !h.PublishedAt.IsZero() {
				published = h.PublishedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", h.Source, published, h.Title)
		}
	}
	return w.Flush()
}

func runRecent(limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	verifications, err := db.ListRecentVerifications(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("list verifications: %w", err)
	}

	if len(verifications) == 0 {
		fmt.Println("no verifications yet (try: credlens verify \"some text\")")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tSCORE\tCONFIDENCE\tWHEN")
	for _, v := range verifications {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\n",
			v.ID, v.Label, v.Score, v.Confidence,
			v.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	engine := buildEngine(cfg)
	checker := buildChecker(cfg)
	providers := buildProviders(cfg)

	srv := server.New(db, engine, checker, providers, port, cfg.Server.AllowedOrigins)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	engine := buildEngine(cfg)
	checker := buildChecker(cfg)
	providers := buildProviders(cfg)
	alertMgr := buildAlertManager(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, providers, engine, alertMgr, cfg.Schedule.ParseSweepInterval())

	// Start sweeper in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(db, engine, checker, providers, port, cfg.Server.AllowedOrigins)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}
