package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Language  LanguageConfig  `yaml:"language"`
	FactCheck FactCheckConfig `yaml:"factcheck"`
	Topics    TopicsConfig    `yaml:"topics"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Alerts    AlertsConfig    `yaml:"alerts"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LanguageConfig configures the natural-language analysis provider.
type LanguageConfig struct {
	APIKey        string  `yaml:"api_key"`
	BaseURL       string  `yaml:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// FactCheckConfig configures the fact-check claim search.
type FactCheckConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	CacheTTL string `yaml:"cache_ttl"`
}

// ParseCacheTTL returns the cache TTL as time.Duration.
func (f FactCheckConfig) ParseCacheTTL() time.Duration {
	d, err := time.ParseDuration(f.CacheTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// TopicsConfig holds configuration for trending-headline collectors.
type TopicsConfig struct {
	NewsAPI NewsAPIConfig `yaml:"newsapi"`
	RSS     RSSConfig     `yaml:"rss"`
}

// NewsAPIConfig for the newsapi.org collector.
type NewsAPIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key"`
	PageSize int    `yaml:"page_size"`
}

// RSSConfig for the RSS headline collector.
type RSSConfig struct {
	Enabled      bool       `yaml:"enabled"`
	LimitPerFeed int        `yaml:"limit_per_feed"`
	Feeds        []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ScheduleConfig configures the periodic headline sweep.
type ScheduleConfig struct {
	SweepInterval string `yaml:"sweep_interval"`
}

// ParseSweepInterval returns the sweep interval as time.Duration.
func (s ScheduleConfig) ParseSweepInterval() time.Duration {
	d, err := time.ParseDuration(s.SweepInterval)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// AlertsConfig configures low-credibility alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./credlens.db"},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Language: LanguageConfig{
			RatePerSecond: 5,
		},
		FactCheck: FactCheckConfig{
			Enabled:  true,
			CacheTTL: "15m",
		},
		Topics: TopicsConfig{
			NewsAPI: NewsAPIConfig{PageSize: 10},
			RSS: RSSConfig{
				Enabled:      true,
				LimitPerFeed: 10,
				Feeds: []FeedItem{
					{Name: "BBC", URL: "https://feeds.bbci.co.uk/news/rss.xml"},
					{Name: "Reuters", URL: "https://feeds.reuters.com/reuters/topNews"},
					{Name: "AP", URL: "https://apnews.com/hub/ap-top-news?output=rss"},
				},
			},
		},
		Schedule: ScheduleConfig{SweepInterval: "30m"},
		Alerts:   AlertsConfig{},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CREDLENS_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GOOGLE_NL_API_KEY"); v != "" {
		cfg.Language.APIKey = v
	}
	if v := os.Getenv("FACTCHECK_API_KEY"); v != "" {
		cfg.FactCheck.APIKey = v
		cfg.FactCheck.Enabled = true
	}
	if v := os.Getenv("NEWSAPI_KEY"); v != "" {
		cfg.Topics.NewsAPI.APIKey = v
		cfg.Topics.NewsAPI.Enabled = true
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
}
