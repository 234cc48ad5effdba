package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/elonfeng/trendpulse/pkg/source"
)

// Config is the root configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	NewsAPI      NewsAPIConfig      `yaml:"newsapi"`
	GoogleTrends GoogleTrendsConfig `yaml:"google_trends"`
	Feeds        FeedsConfig        `yaml:"feeds"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Cache        CacheConfig        `yaml:"cache"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Alerts       AlertsConfig       `yaml:"alerts"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// NewsAPIConfig configures the headline and search provider.
type NewsAPIConfig struct {
	APIKey     string   `yaml:"api_key"`
	BaseURL    string   `yaml:"base_url"`
	Language   string   `yaml:"language"`
	PageSize   int      `yaml:"page_size"`
	Categories []string `yaml:"categories"`
}

// GoogleTrendsConfig configures the search-interest provider.
type GoogleTrendsConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	HL      string `yaml:"hl"`
}

// FeedsConfig holds the syndicated feed roster.
type FeedsConfig struct {
	Timeout string       `yaml:"timeout"`
	Roster  []FeedConfig `yaml:"roster"`
}

// FeedConfig is a single roster entry.
type FeedConfig struct {
	URL      string   `yaml:"url"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Region   string   `yaml:"region"`
	Tags     []string `yaml:"tags"`
}

// ParseTimeout returns the per-feed timeout, 10s when unset or invalid.
func (f FeedsConfig) ParseTimeout() time.Duration {
	return parseDuration(f.Timeout, 10*time.Second)
}

// Sources converts the roster for the builder.
func (f FeedsConfig) Sources() []source.Feed {
	feeds := make([]source.Feed, 0, len(f.Roster))
	for _, fc := range f.Roster {
		feeds = append(feeds, source.Feed{
			URL:      fc.URL,
			Name:     fc.Name,
			Category: fc.Category,
			Region:   fc.Region,
			Tags:     fc.Tags,
		})
	}
	return feeds
}

// AnalysisConfig configures text generation.
type AnalysisConfig struct {
	Provider        string `yaml:"provider"` // "gemini", "openai" or "anthropic"
	Model           string `yaml:"model"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	BaseURL         string `yaml:"base_url"` // custom endpoint (optional)
	MaxAttempts     int    `yaml:"max_attempts"`
	RetryDelay      string `yaml:"retry_delay"`
}

// APIKey returns the key of the selected provider.
func (a AnalysisConfig) APIKey() string {
	switch a.Provider {
	case "openai":
		return a.OpenAIAPIKey
	case "anthropic":
		return a.AnthropicAPIKey
	default:
		return a.GeminiAPIKey
	}
}

// ParseRetryDelay returns the delay between generation attempts.
func (a AnalysisConfig) ParseRetryDelay() time.Duration {
	return parseDuration(a.RetryDelay, time.Second)
}

// CacheConfig configures the build snapshot cache.
type CacheConfig struct {
	Driver   string `yaml:"driver"` // "sqlite", "redis" or "none"
	Path     string `yaml:"path"`
	RedisURL string `yaml:"redis_url"`
	TTL      string `yaml:"ttl"`
}

// ParseTTL returns how long a cached build stays fresh.
func (c CacheConfig) ParseTTL() time.Duration {
	return parseDuration(c.TTL, 30*time.Minute)
}

// ScheduleConfig configures the background prewarm job.
type ScheduleConfig struct {
	Prewarm string `yaml:"prewarm"` // cron spec, e.g. "@every 30m"
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	Limit      int           `yaml:"limit"`
	MinHotness float64       `yaml:"min_hotness"`
	Slack      SlackConfig   `yaml:"slack"`
	Discord    DiscordConfig `yaml:"discord"`
	Webhook    WebhookConfig `yaml:"webhook"`
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

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		NewsAPI: NewsAPIConfig{
			BaseURL:  "https://newsapi.org/v2",
			Language: "en",
			PageSize: 30,
			Categories: []string{
				"business", "entertainment", "general", "health", "science", "sports", "technology",
			},
		},
		GoogleTrends: GoogleTrendsConfig{
			Enabled: true,
			BaseURL: "https://trends.google.com/trends/api",
			HL:      "en-US",
		},
		Feeds: FeedsConfig{
			Timeout: "10s",
			Roster:  defaultRoster(),
		},
		Analysis: AnalysisConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			MaxAttempts: 3,
			RetryDelay:  "1s",
		},
		Cache: CacheConfig{
			Driver: "none",
			Path:   "./trendpulse.db",
			TTL:    "30m",
		},
		Schedule: ScheduleConfig{Prewarm: "@every 30m"},
		Alerts: AlertsConfig{
			Limit:      5,
			MinHotness: 0.6,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

func defaultRoster() []FeedConfig {
	return []FeedConfig{
		{URL: "https://vnexpress.net/rss/tin-moi-nhat.rss", Name: "VNExpress", Category: "News", Region: "vn"},
		{URL: "https://vnexpress.net/rss/the-gioi.rss", Name: "VNExpress World", Category: "Politics", Region: "vn"},
		{URL: "https://vnexpress.net/rss/kinh-doanh.rss", Name: "VNExpress Business", Category: "Business", Region: "vn"},
		{URL: "https://vnexpress.net/rss/so-hoa.rss", Name: "VNExpress Technology", Category: "Technology", Region: "vn"},
		{URL: "https://vnexpress.net/rss/giai-tri.rss", Name: "VNExpress Entertainment", Category: "Entertainment", Region: "vn"},
		{URL: "https://vnexpress.net/rss/the-thao.rss", Name: "VNExpress Sports", Category: "Sports", Region: "vn"},
		{URL: "https://vnexpress.net/rss/du-lich.rss", Name: "VNExpress Travel", Category: "Travel", Region: "vn"},
		{URL: "https://tuoitre.vn/rss/giao-duc.rss", Name: "Tuổi Trẻ Education", Category: "Education", Region: "vn"},
		{URL: "https://afamily.vn/rss/home.rss", Name: "Afamily", Category: "Family", Region: "vn"},
		{URL: "https://suckhoedoisong.vn/rss/home.rss", Name: "Sức Khỏe & Đời Sống", Category: "Health", Region: "vn"},
		{URL: "https://zingnews.vn/rss/giai-tri.rss", Name: "ZingNews Entertainment", Category: "Entertainment", Region: "vn", Tags: []string{"Vietnam", "Entertainment"}},
		{URL: "https://venturebeat.com/feed/", Name: "VentureBeat AI", Category: "AI", Region: "us", Tags: []string{"VentureBeat", "AI"}},
		{URL: "https://www.technologyreview.com/feed/", Name: "MIT Technology Review", Category: "AI", Region: "global", Tags: []string{"AI", "Research"}},
		{URL: "https://www.theguardian.com/technology/ai/rss", Name: "Guardian AI", Category: "AI", Region: "uk", Tags: []string{"UK", "AI"}},
		{URL: "https://www.euronews.com/next/rss", Name: "Euronews Next (AI)", Category: "AI", Region: "eu", Tags: []string{"EU", "AI"}},
		{URL: "https://technode.com/feed/", Name: "TechNode AI", Category: "AI", Region: "cn", Tags: []string{"China", "AI"}},
		{URL: "https://vnexpress.net/rss/khoa-hoc.rss", Name: "VNExpress AI", Category: "AI", Region: "vn", Tags: []string{"Vietnam", "AI"}},
		{URL: "https://www.archaeology.org/rss.xml", Name: "Archaeology Magazine", Category: "Archaeology", Region: "us", Tags: []string{"Archaeology"}},
		{URL: "https://www.heritagedaily.com/category/archaeology/feed", Name: "HeritageDaily", Category: "Archaeology", Region: "global", Tags: []string{"Archaeology"}},
		{URL: "https://www.chinadaily.com.cn/rss/cnews.xml", Name: "China Daily", Category: "News", Region: "cn"},
		{URL: "https://pandaily.com/feed/", Name: "Pandaily", Category: "Technology", Region: "cn"},
		{URL: "https://techcrunch.com/feed/", Name: "TechCrunch", Category: "Technology", Region: "us"},
		{URL: "https://www.vogue.com/feed/rss", Name: "Vogue", Category: "Fashion", Region: "us"},
		{URL: "http://feeds.bbci.co.uk/news/rss.xml", Name: "BBC News", Category: "News", Region: "uk"},
		{URL: "https://www.caranddriver.com/rss/all.xml/", Name: "Car and Driver", Category: "Cars", Region: "us", Tags: []string{"Cars"}},
		{URL: "https://www.topgear.com/feeds/all/rss.xml", Name: "Top Gear", Category: "Cars", Region: "uk", Tags: []string{"Cars"}},
		{URL: "https://europe.autonews.com/rss", Name: "Autonews Europe", Category: "Cars", Region: "eu", Tags: []string{"Cars"}},
		{URL: "https://www.autohome.com.cn/rss", Name: "Autohome", Category: "Cars", Region: "cn", Tags: []string{"China", "Cars"}},
		{URL: "https://vnexpress.net/rss/oto-xe-may.rss", Name: "VNExpress Auto", Category: "Cars", Region: "vn", Tags: []string{"Vietnam", "Cars"}},
	}
}

// Load reads configuration from a YAML file, then .env, then applies env
// var overrides.
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

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.NewsAPI.APIKey = v
	}
	if v := os.Getenv("ANALYSIS_PROVIDER"); v != "" {
		cfg.Analysis.Provider = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Analysis.GeminiAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Analysis.OpenAIAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Analysis.AnthropicAPIKey = v
	}
	if v := os.Getenv("TRENDPULSE_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
		cfg.Cache.Driver = "redis"
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
