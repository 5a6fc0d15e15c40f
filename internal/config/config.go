package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"diderot/internal/core"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Feeds    Feeds    `mapstructure:"feeds"`
	Search   Search   `mapstructure:"search"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Cache    Cache    `mapstructure:"cache"`
	Server   Server   `mapstructure:"server"`
	Schedule Schedule `mapstructure:"schedule"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds text generation configuration. Provider selects which credential is required.
type AI struct {
	Provider          string          `mapstructure:"provider"`
	Model             string          `mapstructure:"model"`
	Temperature       float64         `mapstructure:"temperature"`
	MaxTokens         int             `mapstructure:"max_tokens"`
	Timeout           string          `mapstructure:"timeout"`
	RequestsPerMinute int             `mapstructure:"requests_per_minute"`
	MaxRetries        int             `mapstructure:"max_retries"`
	OpenAI            OpenAIConfig    `mapstructure:"openai"`
	Gemini            GeminiConfig    `mapstructure:"gemini"`
	Anthropic         AnthropicConfig `mapstructure:"anthropic"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// AnthropicConfig holds Anthropic configuration
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Feeds holds RSS/Atom headline feed configuration
type Feeds struct {
	URLs            []string `mapstructure:"urls"`
	UserAgent       string   `mapstructure:"user_agent"`
	Timeout         string   `mapstructure:"timeout"`
	MaxItemsPerFeed int      `mapstructure:"max_items_per_feed"`
}

// Search holds article discovery configuration
type Search struct {
	Provider   string          `mapstructure:"provider"`
	MaxResults int             `mapstructure:"max_results"`
	Timeout    string          `mapstructure:"timeout"`
	Language   string          `mapstructure:"language"`
	Providers  SearchProviders `mapstructure:"providers"`
}

// SearchProviders holds configuration for all search providers
type SearchProviders struct {
	Google     GoogleSearchConfig `mapstructure:"google"`
	DuckDuckGo DuckDuckGoConfig   `mapstructure:"duckduckgo"`
}

// GoogleSearchConfig holds Google Custom Search configuration
type GoogleSearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	SearchID string `mapstructure:"search_id"`
}

// DuckDuckGoConfig holds DuckDuckGo configuration
type DuckDuckGoConfig struct {
	RateLimit string `mapstructure:"rate_limit"`
}

// Pipeline holds report generation limits
type Pipeline struct {
	MaxHeadlines           int  `mapstructure:"max_headlines"`
	MinArticles            int  `mapstructure:"min_articles"`
	MaxArticles            int  `mapstructure:"max_articles"`
	CorroborationThreshold int  `mapstructure:"corroboration_threshold"`
	FetchContent           bool `mapstructure:"fetch_content"`
	ContentLimit           int  `mapstructure:"content_limit"`
}

// Cache holds the daily report archive and topic cache configuration
type Cache struct {
	ReportsDir string    `mapstructure:"reports_dir"`
	Directory  string    `mapstructure:"directory"`
	TTL        TTLConfig `mapstructure:"ttl"`
}

// TTLConfig holds TTL configuration for cached content
type TTLConfig struct {
	Summaries string `mapstructure:"summaries"`
	Articles  string `mapstructure:"articles"`
}

// Server holds web server configuration
type Server struct {
	Host         string     `mapstructure:"host"`
	Port         int        `mapstructure:"port"`
	ReadTimeout  string     `mapstructure:"read_timeout"`
	WriteTimeout string     `mapstructure:"write_timeout"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Schedule holds the background generation schedule. An empty cron expression disables it.
type Schedule struct {
	Cron string `mapstructure:"cron"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultFeeds are the headline feeds used when none are configured.
var DefaultFeeds = []string{
	"https://news.google.com/rss",
	"https://news.google.com/rss/sections/topic/WORLD",
	"https://news.google.com/rss/sections/topic/POLITICS",
}

var globalConfig *Config

// Load loads and validates the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := Read(configFile)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Read loads the configuration without validating it. Commands that only read
// stored reports, or that report problems themselves, use it.
func Read(configFile string) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".diderot")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".diderot")

	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.model", "gpt-4o")
	viper.SetDefault("ai.temperature", 0.1)
	viper.SetDefault("ai.max_tokens", 4000)
	viper.SetDefault("ai.timeout", "120s")
	viper.SetDefault("ai.requests_per_minute", 60)
	viper.SetDefault("ai.max_retries", 2)

	viper.SetDefault("feeds.urls", DefaultFeeds)
	viper.SetDefault("feeds.user_agent", "Diderot/1.0")
	viper.SetDefault("feeds.timeout", "30s")
	viper.SetDefault("feeds.max_items_per_feed", 20)

	viper.SetDefault("search.provider", "none")
	viper.SetDefault("search.max_results", 2)
	viper.SetDefault("search.timeout", "15s")
	viper.SetDefault("search.language", "en")
	viper.SetDefault("search.providers.duckduckgo.rate_limit", "1s")

	viper.SetDefault("pipeline.max_headlines", 10)
	viper.SetDefault("pipeline.min_articles", 3)
	viper.SetDefault("pipeline.max_articles", 6)
	viper.SetDefault("pipeline.corroboration_threshold", 2)
	viper.SetDefault("pipeline.fetch_content", false)
	viper.SetDefault("pipeline.content_limit", 2000)

	viper.SetDefault("cache.reports_dir", "daily_reports")
	viper.SetDefault("cache.directory", ".diderot-cache")
	viper.SetDefault("cache.ttl.summaries", "168h")
	viper.SetDefault("cache.ttl.articles", "24h")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30m")
	viper.SetDefault("server.cors.enabled", false)

	viper.SetDefault("schedule.cron", "")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
		"GOOGLE_API_KEY",
	})

	bindEnvKeys("ai.anthropic.api_key", []string{
		"ANTHROPIC_API_KEY",
	})

	bindEnvKeys("ai.provider", []string{
		"DIDEROT_PROVIDER",
		"AI_PROVIDER",
	})

	bindEnvKeys("ai.model", []string{
		"DIDEROT_MODEL",
		"OPENAI_MODEL",
	})

	bindEnvKeys("search.providers.google.api_key", []string{
		"GOOGLE_CUSTOM_SEARCH_API_KEY",
		"GOOGLE_CSE_API_KEY",
		"NEWS_API_KEY",
	})

	bindEnvKeys("search.providers.google.search_id", []string{
		"GOOGLE_CUSTOM_SEARCH_ID",
		"GOOGLE_CSE_ID",
	})

	bindEnvKeys("search.provider", []string{
		"SEARCH_PROVIDER",
	})

	bindEnvKeys("cache.reports_dir", []string{
		"DIDEROT_REPORTS_DIR",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"DIDEROT_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.Search.Provider = strings.ToLower(strings.TrimSpace(config.Search.Provider))

	if config.Cache.Directory != "" {
		config.Cache.Directory = expandPath(config.Cache.Directory)
	}
	if config.Cache.ReportsDir != "" {
		config.Cache.ReportsDir = expandPath(config.Cache.ReportsDir)
	}
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}

	durations := map[string]string{
		"ai.timeout":                             config.AI.Timeout,
		"feeds.timeout":                          config.Feeds.Timeout,
		"search.timeout":                         config.Search.Timeout,
		"search.providers.duckduckgo.rate_limit": config.Search.Providers.DuckDuckGo.RateLimit,
		"cache.ttl.summaries":                    config.Cache.TTL.Summaries,
		"cache.ttl.articles":                     config.Cache.TTL.Articles,
		"server.read_timeout":                    config.Server.ReadTimeout,
		"server.write_timeout":                   config.Server.WriteTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present. Missing credentials or
// model are reported as core.ErrConfiguration.
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "openai", "gemini", "anthropic":
		if config.APIKey() == "" {
			errors = append(errors, fmt.Sprintf("%s API key is required. Set %s environment variable or ai.%s.api_key in config file.",
				config.AI.Provider, apiKeyEnv(config.AI.Provider), config.AI.Provider))
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: openai, gemini, anthropic", config.AI.Provider))
	}

	if strings.TrimSpace(config.AI.Model) == "" {
		errors = append(errors, "Model identifier is required. Set DIDEROT_MODEL or ai.model in config file.")
	}

	switch config.Search.Provider {
	case "google":
		if config.Search.Providers.Google.APIKey == "" || config.Search.Providers.Google.SearchID == "" {
			errors = append(errors, "Google Custom Search requires both API key and Search ID. Set GOOGLE_CUSTOM_SEARCH_API_KEY and GOOGLE_CUSTOM_SEARCH_ID")
		}
	case "duckduckgo", "none", "":
	default:
		errors = append(errors, fmt.Sprintf("Unknown search provider: %s. Supported: google, duckduckgo, none", config.Search.Provider))
	}

	p := config.Pipeline
	if p.MaxHeadlines <= 0 {
		errors = append(errors, "pipeline.max_headlines must be positive")
	}
	if p.MinArticles <= 0 || p.MaxArticles < p.MinArticles {
		errors = append(errors, fmt.Sprintf("pipeline article bounds are invalid: min=%d max=%d", p.MinArticles, p.MaxArticles))
	}
	if p.CorroborationThreshold < 1 {
		errors = append(errors, "pipeline.corroboration_threshold must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%w: configuration errors:\n- %s", core.ErrConfiguration, strings.Join(errors, "\n- "))
	}

	return nil
}

func apiKeyEnv(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	switch c.AI.Provider {
	case "gemini":
		return c.AI.Gemini.APIKey
	case "anthropic":
		return c.AI.Anthropic.APIKey
	default:
		return c.AI.OpenAI.APIKey
	}
}

// AITimeout returns the parsed generation timeout.
func (c *Config) AITimeout() time.Duration {
	return parseDurationOr(c.AI.Timeout, 120*time.Second)
}

// FeedTimeout returns the parsed feed fetch timeout.
func (c *Config) FeedTimeout() time.Duration {
	return parseDurationOr(c.Feeds.Timeout, 30*time.Second)
}

// SearchTimeout returns the parsed search timeout.
func (c *Config) SearchTimeout() time.Duration {
	return parseDurationOr(c.Search.Timeout, 15*time.Second)
}

// SummaryTTL returns how long cached neutral summaries stay valid.
func (c *Config) SummaryTTL() time.Duration {
	return parseDurationOr(c.Cache.TTL.Summaries, 168*time.Hour)
}

// ServerReadTimeout returns the HTTP read timeout.
func (c *Config) ServerReadTimeout() time.Duration {
	return parseDurationOr(c.Server.ReadTimeout, 15*time.Second)
}

// ServerWriteTimeout returns the HTTP write timeout. It bounds a synchronous
// generation request from the web UI.
func (c *Config) ServerWriteTimeout() time.Duration {
	return parseDurationOr(c.Server.WriteTimeout, 30*time.Minute)
}

// ArticleTTL returns how long cached article bodies stay valid.
func (c *Config) ArticleTTL() time.Duration {
	return parseDurationOr(c.Cache.TTL.Articles, 24*time.Hour)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Status is the result of a configuration check.
type Status struct {
	Provider       string
	AIConfigured   bool
	SearchProvider string
	Errors         []string
	Warnings       []string
}

// Check inspects the configuration without failing, reporting errors and warnings.
func Check(config *Config) Status {
	status := Status{
		Provider:       config.AI.Provider,
		AIConfigured:   config.APIKey() != "",
		SearchProvider: config.Search.Provider,
	}

	key := config.APIKey()
	switch {
	case key == "":
		status.Errors = append(status.Errors, fmt.Sprintf("%s API key not configured", config.AI.Provider))
	case !isValidAPIKey(key):
		status.Warnings = append(status.Warnings, fmt.Sprintf("Using placeholder %s API key", config.AI.Provider))
	}

	if config.AI.Model == "" {
		status.Errors = append(status.Errors, "model identifier not configured")
	}

	if config.Search.Provider == "" || config.Search.Provider == "none" {
		status.Warnings = append(status.Warnings, "News search not configured (will use feeds and generated sources only)")
	}

	if len(config.Feeds.URLs) == 0 {
		status.Warnings = append(status.Warnings, "No headline feeds configured (headlines will be generated)")
	}

	return status
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key-here", "your-api-key", "your-openai-key", "YOUR_API_KEY",
		"PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
