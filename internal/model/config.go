package model

import "time"

// Config is the immutable configuration threaded into the pipeline at
// construction time. Nothing in the pipeline reads ambient global state.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http" mapstructure:"http"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// HTTPConfig controls the scraping HTTP clients.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// SearchConfig holds search-engine and video-platform API settings.
// Keys come from config or environment; the pipeline never loads
// credentials itself.
type SearchConfig struct {
	GoogleAPIKey   string `yaml:"google_api_key" mapstructure:"google_api_key"`
	GoogleEngineID string `yaml:"google_engine_id" mapstructure:"google_engine_id"`
	YouTubeAPIKey  string `yaml:"youtube_api_key" mapstructure:"youtube_api_key"`
	MaxResults     int    `yaml:"max_results" mapstructure:"max_results"`
	MaxThreads     int    `yaml:"max_threads" mapstructure:"max_threads"` // Pages scraped per source
}

// PipelineConfig bounds the whole pipeline run.
type PipelineConfig struct {
	Deadline         time.Duration `yaml:"deadline" mapstructure:"deadline"`                   // Shared wall-clock cutoff for all fetchers
	StrategyTimeout  time.Duration `yaml:"strategy_timeout" mapstructure:"strategy_timeout"`   // Per-strategy sub-deadline inside a fetcher
	MaxDescriptionLen int          `yaml:"max_description_len" mapstructure:"max_description_len"`
}

// ScoringConfig holds the ranking weights and thresholds. Externally
// tunable; never hardcoded inline.
type ScoringConfig struct {
	MentionWeight      float64 `yaml:"mention_weight" mapstructure:"mention_weight"`
	PopularityWeight   float64 `yaml:"popularity_weight" mapstructure:"popularity_weight"`
	SentimentWeight    float64 `yaml:"sentiment_weight" mapstructure:"sentiment_weight"`
	AttributeBonus     float64 `yaml:"attribute_bonus" mapstructure:"attribute_bonus"`
	SentimentThreshold float64 `yaml:"sentiment_threshold" mapstructure:"sentiment_threshold"` // Groups strictly below are dropped
}

// ValidationConfig holds the mention validation rules.
type ValidationConfig struct {
	MinLength     int      `yaml:"min_length" mapstructure:"min_length"`
	MaxLength     int      `yaml:"max_length" mapstructure:"max_length"`
	BrandDenylist []string `yaml:"brand_denylist" mapstructure:"brand_denylist"` // Bare brand names rejected without a model qualifier
}

// LLMConfig configures the optional language-understanding collaborator.
// An empty provider disables it; the pipeline degrades to pattern
// extraction and neutral sentiment.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, ""
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig controls the optional page/API response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"` // Empty keeps the cache memory-only
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateLimitConfig controls per-domain request pacing.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Modelscout/0.1 (+https://github.com/nleskov/modelscout)",
			MaxBodyBytes: 2_000_000,
		},
		Search: SearchConfig{
			MaxResults: 10,
			MaxThreads: 3,
		},
		Pipeline: PipelineConfig{
			Deadline:          30 * time.Second,
			StrategyTimeout:   12 * time.Second,
			MaxDescriptionLen: 280,
		},
		Scoring: ScoringConfig{
			MentionWeight:      1.0,
			PopularityWeight:   0.5,
			SentimentWeight:    2.0,
			AttributeBonus:     0.25,
			SentimentThreshold: -0.2,
		},
		Validation: ValidationConfig{
			MinLength: 4,
			MaxLength: 60,
			BrandDenylist: []string{
				"apple", "samsung", "sony", "lg", "dyson", "shark", "miele",
				"bosch", "dell", "hp", "lenovo", "asus", "acer", "msi",
				"intel", "amd", "nvidia", "bose", "jbl", "canon", "nikon",
				"logitech", "razer", "corsair", "microsoft", "google",
			},
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   20,
			MaxTokens: 300,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Server: ServerConfig{
			Port: 5001,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
