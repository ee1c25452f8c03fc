package model

import "time"

// Config is the full taxlens configuration
type Config struct {
	Catalogue    CatalogueConfig    `yaml:"catalogue" mapstructure:"catalogue"`
	Detector     DetectorConfig     `yaml:"detector" mapstructure:"detector"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// CatalogueConfig points at an optional guideline override file
type CatalogueConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // YAML overrides; empty uses built-in guidelines
}

// DetectorConfig selects the red flag detectors
type DetectorConfig struct {
	Rules bool `yaml:"rules" mapstructure:"rules"` // Built-in static rules
	LLM   bool `yaml:"llm" mapstructure:"llm"`     // LLM reviewer (requires llm.provider)

	CashThreshold   float64 `yaml:"cash_threshold" mapstructure:"cash_threshold"`       // Cash amounts at or above this are flagged
	RoundAmountsMin int     `yaml:"round_amounts_min" mapstructure:"round_amounts_min"` // Round-thousand amounts needed to flag
}

// LLMConfig configures the optional LLM provider
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, ollama, or empty to disable
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Summary   bool   `yaml:"summary" mapstructure:"summary"` // Generate a narrative summary
}

// HTTPConfig configures remote document fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the report cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig bounds calls to the LLM provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	IncludeGuide  bool `yaml:"include_guide" mapstructure:"include_guide"` // Render the guideline in Markdown
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			Rules:           true,
			CashThreshold:   10000,
			RoundAmountsMin: 3,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 1000,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "taxlens/0.1 (+https://github.com/ppiankov/taxlens)",
			MaxBodyBytes: 5_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".taxlens-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			IncludeGuide:  true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
