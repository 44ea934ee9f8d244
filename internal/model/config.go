package model

import "time"

// Config holds the complete runtime configuration. Everything the pipeline
// needs is passed in here explicitly; there is no global fallback state.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Article  ArticleConfig  `yaml:"article"`
	Resolver ResolverConfig `yaml:"resolver"`
	Cache    CacheConfig    `yaml:"cache"`
	Rate     RateConfig     `yaml:"rate"`
	Robots   RobotsConfig   `yaml:"robots"`
	LLM      LLMConfig      `yaml:"llm"`
	Output   OutputConfig   `yaml:"output"`
}

// HTTPConfig configures the shared HTTP fetcher.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// ArticleConfig configures article acquisition.
type ArticleConfig struct {
	// RandomURL is the endpoint that redirects to a random article.
	RandomURL string `yaml:"random_url"`
	// MaxAttempts bounds the search for an article with at least one
	// resolvable citation. Exhausting it ends the run with an error.
	MaxAttempts int `yaml:"max_attempts"`
}

// ResolverConfig configures citation content resolution.
type ResolverConfig struct {
	// MinLength is the minimum extracted-text length accepted from
	// either extraction stage.
	MinLength int `yaml:"min_length"`
}

// CacheConfig configures the fetched-page cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"` // Disk layer; empty disables it
	TTL     time.Duration `yaml:"ttl"`
}

// RateConfig configures per-domain request throttling.
type RateConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// RobotsConfig configures robots.txt compliance for citation fetches.
type RobotsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LLMConfig configures the fact-checking model.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // ollama, openai, anthropic
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // From environment only, never serialized
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// OutputConfig configures console reporting.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	// ExcerptLen is how many trailing characters of a citation sentence
	// are shown in the report.
	ExcerptLen int `yaml:"excerpt_len"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "ackshually/0.2 (+https://github.com/sean-public/ackshually)",
			MaxBodyBytes: 2_000_000,
		},
		Article: ArticleConfig{
			RandomURL:   "https://en.wikipedia.org/wiki/Special:Random",
			MaxAttempts: 10,
		},
		Resolver: ResolverConfig{
			MinLength: 200,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Rate: RateConfig{
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Robots: RobotsConfig{
			Enabled: true,
		},
		LLM: LLMConfig{
			Provider:  "ollama",
			Model:     "command-r-longctx:latest",
			BaseURL:   "",
			Timeout:   120,
			MaxTokens: 1000,
		},
		Output: OutputConfig{
			ExcerptLen: 90,
		},
	}
}
