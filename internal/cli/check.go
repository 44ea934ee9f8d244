package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sean-public/ackshually/internal/cache"
	"github.com/sean-public/ackshually/internal/llm"
	"github.com/sean-public/ackshually/internal/model"
	"github.com/sean-public/ackshually/internal/pipeline"
	"github.com/sean-public/ackshually/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	runTimeout  time.Duration
	httpTimeout time.Duration
	userAgent   string
	maxBytes    int64
	insecureTLS bool
	noCache     bool
	cacheDir    string
	noRobots    bool
	minLength   int
	maxAttempts int
	rps         float64
	llmProvider string
	llmModel    string
	llmBaseURL  string
	llmTokens   int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [article-url]",
	Short: "Fact-check the citations of a random (or given) article",
	Long: `Check finds an article with at least one resolvable inline citation,
then for each citation:
- resolves the cited source URL to readable text (two extraction stages)
- asks the configured LLM whether the source supports the sentence
- prints the verdict

With no argument a random article is selected; articles without usable
citations are discarded and another is drawn, up to a bounded number of
attempts.

Example:
  ackshually check
  ackshually check https://en.wikipedia.org/wiki/Laksa
  ackshually check --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// HTTP flags
	checkCmd.Flags().DurationVar(&runTimeout, "timeout", 15*time.Minute, "overall run timeout (many slow model calls add up)")
	checkCmd.Flags().DurationVar(&httpTimeout, "http-timeout", 10*time.Second, "per-request HTTP timeout")
	checkCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	checkCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	checkCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the fetched-page cache")
	checkCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "also persist fetched pages to this directory")
	checkCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	checkCmd.Flags().Float64Var(&rps, "rps", 1, "max requests per second per domain")

	// Pipeline flags
	checkCmd.Flags().IntVar(&minLength, "min-length", 200, "minimum accepted length of extracted reference text")
	checkCmd.Flags().IntVar(&maxAttempts, "max-attempts", 10, "max random articles to try before giving up")

	// LLM flags
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (ollama, openai, anthropic)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	checkCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "LLM endpoint base URL (e.g. http://ollama:11434)")
	checkCmd.Flags().IntVar(&llmTokens, "llm-max-tokens", 0, "max tokens per model response")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := buildConfig()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	if !provider.IsAvailable(ctx) {
		return fmt.Errorf("%s provider is not available (check the endpoint and credentials)", provider.Name())
	}

	fetcher := pipeline.NewFetcher(cfg.HTTP)
	if cfg.Cache.Enabled {
		fetcher.WithCache(buildCache(cfg.Cache), cfg.Cache.TTL)
	}
	if cfg.Robots.Enabled {
		fetcher.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout))
	}
	fetcher.WithLimiter(util.NewLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst))

	source := pipeline.NewArticleSource(fetcher, cfg.Article.RandomURL)
	resolver := pipeline.NewResolver(fetcher, cfg.Resolver.MinLength)
	checker := llm.NewFactChecker(provider, llm.ConfigFromModel(cfg.LLM))
	renderer := pipeline.NewRenderer(os.Stdout, os.Stderr, cfg.Output.Verbose, cfg.Output.ExcerptLen)

	p := pipeline.NewPipeline(source, resolver, checker, renderer, cfg.Article.MaxAttempts)

	if len(args) == 1 {
		return p.CheckURL(ctx, source, args[0])
	}
	return p.Run(ctx)
}

// buildConfig layers defaults, the config file/environment, and flags.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	// Config file / environment overrides
	for key, target := range map[string]*string{
		"llm.provider": &cfg.LLM.Provider,
		"llm.model":    &cfg.LLM.Model,
		"llm.base_url": &cfg.LLM.BaseURL,
	} {
		if viper.IsSet(key) {
			*target = viper.GetString(key)
		}
	}
	if viper.IsSet("article.max_attempts") {
		cfg.Article.MaxAttempts = viper.GetInt("article.max_attempts")
	}
	if viper.IsSet("resolver.min_length") {
		cfg.Resolver.MinLength = viper.GetInt("resolver.min_length")
	}
	if viper.IsSet("http.user_agent") {
		cfg.HTTP.UserAgent = viper.GetString("http.user_agent")
	}

	// Flag overrides
	cfg.HTTP.Timeout = httpTimeout
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.InsecureTLS = insecureTLS
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Robots.Enabled = !noRobots
	cfg.Rate.RequestsPerSecond = rps
	cfg.Resolver.MinLength = minLength
	cfg.Article.MaxAttempts = maxAttempts
	cfg.Output.Verbose = verbose
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if llmBaseURL != "" {
		cfg.LLM.BaseURL = llmBaseURL
	}
	if llmTokens > 0 {
		cfg.LLM.MaxTokens = llmTokens
	}

	return cfg
}

// buildProvider wires API keys from the environment and constructs the LLM
// provider.
func buildProvider(cfg *model.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
}

func buildCache(cfg model.CacheConfig) cache.Cache {
	if cfg.Dir != "" {
		return cache.NewLayeredCache(cfg.TTL, cfg.Dir, 24*time.Hour)
	}
	return cache.NewMemoryCache(cfg.TTL, 10*time.Minute)
}
