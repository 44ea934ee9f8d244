package llm

import (
	"context"

	"github.com/sean-public/ackshually/internal/model"
)

// Provider defines the interface for LLM backends. The prompt goes in, raw
// response text comes out; everything past that boundary is untrusted.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a completion for the given request
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one model invocation.
type GenerateRequest struct {
	// Model is the specific model to use (provider-specific)
	Model string

	// Prompt is the complete prompt text
	Prompt string

	// JSONFormat requests a structured (JSON-only) response where the
	// provider supports it
	JSONFormat bool

	// MaxTokens limits the response length
	MaxTokens int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "ollama", "openai", "anthropic"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
	}
}
