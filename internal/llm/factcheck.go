package llm

import (
	"context"
	"fmt"

	"github.com/sean-public/ackshually/internal/model"
)

// FactChecker glues prompt construction, model invocation, and verdict
// parsing together for the pipeline.
type FactChecker struct {
	provider  Provider
	model     string
	maxTokens int
}

// NewFactChecker creates a FactChecker on top of a configured provider.
func NewFactChecker(provider Provider, config Config) *FactChecker {
	return &FactChecker{
		provider:  provider,
		model:     config.Model,
		maxTokens: config.MaxTokens,
	}
}

// Check asks the model whether content supports the citation. A provider
// failure (network, API error) is returned to the caller; a malformed
// verdict is not — ParseVerdict degrades it to a negative default.
func (f *FactChecker) Check(ctx context.Context, citation model.Citation, content string) (model.FactCheckResult, error) {
	raw, err := f.provider.Generate(ctx, GenerateRequest{
		Model:      f.model,
		Prompt:     BuildPrompt(citation, content),
		JSONFormat: true,
		MaxTokens:  f.maxTokens,
	})
	if err != nil {
		return model.FactCheckResult{}, fmt.Errorf("%s generate: %w", f.provider.Name(), err)
	}

	return ParseVerdict(raw), nil
}
