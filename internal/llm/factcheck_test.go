package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sean-public/ackshually/internal/model"
)

type fakeProvider struct {
	response string
	err      error
	lastReq  GenerateRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	p.lastReq = req
	return p.response, p.err
}

func (p *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func TestFactChecker_Check(t *testing.T) {
	provider := &fakeProvider{
		response: `{"reference_supports_citation": true, "brief_explanation": "Confirmed by the source."}`,
	}
	checker := NewFactChecker(provider, Config{Model: "test-model", MaxTokens: 700})

	citation := model.Citation{Sentence: "Water boils at 100°C.", URL: "http://a.example"}
	result, err := checker.Check(context.Background(), citation, "reference content about boiling points")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if !result.Supported || result.Explanation != "Confirmed by the source." {
		t.Errorf("unexpected result: %+v", result)
	}
	if provider.lastReq.Model != "test-model" {
		t.Errorf("expected configured model, got %q", provider.lastReq.Model)
	}
	if !provider.lastReq.JSONFormat {
		t.Error("expected JSON response format to be requested")
	}
	if !strings.Contains(provider.lastReq.Prompt, citation.Sentence) {
		t.Error("prompt missing citation sentence")
	}
	if !strings.Contains(provider.lastReq.Prompt, citation.URL) {
		t.Error("prompt missing citation URL")
	}
	if !strings.Contains(provider.lastReq.Prompt, "reference content about boiling points") {
		t.Error("prompt missing resolved content")
	}
}

func TestFactChecker_MalformedResponseDegrades(t *testing.T) {
	provider := &fakeProvider{response: "the source totally supports it"}
	checker := NewFactChecker(provider, Config{Model: "m"})

	result, err := checker.Check(context.Background(), model.Citation{}, "content")
	if err != nil {
		t.Fatalf("malformed verdicts must not error: %v", err)
	}
	if result.Supported {
		t.Error("expected unsupported default")
	}
	if !strings.HasPrefix(result.Explanation, "Failed to parse LLM response: ") {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
}

func TestFactChecker_ProviderErrorSurfaces(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	checker := NewFactChecker(provider, Config{Model: "m"})

	_, err := checker.Check(context.Background(), model.Citation{}, "content")
	if err == nil {
		t.Fatal("expected provider error to surface")
	}
}

func TestBuildPrompt_MandatesSchema(t *testing.T) {
	prompt := BuildPrompt(model.Citation{Sentence: "s", URL: "u"}, "c")

	for _, want := range []string{"reference_supports_citation", "brief_explanation", "JSON"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
