package llm

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sean-public/ackshually/internal/model"
)

// ParseVerdict validates a raw model response against the two-field verdict
// schema. Extra fields are discarded; a syntactically broken response or a
// missing/mistyped required field degrades to a negative default instead of
// an error. The model is an untrusted responder, so a malformed verdict
// must never halt the pipeline.
func ParseVerdict(raw string) model.FactCheckResult {
	var payload struct {
		Supported   *bool   `json:"reference_supports_citation"`
		Explanation *string `json:"brief_explanation"`
	}

	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return verdictParseFailure(err.Error(), raw)
	}
	if payload.Supported == nil {
		return verdictParseFailure("missing field reference_supports_citation", raw)
	}
	if payload.Explanation == nil {
		return verdictParseFailure("missing field brief_explanation", raw)
	}

	return model.FactCheckResult{
		Supported:   *payload.Supported,
		Explanation: *payload.Explanation,
	}
}

func verdictParseFailure(cause, raw string) model.FactCheckResult {
	fmt.Fprintf(os.Stderr, "Badly formatted LLM response: %s\n%s\n", cause, raw)
	return model.FactCheckResult{
		Supported:   false,
		Explanation: "Failed to parse LLM response: " + cause,
	}
}
