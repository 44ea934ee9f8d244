package llm

import (
	"fmt"

	"github.com/sean-public/ackshually/internal/model"
)

// factCheckTemplate mandates a JSON object with exactly the two verdict
// keys and nothing else. Placeholders: sentence, source URL, reference
// content.
const factCheckTemplate = `
You are a fact-checking assistant. Your task is to determine if the given citation is supported by the
provided reference content.

# System Preamble
Analyze the provided text citation from a scholarly article and the reference content that was meant to support it.
Determine if the reference supports the citation being checked.
Provide a brief explanation for your decision. Your explanation should be concise, ideally one sentence.

## Style Guide
Respond in JSON format with the following schema and NOTHING else:
{
"reference_supports_citation": boolean,
"brief_explanation": string
}

## Citation being checked
%s

## Reference source material
Source: %s

%s
`

// BuildPrompt formats the fact-check prompt for one citation and its
// resolved reference content.
func BuildPrompt(citation model.Citation, content string) string {
	return fmt.Sprintf(factCheckTemplate, citation.Sentence, citation.URL, content)
}
