package model

import "golang.org/x/net/html"

// Citation pairs a sentence from the article body with the external URL
// cited to support it.
type Citation struct {
	Sentence string `json:"sentence"` // Trimmed prose preceding the citation marker (may be empty)
	URL      string `json:"url"`      // Absolute external URL resolved from the footnote list
}

// FactCheckResult is the structured verdict returned by the LLM for a
// single citation. It always has exactly these two fields; anything else
// the model returns is discarded during parsing.
type FactCheckResult struct {
	Supported   bool   `json:"reference_supports_citation"`
	Explanation string `json:"brief_explanation"`
}

// Article is a fetched and structurally validated encyclopedia article.
// Content is the root of the article body tree and is never mutated.
type Article struct {
	Title   string
	URL     string
	Content *html.Node
}
