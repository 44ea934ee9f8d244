package pipeline

import (
	"fmt"
	"io"

	"github.com/sean-public/ackshually/internal/model"
)

// Renderer writes the per-citation report to the console. Presentation
// only; nothing here is part of the core contract.
type Renderer struct {
	out        io.Writer
	errOut     io.Writer
	verbose    bool
	excerptLen int
}

// NewRenderer creates a renderer writing results to out and diagnostics to
// errOut.
func NewRenderer(out, errOut io.Writer, verbose bool, excerptLen int) *Renderer {
	if excerptLen <= 0 {
		excerptLen = 90
	}
	return &Renderer{out: out, errOut: errOut, verbose: verbose, excerptLen: excerptLen}
}

// Retry reports a discarded article attempt.
func (r *Renderer) Retry(attempt int, err error) {
	if r.verbose {
		fmt.Fprintf(r.errOut, "attempt %d: %v, selecting another article\n", attempt, err)
	}
}

// Article announces the article being checked.
func (r *Renderer) Article(article *model.Article, citationCount int) {
	fmt.Fprintf(r.out, "%s\n%s\n\n", article.Title, article.URL)
	if r.verbose {
		fmt.Fprintf(r.errOut, "found %d citations\n", citationCount)
	}
}

// Citation prints the sentence excerpt and source URL for one citation.
func (r *Renderer) Citation(index int, citation model.Citation) {
	excerpt := citation.Sentence
	if runes := []rune(excerpt); len(runes) > r.excerptLen {
		excerpt = "..." + string(runes[len(runes)-r.excerptLen:])
	}
	fmt.Fprintf(r.out, "Citation %d: %s\n", index, excerpt)
	fmt.Fprintf(r.out, "\t%s\n", citation.URL)
}

// Unavailable reports a citation whose content could not be resolved.
func (r *Renderer) Unavailable(err error) {
	fmt.Fprintf(r.out, "\tContent unavailable: %v\n\n", err)
}

// CheckFailed reports a model invocation failure.
func (r *Renderer) CheckFailed(err error) {
	fmt.Fprintf(r.out, "\tFact check failed: %v\n\n", err)
}

// Verdict prints the model's verdict for one citation.
func (r *Renderer) Verdict(result model.FactCheckResult) {
	fmt.Fprintf(r.out, "\tSupported: %t\n", result.Supported)
	fmt.Fprintf(r.out, "\tExplanation: %s\n\n", result.Explanation)
}
