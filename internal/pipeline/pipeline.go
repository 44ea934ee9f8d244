package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sean-public/ackshually/internal/extract"
	"github.com/sean-public/ackshually/internal/model"
)

// ArticleFinder supplies candidate articles. *ArticleSource implements it.
type ArticleFinder interface {
	Random(ctx context.Context) (*model.Article, error)
}

// ContentResolver resolves a citation URL to plain text. *Resolver
// implements it.
type ContentResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// FactChecker asks the model whether content supports a citation.
// llm.FactChecker implements it.
type FactChecker interface {
	Check(ctx context.Context, citation model.Citation, content string) (model.FactCheckResult, error)
}

// Pipeline drives the full run: search for a citation-bearing article, then
// resolve and fact-check each citation in document order. Processing is
// strictly sequential; citations share no state.
type Pipeline struct {
	finder      ArticleFinder
	extractor   *extract.CitationExtractor
	resolver    ContentResolver
	checker     FactChecker
	renderer    *Renderer
	maxAttempts int
}

// NewPipeline creates a pipeline from its collaborators.
func NewPipeline(finder ArticleFinder, resolver ContentResolver, checker FactChecker, renderer *Renderer, maxAttempts int) *Pipeline {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Pipeline{
		finder:      finder,
		extractor:   extract.NewCitationExtractor(),
		resolver:    resolver,
		checker:     checker,
		renderer:    renderer,
		maxAttempts: maxAttempts,
	}
}

// Run executes one complete fact-checking run. It returns an error only
// when the article search fails: a transport failure aborts immediately,
// and exhausting the attempt budget is ErrSearchExhausted. Per-citation
// failures are reported and skipped, never fatal.
func (p *Pipeline) Run(ctx context.Context) error {
	article, citations, err := p.findArticle(ctx)
	if err != nil {
		return err
	}

	p.processCitations(ctx, article, citations)
	return nil
}

// processCitations reports the article, then resolves and fact-checks each
// citation in document order. Per-citation failures are reported and
// skipped.
func (p *Pipeline) processCitations(ctx context.Context, article *model.Article, citations []model.Citation) {
	p.renderer.Article(article, len(citations))

	for i, citation := range citations {
		p.renderer.Citation(i+1, citation)

		content, err := p.resolver.Resolve(ctx, citation.URL)
		if err != nil {
			p.renderer.Unavailable(err)
			continue
		}

		verdict, err := p.checker.Check(ctx, citation, content)
		if err != nil {
			p.renderer.CheckFailed(err)
			continue
		}

		p.renderer.Verdict(verdict)
	}
}

// findArticle searches for an article with at least one resolvable
// citation, bounded by the configured attempt budget. Structure problems
// and citation-less articles trigger re-selection; transport errors abort.
func (p *Pipeline) findArticle(ctx context.Context) (*model.Article, []model.Citation, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		article, err := p.finder.Random(ctx)
		if err != nil {
			if errors.Is(err, ErrArticleStructure) {
				p.renderer.Retry(attempt, err)
				continue
			}
			return nil, nil, fmt.Errorf("article search: %w", err)
		}

		citations := p.extractor.Extract(article.Content)
		if len(citations) == 0 {
			p.renderer.Retry(attempt, fmt.Errorf("%s: %w", article.URL, ErrNoCitations))
			continue
		}

		return article, citations, nil
	}

	return nil, nil, fmt.Errorf("after %d attempts: %w", p.maxAttempts, ErrSearchExhausted)
}

// CheckURL runs the per-citation phase against one specific article instead
// of searching. Used by `check <url>`.
func (p *Pipeline) CheckURL(ctx context.Context, source *ArticleSource, rawURL string) error {
	article, err := source.Get(ctx, rawURL)
	if err != nil {
		return err
	}

	citations := p.extractor.Extract(article.Content)
	if len(citations) == 0 {
		return fmt.Errorf("%s: %w", article.URL, ErrNoCitations)
	}

	p.processCitations(ctx, article, citations)
	return nil
}
