package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// ExtractFunc is one text-extraction algorithm: markup in, plain text out.
// Empty output with a nil error means the algorithm found nothing usable.
type ExtractFunc func(pageURL *url.URL, markup string) (string, error)

// Resolver turns a citation URL into validated plain-text content.
//
// No single boilerplate-removal heuristic handles heterogeneous pages
// reliably, so two independent algorithms are chained behind one
// minimum-length acceptance gate: a recall-favoring extractor first, a
// readability-style extractor as fallback. Stage selection depends only on
// the fetched markup, so resolution is deterministic per snapshot.
type Resolver struct {
	fetcher   *Fetcher
	primary   ExtractFunc
	fallback  ExtractFunc
	minLength int
}

// NewResolver creates a Resolver with the default extraction stages.
func NewResolver(fetcher *Fetcher, minLength int) *Resolver {
	if minLength <= 0 {
		minLength = 200
	}
	return &Resolver{
		fetcher:   fetcher,
		primary:   extractRecall,
		fallback:  extractReadability,
		minLength: minLength,
	}
}

// WithStages overrides the extraction algorithms (used in tests).
func (r *Resolver) WithStages(primary, fallback ExtractFunc) *Resolver {
	r.primary = primary
	r.fallback = fallback
	return r
}

// Resolve fetches the URL and returns extracted plain text of at least the
// configured minimum length. Transient fetch failures are retried; a final
// fetch failure is returned directly, while both stages coming up short is
// ErrContentUnavailable.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	result, err := r.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch citation page: %w", err)
	}

	parsed, err := url.Parse(result.FinalURL)
	if err != nil {
		parsed = nil
	}

	if text, err := r.primary(parsed, result.HTML); err == nil {
		if text = strings.TrimSpace(text); len(text) >= r.minLength {
			return text, nil
		}
	}

	if text, err := r.fallback(parsed, result.HTML); err == nil {
		if text = strings.TrimSpace(text); len(text) >= r.minLength {
			return text, nil
		}
	}

	return "", fmt.Errorf("%s: %w", rawURL, ErrContentUnavailable)
}

// extractRecall is the primary stage: trafilatura tuned for recall, with
// links, images, and comments excluded.
func extractRecall(pageURL *url.URL, markup string) (string, error) {
	result, err := trafilatura.Extract(strings.NewReader(markup), trafilatura.Options{
		OriginalURL:     pageURL,
		Focus:           trafilatura.FavorRecall,
		ExcludeComments: true,
		IncludeImages:   false,
		IncludeLinks:    false,
	})
	if err != nil {
		return "", err
	}
	return result.ContentText, nil
}

// extractReadability is the fallback stage: readability's content block,
// stripped of markup to plain text.
func extractReadability(pageURL *url.URL, markup string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(markup), pageURL)
	if err != nil {
		return "", err
	}
	return stripMarkup(article.Content), nil
}

// stripMarkup flattens HTML to plain text, joining text fragments with
// single spaces.
func stripMarkup(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var fragments []string
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				fragments = append(fragments, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(doc)

	return strings.Join(fragments, " ")
}
