package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/sean-public/ackshually/internal/model"
	"golang.org/x/net/html"
)

// ArticleSource acquires random encyclopedia articles and validates their
// structure. It wraps the shared Fetcher; following the random-article
// redirect yields the concrete article URL.
type ArticleSource struct {
	fetcher   *Fetcher
	randomURL string
}

// NewArticleSource creates an ArticleSource using the given random-article
// endpoint (e.g. Wikipedia's Special:Random).
func NewArticleSource(fetcher *Fetcher, randomURL string) *ArticleSource {
	return &ArticleSource{fetcher: fetcher, randomURL: randomURL}
}

// Random fetches one random article and parses it. Transient transport
// failures are retried; a final one is returned as-is (fatal for the
// search), while a page missing the expected title or body elements returns
// ErrArticleStructure (retry with a new article).
func (s *ArticleSource) Random(ctx context.Context) (*model.Article, error) {
	result, err := s.fetcher.FetchWithRetry(ctx, s.randomURL)
	if err != nil {
		return nil, fmt.Errorf("fetch random article: %w", err)
	}
	return ParseArticle(result.HTML, result.FinalURL)
}

// Get fetches and parses a specific article URL.
func (s *ArticleSource) Get(ctx context.Context, rawURL string) (*model.Article, error) {
	result, err := s.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}
	return ParseArticle(result.HTML, result.FinalURL)
}

// ParseArticle parses article markup and locates the title heading and the
// body content root. Either one missing is ErrArticleStructure.
func ParseArticle(htmlContent, pageURL string) (*model.Article, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse article html: %w", err)
	}

	title := findByID(doc, "firstHeading")
	content := findByID(doc, "mw-content-text")
	if title == nil || content == nil {
		return nil, fmt.Errorf("%s: %w", pageURL, ErrArticleStructure)
	}

	return &model.Article{
		Title:   strings.TrimSpace(textContent(title)),
		URL:     pageURL,
		Content: content,
	}, nil
}

// findByID returns the first element with the given id attribute.
func findByID(root *html.Node, id string) *html.Node {
	var result *html.Node
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" && a.Val == id {
					result = n
					return true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if rec(c) {
				return true
			}
		}
		return false
	}
	rec(root)
	return result
}

// textContent concatenates all descendant text of a node.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(textContent(c))
	}
	return buf.String()
}
