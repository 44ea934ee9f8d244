package pipeline

import "errors"

var (
	// ErrContentUnavailable means both extraction stages produced empty or
	// under-length text for a citation URL. Recoverable: the pipeline
	// reports the citation as unavailable and moves on.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrArticleStructure means a fetched article page is missing the
	// expected title or body elements. Fatal for that attempt only; the
	// pipeline selects a new article.
	ErrArticleStructure = errors.New("expected elements missing from article page")

	// ErrNoCitations means extraction found no resolvable citations in an
	// article. Retry-worthy, like ErrArticleStructure.
	ErrNoCitations = errors.New("article has no resolvable citations")

	// ErrRobotsDisallowed means robots.txt forbids fetching a URL.
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

	// ErrSearchExhausted means the bounded article search ran out of
	// attempts without finding a citation-bearing article.
	ErrSearchExhausted = errors.New("article search attempts exhausted")
)
