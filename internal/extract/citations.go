package extract

import (
	"regexp"
	"strings"

	"github.com/sean-public/ackshually/internal/model"
	"golang.org/x/net/html"
)

// markerPattern matches a textual citation marker such as "[7]".
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// CitationExtractor reconstructs sentence→citation associations from an
// article body. It is a pure function over the parsed tree: it owns no
// state and never mutates a node.
//
// A citation marker is recognized either structurally (a <sup> carrying the
// "reference" class, linking to a footnote) or textually (a bracketed
// integer like "[7]" inside reconstructed prose). Both occur in the wild:
// raw article HTML uses the former, pre-rendered text the latter.
type CitationExtractor struct{}

// NewCitationExtractor creates a new citation extractor.
func NewCitationExtractor() *CitationExtractor {
	return &CitationExtractor{}
}

// Extract walks the article body and returns one Citation per resolvable
// marker, in document order. Markers whose footnote entry is missing or has
// no external link are skipped silently. No deduplication: a URL cited
// twice yields two Citations.
func (e *CitationExtractor) Extract(content *html.Node) []model.Citation {
	if content == nil {
		return nil
	}

	footnotes := indexFootnotes(content)
	citations := []model.Citation{}

	paragraphs := findAll(content, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "p"
	})

	for _, p := range paragraphs {
		citations = append(citations, e.extractFromParagraph(p, footnotes)...)
	}

	return citations
}

// extractFromParagraph runs the sentence buffer over one paragraph's
// children. Structural markers emit with whatever prose has accumulated
// since the last marker; textual markers are processed per sentence unit.
func (e *CitationExtractor) extractFromParagraph(p *html.Node, footnotes map[string]*html.Node) []model.Citation {
	var citations []model.Citation
	var buf string

	for child := p.FirstChild; child != nil; child = child.NextSibling {
		if isReferenceMarker(child) {
			sentence := cleanSentence(buf)
			if url, ok := resolveStructuralMarker(child, footnotes); ok {
				citations = append(citations, model.Citation{Sentence: sentence, URL: url})
			}
			buf = "" // Reset after every marker, resolved or not
			continue
		}

		buf += nodeText(child)
		buf = e.drainCompleteUnits(buf, footnotes, &citations)
	}

	// Trailing prose without terminal punctuation may still carry markers.
	e.flushUnit(buf, footnotes, &citations)

	return citations
}

// drainCompleteUnits consumes complete sentence units from the front of the
// buffer. A unit containing textual markers emits one Citation per marker,
// all sharing the unit's sentence text, and is removed from the buffer.
// Units without markers stay buffered so a later structural marker can pick
// up multi-sentence context.
func (e *CitationExtractor) drainCompleteUnits(buf string, footnotes map[string]*html.Node, citations *[]model.Citation) string {
	var kept strings.Builder
	rest := buf
	for {
		unit, r, ok := splitSentenceUnit(rest)
		if !ok {
			break
		}
		if markerPattern.MatchString(unit) {
			e.flushUnit(unit, footnotes, citations)
		} else {
			// Keep a single space between buffered sentences.
			kept.WriteString(strings.TrimSpace(unit))
			kept.WriteString(" ")
		}
		rest = r
	}
	return kept.String() + rest
}

// flushUnit emits one Citation per resolvable textual marker in the unit.
func (e *CitationExtractor) flushUnit(unit string, footnotes map[string]*html.Node, citations *[]model.Citation) {
	matches := markerPattern.FindAllStringSubmatch(unit, -1)
	if len(matches) == 0 {
		return
	}
	sentence := cleanSentence(unit)
	for _, m := range matches {
		id := "cite_note-" + m[1]
		entry, ok := footnotes[id]
		if !ok {
			continue
		}
		if url, ok := externalURL(entry); ok {
			*citations = append(*citations, model.Citation{Sentence: sentence, URL: url})
		}
	}
}

// splitSentenceUnit splits the first complete sentence unit off the buffer.
// A unit ends at terminal punctuation followed by whitespace; marker tokens
// sitting directly after the punctuation ("…boils.[1] Next…") belong to the
// unit they close. Text not yet ended by punctuation is incomplete.
func splitSentenceUnit(s string) (unit, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		end := i + 1
		// Absorb trailing markers into this unit.
		for {
			m := markerPattern.FindStringIndex(s[end:])
			if m == nil || m[0] != 0 {
				break
			}
			end += m[1]
		}
		if end < len(s) && s[end] != ' ' && s[end] != '\t' && s[end] != '\n' {
			continue // Mid-token punctuation, e.g. "e.g." or a decimal
		}
		return s[:end], strings.TrimLeft(s[end:], " \t\n"), true
	}
	return "", s, false
}

// resolveStructuralMarker follows a <sup class="reference"> marker's link to
// its footnote entry and returns the entry's external URL.
func resolveStructuralMarker(marker *html.Node, footnotes map[string]*html.Node) (string, bool) {
	link := findFirst(marker, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" && attr(n, "href") != ""
	})
	if link == nil {
		return "", false
	}
	id := strings.TrimPrefix(attr(link, "href"), "#")
	entry, ok := footnotes[id]
	if !ok {
		return "", false
	}
	return externalURL(entry)
}

// externalURL returns the href of the first externally-classified link in a
// footnote entry.
func externalURL(entry *html.Node) (string, bool) {
	link := findFirst(entry, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" &&
			hasClass(n, "external") && attr(n, "href") != ""
	})
	if link == nil {
		return "", false
	}
	return attr(link, "href"), true
}

// indexFootnotes maps footnote identifiers to their list entries. Built once
// per article and discarded after extraction.
func indexFootnotes(content *html.Node) map[string]*html.Node {
	index := make(map[string]*html.Node)
	walk(content, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			if id := attr(n, "id"); id != "" {
				if _, exists := index[id]; !exists {
					index[id] = n
				}
			}
		}
	})
	return index
}

// isReferenceMarker reports whether a node is a structural citation marker.
func isReferenceMarker(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "sup" && hasClass(n, "reference")
}

// cleanSentence strips marker tokens and collapses whitespace.
func cleanSentence(s string) string {
	s = markerPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// nodeText concatenates all descendant text of a node, with no separator.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(nodeText(c))
	}
	return buf.String()
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hasClass reports whether a node carries the given class token.
func hasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(attr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

// findAll collects nodes matching the predicate, in document order.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var results []*html.Node
	walk(root, func(n *html.Node) {
		if pred(n) {
			results = append(results, n)
		}
	})
	return results
}

// findFirst returns the first node matching the predicate, or nil.
func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var result *html.Node
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		if pred(n) {
			result = n
			return true
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

func walk(root *html.Node, visit func(*html.Node)) {
	visit(root)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}
