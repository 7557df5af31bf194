package keyword

import (
	"regexp"
	"strings"
)

type term struct {
	keyword string
	lowered string
	// pattern is set only for word-boundary terms.
	pattern *regexp.Regexp
}

// Classifier scans texts for the first matching taxonomy term. Phrase
// terms use case-insensitive substring matching; the short tokens in the
// boundary set only match when delimited by non-word characters.
type Classifier struct {
	terms []term
}

// NewClassifier compiles an ordered keyword list. Keywords present in
// wordBoundary (compared lowercased) get boundary matching.
func NewClassifier(keywords, wordBoundary []string) *Classifier {
	boundary := make(map[string]struct{}, len(wordBoundary))
	for _, token := range wordBoundary {
		boundary[strings.ToLower(token)] = struct{}{}
	}

	terms := make([]term, 0, len(keywords))
	for _, kw := range keywords {
		lowered := strings.ToLower(kw)
		t := term{keyword: kw, lowered: lowered}
		if _, ok := boundary[lowered]; ok {
			t.pattern = regexp.MustCompile(`\b` + regexp.QuoteMeta(lowered) + `\b`)
		}
		terms = append(terms, t)
	}

	return &Classifier{terms: terms}
}

// NewDefault builds a classifier over the built-in taxonomy.
func NewDefault() *Classifier {
	return NewClassifier(DefaultTaxonomy, DefaultWordBoundaryTokens)
}

// Classify returns the first taxonomy term found in text, in declaration
// order. The boolean is false for empty text or no match.
func (c *Classifier) Classify(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	lowered := strings.ToLower(text)
	for _, t := range c.terms {
		if t.pattern != nil {
			if t.pattern.MatchString(lowered) {
				return t.keyword, true
			}
			continue
		}
		if strings.Contains(lowered, t.lowered) {
			return t.keyword, true
		}
	}

	return "", false
}

// ClassifyItem applies the name-then-description priority used for
// catalog items: a hit in the name wins over any hit in the description.
func (c *Classifier) ClassifyItem(name, description string) (string, bool) {
	if kw, ok := c.Classify(name); ok {
		return kw, true
	}
	return c.Classify(description)
}

// Size reports how many terms the classifier holds.
func (c *Classifier) Size() int {
	return len(c.terms)
}
