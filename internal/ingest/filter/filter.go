// Package filter decides whether a raw feed item is relevant, based on
// two configurable term sets compiled into word-boundary matchers.
package filter

import (
	"regexp"
	"strings"
)

// Match modes joining the keyword and product term hits.
const (
	ModeAnd = "AND"
	ModeOr  = "OR"
)

// Filter is a boolean relevance matcher over item body and title.
type Filter struct {
	keywords *regexp.Regexp
	products *regexp.Regexp
	mode     string
}

// New compiles the term sets. An empty set compiles to nil and matches
// vacuously, so an empty set never blocks an item. An unknown mode falls
// back to AND.
func New(keywordTerms, productTerms []string, mode string) *Filter {
	if mode != ModeAnd && mode != ModeOr {
		mode = ModeAnd
	}

	return &Filter{
		keywords: compileTerms(keywordTerms),
		products: compileTerms(productTerms),
		mode:     mode,
	}
}

// Accepts reports whether the item passes the relevance filter. Matching
// is case-insensitive and whole-word; title and body are searched as one
// blob.
func (f *Filter) Accepts(body, title string) bool {
	blob := title + "\n" + body

	kwHit := f.keywords == nil || f.keywords.MatchString(blob)
	prodHit := f.products == nil || f.products.MatchString(blob)

	if f.mode == ModeOr {
		return kwHit || prodHit
	}

	return kwHit && prodHit
}

func compileTerms(terms []string) *regexp.Regexp {
	cleaned := make([]string, 0, len(terms))

	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}

		cleaned = append(cleaned, regexp.QuoteMeta(t))
	}

	if len(cleaned) == 0 {
		return nil
	}

	return regexp.MustCompile(`(?i)\b(` + strings.Join(cleaned, "|") + `)\b`)
}
