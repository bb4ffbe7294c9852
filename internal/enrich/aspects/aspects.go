// Package aspects tags review text with product-feature categories using
// a dependency-free lexicon of term-family patterns.
package aspects

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Aspect is one detected category with its pattern hit count.
type Aspect struct {
	Label string
	Hits  int
}

// lexicon maps each aspect category to its term-family patterns.
// Patterns without explicit boundaries are wrapped in \b(?:...)\b at
// compile time.
var lexicon = map[string][]string{
	"battery": {
		`battery(?:\s+life)?`, `\bcharge\b`, `charging`, `drain(?:ing|s)?`,
		`screen[\s-]on[\s-]time`, `\bSOT\b`, `power[\s-]?saving`,
		`battery\s*health`, `overnight\s*drain`, `\bpower\b`, `heat(?:ing)?`, `thermals?`,
	},
	"camera": {
		`\bcamera\b`, `\bphoto(?:s)?\b`, `\bvideo(?:s)?\b`, `\bHDR\b`, `portrait`,
		`bokeh`, `ultra[\s-]?wide`, `tele(?:photo)?`, `\bzoom\b`,
		`(?:stabili[sz]ation|OIS|EIS)`, `selfie`, `night\s*mode`,
		`low[\s-]?light`, `skin\s*tones?`, `shutter\s*lag`,
	},
	"screen": {
		`\bscreen\b`, `\bdisplay\b`, `(?:OLED|AMOLED|LCD)\b`,
		`brightness|nits|too\s*dim|too\s*bright`,
		`refresh\s*rate|\b\d{2,3}hz\b`, `PWM|flicker`, `resolution`, `scratch(?:es)?`,
	},
	"shipping": {
		`shipping`, `deliver(?:y|ed)|delay(?:s)?|late|on\s*time`,
		`package|packaging|box`, `courier|logistics`, `fedex|ups|dhl|usps`,
		`return|refund|rma|replacement`,
	},
	"price": {
		`\bprice\b|\bpricing\b`, `\bcost\b|\bmsrp\b`, `expensive|overpriced`,
		`cheap|affordable`, `value\s*for\s*money|worth\s*it|deal|discount|offer`,
	},
}

var compiled = compileLexicon()

func compileLexicon() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(lexicon))

	for aspect, patterns := range lexicon {
		rxs := make([]*regexp.Regexp, 0, len(patterns))

		for _, p := range patterns {
			if !strings.HasPrefix(p, `\b`) && !strings.HasSuffix(p, `\b`) {
				p = `\b(?:` + p + `)\b`
			}

			rxs = append(rxs, regexp.MustCompile(`(?i)`+p))
		}

		out[aspect] = rxs
	}

	return out
}

// Tagger counts term-family hits per aspect category and keeps the
// categories meeting the minimum hit threshold.
type Tagger struct {
	topK    int
	minHits int
}

// NewTagger builds a lexicon tagger. topK <= 0 means no truncation;
// minHits below one is clamped to one.
func NewTagger(topK, minHits int) *Tagger {
	if minHits < 1 {
		minHits = 1
	}

	return &Tagger{topK: topK, minHits: minHits}
}

// Aspects ranks matched categories by descending hit count, ties broken
// alphabetically, truncated to topK. The context parameter keeps the
// signature interchangeable with the learned extractor.
func (t *Tagger) Aspects(_ context.Context, text string) ([]Aspect, error) {
	if text == "" {
		return nil, nil
	}

	var hits []Aspect

	for aspect, patterns := range compiled {
		count := 0
		for _, rx := range patterns {
			count += len(rx.FindAllStringIndex(text, -1))
		}

		if count >= t.minHits {
			hits = append(hits, Aspect{Label: aspect, Hits: count})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Hits != hits[j].Hits {
			return hits[i].Hits > hits[j].Hits
		}

		return hits[i].Label < hits[j].Label
	})

	if t.topK > 0 && len(hits) > t.topK {
		hits = hits[:t.topK]
	}

	return hits, nil
}

// CSV joins aspect labels in rank order for the processed store.
func CSV(aspects []Aspect) string {
	labels := make([]string, len(aspects))
	for i, a := range aspects {
		labels[i] = a.Label
	}

	return strings.Join(labels, ",")
}
