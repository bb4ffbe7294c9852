// Package sentiment provides a deterministic 3-way polarity scorer built
// on positive/negative opinion lexicons.
package sentiment

import (
	"regexp"
	"strings"

	"github.com/feedlens/aspect-miner/internal/core/domain"
)

const defaultMaxLen = 512

// Base confidence for any non-neutral verdict; lexicon agreement raises
// it toward 1.
const baseConfidence = 0.5

var positiveWords = []string{
	"great", "excellent", "superb", "helpful", "quick", "premium", "bright",
	"snappy", "amazing", "love", "loved", "fantastic", "perfect", "smooth",
	"fast", "reliable", "solid", "awesome", "best", "good", "happy",
	"impressed", "worth", "recommend",
}

var negativeWords = []string{
	"drains", "overheats", "grainy", "crashes", "delayed", "damaged", "lags",
	"inconsistent", "terrible", "awful", "broken", "slow", "worst", "bad",
	"hate", "disappointing", "disappointed", "useless", "refund", "laggy",
	"overpriced", "defective", "faulty", "poor",
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "isnt": {}, "wasnt": {}, "dont": {},
	"doesnt": {}, "didnt": {}, "cant": {}, "wont": {},
}

var tokenRx = regexp.MustCompile(`[a-z']+`)

// Result is one scored text.
type Result struct {
	Label domain.SentimentLabel

	// Score is the confidence in [0,1].
	Score float64

	// ScoreSigned is Score with the label's polarity sign applied,
	// giving one comparable axis for positive and negative magnitude.
	ScoreSigned float64
}

// Scorer counts opinion-lexicon hits with single-token negation
// flipping, and converts the balance into a label and confidence.
type Scorer struct {
	maxLen   int
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewScorer builds a scorer that truncates input to maxLen runes before
// scoring; maxLen <= 0 uses the default of 512.
func NewScorer(maxLen int) *Scorer {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}

	return &Scorer{
		maxLen:   maxLen,
		positive: toSet(positiveWords),
		negative: toSet(negativeWords),
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}

// Score labels the text. A tied or empty hit balance is NEUTRAL with a
// signed score of exactly zero.
func (s *Scorer) Score(text string) Result {
	runes := []rune(text)
	if len(runes) > s.maxLen {
		text = string(runes[:s.maxLen])
	}

	tokens := tokenRx.FindAllString(strings.ToLower(text), -1)

	var pos, neg int

	negated := false

	for _, tok := range tokens {
		tok = strings.ReplaceAll(tok, "'", "")
		if _, ok := negators[tok]; ok {
			negated = true

			continue
		}

		if _, ok := s.positive[tok]; ok {
			if negated {
				neg++
			} else {
				pos++
			}
		} else if _, ok := s.negative[tok]; ok {
			if negated {
				pos++
			} else {
				neg++
			}
		}

		negated = false
	}

	return verdict(pos, neg)
}

func verdict(pos, neg int) Result {
	if pos == neg {
		return Result{Label: domain.SentimentNeutral, Score: 0, ScoreSigned: 0}
	}

	total := float64(pos + neg)

	var (
		label    domain.SentimentLabel
		majority float64
	)

	if pos > neg {
		label = domain.SentimentPositive
		majority = float64(pos)
	} else {
		label = domain.SentimentNegative
		majority = float64(neg)
	}

	// Confidence grows with the share of agreeing hits.
	score := baseConfidence + baseConfidence*(majority/total)
	if score > 1 {
		score = 1
	}

	return Result{
		Label:       label,
		Score:       score,
		ScoreSigned: score * label.Sign(),
	}
}
