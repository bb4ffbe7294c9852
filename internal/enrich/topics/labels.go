package topics

import "strings"

const (
	outlierLabel   = "Misc"
	labelTermCount = 3
)

// junkWords are filler tokens that make topic labels unreadable. They
// are excluded from labels and from the training vocabulary.
var junkWords = map[string]struct{}{
	// stopwords
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "do": {}, "did": {}, "does": {},
	"at": {}, "in": {}, "on": {}, "with": {}, "to": {}, "from": {}, "of": {},
	"by": {}, "about": {}, "into": {}, "over": {}, "under": {},
	"so": {}, "very": {}, "much": {}, "many": {}, "few": {}, "more": {},
	"most": {}, "some": {}, "any": {}, "all": {}, "every": {},
	"can": {}, "could": {}, "should": {}, "would": {}, "will": {}, "may": {},
	"might": {}, "must": {},

	// casual filler
	"lol": {}, "haha": {}, "omg": {}, "damn": {}, "bro": {}, "dude": {},
	"hey": {}, "hi": {}, "hello": {},
	"pls": {}, "please": {}, "thanks": {}, "thank": {}, "thx": {},
	"yep": {}, "yeah": {}, "nope": {}, "ok": {}, "okay": {},
	"idk": {}, "imo": {}, "imho": {}, "btw": {}, "wtf": {}, "smh": {},
	"lmao": {}, "rofl": {},

	// tech filler
	"app": {}, "apps": {}, "update": {}, "version": {}, "feature": {},
	"features": {}, "option": {}, "options": {},
	"thing": {}, "stuff": {}, "item": {}, "items": {}, "product": {},
	"products": {}, "device": {}, "devices": {},
	"model": {}, "models": {}, "series": {}, "line": {}, "brand": {}, "brands": {},

	// short tokens
	"nah": {}, "yup": {}, "wow": {}, "ugh": {}, "meh": {}, "ayy": {}, "ehh": {},

	// domain filler
	"not": {}, "and": {}, "but": {}, "you": {}, "your": {}, "this": {},
	"pro": {}, "for": {}, "new": {}, "one": {}, "get": {},
	"just": {}, "like": {}, "iphone": {}, "phone": {}, "message": {}, "read": {},
}

func isJunkWord(tok string) bool {
	_, ok := junkWords[tok]
	return ok
}

// Label builds a short human-readable label for a topic from its
// representative terms. The outlier id and empty topics get "Misc".
func (m *Model) Label(topicID int) string {
	terms := m.Terms(topicID)
	if len(terms) == 0 {
		return outlierLabel
	}

	clean := make([]string, 0, labelTermCount)

	for _, term := range terms {
		if _, junk := junkWords[strings.ToLower(term)]; junk || len(term) <= 2 {
			continue
		}

		clean = append(clean, term)

		if len(clean) == labelTermCount {
			break
		}
	}

	if len(clean) == 0 {
		// Every candidate was filler, fall back to the strongest term.
		return terms[0]
	}

	return strings.Join(clean, " ")
}
