package normalize

import "sort"

// stopwords is the closed set of English function words removed from every token stream.
var stopwords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "is": {}, "in": {}, "to": {},
	"a": {}, "of": {}, "on": {}, "for": {}, "with": {}, "it": {},
	"as": {}, "at": {}, "this": {}, "that": {}, "an": {}, "be": {},
	"are": {}, "by": {}, "was": {}, "were": {}, "from": {}, "has": {},
	"have": {}, "had": {}, "but": {}, "not": {}, "you": {}, "we": {},
	"they": {}, "he": {}, "she": {}, "i": {}, "me": {}, "my": {},
}

// IsStopword reports whether token is dropped by Normalize. token must already be lowercase.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Stopwords returns the stopword set, sorted.
func Stopwords() []string {
	out := make([]string, 0, len(stopwords))
	for w := range stopwords {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
