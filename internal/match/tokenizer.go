// Package match locates evidence spans for extracted field values inside a
// document's text, using exact, token-set, and fuzzy strategies in priority
// order.
package match

import (
	"strings"
	"unicode"
)

// Token is one word of normalized text with its byte range.
type Token struct {
	Text  string
	Start int
	End   int
}

// minTokenLen filters noise tokens; single characters carry no signal for
// token-set scoring.
const minTokenLen = 2

// Tokenize splits normalized text into word tokens, recording byte offsets.
// Splits on any rune that is not a letter or digit; drops tokens shorter
// than two bytes.
func Tokenize(s string) []Token {
	var tokens []Token
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if i-start >= minTokenLen {
				tokens = append(tokens, Token{Text: s[start:i], Start: start, End: i})
			}
			start = -1
		}
	}
	if start >= 0 && len(s)-start >= minTokenLen {
		tokens = append(tokens, Token{Text: s[start:], Start: start, End: len(s)})
	}
	return tokens
}

// tokenSet collects the distinct token texts.
func tokenSet(tokens []Token) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t.Text] = struct{}{}
	}
	return set
}

// minPartialLen is the shortest token allowed to take partial prefix credit;
// very short tokens prefix-match too much.
const minPartialLen = 3

// jaccard scores two token sets as intersection over union, with partial
// credit when one token is a prefix of the other (so "corp" still counts
// against "corporation"). A prefix pair contributes short/long to the
// intersection and merges to one element in the union.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var inter float64
	merged := 0
	for ta := range a {
		best := 0.0
		for tb := range b {
			w := tokenOverlap(ta, tb)
			if w > best {
				best = w
			}
			if best == 1.0 {
				break
			}
		}
		if best > 0 {
			inter += best
			merged++
		}
	}
	union := len(a) + len(b) - merged
	if union <= 0 {
		return 0
	}
	score := inter / float64(union)
	if score > 1 {
		score = 1
	}
	return score
}

// tokenOverlap returns 1 for equal tokens, short/long for prefix pairs, and
// 0 otherwise.
func tokenOverlap(a, b string) float64 {
	if a == b {
		return 1
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) < minPartialLen || !strings.HasPrefix(long, short) {
		return 0
	}
	return float64(len(short)) / float64(len(long))
}
