package document

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalized is the matching view of a document: NFKC-folded, lowercased,
// whitespace runs collapsed to single spaces. Every byte of the normalized
// text remembers the raw byte range it came from so match offsets can be
// mapped back to the raw text.
type Normalized struct {
	text   string
	starts []int // starts[i] = raw offset where normalized byte i begins
	ends   []int // ends[i] = raw offset just past the rune producing byte i
}

// NormalizeValue applies the same folding to a standalone field value.
// No offset map is needed for values.
func NormalizeValue(s string) string {
	n := normalize(s)
	return n.text
}

func normalize(raw string) Normalized {
	var b strings.Builder
	b.Grow(len(raw))
	starts := make([]int, 0, len(raw))
	ends := make([]int, 0, len(raw))

	inSpace := false
	spaceStart := 0
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		runeEnd := i + size
		if unicode.IsSpace(r) {
			if !inSpace {
				inSpace = true
				spaceStart = i
			}
			i = runeEnd
			continue
		}
		if inSpace {
			// Collapse the pending whitespace run to one space, but only
			// between words (leading whitespace is dropped).
			if b.Len() > 0 {
				b.WriteByte(' ')
				starts = append(starts, spaceStart)
				ends = append(ends, i)
			}
			inSpace = false
		}
		folded := norm.NFKC.String(raw[i:runeEnd])
		for _, fr := range folded {
			lower := unicode.ToLower(fr)
			n := b.Len()
			b.WriteRune(lower)
			for n < b.Len() {
				starts = append(starts, i)
				ends = append(ends, runeEnd)
				n++
			}
		}
		i = runeEnd
	}

	return Normalized{text: b.String(), starts: starts, ends: ends}
}

// Text returns the normalized text.
func (n *Normalized) Text() string { return n.text }

// Len returns the normalized text length in bytes.
func (n *Normalized) Len() int { return len(n.text) }

// RawSpan maps a half-open normalized byte range back to the raw text.
func (n *Normalized) RawSpan(start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(n.text) {
		end = len(n.text)
	}
	if start >= end || len(n.starts) == 0 {
		return 0, 0
	}
	return n.starts[start], n.ends[end-1]
}
