package match

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Index holds token posting lists over a document's normalized text: for
// each token, the bitmap of token positions where it occurs. The token-set
// stage uses it to skip windows sharing no token with the field value.
type Index struct {
	tokens   []Token
	postings map[string]*roaring.Bitmap
}

// NewIndex tokenizes normalized text and builds the posting lists.
func NewIndex(normText string) *Index {
	tokens := Tokenize(normText)
	postings := make(map[string]*roaring.Bitmap)
	for pos, tok := range tokens {
		bm, ok := postings[tok.Text]
		if !ok {
			bm = roaring.New()
			postings[tok.Text] = bm
		}
		bm.Add(uint32(pos))
	}
	return &Index{tokens: tokens, postings: postings}
}

// Tokens returns the document token sequence.
func (ix *Index) Tokens() []Token { return ix.tokens }

// CandidatePositions returns the union of posting lists for the given token
// texts: every document token position holding one of them.
func (ix *Index) CandidatePositions(tokens []Token) *roaring.Bitmap {
	union := roaring.New()
	for _, t := range tokens {
		if bm, ok := ix.postings[t.Text]; ok {
			union.Or(bm)
		}
	}
	return union
}
