// Package document holds the immutable document text model: the raw
// extracted text, its page-break offsets, and a normalized view used by the
// matcher that maps back to raw offsets.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// Errors surfaced by the document model.
var (
	// ErrEmptyDocument means the document text is empty or whitespace-only.
	// It is fatal for the whole linking request.
	ErrEmptyDocument = errors.New("document text is empty")

	// ErrOutOfRange means an offset fell outside [0, len(raw)]. Offsets come
	// from the matcher, so seeing this is an internal bug, not bad input.
	ErrOutOfRange = errors.New("offset out of range")
)

// Text is the immutable document text model. Construct with New; do not
// mutate after construction.
type Text struct {
	raw        string
	pageBreaks []int

	norm Normalized
}

// New builds a Text from raw extracted text and ordered page-break offsets.
// Page breaks must be strictly increasing and within [0, len(raw)].
func New(raw string, pageBreaks []int) (*Text, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDocument
	}
	prev := -1
	for i, off := range pageBreaks {
		if off < 0 || off > len(raw) {
			return nil, fmt.Errorf("page break %d at offset %d: %w", i, off, ErrOutOfRange)
		}
		if off <= prev {
			return nil, fmt.Errorf("page break %d at offset %d not increasing", i, off)
		}
		prev = off
	}
	breaks := make([]int, len(pageBreaks))
	copy(breaks, pageBreaks)

	return &Text{
		raw:        raw,
		pageBreaks: breaks,
		norm:       normalize(raw),
	}, nil
}

// Raw returns the raw document text.
func (t *Text) Raw() string { return t.raw }

// Len returns the raw text length in bytes.
func (t *Text) Len() int { return len(t.raw) }

// Normalized returns the matching view of the text.
func (t *Text) Normalized() *Normalized { return &t.norm }

// PageOf returns the zero-based page index for a raw offset: the index of
// the last page break <= offset, or page 0 when no break precedes it. Page
// breaks are page start offsets.
func (t *Text) PageOf(offset int) (int, error) {
	if offset < 0 || offset > len(t.raw) {
		return 0, fmt.Errorf("offset %d in document of length %d: %w", offset, len(t.raw), ErrOutOfRange)
	}
	page := 0
	for i, brk := range t.pageBreaks {
		if brk <= offset {
			page = i
		} else {
			break
		}
	}
	return page, nil
}
