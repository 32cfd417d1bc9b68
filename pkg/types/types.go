// Package types contains the shared wire types for the evidence-mcp server.
package types

import "encoding/json"

// EvidenceSpan is a character range in the document raw text believed to
// support a field's extracted value.
//
// Start/End are a half-open offset range into the raw text, Page is derived
// from the document's page breaks, and Score is in [0,1] with 1.0 meaning an
// exact match.
type EvidenceSpan struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Page  int     `json:"page"`
	Score float64 `json:"score"`
}

// Overlap returns the number of characters shared by two spans.
func (s EvidenceSpan) Overlap(o EvidenceSpan) int {
	start := s.Start
	if o.Start > start {
		start = o.Start
	}
	end := s.End
	if o.End < end {
		end = o.End
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Len returns the span length in characters.
func (s EvidenceSpan) Len() int {
	return s.End - s.Start
}

// EvidenceResult maps flattened field paths to their ranked evidence spans.
//
// Every flattened field path appears in Fields, even when no evidence was
// found (empty slice), so callers can distinguish "no evidence" from "field
// not processed". Order preserves the deterministic flattening
// order so serialization is stable regardless of matching concurrency.
type EvidenceResult struct {
	Fields    map[string][]EvidenceSpan `json:"fields"`
	Order     []string                  `json:"order"`
	Truncated bool                      `json:"truncated,omitempty"`
	Skipped   []string                  `json:"skipped,omitempty"`
}

// NewEvidenceResult returns an empty result ready to be filled in path order.
func NewEvidenceResult() *EvidenceResult {
	return &EvidenceResult{
		Fields: make(map[string][]EvidenceSpan),
		Order:  []string{},
	}
}

// Add appends a field's spans in path order. A nil spans slice is stored as
// an empty one so JSON output is [] rather than null.
func (r *EvidenceResult) Add(path string, spans []EvidenceSpan) {
	if spans == nil {
		spans = []EvidenceSpan{}
	}
	r.Fields[path] = spans
	r.Order = append(r.Order, path)
}

// MarkSkipped records a field whose value could not be matched because of an
// unsupported leaf type. The field still gets an empty span list.
func (r *EvidenceResult) MarkSkipped(path string) {
	r.Add(path, nil)
	r.Skipped = append(r.Skipped, path)
}

// DocumentInfo describes one stored extraction document.
type DocumentInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size_bytes"`
	ModifiedAt string `json:"modified_at"`
	HasPDF     bool   `json:"has_pdf"`
}

// ExtractionMetadata mirrors the metadata block of a stored extraction
// document.
type ExtractionMetadata struct {
	ProcessedDate    string `json:"processed_date"`
	SourceFile       string `json:"source_file"`
	ProcessingMethod string `json:"processing_method"`
}

// ExtractionDocument is the persisted shape of a processed upload: the
// extracted field mapping, the full document text, and processing metadata.
//
// Fields stays raw so the key order written by the extractor survives the
// round trip into the flattener.
type ExtractionDocument struct {
	Fields   json.RawMessage    `json:"fields"`
	Text     string             `json:"text"`
	Metadata ExtractionMetadata `json:"metadata"`
}
