package tools

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phototype/evidence-mcp/internal/config"
	"github.com/phototype/evidence-mcp/internal/extract"
	"github.com/phototype/evidence-mcp/internal/query"
	"github.com/phototype/evidence-mcp/internal/store"
)

func testDeps(t *testing.T) *Deps {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "uploads"), filepath.Join(dir, "json"), 8)
	require.NoError(t, err)

	ex := extract.New()
	ex.Clock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	ex.NewID = func() string { return "1a2b3c4d-0000-0000-0000-000000000000" }

	return &Deps{
		Config: &config.Config{
			MaxUploadBytes:     1 << 20,
			KeepUploads:        true,
			ScoreFloor:         config.DefaultScoreFloor,
			MaxResultsPerField: config.DefaultMaxResultsPerField,
			WindowStepFraction: config.DefaultStepFraction,
		},
		Store:     st,
		Extractor: ex,
		Query:     query.NewEngine(),
	}
}

func TestToolLinkEvidence_inline(t *testing.T) {
	d := testDeps(t)

	_, out, err := ToolLinkEvidence(d)(context.Background(), nil, LinkEvidenceInput{
		Text:    "Invoice No. 12345 dated March 1",
		Mapping: map[string]any{"invoice_no": "12345"},
	})
	require.NoError(t, err)

	require.Contains(t, out.Fields, "invoice_no")
	spans := out.Fields["invoice_no"]
	require.Len(t, spans, 1)
	assert.Equal(t, 12, spans[0].Start)
	assert.Equal(t, 17, spans[0].End)
	assert.Equal(t, 1.0, spans[0].Score)
	assert.False(t, out.Truncated)
}

func TestToolLinkEvidence_requiresIDOrInline(t *testing.T) {
	d := testDeps(t)

	_, _, err := ToolLinkEvidence(d)(context.Background(), nil, LinkEvidenceInput{})
	require.Error(t, err)
	var coded *CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, ErrCodeInvalidInput, coded.Code)
}

func TestToolLinkEvidence_storedDocument(t *testing.T) {
	d := testDeps(t)

	_, uploaded, err := ToolUploadDocument(d)(context.Background(), nil, UploadDocumentInput{
		Filename:      "contract.pdf",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake")),
	})
	require.NoError(t, err)

	_, out, err := ToolLinkEvidence(d)(context.Background(), nil, LinkEvidenceInput{ID: uploaded.ID})
	require.NoError(t, err)

	// Stored mapping key order survives into the result order.
	require.NotEmpty(t, out.Order)
	assert.Equal(t, "contract_number", out.Order[0])
	for _, path := range out.Order {
		assert.Contains(t, out.Fields, path)
	}
}

func TestToolLinkEvidence_unknownID(t *testing.T) {
	d := testDeps(t)

	_, _, err := ToolLinkEvidence(d)(context.Background(), nil, LinkEvidenceInput{ID: "nope"})
	require.Error(t, err)
	var coded *CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, ErrCodeNotFound, coded.Code)
}
