package tools

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/phototype/evidence-mcp/internal/document"
	"github.com/phototype/evidence-mcp/internal/fieldmap"
	"github.com/phototype/evidence-mcp/internal/link"
	"github.com/phototype/evidence-mcp/internal/match"
	"github.com/phototype/evidence-mcp/internal/store"
	"github.com/phototype/evidence-mcp/pkg/types"
)

// LinkEvidenceInput is the input for phototype_link_evidence. Either a
// stored document ID or an inline text/mapping pair must be given.
type LinkEvidenceInput struct {
	ID      string `json:"id,omitempty" jsonschema:"Stored document ID to link"`
	Text    string `json:"text,omitempty" jsonschema:"Inline document text (instead of id)"`
	Mapping any    `json:"mapping,omitempty" jsonschema:"Inline field mapping (instead of id)"`

	ScoreFloor float64 `json:"score_floor,omitempty" jsonschema:"Minimum span score, default 0.6"`
	MaxResults int     `json:"max_results,omitempty" jsonschema:"Max spans per field, default 3"`
	DeadlineMs int64   `json:"deadline_ms,omitempty" jsonschema:"Overall deadline; partial results are returned on expiry"`
}

// LinkEvidenceOutput is the output for phototype_link_evidence: field path
// to ranked evidence spans, plus truncation/skip markers.
type LinkEvidenceOutput struct {
	Fields    map[string][]types.EvidenceSpan `json:"fields,omitzero"`
	Order     []string                        `json:"order,omitzero"`
	Truncated bool                            `json:"truncated,omitempty"`
	Skipped   []string                        `json:"skipped,omitempty"`
}

// ToolLinkEvidence locates evidence spans in the document text for every
// extracted field value.
func ToolLinkEvidence(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input LinkEvidenceInput) (*sdkmcp.CallToolResult, LinkEvidenceOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input LinkEvidenceInput) (*sdkmcp.CallToolResult, LinkEvidenceOutput, error) {
		doc, mapping, err := resolveLinkTarget(d, input)
		if err != nil {
			return nil, LinkEvidenceOutput{}, err
		}

		cfg := link.Config{
			Match: match.Config{
				ScoreFloor:   d.Config.ScoreFloor,
				StepFraction: d.Config.WindowStepFraction,
			},
			MaxResultsPerField: d.Config.MaxResultsPerField,
			Concurrency:        d.Config.Concurrency,
			Deadline:           d.Config.Deadline,
		}
		if input.ScoreFloor > 0 {
			cfg.Match.ScoreFloor = input.ScoreFloor
		}
		if input.MaxResults > 0 {
			cfg.MaxResultsPerField = input.MaxResults
		}
		if input.DeadlineMs > 0 {
			cfg.Deadline = time.Duration(input.DeadlineMs) * time.Millisecond
		}

		result, err := link.Link(ctx, doc, mapping, cfg)
		if err != nil {
			return nil, LinkEvidenceOutput{}, WrapStoreError(err)
		}

		return nil, LinkEvidenceOutput{
			Fields:    result.Fields,
			Order:     result.Order,
			Truncated: result.Truncated,
			Skipped:   result.Skipped,
		}, nil
	}
}

// resolveLinkTarget loads the document text and field mapping, either from
// the store (preserving the stored key order) or from the inline input.
func resolveLinkTarget(d *Deps, input LinkEvidenceInput) (*document.Text, fieldmap.Node, error) {
	if input.ID != "" {
		ext, err := d.Store.GetExtraction(input.ID)
		if err != nil {
			return nil, fieldmap.Node{}, WrapStoreError(err)
		}
		doc, err := d.Store.DocumentText(input.ID)
		if err != nil {
			return nil, fieldmap.Node{}, WrapStoreError(err)
		}
		mapping, err := fieldmap.Decode(ext.Fields)
		if err != nil {
			return nil, fieldmap.Node{}, ErrInvalidInput("stored field mapping is not valid JSON")
		}
		return doc, mapping, nil
	}

	if input.Text == "" || input.Mapping == nil {
		return nil, fieldmap.Node{}, ErrInvalidInput("either id or both text and mapping are required")
	}
	doc, err := document.New(input.Text, store.PageBreaks(input.Text))
	if err != nil {
		return nil, fieldmap.Node{}, WrapStoreError(err)
	}
	return doc, fieldmap.FromValue(input.Mapping), nil
}
