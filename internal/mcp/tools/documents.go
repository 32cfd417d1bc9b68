package tools

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/phototype/evidence-mcp/pkg/types"
)

// ListDocumentsInput is the input for phototype_list_documents.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output for phototype_list_documents.
type ListDocumentsOutput struct {
	Documents []types.DocumentInfo `json:"documents,omitzero"`
}

// ToolListDocuments lists stored extraction documents.
func ToolListDocuments(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListDocumentsInput) (*sdkmcp.CallToolResult, ListDocumentsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListDocumentsInput) (*sdkmcp.CallToolResult, ListDocumentsOutput, error) {
		infos, err := d.Store.List()
		if err != nil {
			return nil, ListDocumentsOutput{}, WrapStoreError(err)
		}
		return nil, ListDocumentsOutput{Documents: infos}, nil
	}
}

// GetDocumentInput is the input for phototype_get_document.
type GetDocumentInput struct {
	ID string `json:"id" jsonschema:"Document ID as returned by upload or list"`
}

// GetDocumentOutput is the output for phototype_get_document.
type GetDocumentOutput struct {
	ID       string `json:"id"`
	Document any    `json:"document"`
}

// ToolGetDocument fetches one stored extraction document.
func ToolGetDocument(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetDocumentInput) (*sdkmcp.CallToolResult, GetDocumentOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetDocumentInput) (*sdkmcp.CallToolResult, GetDocumentOutput, error) {
		if input.ID == "" {
			return nil, GetDocumentOutput{}, ErrInvalidInput("id is required")
		}
		raw, err := d.Store.GetExtractionRaw(input.ID)
		if err != nil {
			return nil, GetDocumentOutput{}, WrapStoreError(err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, GetDocumentOutput{}, ErrInvalidInput("stored document is not valid JSON")
		}
		return nil, GetDocumentOutput{ID: input.ID, Document: doc}, nil
	}
}
