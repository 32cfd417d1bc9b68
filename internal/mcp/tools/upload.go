package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// UploadDocumentInput is the input for phototype_upload_document.
type UploadDocumentInput struct {
	Filename      string `json:"filename" jsonschema:"Original file name; must end in .pdf"`
	ContentBase64 string `json:"content_base64" jsonschema:"Base64-encoded PDF bytes"`
}

// UploadDocumentOutput is the output for phototype_upload_document.
type UploadDocumentOutput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Fields any    `json:"fields"`
	Text   string `json:"text"`
}

// ToolUploadDocument stores a PDF, runs the extraction, and persists the
// extraction document.
func ToolUploadDocument(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input UploadDocumentInput) (*sdkmcp.CallToolResult, UploadDocumentOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input UploadDocumentInput) (*sdkmcp.CallToolResult, UploadDocumentOutput, error) {
		if input.Filename == "" {
			return nil, UploadDocumentOutput{}, ErrInvalidInput("filename is required")
		}
		if !strings.HasSuffix(strings.ToLower(input.Filename), ".pdf") {
			return nil, UploadDocumentOutput{}, ErrInvalidInput("only PDF files are allowed")
		}

		data, err := base64.StdEncoding.DecodeString(input.ContentBase64)
		if err != nil {
			return nil, UploadDocumentOutput{}, ErrInvalidInput("content_base64 is not valid base64")
		}
		if len(data) == 0 {
			return nil, UploadDocumentOutput{}, ErrInvalidInput("no file content provided")
		}
		if int64(len(data)) > d.Config.MaxUploadBytes {
			return nil, UploadDocumentOutput{}, ErrInvalidInput("file too large")
		}

		id, err := d.Store.SaveUpload(input.Filename, data)
		if err != nil {
			return nil, UploadDocumentOutput{}, WrapStoreError(err)
		}

		extraction, err := d.Extractor.Extract(input.Filename)
		if err != nil {
			return nil, UploadDocumentOutput{}, WrapStoreError(err)
		}
		if err := d.Store.SaveExtraction(id, extraction); err != nil {
			return nil, UploadDocumentOutput{}, WrapStoreError(err)
		}

		if !d.Config.KeepUploads {
			if err := d.Store.RemoveUpload(id); err != nil {
				// Matching the original behavior: cleanup failure is not fatal.
				slog.Warn("failed to remove processed upload", "id", id, "error", err)
			}
		}

		slog.Info("document processed", "id", id, "bytes", len(data))

		var fields any
		if err := json.Unmarshal(extraction.Fields, &fields); err != nil {
			return nil, UploadDocumentOutput{}, WrapStoreError(err)
		}
		return nil, UploadDocumentOutput{
			ID:     id,
			Name:   id + ".json",
			Fields: fields,
			Text:   extraction.Text,
		}, nil
	}
}
