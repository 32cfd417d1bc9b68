package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/phototype/evidence-mcp/internal/mcp/tools"
)

// Resource URI scheme: phototype://
// Supported URIs:
//   phototype://schema
//   phototype://document/{id}

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         "phototype://schema",
		Name:        "Extraction Document Schema",
		Description: "JSON Schema for stored extraction documents. Inline documents passed to phototype_validate_mapping are checked against this schema.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceSchema)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "phototype://document/{id}",
		Name:        "Extraction Document",
		Description: "Full stored extraction document including the complete text. High context cost - phototype_get_document already returns the same content.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceDocument)
}

// Resource handlers

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: tools.MimeJSON,
				Text:     string(s.deps.Schema.SchemaJSON()),
			},
		},
	}, nil
}

func (s *Server) handleResourceDocument(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	id, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	data, err := s.deps.Store.GetExtractionRaw(id)
	if err != nil {
		return nil, tools.WrapStoreError(err)
	}

	return toResourceResult(req.Params.URI, json.RawMessage(data))
}

// Helper functions

// parseResourceURI extracts the document ID from a phototype://document URI.
func parseResourceURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, "phototype://") {
		return "", tools.ErrInvalidInput("invalid URI scheme: expected phototype://")
	}

	path := strings.TrimPrefix(uri, "phototype://")
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "document":
		if len(parts) < 2 || parts[1] == "" {
			return "", tools.ErrInvalidInput("document URI requires a document ID")
		}
		return parts[1], nil
	default:
		return "", tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", parts[0]))
	}
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
