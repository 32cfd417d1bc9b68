package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Tool 1: phototype_upload_document
	AddTool(srv, &sdkmcp.Tool{
		Name:        "phototype_upload_document",
		Description: "Upload a PDF document (base64 content) and run field extraction. Returns the stored document ID, the extracted field mapping, and the document text.",
	}, ToolUploadDocument(d))

	// Tool 2: phototype_list_documents
	AddTool(srv, &sdkmcp.Tool{
		Name:        "phototype_list_documents",
		Description: "List stored extraction documents, newest first",
	}, ToolListDocuments(d))

	// Tool 3: phototype_get_document
	AddTool(srv, &sdkmcp.Tool{
		Name:        "phototype_get_document",
		Description: "Get the full stored extraction document (fields, text, metadata) by ID",
	}, ToolGetDocument(d))

	// Tool 4: phototype_link_evidence
	AddTool(srv, &sdkmcp.Tool{
		Name:        "phototype_link_evidence",
		Description: "Locate evidence spans in the document text for every extracted field value. Pass a stored document id, or inline text and mapping. Spans carry raw byte offsets, a page number, and a match score; fields whose values are absent from the text return empty spans.",
	}, ToolLinkEvidence(d))

	// Tool 5: phototype_query_fields
	AddTool(srv, &sdkmcp.Tool{
		Name:        "phototype_query_fields",
		Description: "Run a JQ expression against a stored extraction document. Supports deduplication and a result cap; per-value evaluation errors are collected, not fatal.",
	}, ToolQueryFields(d))

	// Tool 6: phototype_validate_mapping
	AddTool(srv, &sdkmcp.Tool{
		Name:        "phototype_validate_mapping",
		Description: "Validate an extraction document (stored by id, or passed inline) against the storage schema. Violations are reported in the result.",
	}, ToolValidateMapping(d))
}
