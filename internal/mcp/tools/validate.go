package tools

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ValidateMappingInput is the input for phototype_validate_mapping. Either a
// stored document ID or an inline document must be given.
type ValidateMappingInput struct {
	ID       string `json:"id,omitempty" jsonschema:"Stored document ID to validate"`
	Document any    `json:"document,omitempty" jsonschema:"Inline extraction document (instead of id)"`
}

// ValidateMappingOutput is the output for phototype_validate_mapping.
type ValidateMappingOutput struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitzero"`
}

// ToolValidateMapping checks an extraction document against the storage
// schema.
func ToolValidateMapping(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateMappingInput) (*sdkmcp.CallToolResult, ValidateMappingOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateMappingInput) (*sdkmcp.CallToolResult, ValidateMappingOutput, error) {
		var data []byte
		switch {
		case input.ID != "":
			raw, err := d.Store.GetExtractionRaw(input.ID)
			if err != nil {
				return nil, ValidateMappingOutput{}, WrapStoreError(err)
			}
			data = raw
		case input.Document != nil:
			raw, err := json.Marshal(input.Document)
			if err != nil {
				return nil, ValidateMappingOutput{}, ErrInvalidInput("document is not serializable")
			}
			data = raw
		default:
			return nil, ValidateMappingOutput{}, ErrInvalidInput("either id or document is required")
		}

		result, err := d.Schema.Validate(data)
		if err != nil {
			return nil, ValidateMappingOutput{}, ErrInvalidInput(err.Error())
		}
		return nil, ValidateMappingOutput{Valid: result.Valid, Errors: result.Errors}, nil
	}
}
