package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// QueryFieldsInput is the input for phototype_query_fields.
type QueryFieldsInput struct {
	ID          string `json:"id" jsonschema:"Stored document ID to query"`
	Expression  string `json:"expression" jsonschema:"JQ expression run against the extraction JSON"`
	Deduplicate bool   `json:"deduplicate,omitempty" jsonschema:"Drop duplicate values from the result"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"Stop after this many values, 0 means no limit"`
}

// QueryFieldsOutput is the output for phototype_query_fields.
type QueryFieldsOutput struct {
	Values   []any    `json:"values,omitzero"`
	Errors   []string `json:"errors,omitzero"`
	RawCount int      `json:"raw_count"`
}

// ToolQueryFields runs a JQ expression against a stored extraction document.
func ToolQueryFields(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryFieldsInput) (*sdkmcp.CallToolResult, QueryFieldsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryFieldsInput) (*sdkmcp.CallToolResult, QueryFieldsOutput, error) {
		if input.ID == "" {
			return nil, QueryFieldsOutput{}, ErrInvalidInput("id is required")
		}
		if input.Expression == "" {
			return nil, QueryFieldsOutput{}, ErrInvalidInput("expression is required")
		}

		data, err := d.Store.GetExtractionRaw(input.ID)
		if err != nil {
			return nil, QueryFieldsOutput{}, WrapStoreError(err)
		}

		result, err := d.Query.Query(data, input.Expression, input.Deduplicate, input.MaxResults)
		if err != nil {
			return nil, QueryFieldsOutput{}, ErrInvalidInput(err.Error())
		}

		return nil, QueryFieldsOutput{
			Values:   result.Values,
			Errors:   result.Errors,
			RawCount: result.RawCount,
		}, nil
	}
}
