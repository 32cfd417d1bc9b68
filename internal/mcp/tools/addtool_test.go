package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckOutputSchema_panicsOnNilSlice(t *testing.T) {
	type BadOutput struct {
		Items []string `json:"items"` // no omitzero → nil → null → schema expects array
	}
	assert.Panics(t, func() {
		CheckOutputSchema[BadOutput]("test_bad_tool")
	})
}

func TestCheckOutputSchema_panicsOnRawMessage(t *testing.T) {
	type BadOutput struct {
		Fields json.RawMessage `json:"fields,omitempty"`
	}
	assert.Panics(t, func() {
		CheckOutputSchema[BadOutput]("test_raw_message")
	})
}

func TestCheckOutputSchema_okWithAny(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[any]("test_any_tool")
	})
}

// Every registered tool output must survive the startup guard.
func TestCheckOutputSchema_registeredOutputs(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[UploadDocumentOutput]("phototype_upload_document")
		CheckOutputSchema[ListDocumentsOutput]("phototype_list_documents")
		CheckOutputSchema[GetDocumentOutput]("phototype_get_document")
		CheckOutputSchema[LinkEvidenceOutput]("phototype_link_evidence")
		CheckOutputSchema[QueryFieldsOutput]("phototype_query_fields")
		CheckOutputSchema[ValidateMappingOutput]("phototype_validate_mapping")
	})
}
