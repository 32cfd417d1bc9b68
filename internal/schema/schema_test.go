package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phototype/evidence-mcp/internal/extract"
)

func TestValidatorAcceptsRealExtraction(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	ex := extract.Extractor{
		Clock: time.Now,
		NewID: func() string { return "deadbeef-0000-0000-0000-000000000000" },
	}
	doc, err := ex.Extract("contract.pdf")
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	result, err := v.Validate(data)
	require.NoError(t, err)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestValidatorRejectsWrongShape(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	result, err := v.Validate([]byte(`{"fields": {}, "text": 42}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidatorErrorsOnBadJSON(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	_, err = v.Validate([]byte(`{not json`))
	assert.Error(t, err)
}

func TestSchemaJSONIsServable(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(v.SchemaJSON(), &doc))
	assert.Contains(t, doc, "properties")
}
