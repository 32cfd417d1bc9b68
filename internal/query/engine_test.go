package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extractionJSON = `{
	"fields": {
		"contract_number": "AUTO_1A2B3C4D",
		"seller": {"name": "Acme", "location": "Springfield"},
		"delivery_documents": {"required_documents": ["Invoice", "Invoice", "Packing List"]}
	},
	"text": "full text"
}`

func TestQueryExtractsValues(t *testing.T) {
	e := NewEngine()

	result, err := e.Query([]byte(extractionJSON), ".fields.seller.name", false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Acme"}, result.Values)
}

func TestQueryDeduplicates(t *testing.T) {
	e := NewEngine()

	expr := ".fields.delivery_documents.required_documents[]"
	result, err := e.Query([]byte(extractionJSON), expr, true, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Invoice", "Packing List"}, result.Values)
	assert.Equal(t, 3, result.RawCount)
}

func TestQueryMaxResults(t *testing.T) {
	e := NewEngine()

	expr := ".fields.delivery_documents.required_documents[]"
	result, err := e.Query([]byte(extractionJSON), expr, false, 1)
	require.NoError(t, err)
	assert.Len(t, result.Values, 1)
}

func TestQueryInvalidExpression(t *testing.T) {
	e := NewEngine()

	_, err := e.Query([]byte(extractionJSON), ".fields[", false, 0)
	assert.Error(t, err)
}

func TestQueryPerValueErrorsCollected(t *testing.T) {
	e := NewEngine()

	result, err := e.Query([]byte(extractionJSON), ".text | keys", false, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	assert.NotEmpty(t, result.Errors)
}
