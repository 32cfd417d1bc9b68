package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flattenJSON(t *testing.T, data string) []Entry {
	t.Helper()
	node, err := Decode([]byte(data))
	require.NoError(t, err)
	return Flatten(node)
}

func paths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path.String())
	}
	return out
}

func TestDecodePreservesKeyOrder(t *testing.T) {
	entries := flattenJSON(t, `{"zebra":"z","alpha":"a","mid":{"b":"1","a":"2"}}`)

	assert.Equal(t, []string{"zebra", "alpha", "mid.b", "mid.a"}, paths(entries))
}

func TestFlattenNestedStructure(t *testing.T) {
	data := `{
		"contract_number": "AUTO_1A2B3C4D",
		"seller": {"name": "Acme Corp", "location": "Springfield"},
		"delivery_documents": {
			"required_documents": ["Invoice", "Bill of Lading"]
		}
	}`
	entries := flattenJSON(t, data)

	assert.Equal(t, []string{
		"contract_number",
		"seller.name",
		"seller.location",
		"delivery_documents.required_documents[0]",
		"delivery_documents.required_documents[1]",
	}, paths(entries))
	assert.Equal(t, "Acme Corp", entries[1].Value)
	assert.Equal(t, "Bill of Lading", entries[4].Value)
}

func TestFlattenSkipsEmptyAndNull(t *testing.T) {
	entries := flattenJSON(t, `{"a":"","b":null,"c":"kept"}`)

	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].Path.String())
}

func TestFlattenCanonicalScalars(t *testing.T) {
	entries := flattenJSON(t, `{"int": 42, "float": 3.5, "exp": 1200.0, "yes": true, "no": false}`)

	values := map[string]string{}
	for _, e := range entries {
		values[e.Path.String()] = e.Value
	}
	assert.Equal(t, "42", values["int"])
	assert.Equal(t, "3.5", values["float"])
	assert.Equal(t, "1200", values["exp"])
	assert.Equal(t, "true", values["yes"])
	assert.Equal(t, "false", values["no"])
}

func TestFlattenArrayOfObjects(t *testing.T) {
	entries := flattenJSON(t, `{"items":[{"name":"a"},{"name":"b"}]}`)

	assert.Equal(t, []string{"items[0].name", "items[1].name"}, paths(entries))
}

func TestFlattenIdempotent(t *testing.T) {
	node, err := Decode([]byte(`{"x":{"y":["1","2"],"z":"3"},"w":"4"}`))
	require.NoError(t, err)

	first := Flatten(node)
	second := Flatten(node)
	assert.Equal(t, first, second)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"a":1} trailing`))
	assert.Error(t, err)
}

func TestFromValueUnsupportedLeaf(t *testing.T) {
	node := FromValue(map[string]any{
		"good": "value",
		"bad":  make(chan int),
	})
	entries := Flatten(node)

	require.Len(t, entries, 2)
	// Sorted key order for in-memory maps.
	assert.Equal(t, "bad", entries[0].Path.String())
	assert.True(t, entries[0].Unsupported)
	assert.Equal(t, "good", entries[1].Path.String())
	assert.False(t, entries[1].Unsupported)
}

func TestFromValueScalars(t *testing.T) {
	node := FromValue(map[string]any{
		"n":  float64(12345),
		"f":  float64(0.25),
		"b":  true,
		"s":  "text",
		"ni": nil,
	})
	entries := Flatten(node)

	values := map[string]string{}
	for _, e := range entries {
		values[e.Path.String()] = e.Value
	}
	assert.Equal(t, "12345", values["n"])
	assert.Equal(t, "0.25", values["f"])
	assert.Equal(t, "true", values["b"])
	assert.Equal(t, "text", values["s"])
	assert.NotContains(t, values, "ni")
}
