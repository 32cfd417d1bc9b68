package link

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phototype/evidence-mcp/internal/document"
	"github.com/phototype/evidence-mcp/internal/fieldmap"
	"github.com/phototype/evidence-mcp/pkg/types"
)

const contractText = "CONTRACT No. K-2024/17\n" +
	"Seller: ACME TRADING LLC, Springfield\n" +
	"Buyer: Initech Industries, Shelbyville\n" +
	"Subject: 500 tons of steel pipes, origin Kazakhstan\n" +
	"Total: 1200000 USD payable against Invoice and Bill of Lading"

func mustDoc(t *testing.T, raw string, breaks []int) *document.Text {
	t.Helper()
	doc, err := document.New(raw, breaks)
	require.NoError(t, err)
	return doc
}

func mustMapping(t *testing.T, data string) fieldmap.Node {
	t.Helper()
	node, err := fieldmap.Decode([]byte(data))
	require.NoError(t, err)
	return node
}

func TestLinkInvoiceScenario(t *testing.T) {
	doc := mustDoc(t, "Invoice No. 12345 dated March 1", nil)
	mapping := mustMapping(t, `{"invoice_no": "12345"}`)

	result, err := Link(context.Background(), doc, mapping, Config{})
	require.NoError(t, err)

	spans := result.Fields["invoice_no"]
	require.Len(t, spans, 1)
	assert.Equal(t, 12, spans[0].Start)
	assert.Equal(t, 17, spans[0].End)
	assert.Equal(t, 1.0, spans[0].Score)
	assert.Equal(t, 0, spans[0].Page)
}

func TestLinkVerbatimValuesScoreOne(t *testing.T) {
	doc := mustDoc(t, contractText, nil)
	mapping := mustMapping(t, `{
		"contract_number": "K-2024/17",
		"seller": {"name": "ACME TRADING LLC", "location": "Springfield"},
		"buyer": {"name": "Initech Industries"}
	}`)

	result, err := Link(context.Background(), doc, mapping, Config{})
	require.NoError(t, err)

	for _, path := range []string{"contract_number", "seller.name", "seller.location", "buyer.name"} {
		spans := result.Fields[path]
		require.NotEmpty(t, spans, "no spans for %s", path)
		assert.Equal(t, 1.0, spans[0].Score, "best span for %s", path)
	}
}

func TestLinkAbsentValueEmptyNotOmitted(t *testing.T) {
	doc := mustDoc(t, contractText, nil)
	mapping := mustMapping(t, `{"present": "ACME TRADING LLC", "absent": "qqwwxxyyzz-unrelated-0042"}`)

	result, err := Link(context.Background(), doc, mapping, Config{})
	require.NoError(t, err)

	require.Contains(t, result.Fields, "absent")
	assert.Empty(t, result.Fields["absent"])
	assert.NotEmpty(t, result.Fields["present"])
	assert.Equal(t, []string{"present", "absent"}, result.Order)
}

func TestLinkEmptyDocumentFailsFast(t *testing.T) {
	mapping := mustMapping(t, `{"a": "b"}`)

	_, err := Link(context.Background(), nil, mapping, Config{})
	assert.ErrorIs(t, err, document.ErrEmptyDocument)
}

func TestLinkSkipsUnsupportedLeaves(t *testing.T) {
	doc := mustDoc(t, contractText, nil)
	mapping := fieldmap.FromValue(map[string]any{
		"ok":  "ACME TRADING LLC",
		"bad": make(chan int),
	})

	result, err := Link(context.Background(), doc, mapping, Config{})
	require.NoError(t, err)

	assert.Contains(t, result.Skipped, "bad")
	require.Contains(t, result.Fields, "bad")
	assert.Empty(t, result.Fields["bad"])
	assert.NotEmpty(t, result.Fields["ok"])
}

func TestLinkPageNumbers(t *testing.T) {
	page1 := "First page about nothing in particular.\n"
	page2 := "Second page mentions Invoice 777 explicitly."
	raw := page1 + page2
	doc := mustDoc(t, raw, []int{0, len(page1)})
	mapping := mustMapping(t, `{"invoice_no": "777"}`)

	result, err := Link(context.Background(), doc, mapping, Config{})
	require.NoError(t, err)

	spans := result.Fields["invoice_no"]
	require.NotEmpty(t, spans)
	assert.Equal(t, 1, spans[0].Page)
}

func TestLinkOverlapMergeInvariant(t *testing.T) {
	doc := mustDoc(t, "Buyer is ACME CORPORATION of Springfield, trading as ACME CORP GROUP", nil)
	mapping := mustMapping(t, `{"buyer": "Acme Corp"}`)

	result, err := Link(context.Background(), doc, mapping, Config{})
	require.NoError(t, err)

	spans := result.Fields["buyer"]
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			shorter := spans[i].Len()
			if spans[j].Len() < shorter {
				shorter = spans[j].Len()
			}
			overlap := spans[i].Overlap(spans[j])
			assert.LessOrEqual(t, float64(overlap), 0.5*float64(shorter),
				"spans %d and %d overlap too much", i, j)
		}
	}
}

func TestLinkMaxResultsPerField(t *testing.T) {
	doc := mustDoc(t, "ref 99 and ref 99 and ref 99 and ref 99 and ref 99 here", nil)
	mapping := mustMapping(t, `{"ref": "ref 99"}`)

	result, err := Link(context.Background(), doc, mapping, Config{MaxResultsPerField: 2})
	require.NoError(t, err)
	assert.Len(t, result.Fields["ref"], 2)
}

func TestLinkConcurrencyDeterminism(t *testing.T) {
	doc := mustDoc(t, contractText, []int{0, 40, 100})
	mapping := mustMapping(t, `{
		"contract_number": "K-2024/17",
		"seller": {"name": "ACME TRADING LLC", "location": "Springfield"},
		"buyer": {"name": "Initech Industries", "location": "Shelbyville"},
		"subject": {"quantity": "500 tons", "origin": "Kazakhstan"},
		"total": "1200000 USD",
		"documents": ["Invoice", "Bill of Lading"]
	}`)

	run := func(concurrency int) []byte {
		result, err := Link(context.Background(), doc, mapping, Config{Concurrency: concurrency})
		require.NoError(t, err)
		data, err := json.Marshal(result)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, string(run(1)), string(run(8)))
}

func TestLinkDeadlineTruncates(t *testing.T) {
	doc := mustDoc(t, contractText, nil)
	mapping := mustMapping(t, `{
		"a": "ACME TRADING LLC", "b": "Initech Industries", "c": "Kazakhstan",
		"d": "steel pipes", "e": "1200000 USD", "f": "Bill of Lading"
	}`)

	cfg := Config{Concurrency: 1, Deadline: time.Nanosecond}
	result, err := Link(context.Background(), doc, mapping, cfg)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Less(t, len(result.Order), 6)
}

func TestMergeOverlaps(t *testing.T) {
	spans := []types.EvidenceSpan{
		{Start: 0, End: 10, Score: 0.9},
		{Start: 2, End: 10, Score: 0.8},  // 8/8 overlap with kept span
		{Start: 9, End: 20, Score: 0.7},  // 1/10 overlap, kept
		{Start: 40, End: 50, Score: 0.6}, // disjoint, kept
	}
	kept := mergeOverlaps(spans)

	require.Len(t, kept, 3)
	assert.Equal(t, 0, kept[0].Start)
	assert.Equal(t, 9, kept[1].Start)
	assert.Equal(t, 40, kept[2].Start)
}
