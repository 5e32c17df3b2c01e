package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// analyzeExpense is a trimmed AnalyzeExpense response as saved by the AWS CLI.
const analyzeExpense = `{
  "DocumentMetadata": {"Pages": 1},
  "ExpenseDocuments": [{
    "ExpenseIndex": 1,
    "SummaryFields": [
      {"Type": {"Text": "VENDOR_NAME", "Confidence": 99.1}, "ValueDetection": {"Text": "TRADER JOE'S", "Confidence": 98.7}},
      {"Type": {"Text": "TAX"}, "ValueDetection": {"Text": "$0.24"}},
      {"Type": {"Text": "TOTAL"}, "LabelDetection": {"Text": "BALANCE"}, "ValueDetection": {"Text": "$3.24"}}
    ],
    "LineItemGroups": [{
      "LineItemGroupIndex": 1,
      "LineItems": [
        {"LineItemExpenseFields": [
          {"Type": {"Text": "ITEM"}, "ValueDetection": {"Text": "MILK"}},
          {"Type": {"Text": "PRICE"}, "ValueDetection": {"Text": "3.00"}}
        ]}
      ]
    }]
  }]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExtractFiles(t *testing.T) {
	a := writeFile(t, "a.json", analyzeExpense)
	b := writeFile(t, "b.json", `{"ExpenseDocuments": []}`)

	results, err := extractFiles(context.Background(), []string{a, b}, 2, participants("x, y"), false)
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, a, first.File)
	require.NotNil(t, first.Parsed.MerchantRaw)
	assert.Equal(t, "TRADER JOE'S", *first.Parsed.MerchantRaw)
	assert.Equal(t, "3.24", first.Parsed.Total.Decimal.StringFixed(2))
	require.Len(t, first.Parsed.LineItems, 1)
	assert.Equal(t, "MILK", first.Parsed.LineItems[0].DescriptionRaw)

	require.NotNil(t, first.Split)
	assert.Equal(t, "1.62", first.Split.Totals["x"].Decimal().StringFixed(2))
	assert.Equal(t, "1.62", first.Split.Totals["y"].Decimal().StringFixed(2))

	assert.Equal(t, b, results[1].File)
	assert.Empty(t, results[1].Parsed.LineItems)
}

func TestExtractFiles_BadInput(t *testing.T) {
	bad := writeFile(t, "bad.json", "{not json")
	_, err := extractFiles(context.Background(), []string{bad}, 1, nil, false)
	assert.ErrorContains(t, err, "decode")

	_, err = extractFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.json")}, 1, nil, false)
	assert.ErrorContains(t, err, "read")
}

func TestWriteResults(t *testing.T) {
	path := writeFile(t, "a.json", analyzeExpense)
	results, err := extractFiles(context.Background(), []string{path}, 1, nil, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeResults(&buf, results))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, path, decoded["file"])
	assert.NotContains(t, decoded, "split")

	parsed := decoded["parsed"].(map[string]any)
	assert.Equal(t, "3.24", parsed["total"])
	item := parsed["lineItems"].([]any)[0].(map[string]any)
	assert.Equal(t, "3.00", item["unitPrice"], "amounts keep two fractional digits")
}

func TestParticipants(t *testing.T) {
	assert.Empty(t, participants(""))
	got := participants("alice, ,bob")
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].ID)
	assert.Equal(t, "bob", got[1].Name)
}
