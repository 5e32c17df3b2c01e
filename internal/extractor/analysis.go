// Package extractor turns a document-analysis result into a ParsedReceipt.
//
// Extraction never fails: OCR input is unreliable, so missing or malformed
// values degrade to absent fields and under-populated line items.
package extractor

// AnalysisResult is the document-analysis output for one receipt image.
type AnalysisResult struct {
	Documents []Document `json:"documents"`
}

// Document is one detected expense document.
type Document struct {
	SummaryFields  []Field         `json:"summaryFields"`
	LineItemGroups []LineItemGroup `json:"lineItemGroups"`
}

// LineItemGroup holds the items of one detected table.
type LineItemGroup struct {
	Items []LineItemFields `json:"items"`
}

// LineItemFields is the set of typed fields detected for one line item.
type LineItemFields struct {
	Fields []Field `json:"fields"`
}

// Field is a typed key/value detection. Type is a free-text label from the
// OCR service and is not a closed set.
type Field struct {
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	ValueText  string  `json:"valueText"`
	Confidence float64 `json:"confidence,omitempty"`
}
