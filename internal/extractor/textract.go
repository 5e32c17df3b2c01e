package extractor

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// FromTextract converts an AnalyzeExpense response into an AnalysisResult.
// Missing detections become empty strings.
func FromTextract(out *textract.AnalyzeExpenseOutput) AnalysisResult {
	res := AnalysisResult{Documents: []Document{}}
	if out == nil {
		return res
	}
	for _, doc := range out.ExpenseDocuments {
		d := Document{
			SummaryFields:  convertFields(doc.SummaryFields),
			LineItemGroups: make([]LineItemGroup, 0, len(doc.LineItemGroups)),
		}
		for _, g := range doc.LineItemGroups {
			group := LineItemGroup{Items: make([]LineItemFields, 0, len(g.LineItems))}
			for _, li := range g.LineItems {
				group.Items = append(group.Items, LineItemFields{Fields: convertFields(li.LineItemExpenseFields)})
			}
			d.LineItemGroups = append(d.LineItemGroups, group)
		}
		res.Documents = append(res.Documents, d)
	}
	return res
}

func convertFields(in []types.ExpenseField) []Field {
	out := make([]Field, 0, len(in))
	for _, f := range in {
		var field Field
		if f.Type != nil {
			field.Type = aws.ToString(f.Type.Text)
			field.Confidence = float64(aws.ToFloat32(f.Type.Confidence))
		}
		if f.LabelDetection != nil {
			field.Label = aws.ToString(f.LabelDetection.Text)
		}
		if f.ValueDetection != nil {
			field.ValueText = aws.ToString(f.ValueDetection.Text)
			if f.ValueDetection.Confidence != nil {
				field.Confidence = float64(*f.ValueDetection.Confidence)
			}
		}
		out = append(out, field)
	}
	return out
}
