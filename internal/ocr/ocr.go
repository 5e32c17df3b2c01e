// Package ocr runs receipt images through a document-analysis service.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/mmynk/receiptsplit/internal/extractor"
)

// Analyzer analyzes an uploaded receipt and returns the normalized result
// together with the raw service payload.
type Analyzer interface {
	AnalyzeExpense(ctx context.Context, bucket, key string) (extractor.AnalysisResult, []byte, error)
}

// TextractAPI is the subset of the Textract client used here.
type TextractAPI interface {
	AnalyzeExpense(ctx context.Context, params *textract.AnalyzeExpenseInput, optFns ...func(*textract.Options)) (*textract.AnalyzeExpenseOutput, error)
}

// Textract implements Analyzer with AWS Textract AnalyzeExpense.
type Textract struct {
	client  TextractAPI
	timeout time.Duration
}

var _ Analyzer = (*Textract)(nil)

// NewTextract creates a Textract analyzer from an AWS config. Retries follow
// the config's retryer; timeout bounds each call, zero disables it.
func NewTextract(cfg aws.Config, timeout time.Duration) *Textract {
	return NewTextractWithClient(textract.NewFromConfig(cfg), timeout)
}

// NewTextractWithClient wraps an existing client.
func NewTextractWithClient(client TextractAPI, timeout time.Duration) *Textract {
	return &Textract{client: client, timeout: timeout}
}

// AnalyzeExpense analyzes the S3 object bucket/key.
func (t *Textract) AnalyzeExpense(ctx context.Context, bucket, key string) (extractor.AnalysisResult, []byte, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := t.client.AnalyzeExpense(ctx, &textract.AnalyzeExpenseInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return extractor.AnalysisResult{}, nil, fmt.Errorf("textract analyze expense: %w", err)
	}
	slog.Debug("Textract analysis complete",
		"key", key,
		"documents", len(out.ExpenseDocuments),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	raw, err := json.Marshal(rawOutput{
		DocumentMetadata: out.DocumentMetadata,
		ExpenseDocuments: out.ExpenseDocuments,
	})
	if err != nil {
		return extractor.AnalysisResult{}, nil, fmt.Errorf("encode textract output: %w", err)
	}
	return extractor.FromTextract(out), raw, nil
}

// rawOutput is the persisted form of an AnalyzeExpense response. It decodes
// back into textract.AnalyzeExpenseOutput.
type rawOutput struct {
	DocumentMetadata *types.DocumentMetadata
	ExpenseDocuments []types.ExpenseDocument
}
