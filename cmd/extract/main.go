// Command extract runs field extraction over saved Textract AnalyzeExpense
// JSON files and prints one ParsedReceipt per file.
//
// Usage:
//
//	extract [-j 4] [-split alice,bob] [-prop] response1.json response2.json ...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/extractor"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/pkg/logging"
)

// result is one entry of output.
type result struct {
	File   string               `json:"file"`
	Parsed models.ParsedReceipt `json:"parsed"`
	Split  *preview             `json:"split,omitempty"`
}

type preview struct {
	Totals map[string]models.Money `json:"totals"`
	Meta   models.SplitMeta        `json:"meta"`
}

func main() {
	_ = godotenv.Load()

	var (
		jobs     = flag.Int("j", runtime.NumCPU(), "files processed concurrently")
		split    = flag.String("split", "", "comma-separated participant IDs for an even allocation preview")
		propTax  = flag.Bool("prop", false, "spread tax and tip by item spend in the preview")
		logLevel = flag.String("log-level", "", "debug, info, warn or error")
	)
	flag.Parse()
	logging.Setup(*logLevel)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: extract [flags] file.json...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	results, err := extractFiles(context.Background(), flag.Args(), *jobs, participants(*split), *propTax)
	if err != nil {
		slog.Error("Extraction failed", "error", err)
		os.Exit(1)
	}
	if err := writeResults(os.Stdout, results); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
}

func participants(list string) []models.Participant {
	var out []models.Participant
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, models.Participant{ID: id, Name: id})
		}
	}
	return out
}

// extractFiles processes files with at most jobs running at once. Results
// keep the input order.
func extractFiles(ctx context.Context, files []string, jobs int, people []models.Participant, propTax bool) ([]result, error) {
	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, jobs))

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := extractFile(file, people, propTax)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func extractFile(file string, people []models.Participant, propTax bool) (result, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return result{}, fmt.Errorf("read %s: %w", file, err)
	}
	var out textract.AnalyzeExpenseOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return result{}, fmt.Errorf("decode %s: %w", file, err)
	}

	parsed := extractor.Extract(extractor.FromTextract(&out))
	slog.Debug("Extracted receipt", "file", file, "line_items", len(parsed.LineItems))

	res := result{File: file, Parsed: parsed}
	if len(people) == 0 {
		return res, nil
	}

	alloc, err := calculator.Allocate(evenSplit(parsed, people, propTax))
	if err != nil {
		return result{}, fmt.Errorf("allocate %s: %w", file, err)
	}
	res.Split = &preview{Totals: models.MoneyMap(alloc.Totals()), Meta: alloc.Meta.Decimal()}
	return res, nil
}

// evenSplit assigns every extracted item to every participant.
func evenSplit(p models.ParsedReceipt, people []models.Participant, propTax bool) calculator.AllocationInput {
	ids := make([]string, len(people))
	for i, person := range people {
		ids[i] = person.ID
	}
	items := make([]models.LineItem, len(p.LineItems))
	assign := make(models.Assignment, len(items))
	for i, li := range p.LineItems {
		li.ID = fmt.Sprintf("item-%d", i+1)
		items[i] = li
		assign[li.ID] = ids
	}
	return calculator.AllocationInput{
		LineItems:          items,
		Subtotal:           p.Subtotal,
		Tax:                p.Tax,
		Tip:                p.Tip,
		Total:              p.Total,
		Participants:       people,
		Assignment:         assign,
		ProportionalTaxTip: propTax,
	}
}

func writeResults(w io.Writer, results []result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
