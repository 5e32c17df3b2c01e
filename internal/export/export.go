// Package export renders split results as downloadable spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/receiptsplit/internal/models"
)

// Format is a supported export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Split"

var header = []string{"Person", "Amount"}

// ParseFormat resolves a user-supplied format name; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name for a receipt's split.
func (f Format) Filename(receiptID string) string {
	return fmt.Sprintf("receipt-%s-split.%s", receiptID, f)
}

// Row is one participant's line in an export.
type Row struct {
	Person string
	Amount decimal.Decimal
}

// Rows lists participants in input order with their totals. A participant
// without a name is shown by ID; a missing total is zero.
func Rows(participants []models.Participant, totals map[string]decimal.Decimal) []Row {
	rows := make([]Row, 0, len(participants))
	for _, p := range participants {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		rows = append(rows, Row{Person: name, Amount: totals[p.ID]})
	}
	return rows
}

// Write renders rows in the given format.
func Write(w io.Writer, format Format, rows []Row) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX:
		return writeXLSX(w, rows)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Person, r.Amount.StringFixed(2)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &[]any{header[0], header[1]}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]any{r.Person, r.Amount.Round(2).InexactFloat64()}); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if len(rows) > 0 {
		// Built-in number format 2 is "0.00".
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return fmt.Errorf("create amount style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(2, len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, "B2", last, style); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
