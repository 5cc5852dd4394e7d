package core

// report.go serializes rejected rows for sellers to fix and re-upload.
// The report is never written implicitly; callers ask for it.

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/priceexport/internal/schema"
	"github.com/xuri/excelize/v2"
)

// ReportFormat selects the rejected-rows report encoding.
type ReportFormat string

const (
	ReportNone ReportFormat = ""
	ReportCSV  ReportFormat = "csv"
	ReportXLSX ReportFormat = "xlsx"
)

// ParseReportFormat accepts "", "csv" or "xlsx" (case-insensitive).
func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ReportNone, ReportCSV, ReportXLSX:
		return f, nil
	default:
		return ReportNone, fmt.Errorf("unknown report format %q (want csv or xlsx)", s)
	}
}

// Extension returns the file extension including the dot.
func (f ReportFormat) Extension() string {
	if f == ReportNone {
		return ""
	}
	return "." + string(f)
}

// ContentType returns the MIME type for downloads.
func (f ReportFormat) ContentType() string {
	switch f {
	case ReportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ReportSheet is the sheet name of the xlsx report.
const ReportSheet = "Rejeitados"

// WriteRejectedCSV writes the rejected-rows report as delimited text.
func WriteRejectedCSV(w io.Writer, rows []RejectedRow, opts CSVOptions) error {
	cw, err := opts.newWriter(w)
	if err != nil {
		return err
	}

	if err := cw.Write(schema.ReportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write line %d: %w", row.Line, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRejectedXLSX writes the rejected-rows report as a single-sheet workbook.
func WriteRejectedXLSX(w io.Writer, rows []RejectedRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(schema.ReportColumns))
	for i, col := range schema.ReportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(ReportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		values := []any{row.Line, row.SKU, string(row.Reason), row.ListedPriceRaw, row.TotalCostRaw}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ReportSheet, cell, &values); err != nil {
			return fmt.Errorf("write line %d: %w", row.Line, err)
		}
	}

	return f.Write(w)
}

// WriteReport writes rows in the given format.
func WriteReport(w io.Writer, rows []RejectedRow, format ReportFormat, opts CSVOptions) error {
	switch format {
	case ReportXLSX:
		return WriteRejectedXLSX(w, rows)
	case ReportCSV:
		return WriteRejectedCSV(w, rows, opts)
	default:
		return fmt.Errorf("no report format selected")
	}
}
