package core

// templates.go writes the two fixed-layout files the exporter produces for
// sellers: the marketplace import template (accepted rows) and the blank
// pricing sheet they download to fill in.

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/priceexport/internal/schema"
	"github.com/xuri/excelize/v2"
)

// utf8BOM lets Excel on Windows detect UTF-8 in CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions controls delimited output.
type CSVOptions struct {
	Delimiter rune // Field separator (default ',')
	UTF8BOM   bool // Prefix the file with a UTF-8 byte order mark
}

func (o CSVOptions) newWriter(w io.Writer) (*csv.Writer, error) {
	if o.UTF8BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("write bom: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	if o.Delimiter != 0 {
		cw.Comma = o.Delimiter
	}
	return cw, nil
}

// WriteTemplateCSV serializes accepted rows in marketplace template layout.
// The header is always written, so an empty slice yields a header-only file.
func WriteTemplateCSV(w io.Writer, rows []ValidRow, opts CSVOptions) error {
	cw, err := opts.newWriter(w)
	if err != nil {
		return err
	}

	if err := cw.Write(schema.TargetColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SourceTemplateSheet is the sheet name used in the downloadable pricing sheet.
const SourceTemplateSheet = "Produtos"

// WriteSourceTemplateXLSX writes a pricing sheet with the expected input
// columns and a few example products.
func WriteSourceTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SourceTemplateSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(schema.ProductFieldSpecs))
	for i, spec := range schema.ProductFieldSpecs {
		header[i] = spec.Name
	}
	if err := f.SetSheetRow(SourceTemplateSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	samples := 0
	for _, spec := range schema.ProductFieldSpecs {
		samples = max(samples, len(spec.Sample))
	}
	for r := 0; r < samples; r++ {
		values := make([]any, len(schema.ProductFieldSpecs))
		for c, spec := range schema.ProductFieldSpecs {
			if r >= len(spec.Sample) {
				continue
			}
			values[c] = sampleValue(spec, spec.Sample[r])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SourceTemplateSheet, cell, &values); err != nil {
			return fmt.Errorf("write sample row %d: %w", r+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(schema.ProductFieldSpecs))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SourceTemplateSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(SourceTemplateSheet, "A", lastCol, 28); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	return f.Write(w)
}

// sampleValue stores numeric samples as numbers so the sheet behaves like a
// real pricing export.
func sampleValue(spec schema.FieldSpec, v string) any {
	if spec.Type != schema.FieldNumeric {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
