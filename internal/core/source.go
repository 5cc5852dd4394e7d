package core

// source.go reads pricing sheets (.csv or .xlsx) into SourceRows.
//
// Sellers often put a title or notes above the real header, so the header is
// the first of the top headerSearchRows rows that carries every required
// column. Fully blank rows below it are skipped. Line numbers are physical
// sheet rows, so they match what the seller sees in Excel.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/priceexport/internal/schema"
	"github.com/xuri/excelize/v2"
)

// headerSearchRows is how far down the sheet the header may start.
const headerSearchRows = 10

// ErrUnsupportedFormat is returned for files that are neither csv nor xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// TableRow is a data row together with its physical sheet row number.
type TableRow struct {
	Line  int
	Cells []string
}

// Table is a parsed pricing sheet.
type Table struct {
	Headers    []string
	HeaderLine int
	Rows       []TableRow
}

// ReadTable parses fileName's content from r. The extension picks the format.
// maxSize caps the number of bytes read (0 means unlimited).
//
// Errors are *PipelineError with kind ErrSourceUnreadable or
// ErrMissingColumns.
func ReadTable(fileName string, r io.Reader, maxSize int64) (Table, error) {
	payload, err := readPayload(r, maxSize)
	if err != nil {
		return Table{}, newPipelineError(ErrSourceUnreadable, err)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return Table{}, newPipelineError(ErrSourceUnreadable, errors.New("file is empty"))
	}

	records, err := parseRecords(fileName, payload)
	if err != nil {
		return Table{}, newPipelineError(ErrSourceUnreadable, err)
	}

	return locateHeader(records, schema.ProductFieldSpecs)
}

func parseRecords(fileName string, payload []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return parseCSV(payload)
	case ".xlsx", ".xlsm":
		return parseXLSX(payload)
	default:
		return nil, fmt.Errorf("%w: %q (use .csv or .xlsx)", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

func parseCSV(payload []byte) ([][]string, error) {
	payload = cleanTextPayload(payload)

	cr := csv.NewReader(bytes.NewReader(payload))
	cr.Comma = sniffDelimiter(payload)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func parseXLSX(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// locateHeader finds the header row and collects the non-blank rows below it.
func locateHeader(records [][]string, specs []schema.FieldSpec) (Table, error) {
	var firstErr error

	for i := 0; i < len(records) && i < headerSearchRows; i++ {
		if isBlank(records[i]) {
			continue
		}
		if _, err := ValidateHeaders(records[i], specs); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		t := Table{Headers: records[i], HeaderLine: i + 1}
		for j := i + 1; j < len(records); j++ {
			if isBlank(records[j]) {
				continue
			}
			t.Rows = append(t.Rows, TableRow{Line: j + 1, Cells: records[j]})
		}
		return t, nil
	}

	if firstErr == nil {
		return Table{}, newPipelineError(ErrSourceUnreadable, errors.New("no header row found"))
	}
	return Table{}, newPipelineError(ErrMissingColumns, firstErr)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// SourceRows maps the table onto SourceRows using the product columns.
func (t Table) SourceRows() ([]SourceRow, error) {
	idx, err := ValidateHeaders(t.Headers, schema.ProductFieldSpecs)
	if err != nil {
		return nil, newPipelineError(ErrMissingColumns, err)
	}

	rows := make([]SourceRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = SourceRow{
			SKU:         idx.Cell(r.Cells, schema.ColSKU),
			Name:        idx.Cell(r.Cells, schema.ColName),
			ListedPrice: idx.Cell(r.Cells, schema.ColListedPrice),
			TotalCost:   idx.Cell(r.Cells, schema.ColTotalCost),
			Line:        r.Line,
		}
	}
	return rows, nil
}

// ReadSourceRows is ReadTable followed by Table.SourceRows.
func ReadSourceRows(fileName string, r io.Reader, maxSize int64) ([]SourceRow, error) {
	t, err := ReadTable(fileName, r, maxSize)
	if err != nil {
		return nil, err
	}
	return t.SourceRows()
}
