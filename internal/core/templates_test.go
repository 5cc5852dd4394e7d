package core

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/priceexport/internal/schema"
)

func TestWriteTemplateCSV(t *testing.T) {
	t.Run("header only when empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteTemplateCSV(&buf, nil, CSVOptions{}); err != nil {
			t.Fatalf("WriteTemplateCSV failed: %v", err)
		}
		want := strings.Join(schema.TargetColumns, ",") + "\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("bom and semicolons", func(t *testing.T) {
		var buf bytes.Buffer
		rows := []ValidRow{{ProductID: "A", ProductName: "Calça; Jeans", Code: "A", Price: "149.90"}}
		if err := WriteTemplateCSV(&buf, rows, CSVOptions{Delimiter: ';', UTF8BOM: true}); err != nil {
			t.Fatalf("WriteTemplateCSV failed: %v", err)
		}

		data := buf.Bytes()
		if !bytes.HasPrefix(data, utf8BOM) {
			t.Fatal("missing BOM")
		}

		r := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
		r.Comma = ';'
		recs, err := r.ReadAll()
		if err != nil {
			t.Fatalf("parse output: %v", err)
		}
		if len(recs) != 2 || len(recs[1]) != len(schema.TargetColumns) {
			t.Fatalf("records = %v", recs)
		}
		if recs[1][2] != "Calça; Jeans" || recs[1][4] != "149.90" {
			t.Errorf("row = %v", recs[1])
		}
	})
}

func TestWriteSourceTemplateXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSourceTemplateXLSX(&buf); err != nil {
		t.Fatalf("WriteSourceTemplateXLSX failed: %v", err)
	}

	// The template must be readable by the exporter itself.
	rows, err := ReadSourceRows("template.xlsx", bytes.NewReader(buf.Bytes()), 0)
	if err != nil {
		t.Fatalf("ReadSourceRows failed: %v", err)
	}
	if len(rows) != len(schema.ProductFieldSpecs[0].Sample) {
		t.Fatalf("got %d sample rows, want %d", len(rows), len(schema.ProductFieldSpecs[0].Sample))
	}

	c, err := testPipeline(PipelineOptions{}).Classify(t.Context(), rows)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(c.Rejected) != 0 {
		t.Errorf("sample rows rejected: %+v", c.Rejected)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetName(0); got != SourceTemplateSheet {
		t.Errorf("sheet = %q, want %q", got, SourceTemplateSheet)
	}
}
