package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/priceexport/internal/schema"
)

var sampleRejected = []RejectedRow{
	{Line: 2, SKU: "", Reason: ReasonEmptySku, ListedPriceRaw: "20"},
	{Line: 4, SKU: "SKU4", Reason: ReasonPriceBelowCost, ListedPriceRaw: "15", TotalCostRaw: "20"},
}

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    ReportFormat
		wantErr bool
	}{
		{"", ReportNone, false},
		{"csv", ReportCSV, false},
		{" XLSX ", ReportXLSX, false},
		{"pdf", ReportNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReportFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteRejectedCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRejectedCSV(&buf, sampleRejected, CSVOptions{}); err != nil {
		t.Fatalf("WriteRejectedCSV failed: %v", err)
	}

	want := "LinhaOrigem,SKU,Erro,Valor,Observação\n" +
		"2,,EmptySku,20,\n" +
		"4,SKU4,PriceBelowCost,15,20\n"
	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteRejectedXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRejectedXLSX(&buf, sampleRejected); err != nil {
		t.Fatalf("WriteRejectedXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ReportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if strings.Join(rows[0], "|") != strings.Join(schema.ReportColumns, "|") {
		t.Errorf("header = %v", rows[0])
	}
	if got := strings.Join(rows[2], "|"); got != "4|SKU4|PriceBelowCost|15|20" {
		t.Errorf("row = %q", got)
	}
}

func TestWriteReport_NoFormat(t *testing.T) {
	if err := WriteReport(&bytes.Buffer{}, sampleRejected, ReportNone, CSVOptions{}); err == nil {
		t.Fatal("expected error for ReportNone")
	}
}
