package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"testing"

	"github.com/JonMunkholm/priceexport/internal/schema"
)

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkParseAmount covers the separator styles sellers actually send.
func BenchmarkParseAmount(b *testing.B) {
	testCases := []string{
		"59.90",
		"59,90",
		"R$ 1.234,56",
		"1,234.56",
		"  149.90  ",
		"abc",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseAmount(tc)
		}
	}
}

func BenchmarkParseAmount_Simple(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseAmount("12345")
	}
}

func BenchmarkCleanCell(b *testing.B) {
	testCases := []string{"CAM-001", "  Camiseta Básica  ", `="00123"`, ""}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			CleanCell(tc)
		}
	}
}

func BenchmarkValidateHeaders(b *testing.B) {
	headers := append([]string{"Observações", "Estoque"}, schema.Columns(schema.ProductFieldSpecs)...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ValidateHeaders(headers, schema.ProductFieldSpecs)
	}
}

// ============================================================================
// Validation Benchmarks
// ============================================================================

func BenchmarkRowValidator(b *testing.B) {
	v := NewRowValidator()
	row := SourceRow{SKU: "CAM-001", Name: "Camiseta", ListedPrice: "59,90", TotalCost: "32.50", Line: 2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Validate(row)
	}
}

// BenchmarkRowValidator_FirstRule measures a row stopped by the first rule.
func BenchmarkRowValidator_FirstRule(b *testing.B) {
	v := NewRowValidator()
	row := SourceRow{Name: "Camiseta", ListedPrice: "59,90", Line: 2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Validate(row)
	}
}

func BenchmarkClassify(b *testing.B) {
	rows := generateRows(50_000)

	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			p := NewExportPipeline(PipelineOptions{Workers: workers})
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := p.Classify(ctx, rows); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// ============================================================================
// I/O Benchmarks
// ============================================================================

func BenchmarkReadTable(b *testing.B) {
	data := generateTestCSV(10_000)
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadTable("precos.csv", bytes.NewReader(data), 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteTemplateCSV(b *testing.B) {
	c, err := NewExportPipeline(PipelineOptions{}).Classify(context.Background(), generateRows(10_000))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := WriteTemplateCSV(io.Discard, c.Valid, CSVOptions{Delimiter: ';'}); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

// generateRows returns n rows where every fourth row is rejected.
func generateRows(n int) []SourceRow {
	rows := make([]SourceRow, n)
	for i := range rows {
		rows[i] = SourceRow{
			SKU:         fmt.Sprintf("SKU-%06d", i),
			Name:        "Camiseta Básica",
			ListedPrice: "59,90",
			TotalCost:   "32.50",
			Line:        i + 2,
		}
		if i%4 == 3 {
			rows[i].TotalCost = "99"
		}
	}
	return rows
}

// generateTestCSV generates a pricing sheet with the specified number of rows.
func generateTestCSV(rows int) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write(schema.Columns(schema.ProductFieldSpecs))
	for i := 0; i < rows; i++ {
		_ = w.Write([]string{fmt.Sprintf("SKU-%06d", i), "Camiseta Básica", "59.90", "32.50"})
	}
	w.Flush()

	return buf.Bytes()
}
