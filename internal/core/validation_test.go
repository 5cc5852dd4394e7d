package core

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/priceexport/internal/schema"
)

func TestRowValidator_Validate(t *testing.T) {
	v := NewRowValidator()

	tests := []struct {
		name       string
		row        SourceRow
		wantReason ReasonCode // "" means accepted
		wantCost   string
	}{
		{
			name: "valid row",
			row:  SourceRow{SKU: "SKU1", Name: "Shirt", ListedPrice: "50", TotalCost: "30"},
		},
		{
			name: "price equal to cost is accepted",
			row:  SourceRow{SKU: "SKU1", Name: "Shirt", ListedPrice: "30,00", TotalCost: "30"},
		},
		{
			name: "missing cost is accepted",
			row:  SourceRow{SKU: "SKU1", Name: "Shirt", ListedPrice: "50"},
		},
		{
			name: "non-numeric cost is accepted",
			row:  SourceRow{SKU: "SKU1", Name: "Shirt", ListedPrice: "50", TotalCost: "n/a"},
		},
		{
			name:       "empty sku wins over everything",
			row:        SourceRow{SKU: "  ", Name: "", ListedPrice: "abc", TotalCost: "99"},
			wantReason: ReasonEmptySku,
		},
		{
			name:       "empty name",
			row:        SourceRow{SKU: "SKU1", Name: " ", ListedPrice: "abc"},
			wantReason: ReasonEmptyName,
		},
		{
			name:       "missing price",
			row:        SourceRow{SKU: "SKU1", Name: "Shirt", TotalCost: "10"},
			wantReason: ReasonInvalidPrice,
		},
		{
			name:       "non-numeric price with no cost",
			row:        SourceRow{SKU: "SKU1", Name: "Shirt", ListedPrice: "abc"},
			wantReason: ReasonInvalidPrice,
		},
		{
			name:       "price below cost",
			row:        SourceRow{SKU: "SKU4", Name: "Belt", ListedPrice: "15", TotalCost: "20"},
			wantReason: ReasonPriceBelowCost,
			wantCost:   "20",
		},
		{
			name:       "price below cost by one cent",
			row:        SourceRow{SKU: "SKU4", Name: "Belt", ListedPrice: "R$ 19,99", TotalCost: "20"},
			wantReason: ReasonPriceBelowCost,
			wantCost:   "20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.Validate(tt.row)

			if (out.Valid == nil) == (out.Rejected == nil) {
				t.Fatalf("exactly one of Valid/Rejected must be set, got %+v", out)
			}

			if tt.wantReason == "" {
				if !out.Accepted() {
					t.Fatalf("expected accepted, got %s", out.Rejected.Reason)
				}
				return
			}

			if out.Accepted() {
				t.Fatalf("expected %s, got accepted", tt.wantReason)
			}
			if out.Rejected.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", out.Rejected.Reason, tt.wantReason)
			}
			if out.Rejected.TotalCostRaw != tt.wantCost {
				t.Errorf("TotalCostRaw = %q, want %q", out.Rejected.TotalCostRaw, tt.wantCost)
			}
			if out.Rejected.ListedPriceRaw != tt.row.ListedPrice {
				t.Errorf("ListedPriceRaw = %q, want %q", out.Rejected.ListedPriceRaw, tt.row.ListedPrice)
			}
		})
	}
}

func TestRowValidator_Mapping(t *testing.T) {
	out := NewRowValidator().Validate(SourceRow{
		SKU:         " SKU1 ",
		Name:        " Camiseta ",
		ListedPrice: "R$ 1.234,50",
		TotalCost:   "100",
	})
	if !out.Accepted() {
		t.Fatalf("expected accepted, got %+v", out.Rejected)
	}

	want := []string{"SKU1", "", "Camiseta", "SKU1", "1234.50", "", "", "", "", ""}
	got := out.Valid.Record()
	if len(got) != len(schema.TargetColumns) {
		t.Fatalf("record has %d fields, want %d", len(got), len(schema.TargetColumns))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s = %q, want %q", schema.TargetColumns[i], got[i], want[i])
		}
	}
}

func TestValidateHeaders(t *testing.T) {
	t.Run("all columns present in any order and case", func(t *testing.T) {
		headers := []string{"valor do produto", "CÓDIGO SKU", "Extra", "Nome do Produto", "Preço de Venda (Clássico)"}
		idx, err := ValidateHeaders(headers, schema.ProductFieldSpecs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx[strings.ToLower(schema.ColTotalCost)] != 0 {
			t.Errorf("cost column index = %d, want 0", idx[strings.ToLower(schema.ColTotalCost)])
		}
	})

	t.Run("missing columns listed", func(t *testing.T) {
		_, err := ValidateHeaders([]string{"Código SKU", "Nome do Produto"}, schema.ProductFieldSpecs)
		if err == nil {
			t.Fatal("expected error")
		}
		msg := err.Error()
		for _, col := range []string{schema.ColListedPrice, schema.ColTotalCost} {
			if !strings.Contains(msg, col) {
				t.Errorf("error %q should mention %q", msg, col)
			}
		}
		if strings.Contains(msg, schema.ColSKU) {
			t.Errorf("error %q should not mention present column", msg)
		}
	})
}
