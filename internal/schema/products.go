// Package schema describes the column layouts the exporter reads and writes:
// the product pricing sheet sellers fill in, the marketplace import template,
// and the rejected-rows report.
package schema

// FieldType represents the expected data type for a source column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// FieldSpec defines a single column of the product pricing sheet.
type FieldSpec struct {
	Name     string    // Column header name (matched case-insensitively)
	Type     FieldType // Expected data type
	Required bool      // Column must exist in the sheet header
	Sample   []string  // Example values written to the downloadable template
}

// Source column headers.
const (
	ColSKU         = "Código SKU"
	ColName        = "Nome do Produto"
	ColListedPrice = "Preço de Venda (Clássico)"
	ColTotalCost   = "Valor do Produto"
)

// ProductFieldSpecs defines the columns read from a product pricing sheet.
// Every column must be present in the header; cell values may still be empty.
var ProductFieldSpecs = []FieldSpec{
	{Name: ColSKU, Type: FieldText, Required: true, Sample: []string{"CAM-001", "CAL-002", "BON-003"}},
	{Name: ColName, Type: FieldText, Required: true, Sample: []string{"Camiseta Básica", "Calça Jeans", "Boné Aba Curva"}},
	{Name: ColListedPrice, Type: FieldNumeric, Required: true, Sample: []string{"59.90", "149.90", "39.90"}},
	{Name: ColTotalCost, Type: FieldNumeric, Required: true, Sample: []string{"32.50", "88.00", "21.00"}},
}

// TargetColumns is the marketplace import template header, in file order.
var TargetColumns = []string{
	"IdProduto",
	"ID na loja",
	"Nome do Produto",
	"Código",
	"Preço",
	"Preço Promocional",
	"ID do Fornecedor",
	"ID da Marca",
	"Link Externo",
	"Nome da Loja",
}

// ReportColumns is the rejected-rows report header, in file order.
var ReportColumns = []string{
	"LinhaOrigem",
	"SKU",
	"Erro",
	"Valor",
	"Observação",
}

// Columns returns the header names of specs in order.
func Columns(specs []FieldSpec) []string {
	out := make([]string, len(specs))
	for i, spec := range specs {
		out[i] = spec.Name
	}
	return out
}
