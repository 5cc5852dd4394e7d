package core

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SourceRow is one product entry read from a pricing sheet.
// Price and cost are kept as the raw cell text; the validator decides
// whether they are numbers.
type SourceRow struct {
	SKU         string
	Name        string
	ListedPrice string // Preço de Venda (Clássico)
	TotalCost   string // Valor do Produto
	Line        int    // 1-based sheet row (header included), 0 if unknown
}

// ValidRow is a SourceRow projected onto the marketplace import template.
// Field order matches schema.TargetColumns.
type ValidRow struct {
	ProductID    string `json:"productId"`
	StoreID      string `json:"storeId"`
	ProductName  string `json:"productName"`
	Code         string `json:"code"`
	Price        string `json:"price"`
	PromoPrice   string `json:"promoPrice"`
	SupplierID   string `json:"supplierId"`
	BrandID      string `json:"brandId"`
	ExternalLink string `json:"externalLink"`
	StoreName    string `json:"storeName"`
}

// Record returns the row as template columns.
func (r ValidRow) Record() []string {
	return []string{
		r.ProductID,
		r.StoreID,
		r.ProductName,
		r.Code,
		r.Price,
		r.PromoPrice,
		r.SupplierID,
		r.BrandID,
		r.ExternalLink,
		r.StoreName,
	}
}

// ReasonCode classifies why a row was rejected.
type ReasonCode string

const (
	ReasonEmptySku       ReasonCode = "EmptySku"
	ReasonEmptyName      ReasonCode = "EmptyName"
	ReasonInvalidPrice   ReasonCode = "InvalidPrice"
	ReasonPriceBelowCost ReasonCode = "PriceBelowCost"
)

// Description returns a short human-readable explanation of the code.
func (c ReasonCode) Description() string {
	switch c {
	case ReasonEmptySku:
		return "SKU is empty"
	case ReasonEmptyName:
		return "product name is empty"
	case ReasonInvalidPrice:
		return "listed price is missing or not a number"
	case ReasonPriceBelowCost:
		return "listed price is below product cost"
	default:
		return string(c)
	}
}

// RejectedRow records a row that failed validation.
type RejectedRow struct {
	Line           int        `json:"line"`
	SKU            string     `json:"sku"`
	Reason         ReasonCode `json:"reason"`
	ListedPriceRaw string     `json:"listedPrice"`
	TotalCostRaw   string     `json:"totalCost"` // only set for PriceBelowCost
}

// Record returns the row as report columns (schema.ReportColumns).
func (r RejectedRow) Record() []string {
	return []string{
		strconv.Itoa(r.Line),
		r.SKU,
		string(r.Reason),
		r.ListedPriceRaw,
		r.TotalCostRaw,
	}
}

// Outcome is the result of validating one row. Exactly one field is non-nil.
type Outcome struct {
	Valid    *ValidRow
	Rejected *RejectedRow
}

// Accepted reports whether the row passed every rule.
func (o Outcome) Accepted() bool {
	return o.Valid != nil
}

// ExportResult summarizes a single pipeline run.
type ExportResult struct {
	RunID     uuid.UUID     `json:"runId"`
	TotalRows int           `json:"totalRows"`
	Accepted  int           `json:"accepted"`
	Rejected  []RejectedRow `json:"rejected"`
	Output    string        `json:"output,omitempty"`
	Report    string        `json:"report,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`

	// ReportError is set when the export file was saved but the requested
	// rejected rows report could not be written.
	ReportError string `json:"reportError,omitempty"`
}

// RejectedCount returns the number of rejected rows.
func (r ExportResult) RejectedCount() int {
	return len(r.Rejected)
}

// Sink is a writable destination for export files.
//
// Write opens name, hands the writer to write and releases it on every exit
// path. The returned location identifies the committed object. When write
// or the release fails, nothing is committed under name.
type Sink interface {
	Write(ctx context.Context, name string, write func(io.Writer) error) (location string, err error)
}
