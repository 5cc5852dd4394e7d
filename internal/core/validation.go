package core

// validation.go applies the pricing rules to one row.
//
// Rules run in a fixed order and the first failure wins:
//  1. EmptySku: the SKU cell is blank
//  2. EmptyName: the product name cell is blank
//  3. InvalidPrice: the listed price is blank or not a number
//  4. PriceBelowCost: the cost is a number and the price is lower
//
// A missing or non-numeric cost never rejects a row on its own.
// Header validation (required columns present) happens once per sheet in
// ValidateHeaders and is a run-level failure, not a row rejection.

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/priceexport/internal/schema"
)

// rule checks one condition and returns the reason code when the row fails.
type rule struct {
	reason ReasonCode
	fails  func(row SourceRow, price, cost Amount) bool
}

var pricingRules = []rule{
	{
		reason: ReasonEmptySku,
		fails: func(row SourceRow, _, _ Amount) bool {
			return strings.TrimSpace(row.SKU) == ""
		},
	},
	{
		reason: ReasonEmptyName,
		fails: func(row SourceRow, _, _ Amount) bool {
			return strings.TrimSpace(row.Name) == ""
		},
	},
	{
		reason: ReasonInvalidPrice,
		fails: func(_ SourceRow, price, _ Amount) bool {
			return !price.Valid()
		},
	},
	{
		reason: ReasonPriceBelowCost,
		fails: func(_ SourceRow, price, cost Amount) bool {
			return cost.Valid() && price.Less(cost)
		},
	},
}

// RowValidator classifies rows against the pricing rules.
// It holds no state and is safe for concurrent use.
type RowValidator struct {
	rules []rule
}

// NewRowValidator creates a validator with the standard pricing rules.
func NewRowValidator() *RowValidator {
	return &RowValidator{rules: pricingRules}
}

// Validate returns either the template projection of row or the reason it
// was rejected.
func (v *RowValidator) Validate(row SourceRow) Outcome {
	price := ParseAmount(row.ListedPrice)
	cost := ParseAmount(row.TotalCost)

	for _, r := range v.rules {
		if !r.fails(row, price, cost) {
			continue
		}

		rejected := &RejectedRow{
			Line:           row.Line,
			SKU:            row.SKU,
			Reason:         r.reason,
			ListedPriceRaw: row.ListedPrice,
		}
		if r.reason == ReasonPriceBelowCost {
			rejected.TotalCostRaw = row.TotalCost
		}
		return Outcome{Rejected: rejected}
	}

	sku := strings.TrimSpace(row.SKU)
	return Outcome{Valid: &ValidRow{
		ProductID:   sku,
		ProductName: strings.TrimSpace(row.Name),
		Code:        sku,
		Price:       price.Text,
	}}
}

// ValidateHeaders checks that every required column exists in the sheet
// header. Returns a mapping from column name to index, or an error listing
// missing columns.
func ValidateHeaders(headers []string, specs []schema.FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}
