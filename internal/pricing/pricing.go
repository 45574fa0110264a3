// Package pricing turns a structured scanning/modeling project into an itemized
// quote and enforces the margin floor on it.
//
// Every function in this package is a pure transformation of its inputs: there
// is no I/O and no state shared between calls, so a Calculator may be used from
// any number of goroutines. Money is decimal and rounded to the cent, half away
// from zero, at the point each line is produced.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category tags a line item for per-discipline reporting.
type Category string

const (
	CategoryArchitecture Category = "architecture"
	CategoryMEP          Category = "mep"
	CategoryStructural   Category = "structural"
	CategorySite         Category = "site"
	CategoryScanning     Category = "scanning"
	CategoryModeling     Category = "modeling"
	CategoryTravel       Category = "travel"
	CategoryRisk         Category = "risk"
	CategoryServices     Category = "services"
	CategoryPaymentTerms Category = "payment_terms"
	CategoryAdjustment   Category = "adjustment"
)

// LineItem is one priced row of a quote.
type LineItem struct {
	Label        string          `json:"label"`
	Category     Category        `json:"category"`
	ClientPrice  decimal.Decimal `json:"clientPrice"`
	InternalCost decimal.Decimal `json:"internalCost"`
	IsDiscount   bool            `json:"isDiscount"`
	IsTotal      bool            `json:"isTotal"`
	IsCustom     bool            `json:"isCustom,omitempty"`
}

// Result is a fully priced quote. It is the shape persisted with every quote version.
type Result struct {
	Items             []LineItem                   `json:"items"`
	Subtotal          decimal.Decimal              `json:"subtotal"`
	TotalClientPrice  decimal.Decimal              `json:"totalClientPrice"`
	TotalInternalCost decimal.Decimal              `json:"totalInternalCost"`
	ProfitMargin      decimal.Decimal              `json:"profitMargin"`
	DisciplineTotals  map[Category]decimal.Decimal `json:"disciplineTotals"`
	AggregateSqft     decimal.Decimal              `json:"aggregateSqft"`
	TierAEligible     bool                         `json:"tierAEligible"`
	MarginTarget      *decimal.Decimal             `json:"marginTarget,omitempty"`
}

// Request is everything the standard orchestrator needs for one quote.
type Request struct {
	Areas        []Area             `json:"areas" yaml:"areas"`
	Services     map[string]float64 `json:"services,omitempty" yaml:"services,omitempty"`
	Travel       TravelConfig       `json:"travel" yaml:"travel"`
	Risks        []string           `json:"risks,omitempty" yaml:"risks,omitempty"`
	PaymentTerms string             `json:"paymentTerms,omitempty" yaml:"payment_terms,omitempty"`

	// MarginTargetOverride replaces the stretch target for this quote. It is
	// clamped to the floor and must be below 100; the floor itself cannot be
	// overridden.
	MarginTargetOverride *float64 `json:"marginTargetOverride,omitempty" yaml:"margin_target_override,omitempty"`
}

// Calculator prices quotes against one immutable rate card.
type Calculator struct {
	rates *RateConfig
}

// NewCalculator returns a Calculator bound to rates.
func NewCalculator(rates *RateConfig) *Calculator {
	return &Calculator{rates: rates}
}

// Rates returns the rate card the calculator prices with.
func (c *Calculator) Rates() *RateConfig {
	return c.rates
}

// Standard runs the per-area pipeline: discipline lines for every area, one
// travel line, then risk, services and payment-terms surcharges in that order.
// Any failure aborts the whole calculation.
func (c *Calculator) Standard(req Request) (Result, error) {
	items := make([]LineItem, 0, len(req.Areas)*2+4)
	aggregate := decimal.Zero

	for i, area := range req.Areas {
		sqft, err := c.equivalentSqft(area)
		if err != nil {
			return Result{}, fmt.Errorf("area %d (%s): %w", i+1, area.label(), err)
		}
		lines, err := c.areaLines(area, sqft)
		if err != nil {
			return Result{}, fmt.Errorf("area %d (%s): %w", i+1, area.label(), err)
		}
		aggregate = aggregate.Add(sqft)
		items = append(items, lines...)
	}

	travel, ok, err := c.travelLine(req.Travel, aggregate)
	if err != nil {
		return Result{}, fmt.Errorf("travel: %w", err)
	}
	if ok {
		items = append(items, travel)
	}

	risks, err := c.riskLines(sumClient(items), req.Risks)
	if err != nil {
		return Result{}, err
	}
	items = append(items, risks...)

	services, err := c.serviceLines(req.Services)
	if err != nil {
		return Result{}, err
	}
	items = append(items, services...)

	terms, ok, err := c.paymentTermsLine(sumClient(items), req.PaymentTerms)
	if err != nil {
		return Result{}, err
	}
	if ok {
		items = append(items, terms)
	}

	result := summarize(items)
	result.AggregateSqft = aggregate.Round(2)
	if threshold := c.rates.TierAThresholdSqft(); threshold.IsPositive() {
		result.TierAEligible = aggregate.GreaterThanOrEqual(threshold)
	}
	if req.MarginTargetOverride != nil {
		target, err := nonNegative("margin target override", *req.MarginTargetOverride)
		if err != nil {
			return Result{}, err
		}
		if target.GreaterThanOrEqual(hundred) {
			return Result{}, &InvalidInputError{Field: "margin target override", Reason: "must be below 100%"}
		}
		if floor := c.rates.Margin().FloorPercent; target.LessThan(floor) {
			target = floor
		}
		result.MarginTarget = &target
	}
	return result, nil
}

// summarize recomputes every total of a result from its line items.
func summarize(items []LineItem) Result {
	r := Result{
		Items:            items,
		DisciplineTotals: make(map[Category]decimal.Decimal),
	}
	adjustments := decimal.Zero
	for _, item := range items {
		if item.IsTotal {
			adjustments = adjustments.Add(item.ClientPrice)
		} else {
			r.Subtotal = r.Subtotal.Add(item.ClientPrice)
		}
		r.TotalInternalCost = r.TotalInternalCost.Add(item.InternalCost)
		r.DisciplineTotals[item.Category] = r.DisciplineTotals[item.Category].Add(item.ClientPrice)
	}
	r.TotalClientPrice = r.Subtotal.Add(adjustments)
	r.ProfitMargin = r.TotalClientPrice.Sub(r.TotalInternalCost)
	return r
}

func sumClient(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.ClientPrice)
	}
	return total
}
