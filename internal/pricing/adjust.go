package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// ApplyPriceAdjustment returns a copy of r marked up by percent of its
// unadjusted total, shown as a "Price Adjustment (+X%)" line with no internal
// cost. An existing adjustment line is replaced rather than stacked, so percent
// always applies to the total without any adjustment: adjusting a +10% result
// by 5% yields +5% of the original total, not +5% on top of +10%. r is not
// modified; callers re-run the margin gate on the returned result.
func ApplyPriceAdjustment(r Result, percent float64) (Result, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 {
		return Result{}, &InvalidAdjustmentError{Percent: percent}
	}
	return applyAdjustment(r, decimal.NewFromFloat(percent)), nil
}

func applyAdjustment(r Result, pct decimal.Decimal) Result {
	base := withoutAdjustments(r)
	items := base.Items
	if pct.IsPositive() {
		items = append(items, LineItem{
			Label:        "Price Adjustment (+" + pct.String() + "%)",
			Category:     CategoryAdjustment,
			ClientPrice:  percentOf(base.TotalClientPrice, pct),
			InternalCost: decimal.Zero,
			IsTotal:      true,
		})
	}
	out := summarize(items)
	copyMeta(&out, r)
	return out
}

// withoutAdjustments rebuilds r without its adjustment lines on a fresh slice.
func withoutAdjustments(r Result) Result {
	items := make([]LineItem, 0, len(r.Items)+1)
	for _, item := range r.Items {
		if item.Category == CategoryAdjustment {
			continue
		}
		items = append(items, item)
	}
	out := summarize(items)
	copyMeta(&out, r)
	return out
}

func copyMeta(dst *Result, src Result) {
	dst.AggregateSqft = src.AggregateSqft
	dst.TierAEligible = src.TierAEligible
	if src.MarginTarget != nil {
		target := *src.MarginTarget
		dst.MarginTarget = &target
	}
}
