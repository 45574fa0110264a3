package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GateStatus is the outcome of the margin gate. Blocked is an expected
// outcome the caller surfaces as a warning, not an error.
type GateStatus string

const (
	GatePass    GateStatus = "pass"
	GateWarning GateStatus = "warning"
	GateBlocked GateStatus = "blocked"
)

// GateResult is the margin gate's verdict on one priced quote.
type GateResult struct {
	Status                    GateStatus      `json:"status"`
	MarginPercent             decimal.Decimal `json:"marginPercent"`
	FloorPercent              decimal.Decimal `json:"floorPercent"`
	TargetPercent             decimal.Decimal `json:"targetPercent"`
	RequiredAdjustmentPercent decimal.Decimal `json:"requiredAdjustmentPercent"`
	BlockingMessage           string          `json:"blockingMessage,omitempty"`
}

// maxAdjustmentSteps bounds the 0.1% walk that confirms the required adjustment.
const maxAdjustmentSteps = 100

// MarginPercent is (total − cost) / total × 100, or 0 for a non-positive total.
func MarginPercent(r Result) decimal.Decimal {
	if !r.TotalClientPrice.IsPositive() {
		return decimal.Zero
	}
	profit := r.TotalClientPrice.Sub(r.TotalInternalCost)
	return profit.DivRound(r.TotalClientPrice, 6).Mul(hundred)
}

// EvaluateMarginGate checks r against the rate card's margin policy.
func (c *Calculator) EvaluateMarginGate(r Result) GateResult {
	return c.rates.Margin().Evaluate(r)
}

// Evaluate classifies r as pass, warning or blocked and, when blocked, the
// minimum markup that clears the floor. It never modifies r.
func (p MarginPolicy) Evaluate(r Result) GateResult {
	target := p.TargetPercent
	if r.MarginTarget != nil {
		target = *r.MarginTarget
	}
	margin := MarginPercent(r)

	g := GateResult{
		MarginPercent: margin,
		FloorPercent:  p.FloorPercent,
		TargetPercent: target,
	}
	switch {
	case margin.GreaterThanOrEqual(target):
		g.Status = GatePass
	case margin.GreaterThanOrEqual(p.FloorPercent):
		g.Status = GateWarning
	default:
		g.Status = GateBlocked
	}
	if g.Status != GateBlocked {
		return g
	}

	base := withoutAdjustments(r)
	if !base.TotalClientPrice.IsPositive() {
		g.BlockingMessage = "Quote has no billable total; add priced scope before saving."
		return g
	}
	g.RequiredAdjustmentPercent = p.requiredAdjustment(base)
	g.BlockingMessage = fmt.Sprintf(
		"Margin %s%% is below the %s%% floor. Apply a price adjustment of at least +%s%% to save.",
		margin.StringFixed(1), p.FloorPercent.String(), g.RequiredAdjustmentPercent.StringFixed(1),
	)
	return g
}

// requiredAdjustment solves targetPrice = cost / (1 − floor) for the markup
// over base, rounded up to one decimal, then walks up in 0.1% steps until the
// cent-rounded adjusted quote actually clears the floor.
func (p MarginPolicy) requiredAdjustment(base Result) decimal.Decimal {
	keep := one.Sub(p.FloorPercent.Div(hundred))
	targetPrice := base.TotalInternalCost.Div(keep)
	pct := targetPrice.Div(base.TotalClientPrice).Sub(one).Mul(hundred).RoundCeil(1)
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	for i := 0; i < maxAdjustmentSteps; i++ {
		if MarginPercent(applyAdjustment(base, pct)).GreaterThanOrEqual(p.FloorPercent) {
			break
		}
		pct = pct.Add(tenth)
	}
	return pct
}
