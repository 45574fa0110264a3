package pricing

import "github.com/shopspring/decimal"

// TierAInput describes a large project priced without per-area discipline data.
type TierAInput struct {
	ScanningBand       string   `json:"scanningBand" yaml:"scanning_band"`
	CustomScanningCost *float64 `json:"customScanningCost,omitempty" yaml:"custom_scanning_cost,omitempty"`
	ModelingCost       float64  `json:"modelingCost" yaml:"modeling_cost"`
	Margin             string   `json:"margin" yaml:"margin"`
	Origin             string   `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// TierAResult is the outcome of the alternate formula.
type TierAResult struct {
	ScanningCost     decimal.Decimal `json:"scanningCost"`
	ModelingCost     decimal.Decimal `json:"modelingCost"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	MarginName       string          `json:"marginName"`
	MarginMultiplier decimal.Decimal `json:"marginMultiplier"`
	ClientPrice      decimal.Decimal `json:"clientPrice"`
	TravelCost       decimal.Decimal `json:"travelCost"`
	TotalWithTravel  decimal.Decimal `json:"totalWithTravel"`
	Origin           string          `json:"origin,omitempty"`
	FlyOut           bool            `json:"flyOut"`
}

// TierA prices a project with the alternate large-project formula:
//
//	clientPrice     = (scanning + modeling) × multiplier
//	travelCost      = max(0, distance − freeMiles) × perMile   (not for FLY_OUT or no origin)
//	totalWithTravel = clientPrice + travelCost
func (c *Calculator) TierA(in TierAInput, distanceMiles float64) (TierAResult, error) {
	scanning, err := c.tierAScanning(in)
	if err != nil {
		return TierAResult{}, err
	}
	modeling, err := nonNegative("modeling cost", in.ModelingCost)
	if err != nil {
		return TierAResult{}, err
	}
	margin, err := c.rates.MarginMultiplier(in.Margin)
	if err != nil {
		return TierAResult{}, err
	}
	flyOut := in.Origin == FlyOut
	dispatched := in.Origin != "" && !flyOut
	if dispatched {
		if _, err := c.rates.Origin(in.Origin); err != nil {
			return TierAResult{}, err
		}
	}

	travel := decimal.Zero
	if dispatched {
		distance, err := nonNegative("travel distance", distanceMiles)
		if err != nil {
			return TierAResult{}, err
		}
		freeMiles, perMile := c.rates.TierAMileage()
		travel = round2(maxZero(distance.Sub(freeMiles)).Mul(perMile))
	}

	subtotal := round2(scanning).Add(round2(modeling))
	clientPrice := round2(subtotal.Mul(margin.Factor))
	return TierAResult{
		ScanningCost:     round2(scanning),
		ModelingCost:     round2(modeling),
		Subtotal:         subtotal,
		MarginName:       margin.Name,
		MarginMultiplier: margin.Factor,
		ClientPrice:      clientPrice,
		TravelCost:       travel,
		TotalWithTravel:  clientPrice.Add(travel),
		Origin:           in.Origin,
		FlyOut:           flyOut,
	}, nil
}

func (c *Calculator) tierAScanning(in TierAInput) (decimal.Decimal, error) {
	if in.ScanningBand != OtherBand {
		return c.rates.ScanningBand(in.ScanningBand)
	}
	if in.CustomScanningCost == nil {
		return decimal.Zero, &MissingCustomValueError{Field: "custom scanning cost"}
	}
	return nonNegative("custom scanning cost", *in.CustomScanningCost)
}

// Result converts a Tier-A outcome into the standard persisted shape so the
// margin gate and quote store treat both modes alike. Raw scanning and
// modeling costs are the internal cost; travel is a pass-through.
func (r TierAResult) Result() Result {
	scanningPrice := round2(r.ScanningCost.Mul(r.MarginMultiplier))
	items := []LineItem{
		{
			Label:        "Tier A — Scanning",
			Category:     CategoryScanning,
			ClientPrice:  scanningPrice,
			InternalCost: r.ScanningCost,
		},
		{
			Label:        "Tier A — Modeling",
			Category:     CategoryModeling,
			ClientPrice:  r.ClientPrice.Sub(scanningPrice),
			InternalCost: r.ModelingCost,
		},
	}
	if r.Origin != "" && !r.FlyOut {
		items = append(items, LineItem{
			Label:        "Travel — Tier A mileage",
			Category:     CategoryTravel,
			ClientPrice:  r.TravelCost,
			InternalCost: r.TravelCost,
		})
	}
	result := summarize(items)
	result.TierAEligible = true
	return result
}
