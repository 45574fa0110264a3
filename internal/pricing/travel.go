package pricing

import "github.com/shopspring/decimal"

// FlyOut is the dispatch sentinel for projects reached by air; no mileage model applies.
const FlyOut = "FLY_OUT"

// TravelConfig is the project's single dispatch selection. DistanceMiles is
// ignored for FlyOut. CustomCost, when set, replaces the computed cost. An
// empty Origin means no dispatch has been chosen yet: there is no travel cost.
type TravelConfig struct {
	Origin        string   `json:"origin" yaml:"origin"`
	DistanceMiles float64  `json:"distanceMiles" yaml:"distance_miles"`
	CustomCost    *float64 `json:"customCost,omitempty" yaml:"custom_cost,omitempty"`
}

// TravelPreview is the travel cost shown next to the dispatch picker.
type TravelPreview struct {
	Cost          decimal.Decimal `json:"cost"`
	IsCustom      bool            `json:"isCustom"`
	BaseFee       decimal.Decimal `json:"baseFee"`
	BillableMiles decimal.Decimal `json:"billableMiles"`
}

// TravelPreview computes the travel cost for a dispatch selection and the
// aggregate equivalent square footage of the project.
func (c *Calculator) TravelPreview(t TravelConfig, aggregateSqft decimal.Decimal) (TravelPreview, error) {
	if t.Origin == "" {
		if t.CustomCost != nil {
			return TravelPreview{}, &InvalidInputError{Field: "travel origin", Reason: "required with a custom travel cost"}
		}
		return TravelPreview{}, nil
	}

	var origin Origin
	if t.Origin != FlyOut {
		var err error
		if origin, err = c.rates.Origin(t.Origin); err != nil {
			return TravelPreview{}, err
		}
	}

	if t.CustomCost != nil {
		cost, err := nonNegative("custom travel cost", *t.CustomCost)
		if err != nil {
			return TravelPreview{}, err
		}
		return TravelPreview{Cost: round2(cost), IsCustom: true}, nil
	}
	if t.Origin == FlyOut {
		return TravelPreview{}, nil
	}

	distance, err := nonNegative("travel distance", t.DistanceMiles)
	if err != nil {
		return TravelPreview{}, err
	}
	fee := origin.baseFee(aggregateSqft)
	billable := maxZero(distance.Sub(origin.FreeMiles))
	return TravelPreview{
		Cost:          round2(fee.Add(billable.Mul(origin.PerMileRate))),
		BaseFee:       fee,
		BillableMiles: billable,
	}, nil
}

// travelLine returns the project travel line. Travel is a pass-through cost:
// internal cost equals client price. A fly-out without a custom cost has no
// line, nor does a project with no origin.
func (c *Calculator) travelLine(t TravelConfig, aggregateSqft decimal.Decimal) (LineItem, bool, error) {
	preview, err := c.TravelPreview(t, aggregateSqft)
	if err != nil {
		return LineItem{}, false, err
	}
	if t.Origin == "" || (t.Origin == FlyOut && !preview.IsCustom) {
		return LineItem{}, false, nil
	}

	label := "Travel — Fly-out"
	if t.Origin != FlyOut {
		origin, _ := c.rates.Origin(t.Origin)
		label = "Travel — " + origin.Name
	}
	if preview.IsCustom {
		label += " (custom)"
	}
	return LineItem{
		Label:        label,
		Category:     CategoryTravel,
		ClientPrice:  preview.Cost,
		InternalCost: preview.Cost,
		IsCustom:     preview.IsCustom,
	}, true, nil
}
