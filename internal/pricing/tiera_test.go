package pricing

import (
	"errors"
	"testing"
)

func TestTierA_StandardMultiplierWithMileage(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.TierA(TierAInput{
		ScanningBand: "7000",
		ModelingCost: 20000,
		Margin:       "standard",
		Origin:       "WOODSTOCK",
	}, 35)
	if err != nil {
		t.Fatalf("TierA: %v", err)
	}

	assertMoney(t, "scanning", got.ScanningCost, "7000")
	assertMoney(t, "subtotal", got.Subtotal, "27000")
	assertMoney(t, "client price", got.ClientPrice, "67500")
	assertMoney(t, "travel", got.TravelCost, "60")
	assertMoney(t, "total", got.TotalWithTravel, "67560")
	if got.MarginName != "Standard ×2.5" || got.FlyOut {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestTierA_OtherBandRequiresCustomFigure(t *testing.T) {
	calc := newTestCalculator(t)
	in := TierAInput{ScanningBand: OtherBand, ModelingCost: 1000, Margin: "tight"}

	_, err := calc.TierA(in, 0)
	var missing *MissingCustomValueError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingCustomValueError, got %v", err)
	}

	custom := 12345.5
	in.CustomScanningCost = &custom
	got, err := calc.TierA(in, 0)
	if err != nil {
		t.Fatalf("TierA: %v", err)
	}
	assertMoney(t, "scanning", got.ScanningCost, "12345.5")
	assertMoney(t, "client price", got.ClientPrice, "26691")
}

func TestTierA_FlyOutHasNoMileage(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.TierA(TierAInput{ScanningBand: "3500", ModelingCost: 500, Margin: "tight", Origin: FlyOut}, 900)
	if err != nil {
		t.Fatalf("TierA: %v", err)
	}
	if !got.FlyOut {
		t.Fatalf("expected fly-out flag")
	}
	assertMoney(t, "travel", got.TravelCost, "0")
	assertMoney(t, "total", got.TotalWithTravel, "8000")

	if n := len(got.Result().Items); n != 2 {
		t.Fatalf("fly-out result should have no travel line, got %d lines", n)
	}
}

func TestTierA_UnknownCodes(t *testing.T) {
	tests := []struct {
		name  string
		in    TierAInput
		table string
	}{
		{"band", TierAInput{ScanningBand: "9000", Margin: "tight"}, TableScanningBand},
		{"margin", TierAInput{ScanningBand: "3500", Margin: "generous"}, TableMargin},
		{"origin", TierAInput{ScanningBand: "3500", Margin: "tight", Origin: "ALBANY"}, TableOrigin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestCalculator(t).TierA(tt.in, 10)
			var lookup *ConfigurationLookupError
			if !errors.As(err, &lookup) || lookup.Table != tt.table {
				t.Fatalf("expected %s lookup error, got %v", tt.table, err)
			}
		})
	}
}

func TestTierA_NegativeModelingCostRejected(t *testing.T) {
	_, err := newTestCalculator(t).TierA(TierAInput{ScanningBand: "3500", ModelingCost: -1, Margin: "tight"}, 0)
	if !isInput(err) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
}

func TestTierAResult_ConvertsToStandardShape(t *testing.T) {
	calc := newTestCalculator(t)
	tierA, err := calc.TierA(TierAInput{ScanningBand: "7000", ModelingCost: 20000, Margin: "standard", Origin: "WOODSTOCK"}, 35)
	if err != nil {
		t.Fatalf("TierA: %v", err)
	}

	result := tierA.Result()
	if len(result.Items) != 3 {
		t.Fatalf("expected scanning, modeling and travel lines, got %+v", result.Items)
	}
	assertMoney(t, "scanning line", result.Items[0].ClientPrice, "17500")
	assertMoney(t, "modeling line", result.Items[1].ClientPrice, "50000")
	assertMoney(t, "total", result.TotalClientPrice, tierA.TotalWithTravel.String())
	assertMoney(t, "internal", result.TotalInternalCost, "27060")
	if !result.TierAEligible {
		t.Fatalf("converted result should be flagged as Tier A")
	}
	if gate := calc.EvaluateMarginGate(result); gate.Status != GatePass {
		t.Fatalf("×2.5 multiplier should pass the gate, got %+v", gate)
	}
}

func TestTierA_NoOriginMeansNoTravel(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.TierA(TierAInput{ScanningBand: "7000", ModelingCost: 20000, Margin: "standard"}, 35)
	if err != nil {
		t.Fatalf("TierA: %v", err)
	}
	assertMoney(t, "travel", got.TravelCost, "0")
	assertMoney(t, "total", got.TotalWithTravel, "67500")

	result := got.Result()
	if len(result.Items) != 2 {
		t.Fatalf("expected scanning and modeling lines only, got %+v", result.Items)
	}
	assertMoney(t, "converted total", result.TotalClientPrice, "67500")
}
