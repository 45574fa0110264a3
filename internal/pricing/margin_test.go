package pricing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func resultOf(client, internal string) Result {
	return summarize([]LineItem{{Label: "Scope", Category: CategoryArchitecture, ClientPrice: d(client), InternalCost: d(internal)}})
}

// blockedWarehouse prices 100,000 sqft of warehouse architecture at a 30% margin.
func blockedWarehouse(t *testing.T, calc *Calculator) Result {
	t.Helper()
	result, err := calc.Standard(Request{
		Areas: []Area{{
			Name: "Warehouse", BuildingType: "warehouse", Size: 100000, LOD: "300", Scope: "full",
			Disciplines: []DisciplineSelection{{Code: "architecture"}},
		}},
		Travel: TravelConfig{Origin: FlyOut},
	})
	if err != nil {
		t.Fatalf("Standard: %v", err)
	}
	return result
}

func TestEvaluateMarginGate_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		want     GateStatus
		wantPct  string
		hasNotes bool
	}{
		{"above target", resultOf("100", "50"), GatePass, "50", false},
		{"exactly target", resultOf("100", "55"), GatePass, "45", false},
		{"between floor and target", resultOf("100", "58"), GateWarning, "42", false},
		{"exactly floor", resultOf("100", "60"), GateWarning, "40", false},
		{"below floor", resultOf("100", "70"), GateBlocked, "30", true},
		{"no lines", summarize(nil), GateBlocked, "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := newTestCalculator(t).EvaluateMarginGate(tt.result)
			if gate.Status != tt.want {
				t.Fatalf("status = %s, want %s", gate.Status, tt.want)
			}
			assertMoney(t, "margin", gate.MarginPercent, tt.wantPct)
			assertMoney(t, "floor", gate.FloorPercent, "40")
			if (gate.BlockingMessage != "") != tt.hasNotes {
				t.Fatalf("unexpected blocking message %q", gate.BlockingMessage)
			}
		})
	}
}

func TestEvaluateMarginGate_ZeroTotalHasNoAdjustment(t *testing.T) {
	gate := newTestCalculator(t).EvaluateMarginGate(resultOf("0", "0"))
	if gate.Status != GateBlocked || !gate.RequiredAdjustmentPercent.IsZero() {
		t.Fatalf("unexpected gate: %+v", gate)
	}
	if !strings.Contains(gate.BlockingMessage, "no billable total") {
		t.Fatalf("unexpected message %q", gate.BlockingMessage)
	}
}

func TestEvaluateMarginGate_RequiredAdjustmentClearsFloor(t *testing.T) {
	calc := newTestCalculator(t)
	result := blockedWarehouse(t, calc)
	assertMoney(t, "client", result.TotalClientPrice, "10000")
	assertMoney(t, "internal", result.TotalInternalCost, "7000")

	gate := calc.EvaluateMarginGate(result)
	if gate.Status != GateBlocked {
		t.Fatalf("status = %s, want blocked", gate.Status)
	}
	assertMoney(t, "margin", gate.MarginPercent, "30")
	assertMoney(t, "required", gate.RequiredAdjustmentPercent, "16.7")
	want := "Margin 30.0% is below the 40% floor. Apply a price adjustment of at least +16.7% to save."
	if gate.BlockingMessage != want {
		t.Fatalf("message = %q, want %q", gate.BlockingMessage, want)
	}

	adjusted, err := ApplyPriceAdjustment(result, gate.RequiredAdjustmentPercent.InexactFloat64())
	if err != nil {
		t.Fatalf("ApplyPriceAdjustment: %v", err)
	}
	assertMoney(t, "adjusted total", adjusted.TotalClientPrice, "11670")
	after := calc.EvaluateMarginGate(adjusted)
	if after.Status == GateBlocked || after.MarginPercent.LessThan(d("40")) {
		t.Fatalf("adjusted quote still blocked: %+v", after)
	}

	slightlyLess, err := ApplyPriceAdjustment(result, 16.6)
	if err != nil {
		t.Fatalf("ApplyPriceAdjustment: %v", err)
	}
	if calc.EvaluateMarginGate(slightlyLess).Status != GateBlocked {
		t.Fatalf("16.6%% should not clear the floor")
	}
}

func TestEvaluateMarginGate_RequiredAdjustmentIgnoresExistingAdjustment(t *testing.T) {
	calc := newTestCalculator(t)
	result := blockedWarehouse(t, calc)

	partial, err := ApplyPriceAdjustment(result, 5)
	if err != nil {
		t.Fatalf("ApplyPriceAdjustment: %v", err)
	}
	gate := calc.EvaluateMarginGate(partial)
	if gate.Status != GateBlocked {
		t.Fatalf("5%% should still be blocked, got %s", gate.Status)
	}
	assertMoney(t, "required", gate.RequiredAdjustmentPercent, "16.7")
}

func TestEvaluateMarginGate_MarginMonotoneInAdjustment(t *testing.T) {
	calc := newTestCalculator(t)
	result := blockedWarehouse(t, calc)

	previous := decimal.NewFromInt(-1)
	for pct := 0.0; pct <= 40; pct += 0.5 {
		adjusted, err := ApplyPriceAdjustment(result, pct)
		if err != nil {
			t.Fatalf("ApplyPriceAdjustment(%v): %v", pct, err)
		}
		margin := calc.EvaluateMarginGate(adjusted).MarginPercent
		if margin.LessThan(previous) {
			t.Fatalf("margin fell from %s to %s at %v%%", previous, margin, pct)
		}
		previous = margin
	}
}

func TestEvaluateMarginGate_UsesQuoteTarget(t *testing.T) {
	calc := newTestCalculator(t)
	result := resultOf("100", "50")
	target := d("55")
	result.MarginTarget = &target

	gate := calc.EvaluateMarginGate(result)
	if gate.Status != GateWarning {
		t.Fatalf("50%% against a 55%% target should warn, got %s", gate.Status)
	}
	assertMoney(t, "target", gate.TargetPercent, "55")
}

func TestEvaluateMarginGate_DoesNotModifyInput(t *testing.T) {
	calc := newTestCalculator(t)
	result := blockedWarehouse(t, calc)
	before := len(result.Items)

	calc.EvaluateMarginGate(result)

	if len(result.Items) != before {
		t.Fatalf("items changed from %d to %d", before, len(result.Items))
	}
	assertMoney(t, "total", result.TotalClientPrice, "10000")
}
