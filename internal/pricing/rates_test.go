package pricing

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func testTables() RateTables {
	return RateTables{
		AcresToSqft: d("43560"),
		BuildingTypes: map[string]TypeRate{
			"office":    {Name: "Office", BaseRate: d("0.20"), InternalRate: d("0.10")},
			"warehouse": {Name: "Warehouse", BaseRate: d("0.10"), InternalRate: d("0.07")},
			"grounds":   {Name: "Campus Grounds", BaseRate: d("0.05"), InternalRate: d("0.02")},
		},
		LandscapeTypes: map[string]TypeRate{
			"park": {Name: "Park", BaseRate: d("0.05"), InternalRate: d("0.02")},
		},
		Disciplines: map[string]Discipline{
			"architecture": {Name: "Architecture", Weight: d("1.0")},
			"mep":          {Name: "MEP", Weight: d("0.6")},
			"structural":   {Name: "Structural", Weight: d("0.5")},
			"site":         {Name: "Site", Weight: d("0.5")},
		},
		LODs:   map[string]decimal.Decimal{"200": d("0.8"), "300": d("1.0"), "350": d("1.25"), "400": d("1.5")},
		Scopes: map[string]decimal.Decimal{"full": d("1.0"), "interior": d("0.75"), "exterior": d("0.5")},
		Services: map[string]Service{
			"georeferencing": {Name: "Georeferencing", Category: CategoryServices, UnitRate: d("1500"), InternalRate: d("600")},
			"scan_day":       {Name: "Additional Scan Day", Category: CategoryScanning, UnitRate: d("2500"), InternalRate: d("1500")},
		},
		Risks: map[string]Risk{
			"occupied":  {Name: "Occupied Building", PremiumPercent: d("15")},
			"hazardous": {Name: "Hazardous Conditions", PremiumPercent: d("25")},
			"no_power":  {Name: "No Power", PremiumPercent: d("10")},
		},
		PaymentTerms: map[string]PaymentTerm{
			"standard": {Name: "Net 30", Percent: d("0")},
			"net60":    {Name: "Net 60", Percent: d("5")},
			"partner":  {Name: "Partner", Percent: d("-5")},
		},
		Origins: map[string]Origin{
			"WOODSTOCK": {
				Name: "Woodstock", FreeMiles: d("20"), PerMileRate: d("3"),
				Tiers: []TravelTier{
					{UpToSqft: d("10000"), BaseFee: d("300")},
					{UpToSqft: d("50000"), BaseFee: d("150")},
					{BaseFee: d("0")},
				},
			},
		},
		TierA: TierARates{
			ThresholdSqft: d("100000"),
			FreeMiles:     d("20"),
			PerMileRate:   d("4"),
			Bands:         map[string]decimal.Decimal{"3500": d("3500"), "7000": d("7000")},
			Multipliers: map[string]MarginMultiplier{
				"tight":    {Name: "Tight ×2.0", Factor: d("2.0")},
				"standard": {Name: "Standard ×2.5", Factor: d("2.5")},
			},
		},
		Margin: MarginPolicy{FloorPercent: d("40"), TargetPercent: d("45")},
	}
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	rates, err := NewRateConfig(testTables())
	if err != nil {
		t.Fatalf("NewRateConfig: %v", err)
	}
	return NewCalculator(rates)
}

func TestNewRateConfig_RejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RateTables)
		want   string
	}{
		{"internal above client", func(r *RateTables) {
			r.BuildingTypes["office"] = TypeRate{Name: "Office", BaseRate: d("0.10"), InternalRate: d("0.20")}
		}, "internal rate exceeds client rate"},
		{"missing site discipline", func(r *RateTables) { delete(r.Disciplines, "site") }, `discipline "site" is required`},
		{"two travel tiers", func(r *RateTables) {
			o := r.Origins["WOODSTOCK"]
			o.Tiers = o.Tiers[:2]
			r.Origins["WOODSTOCK"] = o
		}, "expected 3 base-fee tiers"},
		{"floor above target", func(r *RateTables) {
			r.Margin = MarginPolicy{FloorPercent: d("50"), TargetPercent: d("45")}
		}, "floor < target"},
		{"reserved origin", func(r *RateTables) { r.Origins[FlyOut] = r.Origins["WOODSTOCK"] }, "reserved"},
		{"multiplier below one", func(r *RateTables) {
			r.TierA.Multipliers["loss"] = MarginMultiplier{Name: "Loss", Factor: d("0.9")}
		}, "must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := testTables()
			tt.mutate(&tables)
			_, err := NewRateConfig(tables)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestRateConfig_IsIsolatedFromSourceTables(t *testing.T) {
	tables := testTables()
	rates, err := NewRateConfig(tables)
	if err != nil {
		t.Fatalf("NewRateConfig: %v", err)
	}

	tables.BuildingTypes["office"] = TypeRate{Name: "Changed", BaseRate: d("9"), InternalRate: d("1")}
	tables.Origins["WOODSTOCK"].Tiers[0] = TravelTier{UpToSqft: d("1"), BaseFee: d("9999")}

	office, err := rates.BuildingType("office")
	if err != nil {
		t.Fatalf("BuildingType: %v", err)
	}
	assertMoney(t, "office base rate", office.BaseRate, "0.20")

	origin, err := rates.Origin("WOODSTOCK")
	if err != nil {
		t.Fatalf("Origin: %v", err)
	}
	assertMoney(t, "first tier fee", origin.Tiers[0].BaseFee, "300")

	origin.Tiers[0].BaseFee = d("1")
	again, _ := rates.Origin("WOODSTOCK")
	assertMoney(t, "first tier fee after caller mutation", again.Tiers[0].BaseFee, "300")
}

func TestRateConfig_LookupErrorNamesTableAndKey(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.Rates().Risk("asbestos")
	var lookupErr *ConfigurationLookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected ConfigurationLookupError, got %v", err)
	}
	if lookupErr.Table != TableRisk || lookupErr.Key != "asbestos" {
		t.Fatalf("unexpected lookup error: %+v", lookupErr)
	}
}

func TestRateConfig_CodesAreSorted(t *testing.T) {
	calc := newTestCalculator(t)

	got := strings.Join(calc.Rates().Codes(TableDiscipline), ",")
	if got != "architecture,mep,site,structural" {
		t.Fatalf("Codes(discipline) = %s", got)
	}
}
