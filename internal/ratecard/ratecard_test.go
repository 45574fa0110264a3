package ratecard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Simplici0/scanquote/internal/pricing"
)

func TestDefaultCardIsValid(t *testing.T) {
	card, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if card.Source != DefaultSource {
		t.Fatalf("source = %q", card.Source)
	}
	if len(card.Fingerprint) != 64 {
		t.Fatalf("fingerprint %q is not a sha256 hex digest", card.Fingerprint)
	}

	rates := card.Rates
	if _, err := rates.Origin("WOODSTOCK"); err != nil {
		t.Fatalf("WOODSTOCK origin missing: %v", err)
	}
	if _, err := rates.Discipline(pricing.SiteDiscipline); err != nil {
		t.Fatalf("site discipline missing: %v", err)
	}
	if got := rates.Margin().FloorPercent.String(); got != "40" {
		t.Fatalf("floor = %s, want 40", got)
	}
	if got := rates.AcresToSqft().String(); got != "43560" {
		t.Fatalf("acres_to_sqft = %s", got)
	}
}

func TestDefaultCardPricesAQuote(t *testing.T) {
	card, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	calc := pricing.NewCalculator(card.Rates)

	result, err := calc.Standard(pricing.Request{
		Areas: []pricing.Area{{
			Name: "HQ", BuildingType: "office", Size: 50000, LOD: "300", Scope: "full",
			Disciplines: []pricing.DisciplineSelection{{Code: "architecture"}, {Code: "mep"}},
		}},
		Travel:       pricing.TravelConfig{Origin: "WOODSTOCK", DistanceMiles: 40},
		Risks:        []string{"occupied"},
		PaymentTerms: "standard",
	})
	if err != nil {
		t.Fatalf("Standard: %v", err)
	}
	if got := result.TotalClientPrice.StringFixed(2); got != "18469.00" {
		t.Fatalf("total = %s, want 18469.00", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.yaml")
	if err := os.WriteFile(path, defaultCard, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fromFile, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	embedded, err := Load("")
	if err != nil {
		t.Fatalf("Load(empty): %v", err)
	}
	if fromFile.Fingerprint != embedded.Fingerprint {
		t.Fatalf("same bytes produced different fingerprints")
	}
	if fromFile.Source != path || embedded.Source != DefaultSource {
		t.Fatalf("unexpected sources %q, %q", fromFile.Source, embedded.Source)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParse_RejectsBadCards(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
		want string
	}{
		{"unknown key", func(s string) string {
			return strings.Replace(s, "acres_to_sqft:", "acres_to_sqfeet:", 1)
		}, "acres_to_sqfeet"},
		{"internal above client", func(s string) string {
			return strings.Replace(s, "{name: Office, base_rate: 0.20, internal_rate: 0.10}",
				"{name: Office, base_rate: 0.20, internal_rate: 0.30}", 1)
		}, "internal rate exceeds client rate"},
		{"floor above target", func(s string) string {
			return strings.Replace(s, "floor_percent: 40", "floor_percent: 50", 1)
		}, "floor < target"},
		{"missing tier", func(s string) string {
			return strings.Replace(s, "      - {up_to_sqft: 50000, base_fee: 150}\n", "", 1)
		}, "expected 3 base-fee tiers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.yaml", []byte(tt.edit(string(defaultCard))))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := Fingerprint([]byte("margin: 40"))
	b := Fingerprint([]byte("margin: 41"))
	if a == b {
		t.Fatalf("different cards share a fingerprint")
	}
}
