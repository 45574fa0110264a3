// Package ratecard loads the pricing rate card from YAML.
package ratecard

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/Simplici0/scanquote/internal/pricing"
)

//go:embed default.yaml
var defaultCard []byte

// DefaultSource names the embedded card in logs and stored versions.
const DefaultSource = "embedded:default.yaml"

// Card is a parsed, validated rate card and the fingerprint of its bytes.
type Card struct {
	Source      string
	Fingerprint string
	Rates       *pricing.RateConfig
}

type typeRate struct {
	Name         string  `yaml:"name"`
	BaseRate     float64 `yaml:"base_rate"`
	InternalRate float64 `yaml:"internal_rate"`
}

type discipline struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

type service struct {
	Name         string  `yaml:"name"`
	Category     string  `yaml:"category"`
	UnitRate     float64 `yaml:"unit_rate"`
	InternalRate float64 `yaml:"internal_rate"`
}

type risk struct {
	Name           string  `yaml:"name"`
	PremiumPercent float64 `yaml:"premium_percent"`
}

type paymentTerm struct {
	Name    string  `yaml:"name"`
	Percent float64 `yaml:"percent"`
}

type travelTier struct {
	UpToSqft float64 `yaml:"up_to_sqft"`
	BaseFee  float64 `yaml:"base_fee"`
}

type origin struct {
	Name        string       `yaml:"name"`
	FreeMiles   float64      `yaml:"free_miles"`
	PerMileRate float64      `yaml:"per_mile_rate"`
	Tiers       []travelTier `yaml:"tiers"`
}

type multiplier struct {
	Name   string  `yaml:"name"`
	Factor float64 `yaml:"factor"`
}

type tierA struct {
	ThresholdSqft float64               `yaml:"threshold_sqft"`
	FreeMiles     float64               `yaml:"free_miles"`
	PerMileRate   float64               `yaml:"per_mile_rate"`
	Bands         map[string]float64    `yaml:"bands"`
	Multipliers   map[string]multiplier `yaml:"multipliers"`
}

type margin struct {
	FloorPercent  float64 `yaml:"floor_percent"`
	TargetPercent float64 `yaml:"target_percent"`
}

type file struct {
	AcresToSqft    float64                `yaml:"acres_to_sqft"`
	Margin         margin                 `yaml:"margin"`
	BuildingTypes  map[string]typeRate    `yaml:"building_types"`
	LandscapeTypes map[string]typeRate    `yaml:"landscape_types"`
	Disciplines    map[string]discipline  `yaml:"disciplines"`
	LODs           map[string]float64     `yaml:"lods"`
	Scopes         map[string]float64     `yaml:"scopes"`
	Services       map[string]service     `yaml:"services"`
	Risks          map[string]risk        `yaml:"risks"`
	PaymentTerms   map[string]paymentTerm `yaml:"payment_terms"`
	Origins        map[string]origin      `yaml:"origins"`
	TierA          tierA                  `yaml:"tier_a"`
}

// Default returns the card compiled into the binary.
func Default() (Card, error) {
	return Parse(DefaultSource, defaultCard)
}

// Load reads the card at path, or the embedded card when path is empty.
func Load(path string) (Card, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Card{}, fmt.Errorf("read rate card: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates a card. Unknown keys are rejected so a typo
// cannot silently drop a rate.
func Parse(source string, data []byte) (Card, error) {
	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return Card{}, fmt.Errorf("parse rate card %s: %w", source, err)
	}
	rates, err := pricing.NewRateConfig(f.tables())
	if err != nil {
		return Card{}, fmt.Errorf("%s: %w", source, err)
	}
	return Card{Source: source, Fingerprint: Fingerprint(data), Rates: rates}, nil
}

// Fingerprint identifies the exact card bytes a quote version was priced with.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (f file) tables() pricing.RateTables {
	return pricing.RateTables{
		AcresToSqft:    dec(f.AcresToSqft),
		BuildingTypes:  convert(f.BuildingTypes, typeRate.rate),
		LandscapeTypes: convert(f.LandscapeTypes, typeRate.rate),
		Disciplines: convert(f.Disciplines, func(d discipline) pricing.Discipline {
			return pricing.Discipline{Name: d.Name, Weight: dec(d.Weight)}
		}),
		LODs:   convert(f.LODs, dec),
		Scopes: convert(f.Scopes, dec),
		Services: convert(f.Services, func(s service) pricing.Service {
			return pricing.Service{
				Name:         s.Name,
				Category:     pricing.Category(s.Category),
				UnitRate:     dec(s.UnitRate),
				InternalRate: dec(s.InternalRate),
			}
		}),
		Risks: convert(f.Risks, func(r risk) pricing.Risk {
			return pricing.Risk{Name: r.Name, PremiumPercent: dec(r.PremiumPercent)}
		}),
		PaymentTerms: convert(f.PaymentTerms, func(p paymentTerm) pricing.PaymentTerm {
			return pricing.PaymentTerm{Name: p.Name, Percent: dec(p.Percent)}
		}),
		Origins: convert(f.Origins, origin.origin),
		TierA: pricing.TierARates{
			ThresholdSqft: dec(f.TierA.ThresholdSqft),
			FreeMiles:     dec(f.TierA.FreeMiles),
			PerMileRate:   dec(f.TierA.PerMileRate),
			Bands:         convert(f.TierA.Bands, dec),
			Multipliers: convert(f.TierA.Multipliers, func(m multiplier) pricing.MarginMultiplier {
				return pricing.MarginMultiplier{Name: m.Name, Factor: dec(m.Factor)}
			}),
		},
		Margin: pricing.MarginPolicy{
			FloorPercent:  dec(f.Margin.FloorPercent),
			TargetPercent: dec(f.Margin.TargetPercent),
		},
	}
}

func (r typeRate) rate() pricing.TypeRate {
	return pricing.TypeRate{Name: r.Name, BaseRate: dec(r.BaseRate), InternalRate: dec(r.InternalRate)}
}

func (o origin) origin() pricing.Origin {
	tiers := make([]pricing.TravelTier, 0, len(o.Tiers))
	for _, t := range o.Tiers {
		tiers = append(tiers, pricing.TravelTier{UpToSqft: dec(t.UpToSqft), BaseFee: dec(t.BaseFee)})
	}
	return pricing.Origin{
		Name:        o.Name,
		FreeMiles:   dec(o.FreeMiles),
		PerMileRate: dec(o.PerMileRate),
		Tiers:       tiers,
	}
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func convert[S, D any](in map[string]S, fn func(S) D) map[string]D {
	out := make(map[string]D, len(in))
	for k, v := range in {
		out[k] = fn(v)
	}
	return out
}

// DefaultYAML returns a copy of the embedded card, e.g. as a template for a custom one.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultCard...)
}
