package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// SiteDiscipline is the discipline whose weight prices every landscape line.
const SiteDiscipline = "site"

// OtherBand selects a custom Tier-A scanning figure instead of a fixed band.
const OtherBand = "other"

// TypeRate is the per-square-foot client and internal rate for a building or landscape type.
type TypeRate struct {
	Name         string
	BaseRate     decimal.Decimal
	InternalRate decimal.Decimal
}

// Discipline is a modeling category and its weight against the type base rate.
type Discipline struct {
	Name   string
	Weight decimal.Decimal
}

// Service is a flat or per-unit add-on priced as rate × quantity.
type Service struct {
	Name         string
	Category     Category
	UnitRate     decimal.Decimal
	InternalRate decimal.Decimal
}

// Risk is a site condition that adds a percentage premium.
type Risk struct {
	Name           string
	PremiumPercent decimal.Decimal
}

// PaymentTerm maps a terms code to a premium percentage. Negative percentages are discounts.
type PaymentTerm struct {
	Name    string
	Percent decimal.Decimal
}

// TravelTier is one step of an origin's base-fee schedule. The tier applies to
// aggregate sizes strictly below UpToSqft; a zero UpToSqft marks the open-ended last tier.
type TravelTier struct {
	UpToSqft decimal.Decimal
	BaseFee  decimal.Decimal
}

// Origin is a dispatch location with its mileage model.
type Origin struct {
	Name        string
	FreeMiles   decimal.Decimal
	PerMileRate decimal.Decimal
	Tiers       []TravelTier
}

// baseFee selects the tier for the aggregate project size.
func (o Origin) baseFee(sqft decimal.Decimal) decimal.Decimal {
	for _, tier := range o.Tiers {
		if tier.UpToSqft.IsZero() || sqft.LessThan(tier.UpToSqft) {
			return tier.BaseFee
		}
	}
	return decimal.Zero
}

// MarginMultiplier is one entry of the Tier-A margin enumeration, e.g. "Standard ×2.5".
type MarginMultiplier struct {
	Name   string
	Factor decimal.Decimal
}

// TierARates holds the alternate large-project pricing constants.
type TierARates struct {
	ThresholdSqft decimal.Decimal
	FreeMiles     decimal.Decimal
	PerMileRate   decimal.Decimal
	Bands         map[string]decimal.Decimal
	Multipliers   map[string]MarginMultiplier
}

// MarginPolicy is the profitability floor and stretch target, in percent.
type MarginPolicy struct {
	FloorPercent  decimal.Decimal `json:"floorPercent"`
	TargetPercent decimal.Decimal `json:"targetPercent"`
}

// RateTables is the raw rate card. It is validated and copied by NewRateConfig.
type RateTables struct {
	AcresToSqft    decimal.Decimal
	BuildingTypes  map[string]TypeRate
	LandscapeTypes map[string]TypeRate
	Disciplines    map[string]Discipline
	LODs           map[string]decimal.Decimal
	Scopes         map[string]decimal.Decimal
	Services       map[string]Service
	Risks          map[string]Risk
	PaymentTerms   map[string]PaymentTerm
	Origins        map[string]Origin
	TierA          TierARates
	Margin         MarginPolicy
}

// RateConfig is an immutable, validated rate card. It is safe for concurrent use.
type RateConfig struct {
	t RateTables
}

// NewRateConfig validates the tables and returns a private copy of them.
func NewRateConfig(t RateTables) (*RateConfig, error) {
	if err := validateTables(t); err != nil {
		return nil, err
	}
	return &RateConfig{t: copyTables(t)}, nil
}

func validateTables(t RateTables) error {
	var errs []error
	if !t.AcresToSqft.IsPositive() {
		errs = append(errs, errors.New("acres_to_sqft must be positive"))
	}
	for code, r := range t.BuildingTypes {
		errs = append(errs, validateTypeRate(TableBuildingType, code, r))
	}
	for code, r := range t.LandscapeTypes {
		errs = append(errs, validateTypeRate(TableLandscapeType, code, r))
	}
	if _, ok := t.Disciplines[SiteDiscipline]; !ok {
		errs = append(errs, fmt.Errorf("discipline %q is required for landscape pricing", SiteDiscipline))
	}
	for code, d := range t.Disciplines {
		if !d.Weight.IsPositive() {
			errs = append(errs, fmt.Errorf("discipline %q: weight must be positive", code))
		}
	}
	for code, m := range t.LODs {
		if !m.IsPositive() {
			errs = append(errs, fmt.Errorf("level of detail %q: multiplier must be positive", code))
		}
	}
	for code, m := range t.Scopes {
		if !m.IsPositive() {
			errs = append(errs, fmt.Errorf("scope %q: multiplier must be positive", code))
		}
	}
	for code, s := range t.Services {
		if s.UnitRate.IsNegative() || s.InternalRate.IsNegative() {
			errs = append(errs, fmt.Errorf("service %q: rates must not be negative", code))
		}
		if s.Category == "" {
			errs = append(errs, fmt.Errorf("service %q: category is required", code))
		}
	}
	for code, r := range t.Risks {
		if r.PremiumPercent.IsNegative() {
			errs = append(errs, fmt.Errorf("risk %q: premium must not be negative", code))
		}
	}
	for code, p := range t.PaymentTerms {
		if p.Percent.LessThanOrEqual(hundred.Neg()) {
			errs = append(errs, fmt.Errorf("payment terms %q: discount must be less than 100%%", code))
		}
	}
	for code, o := range t.Origins {
		errs = append(errs, validateOrigin(code, o))
	}
	errs = append(errs, validateTierA(t.TierA))
	if t.Margin.FloorPercent.IsNegative() || !t.Margin.FloorPercent.LessThan(t.Margin.TargetPercent) ||
		!t.Margin.TargetPercent.LessThan(hundred) {
		errs = append(errs, errors.New("margin: require 0 <= floor < target < 100"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("rate card: %w", err)
	}
	return nil
}

func validateTypeRate(table, code string, r TypeRate) error {
	if !r.BaseRate.IsPositive() || r.InternalRate.IsNegative() {
		return fmt.Errorf("%s %q: base rate must be positive and internal rate non-negative", table, code)
	}
	if r.InternalRate.GreaterThan(r.BaseRate) {
		return fmt.Errorf("%s %q: internal rate exceeds client rate", table, code)
	}
	return nil
}

func validateOrigin(code string, o Origin) error {
	if code == FlyOut {
		return fmt.Errorf("dispatch origin %q is reserved", FlyOut)
	}
	if o.FreeMiles.IsNegative() || o.PerMileRate.IsNegative() {
		return fmt.Errorf("dispatch origin %q: mileage values must not be negative", code)
	}
	if len(o.Tiers) != 3 {
		return fmt.Errorf("dispatch origin %q: expected 3 base-fee tiers, got %d", code, len(o.Tiers))
	}
	for i, tier := range o.Tiers {
		last := i == len(o.Tiers)-1
		if tier.BaseFee.IsNegative() {
			return fmt.Errorf("dispatch origin %q: tier %d fee must not be negative", code, i+1)
		}
		if last != tier.UpToSqft.IsZero() {
			return fmt.Errorf("dispatch origin %q: only the last tier may be open-ended", code)
		}
		if i > 0 && !last && !tier.UpToSqft.GreaterThan(o.Tiers[i-1].UpToSqft) {
			return fmt.Errorf("dispatch origin %q: tier bounds must ascend", code)
		}
	}
	return nil
}

func validateTierA(t TierARates) error {
	if t.FreeMiles.IsNegative() || t.PerMileRate.IsNegative() || t.ThresholdSqft.IsNegative() {
		return errors.New("tier A: mileage and threshold values must not be negative")
	}
	if _, ok := t.Bands[OtherBand]; ok {
		return fmt.Errorf("tier A: band %q is reserved for custom figures", OtherBand)
	}
	for code, b := range t.Bands {
		if !b.IsPositive() {
			return fmt.Errorf("tier A: band %q must be positive", code)
		}
	}
	if len(t.Multipliers) == 0 {
		return errors.New("tier A: at least one margin multiplier is required")
	}
	for code, m := range t.Multipliers {
		if m.Factor.LessThan(one) {
			return fmt.Errorf("tier A: multiplier %q must be at least 1", code)
		}
	}
	return nil
}

func copyTables(t RateTables) RateTables {
	out := t
	out.BuildingTypes = copyMap(t.BuildingTypes)
	out.LandscapeTypes = copyMap(t.LandscapeTypes)
	out.Disciplines = copyMap(t.Disciplines)
	out.LODs = copyMap(t.LODs)
	out.Scopes = copyMap(t.Scopes)
	out.Services = copyMap(t.Services)
	out.Risks = copyMap(t.Risks)
	out.PaymentTerms = copyMap(t.PaymentTerms)
	out.Origins = make(map[string]Origin, len(t.Origins))
	for code, o := range t.Origins {
		o.Tiers = append([]TravelTier(nil), o.Tiers...)
		out.Origins[code] = o
	}
	out.TierA.Bands = copyMap(t.TierA.Bands)
	out.TierA.Multipliers = copyMap(t.TierA.Multipliers)
	return out
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func lookup[V any](table string, m map[string]V, key string) (V, error) {
	v, ok := m[key]
	if !ok {
		var zero V
		return zero, &ConfigurationLookupError{Table: table, Key: key}
	}
	return v, nil
}

func (c *RateConfig) BuildingType(code string) (TypeRate, error) {
	return lookup(TableBuildingType, c.t.BuildingTypes, code)
}

func (c *RateConfig) LandscapeType(code string) (TypeRate, error) {
	return lookup(TableLandscapeType, c.t.LandscapeTypes, code)
}

func (c *RateConfig) Discipline(code string) (Discipline, error) {
	return lookup(TableDiscipline, c.t.Disciplines, code)
}

func (c *RateConfig) LODMultiplier(code string) (decimal.Decimal, error) {
	return lookup(TableLOD, c.t.LODs, code)
}

func (c *RateConfig) ScopeMultiplier(code string) (decimal.Decimal, error) {
	return lookup(TableScope, c.t.Scopes, code)
}

func (c *RateConfig) Service(code string) (Service, error) {
	return lookup(TableService, c.t.Services, code)
}

func (c *RateConfig) Risk(code string) (Risk, error) {
	return lookup(TableRisk, c.t.Risks, code)
}

func (c *RateConfig) PaymentTerm(code string) (PaymentTerm, error) {
	return lookup(TablePaymentTerms, c.t.PaymentTerms, code)
}

// Origin returns a copy of the dispatch origin's mileage model.
func (c *RateConfig) Origin(code string) (Origin, error) {
	o, err := lookup(TableOrigin, c.t.Origins, code)
	if err != nil {
		return Origin{}, err
	}
	o.Tiers = append([]TravelTier(nil), o.Tiers...)
	return o, nil
}

func (c *RateConfig) ScanningBand(code string) (decimal.Decimal, error) {
	return lookup(TableScanningBand, c.t.TierA.Bands, code)
}

func (c *RateConfig) MarginMultiplier(code string) (MarginMultiplier, error) {
	return lookup(TableMargin, c.t.TierA.Multipliers, code)
}

// AcresToSqft is the fixed landscape conversion factor.
func (c *RateConfig) AcresToSqft() decimal.Decimal { return c.t.AcresToSqft }

// Margin returns the profitability floor and stretch target.
func (c *RateConfig) Margin() MarginPolicy { return c.t.Margin }

// TierAThresholdSqft is the aggregate size at which Tier-A pricing is suggested.
func (c *RateConfig) TierAThresholdSqft() decimal.Decimal { return c.t.TierA.ThresholdSqft }

// TierAMileage returns the Tier-A free-mileage threshold and per-mile rate.
func (c *RateConfig) TierAMileage() (freeMiles, perMile decimal.Decimal) {
	return c.t.TierA.FreeMiles, c.t.TierA.PerMileRate
}

// Codes lists the sorted codes of one rate table, for pickers and CLI output.
func (c *RateConfig) Codes(table string) []string {
	var keys []string
	switch table {
	case TableBuildingType:
		keys = keysOf(c.t.BuildingTypes)
	case TableLandscapeType:
		keys = keysOf(c.t.LandscapeTypes)
	case TableDiscipline:
		keys = keysOf(c.t.Disciplines)
	case TableLOD:
		keys = keysOf(c.t.LODs)
	case TableScope:
		keys = keysOf(c.t.Scopes)
	case TableService:
		keys = keysOf(c.t.Services)
	case TableRisk:
		keys = keysOf(c.t.Risks)
	case TablePaymentTerms:
		keys = keysOf(c.t.PaymentTerms)
	case TableOrigin:
		keys = keysOf(c.t.Origins)
	case TableScanningBand:
		keys = keysOf(c.t.TierA.Bands)
	case TableMargin:
		keys = keysOf(c.t.TierA.Multipliers)
	}
	sort.Strings(keys)
	return keys
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
