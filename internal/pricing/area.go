package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AreaKind distinguishes buildings (sized in sqft) from landscape sites (sized in acres).
type AreaKind string

const (
	KindStandard  AreaKind = "standard"
	KindLandscape AreaKind = "landscape"
)

// DisciplineSelection is a discipline picked for an area, with optional
// per-discipline LOD and scope overrides.
type DisciplineSelection struct {
	Code  string `json:"code" yaml:"code"`
	LOD   string `json:"lod,omitempty" yaml:"lod,omitempty"`
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Area is one billable scope unit of a project.
type Area struct {
	ID           string                `json:"id" yaml:"id"`
	Name         string                `json:"name" yaml:"name"`
	Kind         AreaKind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	BuildingType string                `json:"buildingType" yaml:"building_type"`
	Size         float64               `json:"size" yaml:"size"`
	LOD          string                `json:"lod" yaml:"lod"`
	Scope        string                `json:"scope" yaml:"scope"`
	Disciplines  []DisciplineSelection `json:"disciplines" yaml:"disciplines"`
	Boundary     []LatLng              `json:"boundary,omitempty" yaml:"boundary,omitempty"`
}

func (a Area) label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

func (a Area) kind() (AreaKind, error) {
	switch a.Kind {
	case "", KindStandard:
		return KindStandard, nil
	case KindLandscape:
		return KindLandscape, nil
	default:
		return "", &InvalidInputError{Field: "area kind", Reason: fmt.Sprintf("unknown kind %q", a.Kind)}
	}
}

// equivalentSqft returns the area's size in square feet, converting acres for landscape areas.
func (c *Calculator) equivalentSqft(a Area) (decimal.Decimal, error) {
	kind, err := a.kind()
	if err != nil {
		return decimal.Zero, err
	}
	size, err := nonNegative("area size", a.Size)
	if err != nil {
		return decimal.Zero, err
	}
	if kind == KindLandscape {
		return size.Mul(c.rates.AcresToSqft()), nil
	}
	return size, nil
}

// EquivalentSqft exposes the acres→sqft conversion used for travel tiers and Tier-A eligibility.
func (c *Calculator) EquivalentSqft(a Area) (decimal.Decimal, error) {
	return c.equivalentSqft(a)
}

// areaLines prices one line per selected discipline:
//
//	rate(type) × sqft × lod × scope × weight(discipline)
//
// Landscape areas are site scope only: a non-site discipline is rejected and
// the area yields a single site line however often site is selected.
func (c *Calculator) areaLines(a Area, sqft decimal.Decimal) ([]LineItem, error) {
	kind, err := a.kind()
	if err != nil {
		return nil, err
	}

	var rate TypeRate
	if kind == KindLandscape {
		rate, err = c.rates.LandscapeType(a.BuildingType)
	} else {
		rate, err = c.rates.BuildingType(a.BuildingType)
	}
	if err != nil {
		return nil, err
	}

	lines := make([]LineItem, 0, len(a.Disciplines))
	for _, sel := range a.Disciplines {
		discipline, err := c.rates.Discipline(sel.Code)
		if err != nil {
			return nil, err
		}
		if kind == KindLandscape {
			if sel.Code != SiteDiscipline {
				return nil, &InvalidInputError{
					Field:  "discipline",
					Reason: fmt.Sprintf("landscape areas take only %q, got %q", SiteDiscipline, sel.Code),
				}
			}
			if len(lines) > 0 {
				continue
			}
		}
		lod, err := c.rates.LODMultiplier(firstNonEmpty(sel.LOD, a.LOD))
		if err != nil {
			return nil, err
		}
		scope, err := c.rates.ScopeMultiplier(firstNonEmpty(sel.Scope, a.Scope))
		if err != nil {
			return nil, err
		}

		factor := sqft.Mul(lod).Mul(scope).Mul(discipline.Weight)
		lines = append(lines, LineItem{
			Label:        a.label() + " — " + discipline.Name,
			Category:     Category(sel.Code),
			ClientPrice:  round2(rate.BaseRate.Mul(factor)),
			InternalCost: round2(rate.InternalRate.Mul(factor)),
		})
	}
	return lines, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
