package pricing

import (
	"fmt"
	"strconv"
)

// Rate table names reported by ConfigurationLookupError.
const (
	TableBuildingType  = "building type"
	TableLandscapeType = "landscape type"
	TableDiscipline    = "discipline"
	TableLOD           = "level of detail"
	TableScope         = "scope"
	TableService       = "service"
	TableRisk          = "risk"
	TablePaymentTerms  = "payment terms"
	TableOrigin        = "dispatch origin"
	TableScanningBand  = "scanning band"
	TableMargin        = "margin multiplier"
)

// Tables lists every rate table in display order.
var Tables = []string{
	TableBuildingType,
	TableLandscapeType,
	TableDiscipline,
	TableLOD,
	TableScope,
	TableService,
	TableRisk,
	TablePaymentTerms,
	TableOrigin,
	TableScanningBand,
	TableMargin,
}

// ConfigurationLookupError reports a code that has no entry in the rate card.
// Rates are never defaulted to zero.
type ConfigurationLookupError struct {
	Table string
	Key   string
}

func (e *ConfigurationLookupError) Error() string {
	return fmt.Sprintf("pricing: unknown %s %q", e.Table, e.Key)
}

// InvalidAdjustmentError reports a negative or non-finite markup percentage.
type InvalidAdjustmentError struct {
	Percent float64
}

func (e *InvalidAdjustmentError) Error() string {
	return "pricing: invalid price adjustment " + strconv.FormatFloat(e.Percent, 'f', -1, 64) +
		"%: must be a finite, non-negative percentage"
}

// MissingCustomValueError reports an "other" selection without the figure it requires.
type MissingCustomValueError struct {
	Field string
}

func (e *MissingCustomValueError) Error() string {
	return fmt.Sprintf("pricing: %s is required when the \"other\" option is selected", e.Field)
}

// InvalidInputError reports a caller-supplied number outside its domain.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("pricing: invalid %s: %s", e.Field, e.Reason)
}
