// Package quotes persists priced quotes as immutable versions and owns the
// save path: every save re-prices the submission server-side and refuses
// quotes the margin gate blocks.
package quotes

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/pricing"
)

// Mode selects which pricing formula a submission uses.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeTierA    Mode = "tier_a"
)

var (
	// ErrNotFound is returned when a quote or version does not exist.
	ErrNotFound = errors.New("quotes: not found")

	// ErrInvalidSubmission is returned for a submission missing the inputs its mode needs.
	ErrInvalidSubmission = errors.New("quotes: invalid submission")
)

// TierARequest is a Tier-A input together with the dispatch distance.
type TierARequest struct {
	pricing.TierAInput `yaml:",inline"`
	DistanceMiles      float64 `json:"distanceMiles" yaml:"distance_miles"`
}

// Submission is everything the client sends to price or save one version.
type Submission struct {
	Mode              Mode             `json:"mode" yaml:"mode"`
	Standard          *pricing.Request `json:"standard,omitempty" yaml:"standard,omitempty"`
	TierA             *TierARequest    `json:"tierA,omitempty" yaml:"tier_a,omitempty"`
	AdjustmentPercent float64          `json:"adjustmentPercent,omitempty" yaml:"adjustment_percent,omitempty"`

	// ClientTotal is the total the client displayed. It is never trusted;
	// a mismatch with the recomputed total is only logged.
	ClientTotal *float64 `json:"clientTotal,omitempty" yaml:"-"`
}

// Header is the descriptive part of a quote.
type Header struct {
	Title      string `json:"title"`
	ClientName string `json:"clientName"`
	Notes      string `json:"notes"`
}

// Quote is a saved quote with the headline figures of its latest version.
type Quote struct {
	ID string `json:"id"`
	Header
	CreatedBy        string             `json:"createdBy"`
	LatestVersion    int                `json:"latestVersion"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	TotalClientPrice decimal.Decimal    `json:"totalClientPrice"`
	MarginPercent    decimal.Decimal    `json:"marginPercent"`
	GateStatus       pricing.GateStatus `json:"gateStatus"`
	Versions         []VersionSummary   `json:"versions,omitempty"`
}

// VersionSummary lists one version without its payloads.
type VersionSummary struct {
	Version          int                `json:"version"`
	Mode             Mode               `json:"mode"`
	TotalClientPrice decimal.Decimal    `json:"totalClientPrice"`
	MarginPercent    decimal.Decimal    `json:"marginPercent"`
	GateStatus       pricing.GateStatus `json:"gateStatus"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// Version is an immutable snapshot: the request as submitted and the result
// it was priced at. Reading a version never recomputes it.
type Version struct {
	QuoteID             string             `json:"quoteId"`
	Version             int                `json:"version"`
	Mode                Mode               `json:"mode"`
	Submission          Submission         `json:"submission"`
	Result              pricing.Result     `json:"result"`
	TotalClientPrice    decimal.Decimal    `json:"totalClientPrice"`
	MarginPercent       decimal.Decimal    `json:"marginPercent"`
	GateStatus          pricing.GateStatus `json:"gateStatus"`
	AdjustmentPercent   decimal.Decimal    `json:"adjustmentPercent"`
	RateCardFingerprint string             `json:"rateCardFingerprint"`
	CreatedAt           time.Time          `json:"createdAt"`
}

// Draft is a priced version ready to be written.
type Draft struct {
	Submission          Submission
	Result              pricing.Result
	Gate                pricing.GateResult
	RateCardFingerprint string
}

// GateBlockedError rejects a save whose margin is below the floor.
type GateBlockedError struct {
	Gate pricing.GateResult
}

func (e *GateBlockedError) Error() string {
	return "quotes: save blocked by margin gate: " + e.Gate.BlockingMessage
}
