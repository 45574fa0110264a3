package main

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quotes"
)

type priceStandardRequest struct {
	pricing.Request
	AdjustmentPercent float64  `json:"adjustmentPercent,omitempty"`
	ClientTotal       *float64 `json:"clientTotal,omitempty"`
}

func (s *server) handlePriceStandard(w http.ResponseWriter, r *http.Request) {
	var req priceStandardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.price(w, r, quotes.Submission{
		Mode:              quotes.ModeStandard,
		Standard:          &req.Request,
		AdjustmentPercent: req.AdjustmentPercent,
		ClientTotal:       req.ClientTotal,
	})
}

type priceTierARequest struct {
	quotes.TierARequest
	AdjustmentPercent float64 `json:"adjustmentPercent,omitempty"`
}

func (s *server) handlePriceTierA(w http.ResponseWriter, r *http.Request) {
	var req priceTierARequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.price(w, r, quotes.Submission{
		Mode:              quotes.ModeTierA,
		TierA:             &req.TierARequest,
		AdjustmentPercent: req.AdjustmentPercent,
	})
}

func (s *server) price(w http.ResponseWriter, r *http.Request, sub quotes.Submission) {
	priced, err := s.quotes.Price(r.Context(), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, priced)
}

// travelRequest sizes the project either from its areas or from an explicit aggregate.
type travelRequest struct {
	Travel        pricing.TravelConfig `json:"travel"`
	Areas         []pricing.Area       `json:"areas,omitempty"`
	AggregateSqft *float64             `json:"aggregateSqft,omitempty"`
}

func (s *server) handleTravelPreview(w http.ResponseWriter, r *http.Request) {
	var req travelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	calc := s.quotes.Calculator()
	sqft := decimal.Zero
	if req.AggregateSqft != nil {
		if *req.AggregateSqft < 0 {
			s.writeError(w, r, &pricing.InvalidInputError{Field: "aggregate sqft", Reason: "must not be negative"})
			return
		}
		sqft = decimal.NewFromFloat(*req.AggregateSqft)
	} else {
		for _, area := range req.Areas {
			size, err := calc.EquivalentSqft(area)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			sqft = sqft.Add(size)
		}
	}

	preview, err := calc.TravelPreview(req.Travel, sqft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *server) handleGate(w http.ResponseWriter, r *http.Request) {
	var result pricing.Result
	if err := decodeJSON(w, r, &result); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.quotes.Calculator().EvaluateMarginGate(result))
}

type adjustRequest struct {
	Result  pricing.Result `json:"result"`
	Percent float64        `json:"percent"`
}

type adjustResponse struct {
	Result pricing.Result     `json:"result"`
	Gate   pricing.GateResult `json:"gate"`
}

func (s *server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	adjusted, err := pricing.ApplyPriceAdjustment(req.Result, req.Percent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adjustResponse{
		Result: adjusted,
		Gate:   s.quotes.Calculator().EvaluateMarginGate(adjusted),
	})
}

type ratesResponse struct {
	Fingerprint string               `json:"fingerprint"`
	Source      string               `json:"source"`
	Codes       map[string][]string  `json:"codes"`
	Margin      pricing.MarginPolicy `json:"margin"`
}

// handleRates lists the codes the pickers may send.
func (s *server) handleRates(w http.ResponseWriter, r *http.Request) {
	card := s.quotes.Card()
	resp := ratesResponse{
		Fingerprint: card.Fingerprint,
		Source:      card.Source,
		Codes:       make(map[string][]string, len(pricing.Tables)),
		Margin:      card.Rates.Margin(),
	}
	for _, table := range pricing.Tables {
		resp.Codes[table] = card.Rates.Codes(table)
	}
	writeJSON(w, http.StatusOK, resp)
}
