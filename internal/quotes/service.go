package quotes

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/ratecard"
)

// Priced is a submission priced against the current rate card.
type Priced struct {
	Result pricing.Result       `json:"result"`
	Gate   pricing.GateResult   `json:"gate"`
	TierA  *pricing.TierAResult `json:"tierA,omitempty"`
}

// SaveRequest creates a quote when QuoteID is empty and adds a version otherwise.
type SaveRequest struct {
	QuoteID    string
	Header     Header
	CreatedBy  string
	Submission Submission
}

// Saved is the outcome of a successful save.
type Saved struct {
	Quote   Quote              `json:"quote"`
	Version Version            `json:"version"`
	Gate    pricing.GateResult `json:"gate"`
}

// Repriced compares a stored version with the same request priced today.
type Repriced struct {
	Stored          Version `json:"stored"`
	Current         Priced  `json:"current"`
	RateCardChanged bool    `json:"rateCardChanged"`
	TotalDelta      string  `json:"totalDelta"`
}

// Service prices submissions and writes them through the Store.
type Service struct {
	store  *Store
	calc   *pricing.Calculator
	card   ratecard.Card
	logger *zap.Logger
}

// NewService binds a Store to the rate card the process prices with.
func NewService(store *Store, card ratecard.Card, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		calc:   pricing.NewCalculator(card.Rates),
		card:   card,
		logger: logger.Named("quotes.service"),
	}
}

// Calculator returns the calculator bound to the current rate card.
func (s *Service) Calculator() *pricing.Calculator {
	return s.calc
}

// Card returns the current rate card.
func (s *Service) Card() ratecard.Card {
	return s.card
}

// Price recomputes sub from scratch. Client-supplied totals play no part.
func (s *Service) Price(ctx context.Context, sub Submission) (Priced, error) {
	var (
		out Priced
		err error
	)
	switch sub.Mode {
	case "", ModeStandard:
		if sub.Standard == nil {
			return Priced{}, fmt.Errorf("%w: standard mode needs a standard request", ErrInvalidSubmission)
		}
		out.Result, err = s.calc.Standard(*sub.Standard)
	case ModeTierA:
		if sub.TierA == nil {
			return Priced{}, fmt.Errorf("%w: tier_a mode needs a tierA request", ErrInvalidSubmission)
		}
		var tierA pricing.TierAResult
		tierA, err = s.calc.TierA(sub.TierA.TierAInput, sub.TierA.DistanceMiles)
		if err == nil {
			out.TierA = &tierA
			out.Result = tierA.Result()
		}
	default:
		return Priced{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidSubmission, sub.Mode)
	}
	if err != nil {
		return Priced{}, err
	}

	if out.Result, err = pricing.ApplyPriceAdjustment(out.Result, sub.AdjustmentPercent); err != nil {
		return Priced{}, err
	}
	out.Gate = s.calc.EvaluateMarginGate(out.Result)

	if sub.ClientTotal != nil {
		shown := decimal.NewFromFloat(*sub.ClientTotal).Round(2)
		if !shown.Equal(out.Result.TotalClientPrice) {
			s.logger.Warn("client total differs from recomputed total; using recomputed",
				zap.String("client_total", shown.StringFixed(2)),
				zap.String("total", out.Result.TotalClientPrice.StringFixed(2)))
		}
	}
	return out, nil
}

// Save prices sub and persists it. A blocked gate returns *GateBlockedError
// and writes nothing.
func (s *Service) Save(ctx context.Context, req SaveRequest) (Saved, error) {
	priced, err := s.Price(ctx, req.Submission)
	if err != nil {
		return Saved{}, err
	}
	if priced.Gate.Status == pricing.GateBlocked {
		s.logger.Info("save blocked by margin gate",
			zap.String("quote_id", req.QuoteID),
			zap.String("margin_percent", priced.Gate.MarginPercent.StringFixed(2)),
			zap.String("required_adjustment", priced.Gate.RequiredAdjustmentPercent.String()))
		return Saved{}, &GateBlockedError{Gate: priced.Gate}
	}

	draft := Draft{
		Submission:          req.Submission,
		Result:              priced.Result,
		Gate:                priced.Gate,
		RateCardFingerprint: s.card.Fingerprint,
	}
	if req.QuoteID == "" {
		q, v, err := s.store.Create(ctx, req.Header, req.CreatedBy, draft)
		if err != nil {
			return Saved{}, err
		}
		return Saved{Quote: q, Version: v, Gate: priced.Gate}, nil
	}

	v, err := s.store.AddVersion(ctx, req.QuoteID, draft)
	if err != nil {
		return Saved{}, err
	}
	q, err := s.store.Get(ctx, req.QuoteID)
	if err != nil {
		return Saved{}, err
	}
	return Saved{Quote: q, Version: v, Gate: priced.Gate}, nil
}

// Reprice runs a stored version's request against the current rate card so
// it can be re-edited. The stored version is left untouched.
func (s *Service) Reprice(ctx context.Context, quoteID string, version int) (Repriced, error) {
	stored, err := s.store.GetVersion(ctx, quoteID, version)
	if err != nil {
		return Repriced{}, err
	}
	current, err := s.Price(ctx, stored.Submission)
	if err != nil {
		return Repriced{}, fmt.Errorf("reprice quote %s version %d: %w", quoteID, version, err)
	}
	return Repriced{
		Stored:          stored,
		Current:         current,
		RateCardChanged: stored.RateCardFingerprint != s.card.Fingerprint,
		TotalDelta:      current.Result.TotalClientPrice.Sub(stored.TotalClientPrice).StringFixed(2),
	}, nil
}

// Store returns the underlying store for read paths.
func (s *Service) Store() *Store {
	return s.store
}
