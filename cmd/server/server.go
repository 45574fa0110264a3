package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quotes"
)

const maxBodyBytes = 1 << 20

type server struct {
	auth   *authService
	quotes *quotes.Service
	logger *zap.Logger
}

type ctxKey int

const userKey ctxKey = iota

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/rates", s.handleRates)

		r.Route("/pricing", func(r chi.Router) {
			r.Post("/standard", s.handlePriceStandard)
			r.Post("/tier-a", s.handlePriceTierA)
			r.Post("/travel", s.handleTravelPreview)
			r.Post("/gate", s.handleGate)
			r.Post("/adjust", s.handleAdjust)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", s.handleQuotesList)
			r.Post("/", s.handleQuoteCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleQuoteGet)
				r.Get("/text", s.handleQuoteText)
				r.Post("/versions", s.handleVersionCreate)
				r.Get("/versions/{version}", s.handleVersionGet)
				r.Post("/versions/{version}/reprice", s.handleVersionReprice)
			})
		})
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"rateCard": s.quotes.Card().Fingerprint,
	})
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := s.auth.sessionUser(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, email)))
	})
}

func currentUser(r *http.Request) string {
	email, _ := r.Context().Value(userKey).(string)
	return email
}

type errorBody struct {
	Error string              `json:"error"`
	Gate  *pricing.GateResult `json:"gate,omitempty"`
}

// requestError marks a body that could not be decoded.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &requestError{err: errors.New("body is empty")}
		}
		return &requestError{err: err}
	}
	if dec.More() {
		return &requestError{err: errors.New("body must contain a single JSON value")}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine and store errors to HTTP statuses.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr   *requestError
		lookup   *pricing.ConfigurationLookupError
		adjust   *pricing.InvalidAdjustmentError
		missing  *pricing.MissingCustomValueError
		input    *pricing.InvalidInputError
		blocked  *quotes.GateBlockedError
		badParam *paramError
	)
	switch {
	case errors.As(err, &blocked):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: blocked.Gate.BlockingMessage, Gate: &blocked.Gate})
	case errors.Is(err, quotes.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.As(err, &reqErr), errors.As(err, &lookup), errors.As(err, &adjust),
		errors.As(err, &missing), errors.As(err, &input), errors.As(err, &badParam),
		errors.Is(err, quotes.ErrInvalidSubmission):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

type paramError struct {
	name, value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.name, e.value)
}
