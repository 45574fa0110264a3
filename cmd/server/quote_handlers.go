package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/scanquote/internal/quotes"
)

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	list, err := s.quotes.Store().List(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "quotes": list})
}

type createQuoteRequest struct {
	quotes.Header
	Submission quotes.Submission `json:"submission"`
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.quotes.Save(r.Context(), quotes.SaveRequest{
		Header:     req.Header,
		CreatedBy:  currentUser(r),
		Submission: req.Submission,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Store().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type createVersionRequest struct {
	Submission quotes.Submission `json:"submission"`
}

func (s *server) handleVersionCreate(w http.ResponseWriter, r *http.Request) {
	var req createVersionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.quotes.Save(r.Context(), quotes.SaveRequest{
		QuoteID:    chi.URLParam(r, "id"),
		CreatedBy:  currentUser(r),
		Submission: req.Submission,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *server) handleVersionGet(w http.ResponseWriter, r *http.Request) {
	version, err := versionParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.quotes.Store().GetVersion(r.Context(), chi.URLParam(r, "id"), version)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *server) handleVersionReprice(w http.ResponseWriter, r *http.Request) {
	version, err := versionParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	repriced, err := s.quotes.Reprice(r.Context(), chi.URLParam(r, "id"), version)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repriced)
}

// handleQuoteText renders the latest version, or ?version=N, as plain text.
func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	store := s.quotes.Store()
	q, err := store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	version := q.LatestVersion
	if raw := r.URL.Query().Get("version"); raw != "" {
		if version, err = parseVersion(raw); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	v, err := store.GetVersion(r.Context(), q.ID, version)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(quotes.Text(q, v)))
}

func versionParam(r *http.Request) (int, error) {
	return parseVersion(chi.URLParam(r, "version"))
}

func parseVersion(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &paramError{name: "version", value: raw}
	}
	return v, nil
}
