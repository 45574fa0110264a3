package main

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/quotes"
)

func createBody(title, client string, submission string) string {
	return fmt.Sprintf(`{"title": %q, "clientName": %q, "notes": "", "submission": %s}`, title, client, submission)
}

func standardSubmission(request string) string {
	return `{"mode": "standard", "standard": ` + request + `}`
}

const travelHeavyRequestJSON = `{
	"areas": [{"name": "Closet", "buildingType": "office", "size": 100, "lod": "300", "scope": "full",
		"disciplines": [{"code": "architecture"}]}],
	"travel": {"origin": "WOODSTOCK", "distanceMiles": 300}
}`

func createQuote(t *testing.T, srv *server, title, client, submission string) quotes.Saved {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/api/quotes", createBody(title, client, submission))
	expectStatus(t, rr, http.StatusCreated)
	var saved quotes.Saved
	decodeBody(t, rr, &saved)
	return saved
}

func TestCreateQuote(t *testing.T) {
	srv := newTestServer(t)

	saved := createQuote(t, srv, "North Campus HQ", "Acme", standardSubmission(officeRequestJSON))
	if saved.Quote.ID == "" || saved.Quote.LatestVersion != 1 {
		t.Fatalf("unexpected quote: %+v", saved.Quote)
	}
	if saved.Quote.CreatedBy != testAdminEmail {
		t.Fatalf("createdBy = %q", saved.Quote.CreatedBy)
	}
	if got := saved.Version.TotalClientPrice.StringFixed(2); got != "16060.00" {
		t.Fatalf("total = %s", got)
	}
	if saved.Gate.Status != pricing.GatePass {
		t.Fatalf("gate = %s", saved.Gate.Status)
	}
}

func TestCreateQuoteBlockedByGate(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/quotes", createBody("Closet", "Acme", standardSubmission(travelHeavyRequestJSON)))
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	var body errorBody
	decodeBody(t, rr, &body)
	if body.Gate == nil || body.Gate.Status != pricing.GateBlocked {
		t.Fatalf("expected blocked gate in body, got %+v", body)
	}
	if !strings.Contains(body.Error, "+65.3%") {
		t.Fatalf("error %q does not name the required adjustment", body.Error)
	}

	rr = do(t, srv, http.MethodGet, "/api/quotes", nil)
	expectStatus(t, rr, http.StatusOK)
	var list struct {
		Quotes []quotes.Quote `json:"quotes"`
	}
	decodeBody(t, rr, &list)
	if len(list.Quotes) != 0 {
		t.Fatalf("blocked quote was stored: %+v", list.Quotes)
	}

	adjusted := `{"mode": "standard", "adjustmentPercent": 65.3, "standard": ` + travelHeavyRequestJSON + `}`
	saved := createQuote(t, srv, "Closet", "Acme", adjusted)
	if got := saved.Version.TotalClientPrice.StringFixed(2); got != "1917.48" {
		t.Fatalf("adjusted total = %s", got)
	}
}

func TestCreateQuoteValidation(t *testing.T) {
	tests := map[string]string{
		"missing title":   createBody("", "Acme", standardSubmission(officeRequestJSON)),
		"unknown mode":    createBody("HQ", "Acme", `{"mode": "bespoke"}`),
		"missing request": createBody("HQ", "Acme", `{"mode": "standard"}`),
		"unknown code":    createBody("HQ", "Acme", standardSubmission(strings.Replace(officeRequestJSON, `"mep"`, `"plumbing"`, 1))),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t)
			rr := do(t, srv, http.MethodPost, "/api/quotes", body)
			expectStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func TestQuoteVersionsAndList(t *testing.T) {
	srv := newTestServer(t)

	first := createQuote(t, srv, "North Campus HQ", "Acme", standardSubmission(officeRequestJSON))
	createQuote(t, srv, "Casa Loma", "Hearth & Co", standardSubmission(officeRequestJSON))

	occupied := strings.Replace(officeRequestJSON, `"paymentTerms"`, `"risks": ["occupied"], "paymentTerms"`, 1)
	rr := do(t, srv, http.MethodPost, "/api/quotes/"+first.Quote.ID+"/versions", `{"submission": `+standardSubmission(occupied)+`}`)
	expectStatus(t, rr, http.StatusCreated)
	var second quotes.Saved
	decodeBody(t, rr, &second)
	if second.Version.Version != 2 || second.Quote.LatestVersion != 2 {
		t.Fatalf("unexpected version: %d / %d", second.Version.Version, second.Quote.LatestVersion)
	}
	if got := second.Quote.TotalClientPrice.StringFixed(2); got != "18469.00" {
		t.Fatalf("latest total = %s", got)
	}

	rr = do(t, srv, http.MethodGet, "/api/quotes", nil)
	expectStatus(t, rr, http.StatusOK)
	var list struct {
		Query  string         `json:"query"`
		Quotes []quotes.Quote `json:"quotes"`
	}
	decodeBody(t, rr, &list)
	if len(list.Quotes) != 2 || list.Quotes[0].ID != first.Quote.ID {
		t.Fatalf("expected the re-versioned quote first, got %+v", list.Quotes)
	}

	rr = do(t, srv, http.MethodGet, "/api/quotes?q=casa", nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &list)
	if list.Query != "casa" || len(list.Quotes) != 1 || list.Quotes[0].Title != "Casa Loma" {
		t.Fatalf("unexpected filter result: %+v", list)
	}

	rr = do(t, srv, http.MethodGet, "/api/quotes/"+first.Quote.ID, nil)
	expectStatus(t, rr, http.StatusOK)
	var q quotes.Quote
	decodeBody(t, rr, &q)
	if len(q.Versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(q.Versions))
	}

	rr = do(t, srv, http.MethodGet, "/api/quotes/"+first.Quote.ID+"/versions/1", nil)
	expectStatus(t, rr, http.StatusOK)
	var v1 quotes.Version
	decodeBody(t, rr, &v1)
	if v1.TotalClientPrice.StringFixed(2) != "16060.00" || len(v1.Submission.Standard.Risks) != 0 {
		t.Fatalf("version 1 snapshot changed: %+v", v1)
	}
}

func TestQuoteText(t *testing.T) {
	srv := newTestServer(t)
	saved := createQuote(t, srv, "North Campus HQ", "Acme", standardSubmission(officeRequestJSON))

	rr := do(t, srv, http.MethodGet, "/api/quotes/"+saved.Quote.ID+"/text", nil)
	expectStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{"Quote: North Campus HQ", "Client: Acme", "Total: $16,060.00", "Margin: 49.8% (pass)"} {
		if !strings.Contains(body, want) {
			t.Fatalf("text missing %q:\n%s", want, body)
		}
	}

	rr = do(t, srv, http.MethodGet, "/api/quotes/"+saved.Quote.ID+"/text?version=7", nil)
	expectStatus(t, rr, http.StatusNotFound)

	rr = do(t, srv, http.MethodGet, "/api/quotes/"+saved.Quote.ID+"/text?version=latest", nil)
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestRepriceVersion(t *testing.T) {
	srv := newTestServer(t)
	saved := createQuote(t, srv, "North Campus HQ", "Acme", standardSubmission(officeRequestJSON))

	rr := do(t, srv, http.MethodPost, "/api/quotes/"+saved.Quote.ID+"/versions/1/reprice", nil)
	expectStatus(t, rr, http.StatusOK)
	var repriced quotes.Repriced
	decodeBody(t, rr, &repriced)
	if repriced.RateCardChanged || repriced.TotalDelta != "0.00" {
		t.Fatalf("unexpected reprice: changed=%v delta=%s", repriced.RateCardChanged, repriced.TotalDelta)
	}
	if repriced.Current.Result.TotalClientPrice.StringFixed(2) != "16060.00" {
		t.Fatalf("current total = %s", repriced.Current.Result.TotalClientPrice)
	}
}

func TestQuoteNotFoundAndBadParams(t *testing.T) {
	srv := newTestServer(t)
	saved := createQuote(t, srv, "North Campus HQ", "Acme", standardSubmission(officeRequestJSON))

	tests := []struct {
		method, path string
		body         any
		want         int
	}{
		{http.MethodGet, "/api/quotes/missing", nil, http.StatusNotFound},
		{http.MethodGet, "/api/quotes/missing/text", nil, http.StatusNotFound},
		{http.MethodPost, "/api/quotes/missing/versions", `{"submission": ` + standardSubmission(officeRequestJSON) + `}`, http.StatusNotFound},
		{http.MethodGet, "/api/quotes/" + saved.Quote.ID + "/versions/2", nil, http.StatusNotFound},
		{http.MethodGet, "/api/quotes/" + saved.Quote.ID + "/versions/0", nil, http.StatusBadRequest},
		{http.MethodGet, "/api/quotes/" + saved.Quote.ID + "/versions/one", nil, http.StatusBadRequest},
		{http.MethodPost, "/api/quotes/" + saved.Quote.ID + "/versions/x/reprice", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			expectStatus(t, rr, tt.want)
		})
	}
}
