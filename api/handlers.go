/*
handlers.go - HTTP API handlers for the quote engine

PURPOSE:
  Exposes the quote lifecycle and rate data-health operations via REST.
  Handles HTTP request/response and JSON serialization, delegating to the
  domain services.

ENDPOINTS:
  Quotes:
    POST   /api/quotes            Create quote (+ optional results)
    GET    /api/quotes            List quotes (merged families by default)
    GET    /api/quotes/{id}       Get quote (?include_results=true)
    PUT    /api/quotes/{id}       Partial update; may trigger DIP reconcile
    DELETE /api/quotes/{id}       Delete quote

  Rates:
    GET    /api/admin/data-health Duplicate/anomaly scan for one set key
    PATCH  /api/rates/{id}        Allow-listed single-field patch + audit

AUTHENTICATION:
  External. The auth collaborator injects the caller identity as the
  X-User-ID header; handlers trust it and never accept a client-supplied
  owner id in its place.

ERROR HANDLING:
  - 400: invalid input (bad JSON, disallowed patch field, bad rate range)
  - 404: quote/rate absent in both families
  - 500: store failures (generic message, details logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mfs/quote-engine/quote"
	"github.com/mfs/quote-engine/rates"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Quotes   *quote.Service
	Analyzer *rates.Analyzer
	Patcher  *rates.Patcher
}

// NewHandler creates a new handler.
func NewHandler(quotes *quote.Service, analyzer *rates.Analyzer, patcher *rates.Patcher) *Handler {
	return &Handler{Quotes: quotes, Analyzer: analyzer, Patcher: patcher}
}

// callerID returns the authenticated caller injected by the auth layer.
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

// CreateQuote creates a new quote.
// POST /api/quotes
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	q, err := h.Quotes.Create(r.Context(), quote.CreateInput{
		CalculatorType: req.CalculatorType,
		UserID:         callerID(r),
		Quote: quote.Quote{
			LoanAmount:    req.LoanAmount,
			GrossLoan:     req.GrossLoan,
			LTV:           req.LTV,
			PayloadJSON:   req.Payload,
			QuoteStatus:   req.QuoteStatus,
			DIPStatus:     req.DIPStatus,
			QuoteIssuedAt: req.QuoteIssuedAt,
			DIPIssuedAt:   req.DIPIssuedAt,
		},
		Results: toDomainResults(req.Results),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create quote", err)
		return
	}

	writeJSON(w, http.StatusCreated, toQuoteDTO(q, nil))
}

// ListQuotes returns a date-descending page of quotes.
// GET /api/quotes?calculator_type=&user_id=&limit=&offset=
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	quotes, err := h.Quotes.List(r.Context(), query.Get("calculator_type"), quote.ListFilter{
		UserID: query.Get("user_id"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list quotes", err)
		return
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = toQuoteDTO(&quotes[i], nil)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetQuote returns a single quote, probing both families.
// GET /api/quotes/{id}?include_results=true
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	includeResults := r.URL.Query().Get("include_results") == "true"

	q, results, err := h.Quotes.Get(r.Context(), id, includeResults)
	if err != nil {
		h.respondQuoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteDTO(q, results))
}

// UpdateQuote applies a partial update.
// PUT /api/quotes/{id}
func (h *Handler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := quote.UpdateInput{
		CalculatorTypeHint: req.CalculatorType,
		Fields: quote.QuoteUpdate{
			LoanAmount:    req.LoanAmount,
			GrossLoan:     req.GrossLoan,
			LTV:           req.LTV,
			PayloadJSON:   req.Payload,
			QuoteStatus:   req.QuoteStatus,
			DIPStatus:     req.DIPStatus,
			QuoteIssuedAt: req.QuoteIssuedAt,
			DIPIssuedAt:   req.DIPIssuedAt,
		},
	}
	if req.Results != nil {
		in.Results = toDomainResults(*req.Results)
	}

	q, err := h.Quotes.Update(r.Context(), id, in)
	if err != nil {
		h.respondQuoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteDTO(q, nil))
}

// DeleteQuote removes a quote.
// DELETE /api/quotes/{id}
func (h *Handler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	q, err := h.Quotes.Delete(r.Context(), id)
	if err != nil {
		h.respondQuoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteDTO(q, nil))
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

// DataHealth runs the rate duplicate/anomaly scan.
// GET /api/admin/data-health?set_key=&property=
func (h *Handler) DataHealth(w http.ResponseWriter, r *http.Request) {
	setKey := r.URL.Query().Get("set_key")
	if setKey == "" {
		writeError(w, http.StatusBadRequest, "set_key is required", nil)
		return
	}

	report, err := h.Analyzer.Analyze(r.Context(), setKey, r.URL.Query().Get("property"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to analyze rates", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// PatchRate applies an audited single-field rate patch.
// PATCH /api/rates/{id}
func (h *Handler) PatchRate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PatchRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rate, err := h.Patcher.Patch(r.Context(), rates.PatchInput{
		Table:   req.Table,
		ID:      id,
		Field:   req.Field,
		Value:   req.Value,
		Actor:   callerID(r),
		Context: req.Context,
	})
	if err != nil {
		switch {
		case errors.Is(err, rates.ErrRateNotFound):
			writeError(w, http.StatusNotFound, "Rate not found", nil)
		case errors.Is(err, rates.ErrFieldNotAllowed),
			errors.Is(err, rates.ErrUnknownTable),
			errors.Is(err, rates.ErrRateOutOfRange):
			writeError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to patch rate", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, rate)
}

// Health is a trivial liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) respondQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quote.ErrNotFound):
		writeError(w, http.StatusNotFound, "Quote not found", nil)
	case quote.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
