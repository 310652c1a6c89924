// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer. It is the single
// place where domain errors become transport status codes.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/confops/signup-sheets/internal/book"
	"github.com/confops/signup-sheets/internal/metrics"
	"github.com/confops/signup-sheets/internal/model"
	"github.com/confops/signup-sheets/internal/service"
)

// SheetHandler holds all HTTP handlers for the sign-up sheet API.
type SheetHandler struct {
	svc *service.SignupService
}

// NewSheetHandler constructs a SheetHandler.
func NewSheetHandler(svc *service.SignupService) *SheetHandler {
	return &SheetHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps a domain error to its HTTP response and returns
// the metrics outcome label for the attempt.
func writeDomainError(w http.ResponseWriter, err error) string {
	switch {
	case errors.Is(err, book.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return metrics.OutcomeNotFound
	case errors.Is(err, service.ErrSheetClosed):
		writeError(w, http.StatusConflict, "sheet is closed")
		return metrics.OutcomeConflict
	case errors.Is(err, service.ErrSheetFull):
		writeError(w, http.StatusConflict, "sheet is full")
		return metrics.OutcomeConflict
	case errors.Is(err, book.ErrExists):
		writeError(w, http.StatusConflict, "session already exists")
		return metrics.OutcomeConflict
	default:
		writeError(w, http.StatusBadRequest, err.Error())
		return metrics.OutcomeInvalid
	}
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(chi.URLParam(r, "sessionID"))
}

func attendeeID(r *http.Request) model.AttendeeID {
	return model.AttendeeID(chi.URLParam(r, "attendeeID"))
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// SignUp handles POST /sessions/{sessionID}/signups/{attendeeID}.
func (h *SheetHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.SignUp(r.Context(), sessionID(r), attendeeID(r)); err != nil {
		metrics.Signups.With(prometheus.Labels{"outcome": writeDomainError(w, err)}).Inc()
		return
	}
	metrics.Signups.With(prometheus.Labels{"outcome": metrics.OutcomeOK}).Inc()
	w.WriteHeader(http.StatusNoContent)
}

// CancelSignUp handles DELETE /sessions/{sessionID}/signups/{attendeeID}.
func (h *SheetHandler) CancelSignUp(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.CancelSignUp(r.Context(), sessionID(r), attendeeID(r)); err != nil {
		metrics.Cancellations.With(prometheus.Labels{"outcome": writeDomainError(w, err)}).Inc()
		return
	}
	metrics.Cancellations.With(prometheus.Labels{"outcome": metrics.OutcomeOK}).Inc()
	w.WriteHeader(http.StatusNoContent)
}

// ListSignups handles GET /sessions/{sessionID}/signups.
// The body is the newline-separated attendee ids, one per line.
func (h *SheetHandler) ListSignups(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.ListSignups(r.Context(), sessionID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(string(id))
		b.WriteByte('\n')
	}
	writeText(w, http.StatusOK, b.String())
}

// IsFull handles GET /sessions/{sessionID}/full.
func (h *SheetHandler) IsFull(w http.ResponseWriter, r *http.Request) {
	full, err := h.svc.IsFull(r.Context(), sessionID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeText(w, http.StatusOK, strconv.FormatBool(full))
}

// IsClosed handles GET /sessions/{sessionID}/closed.
func (h *SheetHandler) IsClosed(w http.ResponseWriter, r *http.Request) {
	closed, err := h.svc.IsClosed(r.Context(), sessionID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeText(w, http.StatusOK, strconv.FormatBool(closed))
}

// Close handles POST /sessions/{sessionID}/closed.
// Closing an already-closed sheet succeeds without change.
func (h *SheetHandler) Close(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Close(r.Context(), sessionID(r)); err != nil {
		metrics.Closes.With(prometheus.Labels{"outcome": writeDomainError(w, err)}).Inc()
		return
	}
	metrics.Closes.With(prometheus.Labels{"outcome": metrics.OutcomeOK}).Inc()
	w.WriteHeader(http.StatusNoContent)
}

// CreateSheet handles POST /sessions.
// Seeds a new sheet with the given capacity.
func (h *SheetHandler) CreateSheet(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSheetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	st, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.View(st))
}

// GetSheet handles GET /sessions/{sessionID}.
func (h *SheetHandler) GetSheet(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(r.Context(), sessionID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.View(st))
}

// ListSheets handles GET /sessions.
func (h *SheetHandler) ListSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	// Return an empty array rather than null for better client compatibility.
	views := make([]model.Sheet, 0, len(sheets))
	for _, st := range sheets {
		views = append(views, model.View(st))
	}
	writeJSON(w, http.StatusOK, views)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
