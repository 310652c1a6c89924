package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"pkt.systems/pslog"

	"github.com/confops/signup-sheets/internal/book"
	"github.com/confops/signup-sheets/internal/handler"
	"github.com/confops/signup-sheets/internal/model"
	"github.com/confops/signup-sheets/internal/service"
)

func newRouter(t *testing.T, seed ...model.SheetState) http.Handler {
	t.Helper()
	b := book.NewMemoryBook()
	for _, st := range seed {
		require.NoError(t, b.Create(context.Background(), st))
	}
	svc := service.NewSignupService(b, pslog.NewStructured(io.Discard))
	h := handler.NewSheetHandler(svc)

	r := chi.NewRouter()
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSheet)
		r.Get("/", h.ListSheets)
		r.Get("/{sessionID}", h.GetSheet)
		r.Post("/{sessionID}/signups/{attendeeID}", h.SignUp)
		r.Delete("/{sessionID}/signups/{attendeeID}", h.CancelSignUp)
		r.Get("/{sessionID}/signups", h.ListSignups)
		r.Get("/{sessionID}/full", h.IsFull)
		r.Get("/{sessionID}/closed", h.IsClosed)
		r.Post("/{sessionID}/closed", h.Close)
	})
	return r
}

func seeded(t *testing.T, id model.SessionID, capacity int) model.SheetState {
	t.Helper()
	st, err := model.New(id, capacity)
	require.NoError(t, err)
	return st
}

func do(t *testing.T, r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSignUpSuccess(t *testing.T) {
	r := newRouter(t, seeded(t, "go-track", 3))

	rec := do(t, r, http.MethodPost, "/sessions/go-track/signups/alice", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/sessions/go-track/signups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice\n", rec.Body.String())
}

func TestSignUpUnknownSession(t *testing.T) {
	r := newRouter(t)

	rec := do(t, r, http.MethodPost, "/sessions/nope/signups/alice", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "session not found", resp.Error)
}

func TestSignUpFullSheetConflicts(t *testing.T) {
	r := newRouter(t, seeded(t, "go-track", 1))

	require.Equal(t, http.StatusNoContent,
		do(t, r, http.MethodPost, "/sessions/go-track/signups/alice", "").Code)
	require.Equal(t, http.StatusConflict,
		do(t, r, http.MethodPost, "/sessions/go-track/signups/bob", "").Code)
}

func TestFullAndClosedBodies(t *testing.T) {
	r := newRouter(t, seeded(t, "go-track", 1))

	require.Equal(t, "false", do(t, r, http.MethodGet, "/sessions/go-track/full", "").Body.String())
	require.Equal(t, "false", do(t, r, http.MethodGet, "/sessions/go-track/closed", "").Body.String())

	do(t, r, http.MethodPost, "/sessions/go-track/signups/alice", "")
	require.Equal(t, "true", do(t, r, http.MethodGet, "/sessions/go-track/full", "").Body.String())

	require.Equal(t, http.StatusNoContent,
		do(t, r, http.MethodPost, "/sessions/go-track/closed", "").Code)
	require.Equal(t, "true", do(t, r, http.MethodGet, "/sessions/go-track/closed", "").Body.String())
}

func TestMutationsOnClosedSheet(t *testing.T) {
	r := newRouter(t, seeded(t, "go-track", 3))

	do(t, r, http.MethodPost, "/sessions/go-track/signups/alice", "")
	do(t, r, http.MethodPost, "/sessions/go-track/closed", "")

	require.Equal(t, http.StatusConflict,
		do(t, r, http.MethodPost, "/sessions/go-track/signups/bob", "").Code)
	require.Equal(t, http.StatusConflict,
		do(t, r, http.MethodDelete, "/sessions/go-track/signups/alice", "").Code)

	// Closing again is idempotent.
	require.Equal(t, http.StatusNoContent,
		do(t, r, http.MethodPost, "/sessions/go-track/closed", "").Code)

	// Signups unchanged.
	rec := do(t, r, http.MethodGet, "/sessions/go-track/signups", "")
	require.Equal(t, "alice\n", rec.Body.String())
}

func TestCancelSignUp(t *testing.T) {
	r := newRouter(t, seeded(t, "go-track", 1))

	do(t, r, http.MethodPost, "/sessions/go-track/signups/alice", "")
	require.Equal(t, http.StatusNoContent,
		do(t, r, http.MethodDelete, "/sessions/go-track/signups/alice", "").Code)
	require.Equal(t, "false", do(t, r, http.MethodGet, "/sessions/go-track/full", "").Body.String())

	// Cancelling an absent attendee is a no-op.
	require.Equal(t, http.StatusNoContent,
		do(t, r, http.MethodDelete, "/sessions/go-track/signups/ghost", "").Code)
}

func TestListSignupsNewlineSeparated(t *testing.T) {
	r := newRouter(t, seeded(t, "go-track", 5))

	for _, a := range []string{"carol", "alice", "bob"} {
		do(t, r, http.MethodPost, "/sessions/go-track/signups/"+a, "")
	}

	rec := do(t, r, http.MethodGet, "/sessions/go-track/signups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice\nbob\ncarol\n", rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestCreateSheet(t *testing.T) {
	r := newRouter(t)

	rec := do(t, r, http.MethodPost, "/sessions", `{"session_id":"go-track","capacity":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sheet model.Sheet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sheet))
	require.Equal(t, model.SessionID("go-track"), sheet.SessionID)
	require.Equal(t, 3, sheet.Capacity)

	// Duplicate session.
	rec = do(t, r, http.MethodPost, "/sessions", `{"session_id":"go-track","capacity":3}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Bad capacity.
	rec = do(t, r, http.MethodPost, "/sessions", `{"session_id":"other","capacity":-1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown field.
	rec = do(t, r, http.MethodPost, "/sessions", `{"nope":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSheet(t *testing.T) {
	r := newRouter(t, seeded(t, "go-track", 2))

	do(t, r, http.MethodPost, "/sessions/go-track/signups/alice", "")

	rec := do(t, r, http.MethodGet, "/sessions/go-track", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sheet model.Sheet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sheet))
	require.Equal(t, []model.AttendeeID{"alice"}, sheet.Signups)
	require.False(t, sheet.Full)
	require.False(t, sheet.Closed)

	require.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/sessions/nope", "").Code)
}

func TestListSheetsEmptyIsArray(t *testing.T) {
	r := newRouter(t)

	rec := do(t, r, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]\n", rec.Body.String())
}
