// Package book implements storage for sign-up sheets. It defines the
// SignupBook contract, an in-memory reference backend, a Postgres
// backend, and the Transactor that serialises read-modify-write updates
// per session.
package book

import (
	"context"
	"errors"

	"github.com/confops/signup-sheets/internal/model"
)

// ErrNotFound is returned when no sheet exists for the session.
var ErrNotFound = errors.New("session not found")

// ErrExists is returned when creating a sheet for a session that
// already has one.
var ErrExists = errors.New("session already exists")

// Book maps a session id to the latest sheet state. Save fully replaces
// the prior value for the key; there are no partial merges. An absent
// key surfaces as ErrNotFound, never as a silent default.
type Book interface {
	// Get returns the current sheet state, or ErrNotFound.
	Get(ctx context.Context, id model.SessionID) (model.SheetState, error)
	// Save replaces the stored state for the sheet's session.
	Save(ctx context.Context, st model.SheetState) error
	// Create seeds a new sheet, or returns ErrExists.
	Create(ctx context.Context, st model.SheetState) error
	// List returns a snapshot of all stored sheets.
	List(ctx context.Context) ([]model.SheetState, error)
}

// UpdateFunc is a pure decision function run inside a transaction. It
// receives the current persisted state and returns the new state to
// persist, or an error to abort without writing.
type UpdateFunc func(model.SheetState) (model.SheetState, error)
