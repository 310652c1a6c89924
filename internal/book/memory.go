package book

import (
	"context"
	"sync"

	"github.com/confops/signup-sheets/internal/model"
)

// MemoryBook is the in-memory reference backend: a mutex-guarded map of
// immutable sheet snapshots. Because SheetState values never mutate
// after construction, a read concurrent with a write on another session
// always observes a consistent snapshot, never a torn one.
type MemoryBook struct {
	mu     sync.RWMutex
	sheets map[model.SessionID]model.SheetState
}

// NewMemoryBook returns an empty in-memory book.
func NewMemoryBook() *MemoryBook {
	return &MemoryBook{sheets: make(map[model.SessionID]model.SheetState)}
}

// Get returns the current sheet state, or ErrNotFound.
func (b *MemoryBook) Get(_ context.Context, id model.SessionID) (model.SheetState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st, ok := b.sheets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}

// Save replaces the stored state for the sheet's session.
func (b *MemoryBook) Save(_ context.Context, st model.SheetState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sheets[st.SessionID()] = st
	return nil
}

// Create seeds a new sheet, or returns ErrExists.
func (b *MemoryBook) Create(_ context.Context, st model.SheetState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sheets[st.SessionID()]; ok {
		return ErrExists
	}
	b.sheets[st.SessionID()] = st
	return nil
}

// List returns a snapshot of all stored sheets.
func (b *MemoryBook) List(_ context.Context) ([]model.SheetState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.SheetState, 0, len(b.sheets))
	for _, st := range b.sheets {
		out = append(out, st)
	}
	return out, nil
}
