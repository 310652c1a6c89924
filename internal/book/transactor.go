package book

import (
	"context"
	"fmt"
	"sync"

	"github.com/confops/signup-sheets/internal/model"
)

// atomicBook is implemented by backends that provide their own
// transactional update, such as the Postgres book's row-locking
// transaction. The Transactor defers to it when present.
type atomicBook interface {
	Perform(ctx context.Context, id model.SessionID, fn UpdateFunc) (model.SheetState, error)
}

// Transactor executes read-modify-write updates against a Book with
// mutual exclusion per session. Two concurrent sign-ups for the same
// session cannot both read "2 of 3" and both write "3 of 3": only one
// decision function runs per session at a time. Updates on different
// sessions proceed independently.
type Transactor struct {
	book Book

	mu    sync.Mutex
	locks map[model.SessionID]*sync.Mutex
}

// NewTransactor wraps the book with per-session update serialisation.
func NewTransactor(b Book) *Transactor {
	return &Transactor{
		book:  b,
		locks: make(map[model.SessionID]*sync.Mutex),
	}
}

// Perform loads the current state for the session, runs fn, and
// persists the result. When fn returns an error the transaction aborts
// and the book is left unmodified. The session lock is released on
// every exit path. On success the new state is persisted before Perform
// returns.
func (t *Transactor) Perform(ctx context.Context, id model.SessionID, fn UpdateFunc) (model.SheetState, error) {
	if ab, ok := t.book.(atomicBook); ok {
		return ab.Perform(ctx, id, fn)
	}

	lock := t.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	cur, err := t.book.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if err := t.book.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save sheet %s: %w", id, err)
	}
	return next, nil
}

// lockFor returns the mutex for the session, creating it on first use.
// Locks are never removed; the registry grows with the set of sessions
// ever updated, which is bounded by the seeded sheets.
func (t *Transactor) lockFor(id model.SessionID) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[id] = lock
	}
	return lock
}
