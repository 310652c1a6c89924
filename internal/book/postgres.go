package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confops/signup-sheets/internal/model"
)

// PostgresBook persists sheets in a single sheets table, one row per
// session, with the signups stored as a text array. It uses pgx
// directly (no ORM) like the rest of the stack.
type PostgresBook struct {
	db *pgxpool.Pool
}

// NewPostgresBook constructs a PostgresBook on the given pool.
func NewPostgresBook(db *pgxpool.Pool) *PostgresBook {
	return &PostgresBook{db: db}
}

// EnsureSchema creates the sheets table if it does not exist.
func (b *PostgresBook) EnsureSchema(ctx context.Context) error {
	_, err := b.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sheets (
			session_id TEXT PRIMARY KEY,
			capacity   INT NOT NULL,
			closed     BOOL NOT NULL DEFAULT FALSE,
			signups    TEXT[] NOT NULL DEFAULT '{}'
		)`)
	if err != nil {
		return fmt.Errorf("create sheets table: %w", err)
	}
	return nil
}

// Get returns the current sheet state, or ErrNotFound.
func (b *PostgresBook) Get(ctx context.Context, id model.SessionID) (model.SheetState, error) {
	var (
		capacity int
		closed   bool
		signups  []string
	)
	err := b.db.QueryRow(ctx,
		`SELECT capacity, closed, signups FROM sheets WHERE session_id = $1`,
		string(id),
	).Scan(&capacity, &closed, &signups)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sheet: %w", err)
	}
	return model.Restore(id, capacity, attendeeIDs(signups), closed)
}

// Save replaces the stored state for the sheet's session.
func (b *PostgresBook) Save(ctx context.Context, st model.SheetState) error {
	_, err := b.db.Exec(ctx,
		`UPDATE sheets SET capacity = $2, closed = $3, signups = $4 WHERE session_id = $1`,
		string(st.SessionID()), st.Capacity(), st.IsClosed(), attendeeStrings(st.Signups()),
	)
	if err != nil {
		return fmt.Errorf("save sheet: %w", err)
	}
	return nil
}

// Create seeds a new sheet, or returns ErrExists.
func (b *PostgresBook) Create(ctx context.Context, st model.SheetState) error {
	tag, err := b.db.Exec(ctx,
		`INSERT INTO sheets (session_id, capacity, closed, signups)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id) DO NOTHING`,
		string(st.SessionID()), st.Capacity(), st.IsClosed(), attendeeStrings(st.Signups()),
	)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

// List returns all stored sheets.
func (b *PostgresBook) List(ctx context.Context) ([]model.SheetState, error) {
	rows, err := b.db.Query(ctx,
		`SELECT session_id, capacity, closed, signups FROM sheets ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()

	var sheets []model.SheetState
	for rows.Next() {
		var (
			id       string
			capacity int
			closed   bool
			signups  []string
		)
		if err := rows.Scan(&id, &capacity, &closed, &signups); err != nil {
			return nil, fmt.Errorf("scan sheet: %w", err)
		}
		st, err := model.Restore(model.SessionID(id), capacity, attendeeIDs(signups), closed)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, st)
	}
	return sheets, rows.Err()
}

// Perform runs the decision function inside a transaction holding a
// row-level exclusive lock on the session's row.
//
// A naive read-then-write would let two concurrent sign-ups both read
// the same snapshot of the row before either writes back, overbooking
// the sheet. SELECT … FOR UPDATE blocks any other transaction's
// FOR UPDATE read of the row until this transaction commits or rolls
// back, so concurrent updates on the same session are serialised while
// updates on other sessions proceed in parallel.
func (b *PostgresBook) Perform(ctx context.Context, id model.SessionID, fn UpdateFunc) (st model.SheetState, err error) {
	tx, err := b.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		capacity int
		closed   bool
		signups  []string
	)
	err = tx.QueryRow(ctx,
		`SELECT capacity, closed, signups FROM sheets WHERE session_id = $1 FOR UPDATE`,
		string(id),
	).Scan(&capacity, &closed, &signups)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock sheet row: %w", err)
	}

	cur, err := model.Restore(id, capacity, attendeeIDs(signups), closed)
	if err != nil {
		return nil, err
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE sheets SET closed = $2, signups = $3 WHERE session_id = $1`,
		string(id), next.IsClosed(), attendeeStrings(next.Signups()),
	)
	if err != nil {
		return nil, fmt.Errorf("update sheet: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return next, nil
}

func attendeeIDs(in []string) []model.AttendeeID {
	out := make([]model.AttendeeID, len(in))
	for i, s := range in {
		out[i] = model.AttendeeID(s)
	}
	return out
}

func attendeeStrings(in []model.AttendeeID) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = string(a)
	}
	return out
}
