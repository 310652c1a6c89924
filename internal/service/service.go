// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the sign-up book.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"github.com/confops/signup-sheets/internal/book"
	"github.com/confops/signup-sheets/internal/model"
)

// ErrSheetClosed is returned when a sign-up or cancellation targets a
// closed sheet.
var ErrSheetClosed = errors.New("sheet is closed")

// ErrSheetFull is returned when a new attendee tries to sign up on a
// full sheet. Kept distinct from ErrSheetClosed so callers and tests can
// tell the two conflicts apart; both map to HTTP 409.
var ErrSheetFull = errors.New("sheet is full")

// SignupService exposes the sign-up sheet operations. Every write runs
// as a pure decision function through the transactor; reads are served
// from a consistent snapshot of the book.
type SignupService struct {
	tx     *book.Transactor
	book   book.Book
	logger pslog.Logger
}

// NewSignupService constructs a SignupService over the given book.
func NewSignupService(b book.Book, logger pslog.Logger) *SignupService {
	return &SignupService{
		tx:     book.NewTransactor(b),
		book:   b,
		logger: logger,
	}
}

// SignUp adds the attendee to the session's sheet. Signing up an
// attendee who is already on the sheet succeeds without change, even
// when the sheet is full. A new attendee on a full sheet gets
// ErrSheetFull; any attendee on a closed sheet gets ErrSheetClosed.
func (s *SignupService) SignUp(ctx context.Context, sessionID model.SessionID, attendeeID model.AttendeeID) (model.SheetState, error) {
	if err := validateIDs(sessionID, attendeeID); err != nil {
		return nil, err
	}
	next, err := s.tx.Perform(ctx, sessionID, func(cur model.SheetState) (model.SheetState, error) {
		switch st := cur.(type) {
		case model.Available:
			return st.SignUp(attendeeID), nil
		case model.Full:
			if st.Has(attendeeID) {
				return st, nil
			}
			return nil, ErrSheetFull
		case model.Closed:
			return nil, ErrSheetClosed
		default:
			return nil, fmt.Errorf("unexpected sheet state %T", cur)
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sheet.signup",
		"session", sessionID,
		"attendee", attendeeID,
		"signups", len(next.Signups()),
		"full", next.IsFull(),
	)
	return next, nil
}

// CancelSignUp removes the attendee from the session's sheet.
// Cancelling an absent attendee is a no-op; cancelling on a full sheet
// reopens it; cancelling on a closed sheet gets ErrSheetClosed.
func (s *SignupService) CancelSignUp(ctx context.Context, sessionID model.SessionID, attendeeID model.AttendeeID) (model.SheetState, error) {
	if err := validateIDs(sessionID, attendeeID); err != nil {
		return nil, err
	}
	next, err := s.tx.Perform(ctx, sessionID, func(cur model.SheetState) (model.SheetState, error) {
		switch st := cur.(type) {
		case model.Available:
			return st.Cancel(attendeeID), nil
		case model.Full:
			return st.Cancel(attendeeID), nil
		case model.Closed:
			return nil, ErrSheetClosed
		default:
			return nil, fmt.Errorf("unexpected sheet state %T", cur)
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sheet.cancel",
		"session", sessionID,
		"attendee", attendeeID,
		"signups", len(next.Signups()),
	)
	return next, nil
}

// Close freezes the session's sheet. Closing an already-closed sheet is
// an idempotent no-op returning the same terminal state.
func (s *SignupService) Close(ctx context.Context, sessionID model.SessionID) (model.SheetState, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	next, err := s.tx.Perform(ctx, sessionID, func(cur model.SheetState) (model.SheetState, error) {
		switch st := cur.(type) {
		case model.Available:
			return st.Close(), nil
		case model.Full:
			return st.Close(), nil
		case model.Closed:
			return st, nil
		default:
			return nil, fmt.Errorf("unexpected sheet state %T", cur)
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sheet.close", "session", sessionID, "signups", len(next.Signups()))
	return next, nil
}

// ListSignups returns the attendee ids on the session's sheet.
func (s *SignupService) ListSignups(ctx context.Context, sessionID model.SessionID) ([]model.AttendeeID, error) {
	st, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return st.Signups(), nil
}

// IsFull reports whether the session's sheet is at capacity.
func (s *SignupService) IsFull(ctx context.Context, sessionID model.SessionID) (bool, error) {
	st, err := s.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return st.IsFull(), nil
}

// IsClosed reports whether the session's sheet has been closed.
func (s *SignupService) IsClosed(ctx context.Context, sessionID model.SessionID) (bool, error) {
	st, err := s.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return st.IsClosed(), nil
}

// Get returns the current sheet snapshot for the session.
func (s *SignupService) Get(ctx context.Context, sessionID model.SessionID) (model.SheetState, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return s.book.Get(ctx, sessionID)
}

// List returns snapshots of all sheets.
func (s *SignupService) List(ctx context.Context) ([]model.SheetState, error) {
	return s.book.List(ctx)
}

// Create seeds a new sheet. An omitted session id gets a generated
// UUID. Capacity must be between 0 and 100,000; it is fixed for the
// sheet's lifetime.
func (s *SignupService) Create(ctx context.Context, req model.CreateSheetRequest) (model.SheetState, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	if req.Capacity > 100_000 {
		return nil, fmt.Errorf("capacity cannot exceed 100,000")
	}
	st, err := model.New(model.SessionID(req.SessionID), req.Capacity)
	if err != nil {
		return nil, err
	}
	if err := s.book.Create(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("sheet.create", "session", st.SessionID(), "capacity", st.Capacity())
	return st, nil
}

func validateIDs(sessionID model.SessionID, attendeeID model.AttendeeID) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(string(attendeeID)) == "" {
		return fmt.Errorf("attendee id is required")
	}
	return nil
}
