// Package model defines the core domain types for the sign-up sheet system.
//
// A sheet is represented as one of three immutable variants — Available,
// Full or Closed — and every operation's availability is encoded in which
// variant carries the method. Callers that hold an Available value can
// sign attendees up; callers that hold a Closed value cannot, and the
// compiler enforces it. There is no status flag to get out of sync.
package model

import (
	"fmt"
	"slices"
)

// SessionID identifies a conference session. Opaque, compared by value.
type SessionID string

// AttendeeID identifies an attendee. Opaque, compared by value.
type AttendeeID string

// SheetState is the sealed interface over the three sheet variants.
// Only Available, Full and Closed implement it.
type SheetState interface {
	// SessionID returns the session this sheet belongs to.
	SessionID() SessionID
	// Capacity returns the fixed attendee capacity set at creation.
	Capacity() int
	// Signups returns a sorted copy of the signed-up attendee ids.
	Signups() []AttendeeID
	// Has reports whether the attendee is signed up.
	Has(AttendeeID) bool
	// IsFull reports whether the signups have reached capacity.
	IsFull() bool
	// IsClosed reports whether the sheet has been closed.
	IsClosed() bool

	sealed()
}

// sheet holds the fields shared by all variants. Values are immutable:
// transitions build a new sheet rather than mutating in place.
type sheet struct {
	sessionID SessionID
	capacity  int
	signups   attendeeSet
}

func (s sheet) SessionID() SessionID  { return s.sessionID }
func (s sheet) Capacity() int         { return s.capacity }
func (s sheet) Signups() []AttendeeID { return s.signups.sorted() }
func (s sheet) Has(a AttendeeID) bool { return s.signups.has(a) }
func (s sheet) sealed()               {}

// Available is a sheet with remaining capacity. It is the only variant
// that accepts new sign-ups.
type Available struct{ sheet }

// Full is a sheet whose signups have reached capacity. Attendees may
// still cancel, which reopens the sheet.
type Full struct{ sheet }

// Closed is the terminal variant. No mutating operation exists on it;
// the stored value only answers queries from then on.
type Closed struct{ sheet }

func (Available) IsFull() bool   { return false }
func (Available) IsClosed() bool { return false }

func (Full) IsFull() bool   { return true }
func (Full) IsClosed() bool { return false }

// IsFull on a closed sheet reports the factual count comparison; the
// sheet no longer accepts sign-ups either way.
func (c Closed) IsFull() bool { return c.signups.size() == c.capacity }
func (Closed) IsClosed() bool { return true }

// SignUp adds the attendee and returns the resulting state: Full when
// the addition reaches capacity, Available otherwise. Signing up an
// attendee who is already on the sheet is a silent no-op.
func (a Available) SignUp(id AttendeeID) SheetState {
	if a.signups.has(id) {
		return a
	}
	next := a.signups.with(id)
	if next.size() == a.capacity {
		return Full{sheet{a.sessionID, a.capacity, next}}
	}
	return Available{sheet{a.sessionID, a.capacity, next}}
}

// Cancel removes the attendee if present. Cancelling an absent attendee
// is a silent no-op. An available sheet stays available.
func (a Available) Cancel(id AttendeeID) Available {
	if !a.signups.has(id) {
		return a
	}
	return Available{sheet{a.sessionID, a.capacity, a.signups.without(id)}}
}

// Cancel removes the attendee if present, reopening the sheet. When the
// attendee is not on the sheet nothing changes and the sheet stays full.
func (f Full) Cancel(id AttendeeID) SheetState {
	if !f.signups.has(id) {
		return f
	}
	return Available{sheet{f.sessionID, f.capacity, f.signups.without(id)}}
}

// Close freezes the sheet, keeping the session, capacity and signups.
func (a Available) Close() Closed { return Closed{a.sheet} }

// Close freezes the sheet, keeping the session, capacity and signups.
func (f Full) Close() Closed { return Closed{f.sheet} }

// New creates an empty sheet for the session. A sheet with capacity 0
// starts out Full; any positive capacity starts Available.
func New(sessionID SessionID, capacity int) (SheetState, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("capacity must not be negative, got %d", capacity)
	}
	s := sheet{sessionID, capacity, attendeeSet{}}
	if capacity == 0 {
		return Full{s}, nil
	}
	return Available{s}, nil
}

// Restore rebuilds the correct variant from persisted fields. Duplicate
// attendee ids collapse (set semantics). A signup count exceeding the
// capacity means the stored row violates the sheet invariant and is
// rejected rather than silently clamped.
func Restore(sessionID SessionID, capacity int, signups []AttendeeID, closed bool) (SheetState, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("capacity must not be negative, got %d", capacity)
	}
	set := make(attendeeSet, len(signups))
	for _, a := range signups {
		set[a] = struct{}{}
	}
	if set.size() > capacity {
		return nil, fmt.Errorf("sheet %s: %d signups exceed capacity %d", sessionID, set.size(), capacity)
	}
	s := sheet{sessionID, capacity, set}
	switch {
	case closed:
		return Closed{s}, nil
	case set.size() == capacity:
		return Full{s}, nil
	default:
		return Available{s}, nil
	}
}

// attendeeSet is an immutable-by-convention attendee set: with and
// without return fresh copies, so sheet values can share sets safely.
type attendeeSet map[AttendeeID]struct{}

func (s attendeeSet) has(a AttendeeID) bool { _, ok := s[a]; return ok }

func (s attendeeSet) size() int { return len(s) }

func (s attendeeSet) with(a AttendeeID) attendeeSet {
	next := make(attendeeSet, len(s)+1)
	for k := range s {
		next[k] = struct{}{}
	}
	next[a] = struct{}{}
	return next
}

func (s attendeeSet) without(a AttendeeID) attendeeSet {
	next := make(attendeeSet, len(s))
	for k := range s {
		if k != a {
			next[k] = struct{}{}
		}
	}
	return next
}

func (s attendeeSet) sorted() []AttendeeID {
	out := make([]AttendeeID, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
