package model

// Sheet is the JSON representation of a sheet returned by the API.
type Sheet struct {
	SessionID SessionID    `json:"session_id"`
	Capacity  int          `json:"capacity"`
	Signups   []AttendeeID `json:"signups"`
	Full      bool         `json:"full"`
	Closed    bool         `json:"closed"`
}

// View projects a SheetState into its API representation.
func View(st SheetState) Sheet {
	return Sheet{
		SessionID: st.SessionID(),
		Capacity:  st.Capacity(),
		Signups:   st.Signups(),
		Full:      st.IsFull(),
		Closed:    st.IsClosed(),
	}
}

// CreateSheetRequest is the payload for creating a new sign-up sheet.
// SessionID may be left empty to have the server generate one.
type CreateSheetRequest struct {
	SessionID string `json:"session_id"`
	Capacity  int    `json:"capacity"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
