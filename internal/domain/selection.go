package domain

import "time"

// NextSelection is the "book selected next" pointer: a single persisted value
// per owner, recorded out of band. The system never infers "what I'm reading
// now" from the event log alone.
type NextSelection struct {
	OwnerID   string    `json:"owner_id"`
	BookID    string    `json:"book_id,omitempty"` // empty means no selection
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrentState is the projector's answer to "where am I": the most recent
// valid event plus the explicit next-book selection.
type CurrentState struct {
	LastEvent *ReadingEvent  `json:"last_event,omitempty"`
	Next      *NextSelection `json:"next,omitempty"`
}
