package domain

import "time"

// ActionKind names the mutation an offline action replays.
type ActionKind string

// Offline action kinds.
const (
	ActionAppendEvent  ActionKind = "append_event"
	ActionCorrectEvent ActionKind = "correct_event"
	ActionCreateBook   ActionKind = "create_book"
	ActionUpdateBook   ActionKind = "update_book"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionAppendEvent, ActionCorrectEvent, ActionCreateBook, ActionUpdateBook:
		return true
	}
	return false
}

// OfflineAction is a durably buffered mutation awaiting delivery.
// Created when a mutation fails with a connectivity error; removed on
// success, conflict-as-success, terminal failure, or retry exhaustion.
type OfflineAction struct {
	ID         string     `json:"id"` // doubles as the idempotency key
	OwnerID    string     `json:"owner_id"`
	Kind       ActionKind `json:"kind"`
	Payload    []byte     `json:"payload"` // JSON, kind-specific
	EnqueuedAt time.Time  `json:"enqueued_at"`
	RetryCount int        `json:"retry_count"`
	LastError  string     `json:"last_error,omitempty"`
}

// AppendEventPayload is the payload for append_event and correct_event
// actions. The embedded event keeps its original client_event_id, so a
// replay after a half-applied attempt collapses onto the stored row.
type AppendEventPayload struct {
	Event *ReadingEvent `json:"event"`
}

// CreateBookPayload is the payload for create_book actions.
type CreateBookPayload struct {
	Book *Book `json:"book"`
}

// UpdateBookPayload is the payload for update_book actions.
type UpdateBookPayload struct {
	BookID string     `json:"book_id"`
	Update BookUpdate `json:"update"`
}
