package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/readingkg/readingkg-server/internal/errors"
)

// EventType classifies a reading event.
type EventType string

// Reading event types.
const (
	EventFinished   EventType = "finished"
	EventEnded      EventType = "ended"
	EventCorrection EventType = "correction"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventFinished, EventEnded, EventCorrection:
		return true
	}
	return false
}

// ReadingEvent is the atomic, immutable record of a reading-completion fact.
// Events are append-only: there is no update and no delete. A mistake is
// cancelled by a later correction event referencing it, never by rewriting
// history.
type ReadingEvent struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	BookID        string    `json:"book_id"`
	EventType     EventType `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	Completion    int       `json:"completion"` // 0-100
	TargetEventID string    `json:"target_event_id,omitempty"`
	// ClientEventID is the idempotency key: unique per owner, so a retried
	// submission collapses onto the stored row instead of double-recording.
	ClientEventID string    `json:"client_event_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewReadingEvent creates a finished or ended event with a fresh idempotency
// key and the current timestamp.
func NewReadingEvent(id, ownerID, bookID string, eventType EventType, completion int) *ReadingEvent {
	now := time.Now().UTC()
	return &ReadingEvent{
		ID:            id,
		OwnerID:       ownerID,
		BookID:        bookID,
		EventType:     eventType,
		OccurredAt:    now,
		Completion:    completion,
		ClientEventID: uuid.NewString(),
		CreatedAt:     now,
	}
}

// NewCorrection creates a correction event cancelling target. The correction
// is a forward-only compensating fact: the target row is never touched.
func NewCorrection(id, ownerID string, target *ReadingEvent, completion int) *ReadingEvent {
	now := time.Now().UTC()
	return &ReadingEvent{
		ID:            id,
		OwnerID:       ownerID,
		BookID:        target.BookID,
		EventType:     EventCorrection,
		OccurredAt:    now,
		Completion:    completion,
		TargetEventID: target.ID,
		ClientEventID: uuid.NewString(),
		CreatedAt:     now,
	}
}

// Validate checks the event invariants:
//
//	finished   => completion = 100
//	ended      => completion in [0, 99]
//	correction => target_event_id set, not self-referencing
func (e *ReadingEvent) Validate() error {
	if !e.EventType.Valid() {
		return errors.Validationf("unknown event type %q", e.EventType)
	}
	if e.BookID == "" {
		return errors.Validation("book_id is required")
	}
	if e.ClientEventID == "" {
		return errors.Validation("client_event_id is required")
	}
	if e.Completion < 0 || e.Completion > 100 {
		return errors.Validationf("completion %d out of range [0,100]", e.Completion)
	}

	switch e.EventType {
	case EventFinished:
		if e.Completion != 100 {
			return errors.Validation("finished events must have completion 100")
		}
		if e.TargetEventID != "" {
			return errors.Validation("finished events must not reference a target")
		}
	case EventEnded:
		if e.Completion > 99 {
			return errors.Validation("ended events must have completion between 0 and 99")
		}
		if e.TargetEventID != "" {
			return errors.Validation("ended events must not reference a target")
		}
	case EventCorrection:
		if e.TargetEventID == "" {
			return errors.Validation("corrections must reference a target event")
		}
		if e.TargetEventID == e.ID {
			return errors.Validation("corrections must not reference themselves")
		}
	}

	return nil
}
