package service

import (
	"context"
	"log/slog"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/errors"
	"github.com/readingkg/readingkg-server/internal/id"
	"github.com/readingkg/readingkg-server/internal/store"
)

// EventService records reading events and answers projection queries.
type EventService struct {
	events     store.EventStore
	books      store.BookStore
	selections store.SelectionStore
	queue      store.QueueStore
	logger     *slog.Logger
}

// NewEventService creates a new event service.
func NewEventService(
	events store.EventStore,
	books store.BookStore,
	selections store.SelectionStore,
	queue store.QueueStore,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		events:     events,
		books:      books,
		selections: selections,
		queue:      queue,
		logger:     logger,
	}
}

// RecordResult is the outcome of a mutation that may have been buffered.
type RecordResult struct {
	Event *domain.ReadingEvent `json:"event"`
	// Queued is true when the store was unreachable and the event went into
	// the offline queue instead.
	Queued bool `json:"queued"`
}

// RecordFinished appends a "finished reading" fact for the book.
func (s *EventService) RecordFinished(ctx context.Context, ownerID, bookID string) (*RecordResult, error) {
	event := domain.NewReadingEvent(id.MustGenerate("evt"), ownerID, bookID, domain.EventFinished, 100)
	return s.append(ctx, event)
}

// RecordEnded appends an "ended without finishing" fact with the reached
// completion percentage.
func (s *EventService) RecordEnded(ctx context.Context, ownerID, bookID string, completion int) (*RecordResult, error) {
	event := domain.NewReadingEvent(id.MustGenerate("evt"), ownerID, bookID, domain.EventEnded, completion)
	return s.append(ctx, event)
}

// Undo cancels an event by appending a correction referencing it. The target
// row is never touched; N corrections on one target still cancel it once.
func (s *EventService) Undo(ctx context.Context, ownerID, targetEventID string) (*RecordResult, error) {
	return s.CorrectEvent(ctx, ownerID, targetEventID, 0)
}

// CorrectEvent appends a correction against the target event, carrying the
// corrected completion value.
func (s *EventService) CorrectEvent(ctx context.Context, ownerID, targetEventID string, completion int) (*RecordResult, error) {
	target, err := s.events.GetEvent(ctx, ownerID, targetEventID)
	if err != nil {
		return nil, err
	}
	if target.EventType == domain.EventCorrection {
		return nil, errors.Validation("corrections cannot target another correction")
	}

	correction := domain.NewCorrection(id.MustGenerate("evt"), ownerID, target, completion)
	return s.appendKind(ctx, correction, domain.ActionCorrectEvent)
}

func (s *EventService) append(ctx context.Context, event *domain.ReadingEvent) (*RecordResult, error) {
	return s.appendKind(ctx, event, domain.ActionAppendEvent)
}

// appendKind validates and appends the event. Validation failures surface
// synchronously and are never queued; only connectivity failures buffer the
// action for replay.
func (s *EventService) appendKind(ctx context.Context, event *domain.ReadingEvent, kind domain.ActionKind) (*RecordResult, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.events.AppendEvent(ctx, event)
	if err == nil {
		return &RecordResult{Event: stored}, nil
	}
	if !errors.Retryable(err) {
		return nil, err
	}

	if enqueueOffline(ctx, s.queue, s.logger, event.OwnerID, kind, domain.AppendEventPayload{Event: event}) {
		return &RecordResult{Event: event, Queued: true}, nil
	}
	return nil, err
}

// ValidEvents returns the owner's valid events, most recent first, optionally
// narrowed to one book.
func (s *EventService) ValidEvents(ctx context.Context, ownerID, bookID string) ([]*domain.ReadingEvent, error) {
	return s.events.ValidEvents(ctx, ownerID, bookID)
}

// CurrentState answers "where am I": the most recent valid event plus the
// explicit next-book selection.
func (s *EventService) CurrentState(ctx context.Context, ownerID string) (*domain.CurrentState, error) {
	events, err := s.events.ValidEvents(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}

	state := &domain.CurrentState{}
	if len(events) > 0 {
		state.LastEvent = events[0]
	}

	selection, err := s.selections.GetSelection(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if selection.BookID != "" {
		state.Next = selection
	}
	return state, nil
}

// SelectNext records the "read this next" pointer. An empty bookID clears it.
// The selection is explicit side-state, never inferred from events.
func (s *EventService) SelectNext(ctx context.Context, ownerID, bookID string) (*domain.NextSelection, error) {
	if bookID != "" {
		if _, err := s.books.GetBook(ctx, ownerID, bookID); err != nil {
			return nil, err
		}
	}

	selection := &domain.NextSelection{OwnerID: ownerID, BookID: bookID}
	if err := s.selections.SetSelection(ctx, selection); err != nil {
		return nil, err
	}
	return selection, nil
}
