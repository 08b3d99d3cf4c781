package sync

import (
	"context"
	"encoding/json/v2"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/errors"
	"github.com/readingkg/readingkg-server/internal/store"
)

// Applier replays one queued action against the authoritative stores.
type Applier interface {
	Apply(ctx context.Context, action *domain.OfflineAction) error
}

// StoreApplier routes each action kind to the store call it buffered.
type StoreApplier struct {
	events store.EventStore
	books  store.BookStore
}

// NewStoreApplier creates the production applier.
func NewStoreApplier(events store.EventStore, books store.BookStore) *StoreApplier {
	return &StoreApplier{events: events, books: books}
}

// Apply replays the action. Event appends are idempotent through the
// client_event_id, so a replay after a half-applied attempt is safe.
func (a *StoreApplier) Apply(ctx context.Context, action *domain.OfflineAction) error {
	switch action.Kind {
	case domain.ActionAppendEvent, domain.ActionCorrectEvent:
		var p domain.AppendEventPayload
		if err := json.Unmarshal(action.Payload, &p); err != nil {
			return errors.Wrap(err, errors.CodeValidation, "malformed event payload")
		}
		if p.Event == nil {
			return errors.Validation("event payload is empty")
		}
		_, err := a.events.AppendEvent(ctx, p.Event)
		return err

	case domain.ActionCreateBook:
		var p domain.CreateBookPayload
		if err := json.Unmarshal(action.Payload, &p); err != nil {
			return errors.Wrap(err, errors.CodeValidation, "malformed book payload")
		}
		if p.Book == nil {
			return errors.Validation("book payload is empty")
		}
		return a.books.CreateBook(ctx, p.Book)

	case domain.ActionUpdateBook:
		var p domain.UpdateBookPayload
		if err := json.Unmarshal(action.Payload, &p); err != nil {
			return errors.Wrap(err, errors.CodeValidation, "malformed update payload")
		}
		if p.BookID == "" {
			return errors.Validation("update payload has no book_id")
		}
		_, err := a.books.UpdateBook(ctx, action.OwnerID, p.BookID, p.Update)
		return err

	default:
		return errors.Validationf("unknown action kind %q", action.Kind)
	}
}
