// Package store defines the persistence interfaces consumed by the services
// and the sync engine. Implementations must return internal/errors codes so
// callers can classify failures (retryable vs terminal) without inspecting
// error strings.
package store

import (
	"context"

	"github.com/readingkg/readingkg-server/internal/domain"
)

// EventStore is the durable append/query adapter for reading events.
type EventStore interface {
	// AppendEvent inserts the event, collapsing duplicates: if a row with the
	// same (owner, client_event_id) already exists, that row is returned and
	// no second row is created.
	AppendEvent(ctx context.Context, event *domain.ReadingEvent) (*domain.ReadingEvent, error)

	// GetEvent returns an event by ID, scoped to the owner.
	GetEvent(ctx context.Context, ownerID, eventID string) (*domain.ReadingEvent, error)

	// ValidEvents returns events that are not corrections and not the target
	// of any correction of the same owner, ordered by occurred_at descending.
	// bookID narrows to one book when non-empty.
	ValidEvents(ctx context.Context, ownerID, bookID string) ([]*domain.ReadingEvent, error)

	// CountEvents returns the total number of stored rows for the owner,
	// corrections and corrected events included.
	CountEvents(ctx context.Context, ownerID string) (int, error)
}

// BookStore is the authoritative local catalog.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, ownerID, bookID string) (*domain.Book, error)
	UpdateBook(ctx context.Context, ownerID, bookID string, update domain.BookUpdate) (*domain.Book, error)

	// SetMergedInto marks a book as merged into another. Cycle checking is
	// the caller's job; the store only records the edge.
	SetMergedInto(ctx context.Context, ownerID, bookID, intoID string) error

	// ListBooks returns canonical (non-merged) books, updated_at descending.
	ListBooks(ctx context.Context, ownerID string, limit int) ([]*domain.Book, error)

	// FindBooks returns canonical books whose title, author, or either ISBN
	// contains the query, case-insensitively, updated_at descending.
	FindBooks(ctx context.Context, ownerID, query string) ([]*domain.Book, error)

	// CountBooks returns the owner's canonical book count.
	CountBooks(ctx context.Context, ownerID string) (int, error)
}

// QueueStore is the local durable log backing the offline action queue.
// It survives process restart; ordering is enqueue (FIFO) order.
type QueueStore interface {
	EnqueueAction(ctx context.Context, action *domain.OfflineAction) error
	ListActions(ctx context.Context, ownerID string) ([]*domain.OfflineAction, error)
	RemoveAction(ctx context.Context, actionID string) error
	UpdateActionRetry(ctx context.Context, actionID string, retryCount int, lastError string) error
	CountActions(ctx context.Context, ownerID string) (int, error)
}

// SelectionStore persists the single-value "book selected next" pointer.
type SelectionStore interface {
	GetSelection(ctx context.Context, ownerID string) (*domain.NextSelection, error)
	SetSelection(ctx context.Context, selection *domain.NextSelection) error
}

// Pinger probes connectivity to the durable store.
type Pinger interface {
	Ping(ctx context.Context) error
}
