package service

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/errors"
)

// memStore is an in-memory implementation of all four store interfaces with
// switchable connectivity, mimicking the sqlite store's error taxonomy.
type memStore struct {
	events     []*domain.ReadingEvent
	books      []*domain.Book
	queue      []*domain.OfflineAction
	selections map[string]*domain.NextSelection

	// offline makes every store mutation fail with a NETWORK error.
	offline bool
}

func newMemStore() *memStore {
	return &memStore{selections: make(map[string]*domain.NextSelection)}
}

func (m *memStore) AppendEvent(ctx context.Context, event *domain.ReadingEvent) (*domain.ReadingEvent, error) {
	if m.offline {
		return nil, errors.Network("store unreachable")
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	for _, e := range m.events {
		if e.OwnerID == event.OwnerID && e.ClientEventID == event.ClientEventID {
			return e, nil
		}
	}
	m.events = append(m.events, event)
	return event, nil
}

func (m *memStore) GetEvent(ctx context.Context, ownerID, eventID string) (*domain.ReadingEvent, error) {
	for _, e := range m.events {
		if e.ID == eventID && e.OwnerID == ownerID {
			return e, nil
		}
	}
	return nil, errors.NotFoundf("event %s not found", eventID)
}

func (m *memStore) ValidEvents(ctx context.Context, ownerID, bookID string) ([]*domain.ReadingEvent, error) {
	corrected := make(map[string]bool)
	for _, e := range m.events {
		if e.OwnerID == ownerID && e.EventType == domain.EventCorrection {
			corrected[e.TargetEventID] = true
		}
	}

	var out []*domain.ReadingEvent
	for _, e := range m.events {
		if e.OwnerID != ownerID || e.EventType == domain.EventCorrection || corrected[e.ID] {
			continue
		}
		if bookID != "" && e.BookID != bookID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}

func (m *memStore) CountEvents(ctx context.Context, ownerID string) (int, error) {
	n := 0
	for _, e := range m.events {
		if e.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateBook(ctx context.Context, book *domain.Book) error {
	if m.offline {
		return errors.Network("store unreachable")
	}
	for _, b := range m.books {
		if b.ID == book.ID {
			return errors.Conflictf("book %s already exists", book.ID)
		}
	}
	m.books = append(m.books, book)
	return nil
}

func (m *memStore) GetBook(ctx context.Context, ownerID, bookID string) (*domain.Book, error) {
	for _, b := range m.books {
		if b.ID == bookID && b.OwnerID == ownerID {
			return b, nil
		}
	}
	return nil, errors.NotFoundf("book %s not found", bookID)
}

func (m *memStore) UpdateBook(ctx context.Context, ownerID, bookID string, update domain.BookUpdate) (*domain.Book, error) {
	if m.offline {
		return nil, errors.Network("store unreachable")
	}
	b, err := m.GetBook(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}
	update.Apply(b)
	return b, nil
}

func (m *memStore) SetMergedInto(ctx context.Context, ownerID, bookID, intoID string) error {
	if m.offline {
		return errors.Network("store unreachable")
	}
	b, err := m.GetBook(ctx, ownerID, bookID)
	if err != nil {
		return err
	}
	b.MergedInto = intoID
	return nil
}

func (m *memStore) ListBooks(ctx context.Context, ownerID string, limit int) ([]*domain.Book, error) {
	var out []*domain.Book
	for _, b := range m.books {
		if b.OwnerID == ownerID && b.IsCanonical() {
			out = append(out, b)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) FindBooks(ctx context.Context, ownerID, query string) ([]*domain.Book, error) {
	q := strings.ToLower(query)
	var out []*domain.Book
	for _, b := range m.books {
		if b.OwnerID != ownerID || !b.IsCanonical() {
			continue
		}
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) CountBooks(ctx context.Context, ownerID string) (int, error) {
	books, _ := m.ListBooks(ctx, ownerID, 0)
	return len(books), nil
}

func (m *memStore) EnqueueAction(ctx context.Context, action *domain.OfflineAction) error {
	m.queue = append(m.queue, action)
	return nil
}

func (m *memStore) ListActions(ctx context.Context, ownerID string) ([]*domain.OfflineAction, error) {
	return m.queue, nil
}

func (m *memStore) RemoveAction(ctx context.Context, actionID string) error {
	for i, a := range m.queue {
		if a.ID == actionID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) UpdateActionRetry(ctx context.Context, actionID string, retryCount int, lastError string) error {
	return nil
}

func (m *memStore) CountActions(ctx context.Context, ownerID string) (int, error) {
	return len(m.queue), nil
}

func (m *memStore) GetSelection(ctx context.Context, ownerID string) (*domain.NextSelection, error) {
	if sel, ok := m.selections[ownerID]; ok {
		return sel, nil
	}
	return &domain.NextSelection{OwnerID: ownerID}, nil
}

func (m *memStore) SetSelection(ctx context.Context, selection *domain.NextSelection) error {
	if m.offline {
		return errors.Network("store unreachable")
	}
	m.selections[selection.OwnerID] = selection
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newEventService(m *memStore) *EventService {
	return NewEventService(m, m, m, m, testLogger())
}

func newBookService(m *memStore) *BookService {
	return NewBookService(m, m, m, testLogger())
}

func addBook(m *memStore, ownerID, bookID, title string) *domain.Book {
	b := &domain.Book{ID: bookID, OwnerID: ownerID, Title: title}
	m.books = append(m.books, b)
	return b
}
