package sync

import (
	"context"
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/errors"
)

type fakeEventStore struct {
	appended []*domain.ReadingEvent
}

func (f *fakeEventStore) AppendEvent(ctx context.Context, event *domain.ReadingEvent) (*domain.ReadingEvent, error) {
	f.appended = append(f.appended, event)
	return event, nil
}

func (f *fakeEventStore) GetEvent(ctx context.Context, ownerID, eventID string) (*domain.ReadingEvent, error) {
	return nil, errors.NotFoundf("event %s not found", eventID)
}

func (f *fakeEventStore) ValidEvents(ctx context.Context, ownerID, bookID string) ([]*domain.ReadingEvent, error) {
	return nil, nil
}

func (f *fakeEventStore) CountEvents(ctx context.Context, ownerID string) (int, error) {
	return len(f.appended), nil
}

type fakeBookWriter struct {
	created []*domain.Book
	updated map[string]domain.BookUpdate
}

func (f *fakeBookWriter) CreateBook(ctx context.Context, book *domain.Book) error {
	f.created = append(f.created, book)
	return nil
}

func (f *fakeBookWriter) GetBook(ctx context.Context, ownerID, bookID string) (*domain.Book, error) {
	return nil, errors.NotFoundf("book %s not found", bookID)
}

func (f *fakeBookWriter) UpdateBook(ctx context.Context, ownerID, bookID string, update domain.BookUpdate) (*domain.Book, error) {
	if f.updated == nil {
		f.updated = make(map[string]domain.BookUpdate)
	}
	f.updated[bookID] = update
	return &domain.Book{ID: bookID, OwnerID: ownerID}, nil
}

func (f *fakeBookWriter) SetMergedInto(ctx context.Context, ownerID, bookID, intoID string) error {
	return nil
}

func (f *fakeBookWriter) ListBooks(ctx context.Context, ownerID string, limit int) ([]*domain.Book, error) {
	return nil, nil
}

func (f *fakeBookWriter) FindBooks(ctx context.Context, ownerID, query string) ([]*domain.Book, error) {
	return nil, nil
}

func (f *fakeBookWriter) CountBooks(ctx context.Context, ownerID string) (int, error) {
	return len(f.created), nil
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestApply_AppendEvent(t *testing.T) {
	events := &fakeEventStore{}
	applier := NewStoreApplier(events, &fakeBookWriter{})

	event := domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventFinished, 100)
	payload := mustMarshal(t, domain.AppendEventPayload{Event: event})

	err := applier.Apply(context.Background(), &domain.OfflineAction{
		ID: "act-1", OwnerID: "owner-1", Kind: domain.ActionAppendEvent, Payload: payload,
	})
	require.NoError(t, err)

	require.Len(t, events.appended, 1)
	// The original idempotency key must survive the queue roundtrip.
	assert.Equal(t, event.ClientEventID, events.appended[0].ClientEventID)
}

func TestApply_CorrectEvent(t *testing.T) {
	events := &fakeEventStore{}
	applier := NewStoreApplier(events, &fakeBookWriter{})

	target := domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventEnded, 40)
	correction := domain.NewCorrection("evt-2", "owner-1", target, 0)
	payload := mustMarshal(t, domain.AppendEventPayload{Event: correction})

	err := applier.Apply(context.Background(), &domain.OfflineAction{
		ID: "act-1", OwnerID: "owner-1", Kind: domain.ActionCorrectEvent, Payload: payload,
	})
	require.NoError(t, err)

	require.Len(t, events.appended, 1)
	assert.Equal(t, "evt-1", events.appended[0].TargetEventID)
}

func TestApply_CreateBook(t *testing.T) {
	books := &fakeBookWriter{}
	applier := NewStoreApplier(&fakeEventStore{}, books)

	payload := mustMarshal(t, domain.CreateBookPayload{Book: &domain.Book{
		ID: "book-1", OwnerID: "owner-1", Title: "紅樓夢",
	}})

	err := applier.Apply(context.Background(), &domain.OfflineAction{
		ID: "act-1", OwnerID: "owner-1", Kind: domain.ActionCreateBook, Payload: payload,
	})
	require.NoError(t, err)

	require.Len(t, books.created, 1)
	assert.Equal(t, "紅樓夢", books.created[0].Title)
}

func TestApply_UpdateBook(t *testing.T) {
	books := &fakeBookWriter{}
	applier := NewStoreApplier(&fakeEventStore{}, books)

	title := "New Title"
	payload := mustMarshal(t, domain.UpdateBookPayload{
		BookID: "book-1",
		Update: domain.BookUpdate{Title: &title},
	})

	err := applier.Apply(context.Background(), &domain.OfflineAction{
		ID: "act-1", OwnerID: "owner-1", Kind: domain.ActionUpdateBook, Payload: payload,
	})
	require.NoError(t, err)

	update, ok := books.updated["book-1"]
	require.True(t, ok)
	require.NotNil(t, update.Title)
	assert.Equal(t, "New Title", *update.Title)
}

func TestApply_MalformedPayload(t *testing.T) {
	applier := NewStoreApplier(&fakeEventStore{}, &fakeBookWriter{})

	err := applier.Apply(context.Background(), &domain.OfflineAction{
		ID: "act-1", OwnerID: "owner-1", Kind: domain.ActionAppendEvent, Payload: []byte(`{not json`),
	})
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestApply_EmptyEventPayload(t *testing.T) {
	applier := NewStoreApplier(&fakeEventStore{}, &fakeBookWriter{})

	err := applier.Apply(context.Background(), &domain.OfflineAction{
		ID: "act-1", OwnerID: "owner-1", Kind: domain.ActionAppendEvent, Payload: []byte(`{}`),
	})
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestApply_UnknownKind(t *testing.T) {
	applier := NewStoreApplier(&fakeEventStore{}, &fakeBookWriter{})

	err := applier.Apply(context.Background(), &domain.OfflineAction{
		ID: "act-1", OwnerID: "owner-1", Kind: "drop_table", Payload: []byte(`{}`),
	})
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}
