package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/readingkg/readingkg-server/internal/domain"
	apperrors "github.com/readingkg/readingkg-server/internal/errors"
)

func appendTestEvent(t *testing.T, s *Store, e *domain.ReadingEvent) *domain.ReadingEvent {
	t.Helper()
	stored, err := s.AppendEvent(context.Background(), e)
	if err != nil {
		t.Fatalf("AppendEvent(%s): %v", e.ID, err)
	}
	return stored
}

func TestAppendAndGetEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Test Book")

	event := domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventFinished, 100)
	stored := appendTestEvent(t, s, event)

	got, err := s.GetEvent(ctx, "owner-1", "evt-1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}

	if got.ID != stored.ID {
		t.Errorf("ID: got %q, want %q", got.ID, stored.ID)
	}
	if got.BookID != "book-1" {
		t.Errorf("BookID: got %q, want book-1", got.BookID)
	}
	if got.EventType != domain.EventFinished {
		t.Errorf("EventType: got %q, want finished", got.EventType)
	}
	if got.Completion != 100 {
		t.Errorf("Completion: got %d, want 100", got.Completion)
	}
	if got.ClientEventID != event.ClientEventID {
		t.Errorf("ClientEventID: got %q, want %q", got.ClientEventID, event.ClientEventID)
	}
	if got.OccurredAt.Unix() != event.OccurredAt.Unix() {
		t.Errorf("OccurredAt: got %v, want %v", got.OccurredAt, event.OccurredAt)
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetEvent(context.Background(), "owner-1", "nonexistent")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", apperrors.CodeOf(err))
	}
}

func TestGetEvent_OwnerScoped(t *testing.T) {
	s := newTestStore(t)

	insertTestBook(t, s, "owner-1", "book-1", "Mine")
	appendTestEvent(t, s, domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventFinished, 100))

	// Another owner must not see the event.
	_, err := s.GetEvent(context.Background(), "owner-2", "evt-1")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND for foreign owner, got %v", err)
	}
}

func TestAppendEvent_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Test Book")

	event := domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventFinished, 100)
	first := appendTestEvent(t, s, event)

	// Retry with the same client_event_id but a different row ID, as a
	// replayed offline action would.
	retry := *event
	retry.ID = "evt-2"
	second, err := s.AppendEvent(ctx, &retry)
	if err != nil {
		t.Fatalf("retried AppendEvent: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("retry returned row %q, want original %q", second.ID, first.ID)
	}

	count, err := s.CountEvents(ctx, "owner-1")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestAppendEvent_InvalidRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Test Book")

	event := domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventFinished, 50)
	_, err := s.AppendEvent(ctx, event)
	if apperrors.CodeOf(err) != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION, got %v", err)
	}
}

func TestValidEvents_Ordering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Test Book")

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"evt-1", "evt-2", "evt-3"} {
		e := domain.NewReadingEvent(id, "owner-1", "book-1", domain.EventEnded, 10*i)
		e.OccurredAt = base.Add(time.Duration(i) * time.Minute)
		appendTestEvent(t, s, e)
	}

	events, err := s.ValidEvents(ctx, "owner-1", "")
	if err != nil {
		t.Fatalf("ValidEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	// Most recent first.
	want := []string{"evt-3", "evt-2", "evt-1"}
	for i, e := range events {
		if e.ID != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, e.ID, want[i])
		}
	}
}

func TestValidEvents_CorrectionExcludesTarget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Test Book")

	target := appendTestEvent(t, s,
		domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventEnded, 40))
	appendTestEvent(t, s, domain.NewCorrection("evt-2", "owner-1", target, 0))

	events, err := s.ValidEvents(ctx, "owner-1", "")
	if err != nil {
		t.Fatalf("ValidEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d valid events, want 0", len(events))
	}

	// The corrected row is still in the store: history is never deleted.
	count, err := s.CountEvents(ctx, "owner-1")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 2 {
		t.Errorf("row count = %d, want 2", count)
	}
}

func TestValidEvents_DoubleCorrectionSingleCancellation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Test Book")

	keep := appendTestEvent(t, s,
		domain.NewReadingEvent("evt-keep", "owner-1", "book-1", domain.EventFinished, 100))
	target := appendTestEvent(t, s,
		domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventEnded, 40))
	appendTestEvent(t, s, domain.NewCorrection("evt-c1", "owner-1", target, 0))
	appendTestEvent(t, s, domain.NewCorrection("evt-c2", "owner-1", target, 0))

	events, err := s.ValidEvents(ctx, "owner-1", "")
	if err != nil {
		t.Fatalf("ValidEvents: %v", err)
	}
	// Exactly one cancellation: the untargeted event survives once.
	if len(events) != 1 {
		t.Fatalf("got %d valid events, want 1", len(events))
	}
	if events[0].ID != keep.ID {
		t.Errorf("surviving event = %s, want %s", events[0].ID, keep.ID)
	}
}

func TestValidEvents_ScenarioFinishedThenCorrectedEnded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-B", "Book B")

	t1 := time.Now().UTC().Add(-2 * time.Hour)
	finished := domain.NewReadingEvent("evt-f", "owner-1", "book-B", domain.EventFinished, 100)
	finished.OccurredAt = t1
	appendTestEvent(t, s, finished)

	ended := domain.NewReadingEvent("evt-e", "owner-1", "book-B", domain.EventEnded, 40)
	ended.OccurredAt = t1.Add(time.Hour)
	stored := appendTestEvent(t, s, ended)

	appendTestEvent(t, s, domain.NewCorrection("evt-c", "owner-1", stored, 0))

	events, err := s.ValidEvents(ctx, "owner-1", "book-B")
	if err != nil {
		t.Fatalf("ValidEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d valid events, want 1", len(events))
	}
	if events[0].ID != "evt-f" {
		t.Errorf("surviving event = %s, want evt-f", events[0].ID)
	}
}

func TestValidEvents_BookFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "One")
	insertTestBook(t, s, "owner-1", "book-2", "Two")

	appendTestEvent(t, s, domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventFinished, 100))
	appendTestEvent(t, s, domain.NewReadingEvent("evt-2", "owner-1", "book-2", domain.EventFinished, 100))

	events, err := s.ValidEvents(ctx, "owner-1", "book-2")
	if err != nil {
		t.Fatalf("ValidEvents: %v", err)
	}
	if len(events) != 1 || events[0].ID != "evt-2" {
		t.Errorf("book filter returned %v", events)
	}
}

func TestValidEvents_OwnerIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Mine")
	appendTestEvent(t, s, domain.NewReadingEvent("evt-1", "owner-1", "book-1", domain.EventFinished, 100))

	events, err := s.ValidEvents(ctx, "owner-2", "")
	if err != nil {
		t.Fatalf("ValidEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("owner-2 sees %d events, want 0", len(events))
	}
}
