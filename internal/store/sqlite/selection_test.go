package sqlite

import (
	"context"
	"testing"

	"github.com/readingkg/readingkg-server/internal/domain"
)

func TestSelection_EmptyByDefault(t *testing.T) {
	s := newTestStore(t)

	sel, err := s.GetSelection(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("GetSelection: %v", err)
	}
	if sel.BookID != "" {
		t.Errorf("BookID: got %q, want empty", sel.BookID)
	}
	if sel.OwnerID != "owner-1" {
		t.Errorf("OwnerID: got %q, want owner-1", sel.OwnerID)
	}
}

func TestSelection_SetAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Next Up")

	err := s.SetSelection(ctx, &domain.NextSelection{OwnerID: "owner-1", BookID: "book-1"})
	if err != nil {
		t.Fatalf("SetSelection: %v", err)
	}

	sel, err := s.GetSelection(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetSelection: %v", err)
	}
	if sel.BookID != "book-1" {
		t.Errorf("BookID: got %q, want book-1", sel.BookID)
	}
	if sel.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestSelection_OverwriteReplacesPrevious(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "First")
	insertTestBook(t, s, "owner-1", "book-2", "Second")

	for _, bookID := range []string{"book-1", "book-2"} {
		err := s.SetSelection(ctx, &domain.NextSelection{OwnerID: "owner-1", BookID: bookID})
		if err != nil {
			t.Fatalf("SetSelection(%s): %v", bookID, err)
		}
	}

	sel, err := s.GetSelection(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetSelection: %v", err)
	}
	// Single-value semantics: only the latest selection survives.
	if sel.BookID != "book-2" {
		t.Errorf("BookID: got %q, want book-2", sel.BookID)
	}
}

func TestSelection_Clear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "owner-1", "book-1", "Next Up")

	if err := s.SetSelection(ctx, &domain.NextSelection{OwnerID: "owner-1", BookID: "book-1"}); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	if err := s.SetSelection(ctx, &domain.NextSelection{OwnerID: "owner-1"}); err != nil {
		t.Fatalf("clear selection: %v", err)
	}

	sel, err := s.GetSelection(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetSelection: %v", err)
	}
	if sel.BookID != "" {
		t.Errorf("BookID after clear: got %q, want empty", sel.BookID)
	}
}
