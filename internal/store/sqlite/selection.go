package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/readingkg/readingkg-server/internal/domain"
)

// GetSelection returns the owner's "book selected next" pointer, or a zero
// selection when none has been recorded yet.
func (s *Store) GetSelection(ctx context.Context, ownerID string) (*domain.NextSelection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT owner_id, book_id, updated_at FROM next_selection WHERE owner_id = ?`,
		ownerID)

	var sel domain.NextSelection
	var bookID sql.NullString
	var updatedAt string
	err := row.Scan(&sel.OwnerID, &bookID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NextSelection{OwnerID: ownerID}, nil
	}
	if err != nil {
		return nil, classifyErr(err, "get selection")
	}

	sel.BookID = stringOrEmpty(bookID)
	sel.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, classifyErr(err, "parse selection updated_at")
	}
	return &sel, nil
}

// SetSelection upserts the single-value selection row for the owner.
// An empty BookID clears the selection.
func (s *Store) SetSelection(ctx context.Context, selection *domain.NextSelection) error {
	if selection.UpdatedAt.IsZero() {
		selection.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO next_selection (owner_id, book_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			book_id = excluded.book_id,
			updated_at = excluded.updated_at`,
		selection.OwnerID, nullString(selection.BookID), formatTime(selection.UpdatedAt))
	if err != nil {
		return classifyErr(err, "set selection")
	}
	return nil
}
