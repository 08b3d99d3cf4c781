package sqlite

import (
	"context"
	"database/sql"

	"github.com/readingkg/readingkg-server/internal/domain"
)

// eventColumns is the ordered list of columns selected in event queries.
// Must match the scan order in scanEvent.
const eventColumns = `id, owner_id, book_id, event_type, occurred_at,
	completion, target_event_id, client_event_id, created_at`

// scanEvent scans a sql.Row (or sql.Rows via its Scan method) into a domain.ReadingEvent.
func scanEvent(scanner interface{ Scan(dest ...any) error }) (*domain.ReadingEvent, error) {
	var e domain.ReadingEvent
	var (
		eventType  string
		occurredAt string
		target     sql.NullString
		createdAt  string
	)

	err := scanner.Scan(
		&e.ID,
		&e.OwnerID,
		&e.BookID,
		&eventType,
		&occurredAt,
		&e.Completion,
		&target,
		&e.ClientEventID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.EventType = domain.EventType(eventType)
	e.TargetEventID = stringOrEmpty(target)

	e.OccurredAt, err = parseTime(occurredAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// AppendEvent inserts a reading event. Duplicate submissions sharing the same
// (owner, client_event_id) collapse onto the stored row: the insert is a
// no-op and the original row comes back, so retries never double-record.
func (s *Store) AppendEvent(ctx context.Context, event *domain.ReadingEvent) (*domain.ReadingEvent, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reading_events (id, owner_id, book_id, event_type,
			occurred_at, completion, target_event_id, client_event_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, client_event_id) DO NOTHING`,
		event.ID, event.OwnerID, event.BookID, string(event.EventType),
		formatTime(event.OccurredAt), event.Completion,
		nullString(event.TargetEventID), event.ClientEventID,
		formatTime(event.CreatedAt),
	)
	if err != nil {
		return nil, classifyErr(err, "append event")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("duplicate event collapsed",
			"owner_id", event.OwnerID,
			"client_event_id", event.ClientEventID,
		)
	}

	// Return the canonical stored row, whether ours or a prior duplicate's.
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM reading_events
		 WHERE owner_id = ? AND client_event_id = ?`,
		event.OwnerID, event.ClientEventID)

	stored, err := scanEvent(row)
	if err != nil {
		return nil, classifyErr(err, "load appended event")
	}
	return stored, nil
}

// GetEvent returns an event by ID, scoped to the owner.
func (s *Store) GetEvent(ctx context.Context, ownerID, eventID string) (*domain.ReadingEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM reading_events WHERE id = ? AND owner_id = ?`,
		eventID, ownerID)

	event, err := scanEvent(row)
	if err != nil {
		return nil, classifyErr(err, "event "+eventID+" not found")
	}
	return event, nil
}

// ValidEvents returns valid events (not corrections, not corrected) for the
// owner, optionally narrowed to one book, occurred_at descending. It reads
// the valid_reading_events view so the cancellation rule lives in one place.
func (s *Store) ValidEvents(ctx context.Context, ownerID, bookID string) ([]*domain.ReadingEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM valid_reading_events WHERE owner_id = ?`
	args := []any{ownerID}
	if bookID != "" {
		query += ` AND book_id = ?`
		args = append(args, bookID)
	}
	query += ` ORDER BY occurred_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyErr(err, "query valid events")
	}
	defer rows.Close()

	var events []*domain.ReadingEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, classifyErr(err, "scan event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyErr(err, "iterate events")
	}
	return events, nil
}

// CountEvents counts all stored event rows for the owner, corrections and
// corrected targets included. History is never deleted.
func (s *Store) CountEvents(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reading_events WHERE owner_id = ?`, ownerID).Scan(&count)
	if err != nil {
		return 0, classifyErr(err, "count events")
	}
	return count, nil
}
