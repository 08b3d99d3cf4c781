package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/readingkg/readingkg-server/internal/domain"
	apperrors "github.com/readingkg/readingkg-server/internal/errors"
)

// EnqueueAction appends an offline action to the durable queue.
func (s *Store) EnqueueAction(ctx context.Context, action *domain.OfflineAction) error {
	if action.EnqueuedAt.IsZero() {
		action.EnqueuedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offline_actions (id, owner_id, kind, payload, enqueued_at, retry_count, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		action.ID, action.OwnerID, string(action.Kind), action.Payload,
		formatTime(action.EnqueuedAt), action.RetryCount, nullString(action.LastError),
	)
	if err != nil {
		return classifyErr(err, "enqueue action")
	}

	s.logger.Debug("enqueued offline action",
		"action_id", action.ID,
		"kind", action.Kind,
	)
	return nil
}

// ListActions returns the owner's queued actions in enqueue (FIFO) order.
func (s *Store) ListActions(ctx context.Context, ownerID string) ([]*domain.OfflineAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, kind, payload, enqueued_at, retry_count, last_error
		FROM offline_actions
		WHERE owner_id = ?
		ORDER BY rowid ASC`, ownerID)
	if err != nil {
		return nil, classifyErr(err, "list actions")
	}
	defer rows.Close()

	var actions []*domain.OfflineAction
	for rows.Next() {
		var a domain.OfflineAction
		var kind, enqueuedAt string
		var lastError sql.NullString
		if err := rows.Scan(&a.ID, &a.OwnerID, &kind, &a.Payload, &enqueuedAt, &a.RetryCount, &lastError); err != nil {
			return nil, classifyErr(err, "scan action")
		}
		a.Kind = domain.ActionKind(kind)
		a.LastError = stringOrEmpty(lastError)
		a.EnqueuedAt, err = parseTime(enqueuedAt)
		if err != nil {
			return nil, classifyErr(err, "parse enqueued_at")
		}
		actions = append(actions, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyErr(err, "iterate actions")
	}
	return actions, nil
}

// RemoveAction deletes a queued action. Removing an already-removed action is
// not an error; replay must tolerate repeats.
func (s *Store) RemoveAction(ctx context.Context, actionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM offline_actions WHERE id = ?`, actionID); err != nil {
		return classifyErr(err, "remove action")
	}
	return nil
}

// UpdateActionRetry records a failed attempt against a queued action.
func (s *Store) UpdateActionRetry(ctx context.Context, actionID string, retryCount int, lastError string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE offline_actions SET retry_count = ?, last_error = ? WHERE id = ?`,
		retryCount, nullString(lastError), actionID)
	if err != nil {
		return classifyErr(err, "update action retry")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return classifyErr(err, "update action retry")
	}
	if affected == 0 {
		return apperrors.NotFoundf("action %s not found", actionID)
	}
	return nil
}

// CountActions returns the owner's pending action count, the number behind
// the offline indicator.
func (s *Store) CountActions(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM offline_actions WHERE owner_id = ?`, ownerID).Scan(&count)
	if err != nil {
		return 0, classifyErr(err, "count actions")
	}
	return count, nil
}
