// Package service implements the application operations over the store
// interfaces. Services accept interfaces and return domain structs; mutations
// that fail on connectivity are buffered as offline actions for the sync
// engine to replay.
package service

import (
	"context"
	"encoding/json/v2"
	"log/slog"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/id"
	"github.com/readingkg/readingkg-server/internal/store"
	"github.com/readingkg/readingkg-server/internal/validation"
)

// validate is a shared validator instance for request validation.
var validate = validation.New()

// enqueueOffline buffers a failed mutation for the sync engine. Returns false
// when even the local queue write failed; the original failure then surfaces.
func enqueueOffline(ctx context.Context, queue store.QueueStore, logger *slog.Logger,
	ownerID string, kind domain.ActionKind, payload any) bool {
	if queue == nil {
		return false
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Error("marshal offline payload failed", "kind", kind, "error", err)
		return false
	}

	action := &domain.OfflineAction{
		ID:      id.MustGenerate("act"),
		OwnerID: ownerID,
		Kind:    kind,
		Payload: raw,
	}
	if err := queue.EnqueueAction(ctx, action); err != nil {
		logger.Error("enqueue offline action failed", "kind", kind, "error", err)
		return false
	}

	logger.Info("mutation queued for replay",
		"action_id", action.ID,
		"kind", kind,
	)
	return true
}
