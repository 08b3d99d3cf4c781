package providers

import (
	"github.com/samber/do/v2"

	"github.com/readingkg/readingkg-server/internal/config"
	"github.com/readingkg/readingkg-server/internal/logger"
	"github.com/readingkg/readingkg-server/internal/sync"
)

// SyncEngineHandle wraps the sync engine with Shutdownable.
type SyncEngineHandle struct {
	*sync.Engine
}

// Shutdown implements do.Shutdownable.
func (h *SyncEngineHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideSyncEngine provides the offline queue replay engine and starts
// its background drain loop.
func ProvideSyncEngine(i do.Injector) (*SyncEngineHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	st := storeHandle.Store
	engine := sync.New(st, sync.NewStoreApplier(st, st), st, log.Logger, sync.Config{
		OwnerID:    cfg.Auth.OwnerID,
		MaxRetries: cfg.Sync.MaxRetries,
		Interval:   cfg.Sync.Interval,
		Backoff: sync.BackoffPolicy{
			Kind: cfg.Sync.Backoff,
			Base: cfg.Sync.BackoffBase,
		},
	})

	engine.Start()

	return &SyncEngineHandle{Engine: engine}, nil
}
