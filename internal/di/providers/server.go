package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/readingkg/readingkg-server/internal/api"
	"github.com/readingkg/readingkg-server/internal/config"
	"github.com/readingkg/readingkg-server/internal/logger"
	"github.com/readingkg/readingkg-server/internal/search"
	"github.com/readingkg/readingkg-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searcher := do.MustInvoke[*search.Orchestrator](i)
	engineHandle := do.MustInvoke[*SyncEngineHandle](i)

	eventService := do.MustInvoke[*service.EventService](i)
	bookService := do.MustInvoke[*service.BookService](i)

	services := &api.Services{
		Events: eventService,
		Books:  bookService,
	}

	handler := api.NewServer(services, searcher, engineHandle.Engine, storeHandle.Store, cfg.Auth, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
