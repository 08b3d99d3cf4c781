package providers

import (
	"github.com/samber/do/v2"

	"github.com/readingkg/readingkg-server/internal/config"
	"github.com/readingkg/readingkg-server/internal/logger"
	"github.com/readingkg/readingkg-server/internal/lookup"
	"github.com/readingkg/readingkg-server/internal/lookup/googlebooks"
	"github.com/readingkg/readingkg-server/internal/lookup/openlibrary"
	"github.com/readingkg/readingkg-server/internal/search"
)

// Sources bundles the external book sources in query order.
type Sources struct {
	All []lookup.Source
}

// ProvideSources provides the external book lookup clients.
func ProvideSources(i do.Injector) (*Sources, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &Sources{All: []lookup.Source{
		googlebooks.NewClient(log.Logger, cfg.Lookup.GoogleBooksAPIKey),
		openlibrary.NewClient(log.Logger),
	}}, nil
}

// ProvideSearchOrchestrator provides the two-stage search orchestrator.
func ProvideSearchOrchestrator(i do.Injector) (*search.Orchestrator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sources := do.MustInvoke[*Sources](i)

	return search.NewOrchestrator(
		storeHandle.Store,
		sources.All,
		log.Logger,
		cfg.Search.Limit,
		cfg.Search.AutoOnline,
	), nil
}
