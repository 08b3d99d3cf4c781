package providers

import (
	"github.com/samber/do/v2"

	"github.com/readingkg/readingkg-server/internal/logger"
	"github.com/readingkg/readingkg-server/internal/service"
)

// ProvideEventService provides the reading event service.
func ProvideEventService(i do.Injector) (*service.EventService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	st := storeHandle.Store
	return service.NewEventService(st, st, st, st, log.Logger), nil
}

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	st := storeHandle.Store
	return service.NewBookService(st, st, st, log.Logger), nil
}
