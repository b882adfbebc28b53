package handlers

import (
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/controller/state"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	store     service.Store
	staff     *service.StaffService
	ledgers   *service.LedgerService
	packages  *service.PackageService
	directory *service.DirectoryService
	registry  *state.Registry
	opts      service.Options
	logger    *zap.Logger
}

func NewHandlers(
	store service.Store,
	registry *state.Registry,
	opts service.Options,
	logger *zap.Logger,
) *Handlers {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handlers{
		store:     store,
		staff:     service.NewStaffService(store, logger),
		ledgers:   service.NewLedgerService(store, store, store, logger),
		packages:  service.NewPackageService(store, store, store, store, logger),
		directory: service.NewDirectoryService(store, store, store, logger),
		registry:  registry,
		opts:      opts,
		logger:    logger,
	}
}

func (h *Handlers) now() time.Time {
	return h.opts.Now().In(h.opts.Location)
}
