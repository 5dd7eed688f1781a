package service

import (
	"github.com/flashdeck/flashdeck/internal/adapter"
	"github.com/flashdeck/flashdeck/internal/config"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/store"
)

// Services bundles the engine services wired to one database. The same
// constructor builds both roles: on the device side Sync drives the given
// gateway, on the serving side Remote answers it.
type Services struct {
	Ledger    LedgerService
	Changeset ChangesetService
	Resolver  ConflictResolver
	Sync      SyncService
	Remote    RemoteSyncService
}

func NewServices(storages *store.Storages, gateway adapter.RemoteGateway, cfg config.Sync, log *logger.Logger) *Services {
	ledger := NewLedgerValidationService(NewLedgerService(storages, log))
	changes := NewChangesetService(storages, log)
	resolver := NewConflictResolver()

	return &Services{
		Ledger:    ledger,
		Changeset: changes,
		Resolver:  resolver,
		Sync:      NewSyncService(storages, changes, ledger, resolver, gateway, cfg.LeaseTTL, log),
		Remote:    NewRemoteSyncService(storages, changes, ledger, log),
	}
}
