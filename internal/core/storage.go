package core

import (
	"context"
	"fmt"
	"time"

	"poms/internal/infra/persistence/file"
	"poms/internal/infra/persistence/memory"
	"poms/internal/infra/persistence/postgres"
	"poms/internal/infra/persistence/sqlite"
)

// DurableStore extends PersistentStore with the lifecycle the service needs
// from a backend.
type DurableStore interface {
	PersistentStore
	Flush(ctx context.Context) error
	Loaded() bool
	LoadError() error
	Close() error
	SetNowFunc(func() time.Time)
}

var (
	_ DurableStore = (*memory.Store)(nil)
	_ DurableStore = (*file.Store)(nil)
	_ DurableStore = (*sqlite.Store)(nil)
	_ DurableStore = (*postgres.Store)(nil)
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageFile     StorageDriver = "file"     // single JSON document
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects and parameterises a backend.
type StorageConfig struct {
	Driver      StorageDriver
	FilePath    string
	SQLitePath  string
	PostgresDSN string
}

// OpenStore constructs the configured backend. The file driver is the
// default.
func OpenStore(ctx context.Context, cfg StorageConfig, rules *RulesEngine, triggers *TriggerEngine) (DurableStore, error) {
	switch cfg.Driver {
	case StorageMemory:
		return memory.NewStore(rules, triggers), nil
	case StorageFile, "":
		return file.NewStore(cfg.FilePath, rules, triggers)
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, rules, triggers)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN, rules, triggers)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}

// Open builds a service over the configured backend with the default rules
// and billing trigger. When the backend held no valid state the sample
// dataset is loaded and written back.
func Open(ctx context.Context, cfg StorageConfig, opts ...Option) (*Service, error) {
	store, err := OpenStore(ctx, cfg, NewDefaultRulesEngine(), NewDefaultTriggerEngine())
	if err != nil {
		return nil, err
	}
	svc := NewService(store, opts...)
	if store.Loaded() {
		return svc, nil
	}
	if loadErr := store.LoadError(); loadErr != nil {
		svc.logger.Warn().Err(loadErr).Msg("stored data unreadable, starting from sample data")
	}
	store.ImportState(SeedSnapshot(svc.clock.Now()))
	if err := store.Flush(ctx); err != nil {
		svc.logger.Error().Err(err).Msg("initial save failed")
	}
	svc.logger.Info().Str("driver", string(cfg.Driver)).Msg("sample data loaded")
	return svc, nil
}
