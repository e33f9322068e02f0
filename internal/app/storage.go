package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/storage/memory"
	"github.com/vladislavdragonenkov/fleetfeast/internal/storage/postgres"
	"github.com/vladislavdragonenkov/fleetfeast/internal/storage/sqlite"
)

// OpenStorage открывает движок хранения по cfg.StorageDriver и доводит схему до текущей версии.
// Результатом владеет вызывающий, он же закрывает его через Close.
func OpenStorage(ctx context.Context, cfg Config, logger *log.Entry) (domain.Storage, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	logger = logger.WithField("storage_driver", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.Warn("in-memory storage: data is lost on restart")
		return memory.NewStore(), nil

	case StorageDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		version, err := store.SchemaVersion(ctx)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("read sqlite schema version: %w", err)
		}
		logger.WithFields(log.Fields{
			"path":           store.Path(),
			"schema_version": version,
		}).Info("sqlite storage opened")
		return store, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn is required for %s storage", StorageDriverPostgres)
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate postgres schema: %w", err)
			}
		}
		state, err := store.MigrationStatus(ctx)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("read postgres migration status: %w", err)
		}
		if len(state.Pending) > 0 {
			logger.WithField("pending", state.Pending).Warn("postgres schema has pending migrations")
		}
		logger.WithField("schema_version", state.Version).Info("postgres storage opened")
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
