package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kovlou/storefront/internal/domain"
	"github.com/kovlou/storefront/internal/storage/memory"
	"github.com/kovlou/storefront/internal/storage/postgres"
)

// Storage связывает репозитории с выбранным драйвером хранилища.
type Storage struct {
	Products domain.ProductRepository
	Orders   domain.OrderRepository
	Outbox   domain.OutboxRepository

	// Store не nil только для драйвера postgres; используется в readiness probe.
	Store *postgres.Store
}

// Close освобождает ресурсы хранилища.
func (s *Storage) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// initStorage собирает репозитории по cfg.StorageDriver.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*Storage, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("используем in-memory хранилище")
		return &Storage{
			Products: memory.NewProductRepository(),
			Orders:   memory.NewOrderRepository(),
			Outbox:   memory.NewOutboxRepository(),
		}, nil

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("миграции postgres применены")
		}
		logger.Info("используем postgres хранилище")
		return &Storage{
			Products: postgres.NewProductRepository(store),
			Orders:   postgres.NewOrderRepository(store),
			Outbox:   postgres.NewOutboxRepository(store),
			Store:    store,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
