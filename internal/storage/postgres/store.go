package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout = 5 * time.Second

	// Параметры пула подобраны под один инстанс витрины,
	// конфигурацией не управляются.
	poolMaxOpen        = 25
	poolMaxIdle        = 25
	poolConnLifetime   = 30 * time.Minute
	poolConnIdleWindow = 5 * time.Minute
)

// Store держит пул соединений с PostgreSQL. Репозитории товаров,
// заказов и outbox строятся поверх одного Store.
type Store struct {
	db *sql.DB
}

// Open настраивает пул через драйвер pgx и сразу пингует базу:
// нерабочий DSN должен валить сервис на старте, а не на первом заказе.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(poolMaxOpen)
	db.SetMaxIdleConns(poolMaxIdle)
	db.SetConnMaxLifetime(poolConnLifetime)
	db.SetConnMaxIdleTime(poolConnIdleWindow)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db}, nil
}

// DB отдаёт низкоуровневый *sql.DB для репозиториев.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping используется readiness-проверкой ops-сервера.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// EnsureSchema накатывает недостающие миграции. Вызывается на старте,
// когда включён авто-накат схемы.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// Close закрывает пул. Безопасен на nil-получателе.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
