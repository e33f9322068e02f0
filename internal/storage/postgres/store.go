package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vladislavdragonenkov/fleetfeast/internal/storage/sqlstore"
)

const (
	defaultConnTimeout     = 5 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Store оборачивает SQL-подключение к PostgreSQL и реализует domain.Storage.
type Store struct {
	*sqlstore.Store
}

// Open открывает подключение к PostgreSQL и проверяет доступность базы.
// Схема не применяется: для этого есть MigrateUp / EnsureSchema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB оборачивает уже открытое подключение (используется в тестах с sqlmock).
func NewWithDB(db *sql.DB) *Store {
	return &Store{Store: sqlstore.New(db, sqlstore.Postgres)}
}

// DB возвращает raw SQL DB, когда нужен низкоуровневый доступ.
func (s *Store) DB() *sql.DB {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.DB()
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s.DB() == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.DB().PingContext(pingCtx)
}

// EnsureSchema применяет все up-миграции.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.MigrateUp(ctx, 0)
	return err
}

// Close закрывает подключение к БД.
func (s *Store) Close() error {
	if s.DB() == nil {
		return nil
	}
	return s.DB().Close()
}
