// Package sqlite реализует встроенное хранилище по умолчанию на mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vladislavdragonenkov/fleetfeast/internal/storage/sqlstore"
)

// MemoryPath открывает базу в памяти процесса.
const MemoryPath = ":memory:"

const defaultMaxOpenConns = 4

// Параметры применяются драйвером к каждому новому соединению пула.
var connParams = []string{
	"_journal_mode=WAL",
	"_synchronous=NORMAL",
	"_busy_timeout=5000",
	"_foreign_keys=on",
}

// Store — SQLite-хранилище с применённой схемой.
type Store struct {
	*sqlstore.Store
	path string
}

// Open открывает (или создаёт) базу по пути и доводит схему до текущей версии.
// Повторный вызов на той же базе безопасен.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Каждое соединение с :memory: открывает отдельную базу, поэтому пул из одного соединения.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{Store: sqlstore.New(db, sqlstore.SQLite), path: path}, nil
}

// Path возвращает путь к файлу базы.
func (s *Store) Path() string {
	return s.path
}

// SchemaVersion возвращает PRAGMA user_version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return userVersion(ctx, s.DB())
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(connParams, "&")
}
