package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Поддерживаемые движки хранения.
const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	StorageDriver       string `yaml:"storage_driver"`
	SQLitePath          string `yaml:"sqlite_path"`
	PostgresDSN         string `yaml:"postgres_dsn"`
	PostgresAutoMigrate bool   `yaml:"postgres_auto_migrate"`

	BridgeTimeout     time.Duration `yaml:"bridge_timeout"`
	WriterQueueSize   int           `yaml:"writer_queue_size"`
	WriterTaskTimeout time.Duration `yaml:"writer_task_timeout"`
	// BacklogDegradedAt — с какого хвоста очереди /healthz отвечает degraded.
	BacklogDegradedAt int `yaml:"backlog_degraded_at"`

	// KafkaBrokers — список брокеров через запятую; при пустом значении уведомления пишутся в лог.
	KafkaBrokers      string `yaml:"kafka_brokers"`
	NotifyTopic       string `yaml:"notify_topic"`
	NotifyMaxAttempts int    `yaml:"notify_max_attempts"`

	EnforcePickupWindow bool   `yaml:"enforce_pickup_window"`
	PickupTimezone      string `yaml:"pickup_timezone"`
}

// DefaultConfig возвращает настройки для локального запуска на SQLite.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverSQLite,
		SQLitePath:          "fleetfeast.db",
		PostgresAutoMigrate: true,
		BridgeTimeout:       10 * time.Second,
		WriterQueueSize:     1024,
		WriterTaskTimeout:   30 * time.Second,
		BacklogDegradedAt:   512,
		NotifyTopic:         "fleetfeast.customer.notifications",
		NotifyMaxAttempts:   3,
		EnforcePickupWindow: true,
		PickupTimezone:      "Europe/Madrid",
	}
}

// LoadConfigFile накладывает YAML-файл на DefaultConfig. Отсутствующие в файле поля
// сохраняют значения по умолчанию.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	return cfg, nil
}

// Validate проверяет согласованность настроек перед запуском.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("sqlite path is required for %s storage", StorageDriverSQLite)
		}
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("postgres dsn is required for %s storage", StorageDriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.BridgeTimeout <= 0 {
		return fmt.Errorf("bridge timeout must be > 0")
	}
	if c.WriterQueueSize <= 0 {
		return fmt.Errorf("writer queue size must be > 0")
	}
	return nil
}

// Brokers разбирает KafkaBrokers, отбрасывая пробелы и пустые элементы.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
