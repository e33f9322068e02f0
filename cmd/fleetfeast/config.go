package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/fleetfeast/internal/app"
)

const (
	envConfigFile          = "FLEETFEAST_CONFIG_FILE"
	envLogLevel            = "FLEETFEAST_LOG_LEVEL"
	envGRPCAddr            = "FLEETFEAST_GRPC_ADDR"
	envMetricsAddr         = "FLEETFEAST_METRICS_ADDR"
	envStorageDriver       = "FLEETFEAST_STORAGE_DRIVER"
	envSQLitePath          = "FLEETFEAST_SQLITE_PATH"
	envPostgresDSN         = "FLEETFEAST_POSTGRES_DSN"
	envPostgresAutoMigrate = "FLEETFEAST_POSTGRES_AUTO_MIGRATE"
	envBridgeTimeout       = "FLEETFEAST_BRIDGE_TIMEOUT"
	envWriterQueueSize     = "FLEETFEAST_WRITER_QUEUE_SIZE"
	envWriterTaskTimeout   = "FLEETFEAST_WRITER_TASK_TIMEOUT"
	envBacklogDegradedAt   = "FLEETFEAST_BACKLOG_DEGRADED_AT"
	envKafkaBrokers        = "KAFKA_BROKERS"
	envNotifyTopic         = "FLEETFEAST_NOTIFY_TOPIC"
	envNotifyMaxAttempts   = "FLEETFEAST_NOTIFY_MAX_ATTEMPTS"
	envEnforcePickup       = "FLEETFEAST_ENFORCE_PICKUP_WINDOW"
	envPickupTimezone      = "FLEETFEAST_PICKUP_TIMEZONE"
)

type envLookup func(string) (string, bool)

// readConfigFromEnv строит конфигурацию: файл из FLEETFEAST_CONFIG_FILE (если задан),
// поверх него переменные окружения. Некорректные значения оставляют прежнее значение
// и попадают в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if path, ok := lookupTrimmed(lookup, envConfigFile); ok {
		fromFile, err := app.LoadConfigFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using defaults", envConfigFile, err))
		} else {
			cfg = fromFile
		}
	}

	if v, ok := lookupTrimmed(lookup, envGRPCAddr); ok {
		cfg.GRPCAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envStorageDriver); ok {
		cfg.StorageDriver = strings.ToLower(v)
	}
	if v, ok := lookupTrimmed(lookup, envSQLitePath); ok {
		cfg.SQLitePath = v
	}
	if v, ok := lookupTrimmed(lookup, envPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := lookupTrimmed(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := lookupTrimmed(lookup, envNotifyTopic); ok {
		cfg.NotifyTopic = v
	}
	if v, ok := lookupTrimmed(lookup, envPickupTimezone); ok {
		cfg.PickupTimezone = v
	}

	applyBool(lookup, envPostgresAutoMigrate, &cfg.PostgresAutoMigrate, &warnings)
	applyBool(lookup, envEnforcePickup, &cfg.EnforcePickupWindow, &warnings)

	positive := func(v int) bool { return v > 0 }
	nonNegative := func(v int) bool { return v >= 0 }
	applyInt(lookup, envWriterQueueSize, &cfg.WriterQueueSize, positive, "must be > 0", &warnings)
	applyInt(lookup, envBacklogDegradedAt, &cfg.BacklogDegradedAt, nonNegative, "must be >= 0", &warnings)
	applyInt(lookup, envNotifyMaxAttempts, &cfg.NotifyMaxAttempts, positive, "must be > 0", &warnings)

	positiveDuration := func(v time.Duration) bool { return v > 0 }
	applyDuration(lookup, envBridgeTimeout, &cfg.BridgeTimeout, positiveDuration, "must be > 0", &warnings)
	applyDuration(lookup, envWriterTaskTimeout, &cfg.WriterTaskTimeout, func(v time.Duration) bool { return v >= 0 }, "must be >= 0", &warnings)

	return cfg, warnings
}

func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func applyBool(lookup envLookup, key string, target *bool, warnings *[]string) {
	raw, ok := lookupTrimmed(lookup, key)
	if !ok {
		return
	}
	value, err := parseBool(raw)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %v, keeping %t", key, err, *target))
		return
	}
	*target = value
}

func applyInt(lookup envLookup, key string, target *int, valid func(int) bool, rule string, warnings *[]string) {
	raw, ok := lookupTrimmed(lookup, key)
	if !ok {
		return
	}
	value, err := parseInt(raw, valid, rule)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %v, keeping %d", key, err, *target))
		return
	}
	*target = value
}

func applyDuration(lookup envLookup, key string, target *time.Duration, valid func(time.Duration) bool, rule string, warnings *[]string) {
	raw, ok := lookupTrimmed(lookup, key)
	if !ok {
		return
	}
	value, err := parseDuration(raw, valid, rule)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %v, keeping %s", key, err, *target))
		return
	}
	*target = value
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int %q", raw)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, rule)
	}
	return value, nil
}
