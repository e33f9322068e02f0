package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/fleetfeast/internal/app"
	"github.com/vladislavdragonenkov/fleetfeast/internal/storage/postgres"
	"github.com/vladislavdragonenkov/fleetfeast/internal/storage/sqlite"
)

// migrationReport описывает результат `fleetctl migrate`.
type migrationReport struct {
	Driver  string   `json:"driver"`
	Action  string   `json:"action"`
	Version int64    `json:"version"`
	Applied []string `json:"applied,omitempty"`
	Pending []string `json:"pending,omitempty"`
}

// NewMigrateCommand создаёт группу `migrate up|down|status`.
func NewMigrateCommand(root *RootOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage storage schema",
	}
	cmd.PersistentFlags().IntVar(&steps, "steps", 0, "number of migrations (up: 0 = all, down: 0 = 1)")

	for _, action := range []string{"up", "down", "status"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: "Run schema " + action,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				result, err := runMigration(cmd.Context(), root, action, steps)
				if err != nil {
					return err
				}
				return root.render(cmd.OutOrStdout(), result, func(w io.Writer) error {
					return printMigration(w, result)
				})
			},
		})
	}

	return cmd
}

func runMigration(ctx context.Context, root *RootOptions, action string, steps int) (migrationReport, error) {
	if steps < 0 {
		return migrationReport{}, fmt.Errorf("steps must be >= 0")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	result := migrationReport{Driver: root.Storage, Action: action}

	switch root.Storage {
	case app.StorageDriverPostgres:
		if strings.TrimSpace(root.DSN) == "" {
			return result, fmt.Errorf("postgres dsn is required (--dsn or FLEETFEAST_POSTGRES_DSN)")
		}
		store, err := postgres.Open(ctx, root.DSN)
		if err != nil {
			return result, err
		}
		defer store.Close()

		switch action {
		case "up":
			result.Applied, err = store.MigrateUp(ctx, steps)
		case "down":
			result.Applied, err = store.MigrateDown(ctx, steps)
		}
		if err != nil {
			return result, fmt.Errorf("migrate %s: %w", action, err)
		}
		state, err := store.MigrationStatus(ctx)
		if err != nil {
			return result, fmt.Errorf("migration status: %w", err)
		}
		result.Version = state.Version
		result.Pending = state.Pending
		return result, nil

	case app.StorageDriverSQLite:
		// SQLite-схема доводится до текущей версии при открытии; откат не поддерживается.
		if action == "down" {
			return result, fmt.Errorf("migrate down is not supported for %s storage", app.StorageDriverSQLite)
		}
		store, err := sqlite.Open(ctx, root.SQLitePath)
		if err != nil {
			return result, err
		}
		defer store.Close()

		version, err := store.SchemaVersion(ctx)
		if err != nil {
			return result, err
		}
		result.Version = int64(version)
		return result, nil

	default:
		return result, fmt.Errorf("migrations are not supported for %q storage", root.Storage)
	}
}

func printMigration(w io.Writer, result migrationReport) error {
	if _, err := fmt.Fprintf(w, "driver=%s action=%s version=%d\n", result.Driver, result.Action, result.Version); err != nil {
		return err
	}
	for _, name := range result.Applied {
		if _, err := fmt.Fprintf(w, "%s: %s\n", result.Action, name); err != nil {
			return err
		}
	}
	for _, name := range result.Pending {
		if _, err := fmt.Fprintf(w, "pending: %s\n", name); err != nil {
			return err
		}
	}
	return nil
}
