package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/fleetfeast/internal/app"
)

// RootOptions хранит глобальные флаги всех команд.
type RootOptions struct {
	Storage    string
	SQLitePath string
	DSN        string
	Format     string
	Verbose    bool
}

// ValidFormats перечисляет допустимые форматы вывода.
var ValidFormats = []string{"text", "json"}

// NewRootCommand создаёт корневую команду fleetctl.
func NewRootCommand() *cobra.Command {
	defaults := app.DefaultConfig()
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "fleetctl",
		Short:        "FleetFeast admin tool",
		Long:         "Schema migrations, catalog and order listings and writer volume runs for FleetFeast storage.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := log.WarnLevel
			if opts.Verbose {
				level = log.DebugLevel
			}
			log.SetLevel(level)
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", defaults.StorageDriver, "storage driver (memory|sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite-path", defaults.SQLitePath, "sqlite database file")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", os.Getenv("FLEETFEAST_POSTGRES_DSN"), "postgres dsn")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewPlatesCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewVolumeCommand(opts))

	return cmd
}

// config собирает конфигурацию рантайма из глобальных флагов.
// Миграции postgres выполняет только `fleetctl migrate`.
func (o *RootOptions) config() app.Config {
	cfg := app.DefaultConfig()
	cfg.StorageDriver = o.Storage
	cfg.SQLitePath = o.SQLitePath
	cfg.PostgresDSN = o.DSN
	cfg.PostgresAutoMigrate = false
	cfg.KafkaBrokers = ""
	cfg.EnforcePickupWindow = false
	return cfg
}

func (o *RootOptions) openRuntime(ctx context.Context) (*app.Runtime, error) {
	return app.NewRuntime(ctx, o.config(), log.WithField("component", "fleetctl"))
}

// render печатает value как JSON или передаёт управление текстовому выводу.
func (o *RootOptions) render(w io.Writer, value any, text func(io.Writer) error) error {
	if o.Format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	}
	return text(w)
}
