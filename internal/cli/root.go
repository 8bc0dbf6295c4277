// Package cli implements posctl, the operator command line.
package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"go-inventory-pos/internal/config"
	"go-inventory-pos/pkg/database"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
	Driver string // overrides DB_DRIVER
	DSN    string // overrides DATABASE_URL / SQLITE_PATH
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the posctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "posctl",
		Short: "Operate the inventory POS store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (postgres|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "database DSN or sqlite path")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewRevokeCommand(opts))

	return cmd
}

// env is what a command runs against.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	log zerolog.Logger
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// open loads config, applies flag overrides and connects. Logs go to stderr
// so stdout stays machine readable.
func open(opts *RootOptions, stderr io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Driver != "" {
		cfg.DBDriver = opts.Driver
	}
	dbOpts := cfg.DatabaseOptions()
	if opts.DSN != "" {
		dbOpts.DSN = opts.DSN
	}

	log := config.NewLogger(cfg, stderr)
	db, err := database.Connect(dbOpts, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, log: log}, nil
}
