// Package cli implements sjajctl, the operator tool for inspecting inboxes
// and moving inquiry snapshots between storage backends.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/welldanyogia/sjajred-backend/internal/app"
	"github.com/welldanyogia/sjajred-backend/internal/config"
	"github.com/welldanyogia/sjajred-backend/internal/logger"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Format      string // "json" | "text"
	Storage     string
	DataDir     string
	DatabaseURL string
}

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the sjajctl root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sjajctl",
		Short: "Sjaj&Red operator tool",
		Long: `Inspect inboxes, list cleaners and export or import inquiry snapshots.

Storage is configured the same way as the API server (DATABASE_URL,
STORAGE_BACKEND, DATA_DIR or a .env file); the flags below override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "storage backend (database|file)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "snapshot directory for the file backend")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "database URL for the database backend")

	cmd.AddCommand(NewInboxCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewCleanersCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStorage loads server configuration, applies flag overrides and opens the backend
func (o *RootOptions) openStorage(cmd *cobra.Command) (*app.Storage, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.Storage != "" {
		cfg.StorageBackend = strings.ToLower(o.Storage)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	log := logger.New("warn", cmd.ErrOrStderr())
	st, err := app.OpenStorage(cfg, log)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	return st, log, nil
}
