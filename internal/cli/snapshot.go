package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/welldanyogia/sjajred-backend/internal/inquiry"
)

// NewSnapshotCommand creates the snapshot command group
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import the inquiry collection",
		Long: `Export or import the whole inquiry collection as a JSON array.

Import replaces everything that is stored. Stop the API server first:
it keeps its own copy in memory and would overwrite the import on its next save.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write the stored inquiries to file (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored inquiries with the snapshot in file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, args[0])
		},
	})

	return cmd
}

func runExport(cmd *cobra.Command, opts *RootOptions, path string) error {
	all, err := loadInquiries(cmd, opts)
	if err != nil {
		return err
	}

	data, err := inquiry.EncodeSnapshot(all)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode snapshot", err)
	}

	if path == "-" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return WrapExitError(ExitCommandError, "failed to write snapshot", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %d inquiries to %s\n", len(all), path)
	return nil
}

func runImport(cmd *cobra.Command, opts *RootOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read snapshot", err)
	}
	inquiries, err := inquiry.DecodeSnapshot(data)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid snapshot", err)
	}

	st, log, err := opts.openStorage(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	store := inquiry.Open(ctx, inquiry.NewKVPersister(st.KV), inquiry.WithLogger(log))
	err = store.ReplaceAll(ctx, inquiries)
	status := store.PersistenceStatus()
	store.Close()

	if err != nil {
		return WrapExitError(ExitFailure, "failed to import inquiries", err)
	}
	if status.SaveFailures > 0 {
		return NewExitError(ExitFailure, "failed to save inquiries: "+status.LastError)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]int{"imported": len(inquiries)})
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d inquiries\n", len(inquiries))
	return err
}
