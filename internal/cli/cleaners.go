package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/welldanyogia/sjajred-backend/internal/catalog"
)

// CleanersOptions holds flags for the cleaners command
type CleanersOptions struct {
	*RootOptions
	Search  string
	City    string
	Service string
}

// NewCleanersCommand creates the cleaners command group
func NewCleanersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CleanersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cleaners",
		Short: "Inspect the cleaner catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cleaner profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanersList(cmd, opts)
		},
	}
	list.Flags().StringVar(&opts.Search, "search", "", "name substring")
	list.Flags().StringVar(&opts.City, "city", "", "exact city")
	list.Flags().StringVar(&opts.Service, "service", "", "offered service")
	cmd.AddCommand(list)

	return cmd
}

func runCleanersList(cmd *cobra.Command, opts *CleanersOptions) error {
	filter := catalog.Filter{Search: opts.Search, City: opts.City}
	if opts.Service != "" {
		svc, ok := catalog.ParseService(opts.Service)
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown service %q", opts.Service))
		}
		filter.Service = svc
	}

	st, log, err := opts.openStorage(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	profiles := catalog.Open(context.Background(), st.KV, catalog.WithLogger(log)).List(filter)

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), profiles)
	}

	rows := make([][]string, len(profiles))
	for i, p := range profiles {
		services := make([]string, len(p.Services))
		for j, s := range p.Services {
			services[j] = string(s)
		}
		rows[i] = []string{
			p.ID,
			p.FullName,
			p.City,
			strconv.FormatFloat(p.Rating, 'f', 1, 64),
			strconv.FormatFloat(p.BasePrice, 'f', 2, 64),
			p.Email,
			strings.Join(services, ", "),
		}
	}
	writeTable(cmd.OutOrStdout(), []string{"ID", "Name", "City", "Rating", "Price", "Email", "Services"}, rows)
	return nil
}
