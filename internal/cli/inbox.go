package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/welldanyogia/sjajred-backend/internal/inquiry"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// InboxOptions holds flags for the inbox commands
type InboxOptions struct {
	*RootOptions
	Email string
	ID    string
	Order string
}

func (o *InboxOptions) user() *models.User {
	return &models.User{ID: o.ID, Email: o.Email}
}

// NewInboxCommand creates the inbox command group
func NewInboxCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InboxOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show a user's received or sent inquiries",
	}
	cmd.PersistentFlags().StringVar(&opts.Email, "email", "", "recipient email (received, unread)")
	cmd.PersistentFlags().StringVar(&opts.ID, "id", "", "sender user id (sent)")
	cmd.PersistentFlags().StringVar(&opts.Order, "order", "newest", "list order (newest|oldest)")

	cmd.AddCommand(&cobra.Command{
		Use:   "received",
		Short: "List inquiries addressed to --email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Email == "" {
				return NewExitError(ExitCommandError, "--email is required")
			}
			return runInboxList(cmd, opts, inquiry.Received)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "sent",
		Short: "List inquiries sent by --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ID == "" {
				return NewExitError(ExitCommandError, "--id is required")
			}
			return runInboxList(cmd, opts, inquiry.Sent)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unread",
		Short: "Count unread inquiries addressed to --email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Email == "" {
				return NewExitError(ExitCommandError, "--email is required")
			}
			return runUnread(cmd, opts)
		},
	})

	return cmd
}

func loadInquiries(cmd *cobra.Command, opts *RootOptions) ([]models.Inquiry, error) {
	st, _, err := opts.openStorage(cmd)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	all, err := inquiry.NewKVPersister(st.KV).Load(context.Background())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load inquiries", err)
	}
	return all, nil
}

func runInboxList(cmd *cobra.Command, opts *InboxOptions, partition func([]models.Inquiry, *models.User) []models.Inquiry) error {
	if opts.Order != "newest" && opts.Order != "oldest" {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid order %q: must be newest or oldest", opts.Order))
	}

	all, err := loadInquiries(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	items := partition(all, opts.user())
	if opts.Order == "newest" {
		items = inquiry.NewestFirst(items)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), items)
	}

	rows := make([][]string, len(items))
	for i, inq := range items {
		item := inquiry.ToListItem(inq)
		read := "no"
		if item.IsRead {
			read = "yes"
		}
		rows[i] = []string{item.ID, item.Date, item.SenderName, item.CleanerName, read, strconv.Itoa(item.ReplyCount), item.Snippet}
	}
	writeTable(cmd.OutOrStdout(), []string{"ID", "Date", "From", "To", "Read", "Replies", "Message"}, rows)
	return nil
}

func runUnread(cmd *cobra.Command, opts *InboxOptions) error {
	all, err := loadInquiries(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	count := inquiry.UnreadCount(all, opts.user())
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]int{"count": count})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), count)
	return err
}
