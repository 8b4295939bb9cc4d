package inquiry

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// Handoff is notified after an inquiry has been stored. It must not block
// and its failures never affect the stored inquiry.
type Handoff interface {
	InquiryOpened(ctx context.Context, inq models.Inquiry)
}

// Engine validates thread operations and applies them to a Store
type Engine struct {
	store    *Store
	ids      IDGenerator
	now      func() time.Time
	location *time.Location
	handoff  Handoff
	logger   *slog.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithIDGenerator replaces the UUIDv7 generator
func WithIDGenerator(ids IDGenerator) EngineOption {
	return func(e *Engine) { e.ids = ids }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone dates are rendered in
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) { e.location = loc }
}

// WithHandoff registers the new-inquiry notifier
func WithHandoff(h Handoff) EngineOption {
	return func(e *Engine) { e.handoff = h }
}

// WithEngineLogger sets the engine logger
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an Engine over store
func NewEngine(store *Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:  store,
		ids:    UUIDGenerator{},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store
func (e *Engine) Store() *Store {
	return e.store
}

func (e *Engine) timestamp() string {
	return FormatDate(e.now(), e.location)
}

// OpenInquiry creates a new unread inquiry from sender to cleaner
func (e *Engine) OpenInquiry(ctx context.Context, sender *models.User, cleaner models.CleanerRef, message string) (*models.Inquiry, error) {
	if err := validateOpen(sender, cleaner, message); err != nil {
		return nil, err
	}

	inq := models.Inquiry{
		ID:           e.ids.NewID(),
		SenderID:     sender.ID,
		SenderName:   sender.FullName,
		SenderEmail:  sender.Email,
		CleanerID:    cleaner.ID,
		CleanerName:  cleaner.Name,
		CleanerEmail: cleaner.Email,
		Message:      message,
		Date:         e.timestamp(),
		IsRead:       false,
		Replies:      []models.MessageReply{},
	}

	if err := e.store.Create(ctx, inq); err != nil {
		return nil, err
	}

	e.logger.Info("inquiry opened",
		slog.String("inquiry_id", inq.ID),
		slog.String("sender_id", inq.SenderID),
		slog.String("cleaner_id", inq.CleanerID),
	)

	if e.handoff != nil {
		e.handoff.InquiryOpened(ctx, inq.Clone())
	}
	return &inq, nil
}

func validateOpen(sender *models.User, cleaner models.CleanerRef, message string) error {
	switch {
	case sender == nil:
		return apperrors.NewValidationError("sender", "an identity is required to send an inquiry")
	case strings.TrimSpace(sender.ID) == "":
		return apperrors.NewValidationError("sender.id", "must not be empty")
	case strings.TrimSpace(sender.FullName) == "":
		return apperrors.NewValidationError("sender.full_name", "must not be empty")
	case strings.TrimSpace(sender.Email) == "":
		return apperrors.NewValidationError("sender.email", "must not be empty")
	case strings.TrimSpace(cleaner.ID) == "":
		return apperrors.NewValidationError("cleaner_id", "must not be empty")
	case strings.TrimSpace(cleaner.Name) == "":
		return apperrors.NewValidationError("cleaner_name", "must not be empty")
	case strings.TrimSpace(cleaner.Email) == "":
		return apperrors.NewValidationError("cleaner_email", "must not be empty")
	case strings.TrimSpace(message) == "":
		return apperrors.NewValidationError("message", "must not be empty")
	}
	return nil
}

// MarkRead sets the inquiry's read flag. A missing id is a no-op.
func (e *Engine) MarkRead(ctx context.Context, id string) error {
	found, err := e.store.SetRead(ctx, id, true)
	if err != nil {
		return err
	}
	if !found {
		e.logger.Debug("mark read on missing inquiry", slog.String("inquiry_id", id))
	}
	return nil
}

// Reply appends a reply and resets the inquiry to unread, whoever the author is.
// It returns nil, nil when the inquiry does not exist.
func (e *Engine) Reply(ctx context.Context, id string, author *models.User, text string) (*models.MessageReply, error) {
	switch {
	case author == nil:
		return nil, apperrors.NewValidationError("author", "an identity is required to reply")
	case strings.TrimSpace(author.ID) == "":
		return nil, apperrors.NewValidationError("author.id", "must not be empty")
	case strings.TrimSpace(author.FullName) == "":
		return nil, apperrors.NewValidationError("author.full_name", "must not be empty")
	case strings.TrimSpace(text) == "":
		return nil, apperrors.NewValidationError("text", "must not be empty")
	}

	reply := models.MessageReply{
		ID:         e.ids.NewID(),
		SenderID:   author.ID,
		SenderName: author.FullName,
		Text:       text,
		Date:       e.timestamp(),
	}

	found, err := e.store.AppendReply(ctx, id, reply)
	if err != nil {
		return nil, err
	}
	if !found {
		e.logger.Debug("reply to missing inquiry", slog.String("inquiry_id", id))
		return nil, nil
	}

	e.logger.Info("inquiry reply added",
		slog.String("inquiry_id", id),
		slog.String("reply_id", reply.ID),
		slog.String("author_id", author.ID),
	)
	return &reply, nil
}

// DeleteInquiry removes the inquiry permanently. A missing id is a no-op.
func (e *Engine) DeleteInquiry(ctx context.Context, id string) error {
	found, err := e.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if found {
		e.logger.Info("inquiry deleted", slog.String("inquiry_id", id))
	}
	return nil
}

// GetInquiry returns one inquiry or ErrInquiryNotFound
func (e *Engine) GetInquiry(id string) (*models.Inquiry, error) {
	inq, ok := e.store.Get(id)
	if !ok {
		return nil, apperrors.ErrInquiryNotFound
	}
	return &inq, nil
}

// ListReceived returns inquiries addressed to user, oldest first
func (e *Engine) ListReceived(user *models.User) []models.Inquiry {
	return Received(e.store.All(), user)
}

// ListSent returns inquiries created by user, oldest first
func (e *Engine) ListSent(user *models.User) []models.Inquiry {
	return Sent(e.store.All(), user)
}

// UnreadCount returns the number of unread inquiries addressed to user
func (e *Engine) UnreadCount(user *models.User) int {
	return UnreadCount(e.store.All(), user)
}
