package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/emersion/go-smtp"
)

// Sender delivers an encoded message
type Sender interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// SMTPSender relays through an SMTP server without authentication
type SMTPSender struct {
	addr string
}

// NewSMTPSender creates a sender for host:port
func NewSMTPSender(host string, port int) *SMTPSender {
	return &SMTPSender{addr: net.JoinHostPort(host, strconv.Itoa(port))}
}

// Addr returns the relay address
func (s *SMTPSender) Addr() string {
	return s.addr
}

// Send delivers msg. go-smtp's client has no context support, so ctx is
// only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, nil, from, to, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", s.addr, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them.
// Used when no SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the envelope and message
func (s *LogSender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	s.logger.Info("handoff email (not sent)",
		slog.String("from", from),
		slog.Any("to", to),
		slog.Int("size", len(msg)),
		slog.String("message", string(msg)),
	)
	return nil
}
