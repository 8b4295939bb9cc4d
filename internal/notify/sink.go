package notify

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
)

// Sink limits
const (
	DefaultSinkCapacity   = 100
	DefaultMaxMessageSize = 1024 * 1024 // 1 MB
	DefaultMaxRecipients  = 10
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
)

// Sink is a development mail catcher. It accepts any message over SMTP,
// parses it and keeps the most recent ones in memory.
type Sink struct {
	mu       sync.Mutex
	messages []ParsedEmail
	capacity int
	logger   *slog.Logger
}

// NewSink creates a Sink keeping up to capacity messages
func NewSink(capacity int, logger *slog.Logger) *Sink {
	if capacity <= 0 {
		capacity = DefaultSinkCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{capacity: capacity, logger: logger}
}

// NewSession implements smtp.Backend
func (k *Sink) NewSession(c *smtp.Conn) (smtp.Session, error) {
	k.logger.Debug("new SMTP connection", slog.String("remote_addr", c.Conn().RemoteAddr().String()))
	return &sinkSession{sink: k}, nil
}

// Messages returns a copy of the captured messages, oldest first
func (k *Sink) Messages() []ParsedEmail {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]ParsedEmail(nil), k.messages...)
}

func (k *Sink) capture(msg ParsedEmail) {
	k.mu.Lock()
	k.messages = append(k.messages, msg)
	if over := len(k.messages) - k.capacity; over > 0 {
		k.messages = append([]ParsedEmail(nil), k.messages[over:]...)
	}
	k.mu.Unlock()

	k.logger.Info("email captured",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("inquiry_id", msg.InquiryID),
	)
}

// SinkServerConfig holds the listener settings for the sink
type SinkServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// NewSinkServer wraps sink in an SMTP server with bounded limits
func NewSinkServer(sink *Sink, cfg SinkServerConfig) *smtp.Server {
	s := smtp.NewServer(sink)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain
	if s.Domain == "" {
		s.Domain = "localhost"
	}

	s.MaxMessageBytes = cfg.MaxMessageSize
	if s.MaxMessageBytes <= 0 {
		s.MaxMessageBytes = DefaultMaxMessageSize
	}
	s.MaxRecipients = cfg.MaxRecipients
	if s.MaxRecipients <= 0 {
		s.MaxRecipients = DefaultMaxRecipients
	}
	s.ReadTimeout = cfg.ReadTimeout
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	s.WriteTimeout = cfg.WriteTimeout
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}

	// Bound line length against oversized input
	s.MaxLineLength = DefaultMaxLineLength

	return s
}

// sinkSession implements smtp.Session
type sinkSession struct {
	sink       *Sink
	from       string
	recipients []string
}

func (s *sinkSession) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *sinkSession) Rcpt(to string, opts *smtp.RcptOptions) error {
	address := strings.TrimSpace(strings.Trim(to, "<>"))
	if !strings.Contains(address, "@") {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "Invalid recipient address",
		}
	}
	s.recipients = append(s.recipients, address)
	return nil
}

func (s *sinkSession) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	parsed, err := ParseEmail(r)
	if err != nil {
		s.sink.logger.Error("failed to parse email", slog.Any("error", err))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	// Envelope sender wins when the header is missing
	if parsed.SenderEmail == "" {
		parsed.SenderEmail = s.from
	}
	s.sink.capture(*parsed)
	return nil
}

func (s *sinkSession) Reset() {
	s.from = ""
	s.recipients = nil
}

func (s *sinkSession) Logout() error {
	return nil
}
