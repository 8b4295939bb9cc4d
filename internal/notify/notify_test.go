package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleInquiry() models.Inquiry {
	return models.Inquiry{
		ID:           "inq-1",
		SenderID:     "u-ana",
		SenderName:   "Ana Kovač",
		SenderEmail:  "ana@example.com",
		CleanerID:    "1",
		CleanerName:  "Ivana Horvat",
		CleanerEmail: "ivana.h@example.com",
		Message:      "Need cleaning Tuesday",
		Date:         "1. 6. 2024. 12:00:00",
		Replies:      []models.MessageReply{},
	}
}

// recordingSender captures messages in memory
type recordingSender struct {
	mu   sync.Mutex
	to   [][]string
	msgs [][]byte
	err  error
}

func (r *recordingSender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.to = append(r.to, to)
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

// blockingSender holds every send until released
type blockingSender struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	b.started <- struct{}{}
	<-b.release
	return nil
}

// startSink serves a Sink on a loopback port
func startSink(t *testing.T) (*Sink, *SMTPSender) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	sink := NewSink(10, discardLogger())
	server := NewSinkServer(sink, SinkServerConfig{Domain: "localhost"})
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = server.Close() })

	addr := ln.Addr().(*net.TCPAddr)
	return sink, NewSMTPSender("127.0.0.1", addr.Port)
}

// ==================== Compose Tests ====================

func TestCompose_HandoffFormat(t *testing.T) {
	// Arrange
	inq := sampleInquiry()

	// Act
	raw, err := Compose(inq, "noreply@sjajred.hr", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	parsed, err := ParseEmail(bytes.NewReader(raw))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Upit za čišćenje: Ivana Horvat", parsed.Subject)
	assert.Equal(t, "noreply@sjajred.hr", parsed.SenderEmail)
	assert.Equal(t, DefaultFromName, parsed.SenderName)
	assert.Contains(t, parsed.To, "ivana.h@example.com")
	assert.Contains(t, parsed.ReplyTo, "ana@example.com")
	assert.Equal(t, "inq-1", parsed.InquiryID)
	assert.Contains(t, parsed.BodyText, "Od: Ana Kovač")
	assert.Contains(t, parsed.BodyText, "E-mail klijenta: ana@example.com")
	assert.Contains(t, parsed.BodyText, "Poruka:")
	assert.Contains(t, parsed.BodyText, "Need cleaning Tuesday")
}

func TestBody(t *testing.T) {
	assert.Equal(t,
		"Od: Ana Kovač\nE-mail klijenta: ana@example.com\n\nPoruka:\nNeed cleaning Tuesday",
		Body(sampleInquiry()))
}

func TestCompose_MissingFrom(t *testing.T) {
	_, err := Compose(sampleInquiry(), "", time.Now())

	assert.Error(t, err)
}

// ==================== Parser Tests ====================

func TestParseEmail_HeaderFallbacks(t *testing.T) {
	raw := "From: Ana Kovac <ana@example.com>\r\n" +
		"To: ivana.h@example.com\r\n" +
		"Subject: Pozdrav\r\n" +
		"\r\n" +
		"Dobar dan,\r\nimate li termin?\r\n"

	parsed, err := ParseEmail(strings.NewReader(raw))

	require.NoError(t, err)
	assert.Equal(t, "Ana Kovac", parsed.SenderName)
	assert.Equal(t, "ana@example.com", parsed.SenderEmail)
	assert.Empty(t, parsed.InquiryID)
	assert.Equal(t, "Dobar dan, imate li termin?", parsed.Snippet)
}

func TestParseEmail_NoFromHeader(t *testing.T) {
	parsed, err := ParseEmail(strings.NewReader("Subject: x\r\n\r\nbody\r\n"))

	require.NoError(t, err)
	assert.Empty(t, parsed.SenderEmail)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("  a\n b\t\tc "))

	long := strings.Repeat("č", 300)
	got := snippet(long)
	assert.Equal(t, 255, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}

// ==================== Sink Tests ====================

func TestSink_ReceivesOverSMTP(t *testing.T) {
	// Arrange
	sink, sender := startSink(t)
	raw, err := Compose(sampleInquiry(), "noreply@sjajred.hr", time.Now())
	require.NoError(t, err)

	// Act
	err = sender.Send(context.Background(), "noreply@sjajred.hr", []string{"ivana.h@example.com"}, raw)

	// Assert
	require.NoError(t, err)
	messages := sink.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Upit za čišćenje: Ivana Horvat", messages[0].Subject)
	assert.Equal(t, "inq-1", messages[0].InquiryID)
}

func TestSink_KeepsMostRecent(t *testing.T) {
	sink := NewSink(2, discardLogger())

	sink.capture(ParsedEmail{Subject: "1"})
	sink.capture(ParsedEmail{Subject: "2"})
	sink.capture(ParsedEmail{Subject: "3"})

	messages := sink.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "2", messages[0].Subject)
	assert.Equal(t, "3", messages[1].Subject)
}

func TestNewSinkServer_Defaults(t *testing.T) {
	server := NewSinkServer(NewSink(0, nil), SinkServerConfig{Addr: ":2525"})

	assert.Equal(t, ":2525", server.Addr)
	assert.Equal(t, "localhost", server.Domain)
	assert.Equal(t, int64(DefaultMaxMessageSize), server.MaxMessageBytes)
	assert.Equal(t, DefaultMaxRecipients, server.MaxRecipients)
	assert.Equal(t, DefaultReadTimeout, server.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, server.WriteTimeout)
	assert.Equal(t, DefaultMaxLineLength, server.MaxLineLength)
	assert.False(t, server.AllowInsecureAuth)
}

func TestSMTPSender_Addr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:2525", NewSMTPSender("127.0.0.1", 2525).Addr())
	assert.Equal(t, "[::1]:25", NewSMTPSender("::1", 25).Addr())
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPSender("127.0.0.1", 1).Send(ctx, "a@example.com", []string{"b@example.com"}, []byte("x"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sender.Send(context.Background(), "noreply@sjajred.hr", []string{"ivana.h@example.com"}, []byte("hello"))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ivana.h@example.com")
	assert.Contains(t, buf.String(), "handoff email (not sent)")
}

// ==================== Dispatcher Tests ====================

func TestDispatcher_DeliversQueuedInquiry(t *testing.T) {
	// Arrange
	sender := &recordingSender{}
	d := NewDispatcher(sender, DispatcherConfig{From: "noreply@sjajred.hr", Logger: discardLogger()})

	// Act
	d.InquiryOpened(context.Background(), sampleInquiry())
	d.Close()

	// Assert
	require.Equal(t, 1, sender.count())
	assert.Equal(t, []string{"ivana.h@example.com"}, sender.to[0])
	assert.Equal(t, int64(1), d.Stats().Sent)
}

func TestDispatcher_EndToEndThroughSink(t *testing.T) {
	sink, sender := startSink(t)
	d := NewDispatcher(sender, DispatcherConfig{From: "noreply@sjajred.hr", Logger: discardLogger()})

	d.InquiryOpened(context.Background(), sampleInquiry())
	d.Close()

	messages := sink.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].ReplyTo, "ana@example.com")
}

func TestDispatcher_SendFailureIsCounted(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection refused")}
	d := NewDispatcher(sender, DispatcherConfig{From: "noreply@sjajred.hr", Logger: discardLogger()})

	assert.True(t, d.Enqueue(sampleInquiry()))
	d.Close()

	stats := d.Stats()
	assert.Equal(t, int64(0), stats.Sent)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	// Arrange
	sender := &blockingSender{started: make(chan struct{}, 1), release: make(chan struct{})}
	d := NewDispatcher(sender, DispatcherConfig{From: "noreply@sjajred.hr", QueueSize: 1, Logger: discardLogger()})

	require.True(t, d.Enqueue(sampleInquiry()))
	<-sender.started // worker is busy with the first one

	// Act
	second := d.Enqueue(sampleInquiry())
	third := d.Enqueue(sampleInquiry())

	// Assert
	assert.True(t, second)
	assert.False(t, third)
	assert.Equal(t, int64(1), d.Stats().Dropped)

	close(sender.release)
	d.Close()
	assert.Equal(t, int64(2), d.Stats().Sent)
}

func TestDispatcher_EnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, DispatcherConfig{Logger: discardLogger()})
	d.Close()

	assert.False(t, d.Enqueue(sampleInquiry()))
	assert.Equal(t, int64(1), d.Stats().Dropped)
}

func TestDispatcher_CloseDuringEnqueue_AccountsForEveryInquiry(t *testing.T) {
	// Arrange
	sender := &recordingSender{}
	d := NewDispatcher(sender, DispatcherConfig{From: "noreply@sjajred.hr", QueueSize: 256, Logger: discardLogger()})
	const producers, perProducer = 8, 20

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < perProducer; j++ {
				d.Enqueue(sampleInquiry())
			}
		}()
	}

	// Act
	close(start)
	d.Close()
	wg.Wait()

	// Assert
	stats := d.Stats()
	assert.Equal(t, 0, stats.Queued)
	assert.Equal(t, int64(producers*perProducer), stats.Sent+stats.Dropped)
	assert.Equal(t, int(stats.Sent), sender.count())
}
