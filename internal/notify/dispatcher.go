package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// Dispatcher defaults
const (
	DefaultQueueSize   = 64
	DefaultSendTimeout = 15 * time.Second
)

// DispatcherConfig holds configuration for the handoff dispatcher
type DispatcherConfig struct {
	From        string
	QueueSize   int
	SendTimeout time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// Stats counts handoff outcomes since start
type Stats struct {
	Queued  int   `json:"queued"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

// Dispatcher queues handoff mail for a single delivery worker. Enqueueing
// never blocks; when the queue is full the message is dropped and logged.
type Dispatcher struct {
	sender      Sender
	from        string
	sendTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time

	queue chan models.Inquiry
	done  chan struct{}
	wg    sync.WaitGroup

	// Held for reading while enqueueing so Close never races a send
	mu     sync.RWMutex
	closed bool

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewDispatcher creates a Dispatcher and starts its worker
func NewDispatcher(sender Sender, cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	d := &Dispatcher{
		sender:      sender,
		from:        cfg.From,
		sendTimeout: cfg.SendTimeout,
		logger:      cfg.Logger,
		now:         cfg.Now,
		queue:       make(chan models.Inquiry, cfg.QueueSize),
		done:        make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()
	return d
}

// InquiryOpened queues the handoff for a freshly stored inquiry
func (d *Dispatcher) InquiryOpened(ctx context.Context, inq models.Inquiry) {
	d.Enqueue(inq)
}

// Enqueue queues inq and reports whether it was accepted
func (d *Dispatcher) Enqueue(inq models.Inquiry) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn("handoff dropped, dispatcher closed", slog.String("inquiry_id", inq.ID))
		return false
	}

	select {
	case d.queue <- inq:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("handoff dropped, queue full",
			slog.String("inquiry_id", inq.ID),
			slog.Int("queue_size", cap(d.queue)),
		)
		return false
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case inq := <-d.queue:
			d.deliver(inq)
		case <-d.done:
			// Flush whatever was accepted before close
			for {
				select {
				case inq := <-d.queue:
					d.deliver(inq)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(inq models.Inquiry) {
	msg, err := Compose(inq, d.from, d.now())
	if err != nil {
		d.failed.Add(1)
		d.logger.Error("failed to compose handoff",
			slog.String("inquiry_id", inq.ID),
			slog.Any("error", err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, d.from, []string{inq.CleanerEmail}, msg); err != nil {
		d.failed.Add(1)
		d.logger.Error("failed to send handoff",
			slog.String("inquiry_id", inq.ID),
			slog.String("cleaner_id", inq.CleanerID),
			slog.Any("error", err),
		)
		return
	}

	d.sent.Add(1)
	d.logger.Info("handoff sent",
		slog.String("inquiry_id", inq.ID),
		slog.String("cleaner_id", inq.CleanerID),
	)
}

// Stats returns the current counters
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Queued:  len(d.queue),
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
	}
}

// Close stops accepting work, delivers what is queued and waits for the worker
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.done)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
