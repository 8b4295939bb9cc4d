package inquiry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// memoryPersister records every saved snapshot
type memoryPersister struct {
	mu      sync.Mutex
	loaded  []models.Inquiry
	loadErr error
	saveErr error
	saves   [][]models.Inquiry
}

func (p *memoryPersister) Load(ctx context.Context) ([]models.Inquiry, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	if p.loaded == nil {
		return []models.Inquiry{}, nil
	}
	return cloneAll(p.loaded), nil
}

func (p *memoryPersister) Save(ctx context.Context, inquiries []models.Inquiry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, cloneAll(inquiries))
	return p.saveErr
}

func (p *memoryPersister) setSaveErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saveErr = err
}

func (p *memoryPersister) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func (p *memoryPersister) lastSave() []models.Inquiry {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.saves) == 0 {
		return nil
	}
	return p.saves[len(p.saves)-1]
}

// sequentialIDs issues predictable ids
type sequentialIDs struct {
	prefix string
	n      atomic.Int64
}

func (g *sequentialIDs) NewID() string {
	return fmt.Sprintf("%s-%03d", g.prefix, g.n.Add(1))
}

// recordingHandoff captures opened inquiries
type recordingHandoff struct {
	mu     sync.Mutex
	opened []models.Inquiry
}

func (h *recordingHandoff) InquiryOpened(ctx context.Context, inq models.Inquiry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, inq)
}

var errDiskFull = errors.New("disk full")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleInquiry(id string) models.Inquiry {
	return models.Inquiry{
		ID:           id,
		SenderID:     "client-1",
		SenderName:   "Ana Klijent",
		SenderEmail:  "a@x.com",
		CleanerID:    "cleaner-1",
		CleanerName:  "Cleaner C",
		CleanerEmail: "c@x.com",
		Message:      "Need cleaning Tuesday",
		Date:         "14. 5. 2024. 10:00:00",
		Replies:      []models.MessageReply{},
	}
}

// blockingPersister holds every Save until release is closed
type blockingPersister struct {
	memoryPersister
	started     chan struct{}
	release     chan struct{}
	startedOnce sync.Once
}

func newBlockingPersister() *blockingPersister {
	return &blockingPersister{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (p *blockingPersister) Save(ctx context.Context, inquiries []models.Inquiry) error {
	p.startedOnce.Do(func() { close(p.started) })
	<-p.release
	return p.memoryPersister.Save(ctx, inquiries)
}

// cancelDuringSave cancels the caller's context once the first save starts,
// then lets the save finish
func cancelDuringSave(p *blockingPersister, cancel context.CancelFunc) {
	go func() {
		<-p.started
		cancel()
		close(p.release)
	}()
}
