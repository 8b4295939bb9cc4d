package inquiry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// DefaultSaveTimeout bounds a single snapshot save
const DefaultSaveTimeout = 10 * time.Second

// PersistenceStatus reports how the store's snapshot saves are doing
type PersistenceStatus struct {
	Healthy      bool      `json:"healthy"`
	LoadFailed   bool      `json:"load_failed"`
	SaveFailures int64     `json:"save_failures"`
	LastError    string    `json:"last_error,omitempty"`
	LastSavedAt  time.Time `json:"last_saved_at,omitempty"`
	InquiryCount int       `json:"inquiry_count"`
}

// mutateFunc edits the collection in place or returns a replacement.
// changed reports whether a snapshot save is needed.
type mutateFunc func(items []models.Inquiry) (next []models.Inquiry, changed bool, err error)

type mutation struct {
	apply  mutateFunc
	result chan error
}

// Store holds every inquiry in creation order. All mutations are applied by a
// single writer goroutine, which saves a full snapshot before releasing the caller.
type Store struct {
	// Current collection, oldest first
	items []models.Inquiry

	// Guards items for readers while the writer swaps them
	mu sync.RWMutex

	// Mutation requests from callers
	requests chan *mutation

	// Closed on shutdown
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	persister   Persister
	saveTimeout time.Duration
	logger      *slog.Logger

	saveFailures atomic.Int64
	loadFailed   bool
	statusMu     sync.Mutex
	lastErr      string
	lastSavedAt  time.Time
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithSaveTimeout overrides DefaultSaveTimeout
func WithSaveTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// Open loads the collection from persister and starts the writer goroutine.
// A load failure is logged and leaves the store empty.
func Open(ctx context.Context, persister Persister, opts ...StoreOption) *Store {
	s := &Store{
		items:       []models.Inquiry{},
		requests:    make(chan *mutation),
		done:        make(chan struct{}),
		persister:   persister,
		saveTimeout: DefaultSaveTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if persister != nil {
		loaded, err := persister.Load(ctx)
		if err != nil {
			s.loadFailed = true
			s.recordError(err)
			s.logger.Error("failed to load inquiries, starting empty",
				slog.String("event", "persistence_failure"),
				slog.String("operation", "load"),
				slog.Any("error", err),
			)
		} else {
			s.items = loaded
			s.logger.Info("inquiries loaded", slog.Int("count", len(loaded)))
		}
	}

	s.wg.Add(1)
	go s.run()
	return s
}

// run is the single writer loop
func (s *Store) run() {
	defer s.wg.Done()
	for {
		select {
		case m := <-s.requests:
			m.result <- s.apply(m.apply)
		case <-s.done:
			return
		}
	}
}

func (s *Store) apply(fn mutateFunc) error {
	s.mu.Lock()
	next, changed, err := fn(s.items)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.items = next
	snapshot := cloneAll(next)
	s.mu.Unlock()

	s.persist(snapshot)
	return nil
}

// persist saves the snapshot. Failures are logged and counted; the in-memory
// mutation stays applied.
func (s *Store) persist(snapshot []models.Inquiry) {
	if s.persister == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, snapshot); err != nil {
		s.saveFailures.Add(1)
		s.recordError(err)
		s.logger.Error("failed to save inquiries",
			slog.String("event", "persistence_failure"),
			slog.String("operation", "save"),
			slog.Int("count", len(snapshot)),
			slog.Any("error", err),
		)
		return
	}

	s.statusMu.Lock()
	s.lastErr = ""
	s.lastSavedAt = time.Now()
	s.statusMu.Unlock()
}

func (s *Store) recordError(err error) {
	s.statusMu.Lock()
	s.lastErr = err.Error()
	s.statusMu.Unlock()
}

// submit hands fn to the writer and waits for it to be applied and saved.
// ctx only bounds the wait for the writer to accept the mutation.
func (s *Store) submit(ctx context.Context, fn mutateFunc) error {
	m := &mutation{apply: fn, result: make(chan error, 1)}

	select {
	case <-s.done:
		return apperrors.ErrStoreClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case s.requests <- m:
	case <-s.done:
		return apperrors.ErrStoreClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// Accepted mutations run to completion; the save is bounded by saveTimeout
	return <-m.result
}

// Close stops the writer goroutine. Later mutations fail with ErrStoreClosed.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// Create appends inq at the end of the collection
func (s *Store) Create(ctx context.Context, inq models.Inquiry) error {
	inq = inq.Clone()
	return s.submit(ctx, func(items []models.Inquiry) ([]models.Inquiry, bool, error) {
		if indexOf(items, inq.ID) >= 0 {
			return nil, false, fmt.Errorf("create inquiry %q: %w", inq.ID, apperrors.ErrDuplicateID)
		}
		return append(items, inq), true, nil
	})
}

// Delete removes the inquiry with id. It reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.submit(ctx, func(items []models.Inquiry) ([]models.Inquiry, bool, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, false, nil
		}
		found = true
		next := make([]models.Inquiry, 0, len(items)-1)
		next = append(next, items[:i]...)
		next = append(next, items[i+1:]...)
		return next, true, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// SetRead sets the read flag of the inquiry with id
func (s *Store) SetRead(ctx context.Context, id string, value bool) (bool, error) {
	var found bool
	err := s.submit(ctx, func(items []models.Inquiry) ([]models.Inquiry, bool, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, false, nil
		}
		found = true
		items[i].IsRead = value
		return items, true, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// AppendReply adds reply to the end of the thread and marks the inquiry unread
func (s *Store) AppendReply(ctx context.Context, id string, reply models.MessageReply) (bool, error) {
	var found bool
	err := s.submit(ctx, func(items []models.Inquiry) ([]models.Inquiry, bool, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, false, nil
		}
		found = true
		// Copy so snapshots handed out earlier never see the new reply
		replies := make([]models.MessageReply, len(items[i].Replies), len(items[i].Replies)+1)
		copy(replies, items[i].Replies)
		items[i].Replies = append(replies, reply)
		items[i].IsRead = false
		return items, true, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// ReplaceAll swaps the whole collection, e.g. when importing a snapshot
func (s *Store) ReplaceAll(ctx context.Context, inquiries []models.Inquiry) error {
	seen := make(map[string]struct{}, len(inquiries))
	next := make([]models.Inquiry, 0, len(inquiries))
	for _, inq := range inquiries {
		if _, dup := seen[inq.ID]; dup {
			return fmt.Errorf("replace inquiries %q: %w", inq.ID, apperrors.ErrDuplicateID)
		}
		seen[inq.ID] = struct{}{}
		next = append(next, inq.Clone())
	}
	return s.submit(ctx, func([]models.Inquiry) ([]models.Inquiry, bool, error) {
		return next, true, nil
	})
}

// All returns a copy of every inquiry, oldest first
func (s *Store) All() []models.Inquiry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items)
}

// Get returns a copy of the inquiry with id
func (s *Store) Get(id string) (models.Inquiry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.items, id)
	if i < 0 {
		return models.Inquiry{}, false
	}
	return s.items[i].Clone(), true
}

// Len returns the number of stored inquiries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// PersistenceStatus reports load/save health
func (s *Store) PersistenceStatus() PersistenceStatus {
	s.statusMu.Lock()
	lastErr, lastSaved := s.lastErr, s.lastSavedAt
	s.statusMu.Unlock()

	return PersistenceStatus{
		Healthy:      lastErr == "",
		LoadFailed:   s.loadFailed,
		SaveFailures: s.saveFailures.Load(),
		LastError:    lastErr,
		LastSavedAt:  lastSaved,
		InquiryCount: s.Len(),
	}
}

func indexOf(items []models.Inquiry, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(items []models.Inquiry) []models.Inquiry {
	out := make([]models.Inquiry, len(items))
	for i, inq := range items {
		out[i] = inq.Clone()
	}
	return out
}
