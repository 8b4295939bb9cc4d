package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/models"
	"github.com/welldanyogia/sjajred-backend/internal/storage"
	"github.com/welldanyogia/sjajred-backend/internal/validator"
)

// SnapshotKey is the key the cleaner catalog is stored under
const SnapshotKey = "cleaners"

// Defaults applied to newly published profiles
const (
	DefaultRating       = 5.0
	DefaultAvailability = "Dostupan odmah"
	DefaultCity         = "Zagreb"
	imageURLPattern     = "https://picsum.photos/seed/%s/400/400"
	reviewDateLayout    = "2006-01-02"
	saveTimeout         = 10 * time.Second
)

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Search  string
	City    string
	Service models.ServiceType
}

// Service owns the cleaner profile catalog
type Service struct {
	kv       storage.KeyValueStore
	mu       sync.RWMutex
	profiles []models.CleanerProfile

	// Held across snapshot and save so saves land in mutation order
	saveMu sync.Mutex
	newID    func() string
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithIDFunc replaces the id generator
func WithIDFunc(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the catalog logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Open loads the persisted catalog, seeding it with InitialCleaners on first run.
// An unreadable catalog falls back to the seed without overwriting what is stored.
func Open(ctx context.Context, kv storage.KeyValueStore, opts ...Option) *Service {
	s := &Service{
		kv:     kv,
		newID:  uuid.NewString,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := kv.Get(ctx, SnapshotKey)
	switch {
	case err == nil:
		var profiles []models.CleanerProfile
		if jerr := json.Unmarshal(data, &profiles); jerr != nil {
			s.logger.Error("failed to decode cleaners, using seed",
				slog.String("event", "persistence_failure"),
				slog.Any("error", jerr),
			)
			s.profiles = InitialCleaners()
		} else {
			s.profiles = normalize(profiles)
		}
	case apperrors.IsNotFound(err):
		s.profiles = InitialCleaners()
		s.save(ctx, s.profiles)
	default:
		s.logger.Error("failed to load cleaners, using seed",
			slog.String("event", "persistence_failure"),
			slog.Any("error", err),
		)
		s.profiles = InitialCleaners()
	}
	return s
}

func normalize(profiles []models.CleanerProfile) []models.CleanerProfile {
	if profiles == nil {
		return []models.CleanerProfile{}
	}
	for i := range profiles {
		if profiles[i].Reviews == nil {
			profiles[i].Reviews = []models.Review{}
		}
		if profiles[i].Services == nil {
			profiles[i].Services = []models.ServiceType{}
		}
	}
	return profiles
}

// save persists the catalog; failures are logged and never undo the change.
// The write outlives ctx's cancellation but not saveTimeout.
func (s *Service) save(ctx context.Context, profiles []models.CleanerProfile) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	data, err := json.Marshal(profiles)
	if err == nil {
		err = s.kv.Put(ctx, SnapshotKey, data)
	}
	if err != nil {
		s.logger.Error("failed to save cleaners",
			slog.String("event", "persistence_failure"),
			slog.Any("error", err),
		)
	}
}

// List returns profiles matching f, newest first
func (s *Service) List(f Filter) []models.CleanerProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []models.CleanerProfile{}
	for _, p := range s.profiles {
		if search != "" && !strings.Contains(strings.ToLower(p.FullName), search) {
			continue
		}
		if f.City != "" && p.City != f.City {
			continue
		}
		if f.Service != "" && !offers(p, f.Service) {
			continue
		}
		out = append(out, clone(p))
	}
	return out
}

func offers(p models.CleanerProfile, service models.ServiceType) bool {
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return false
}

// Get returns the profile with id or ErrCleanerNotFound
func (s *Service) Get(id string) (*models.CleanerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.ID == id {
			c := clone(p)
			return &c, nil
		}
	}
	return nil, apperrors.ErrCleanerNotFound
}

// Create validates input and publishes a new profile at the top of the catalog
func (s *Service) Create(ctx context.Context, in models.NewProfileInput) (*models.CleanerProfile, error) {
	profile, err := s.buildProfile(in)
	if err != nil {
		return nil, err
	}

	s.saveMu.Lock()
	s.mu.Lock()
	s.profiles = append([]models.CleanerProfile{profile}, s.profiles...)
	snapshot := cloneAll(s.profiles)
	s.mu.Unlock()
	s.save(ctx, snapshot)
	s.saveMu.Unlock()

	s.logger.Info("cleaner profile created", slog.String("cleaner_id", profile.ID))

	out := clone(profile)
	return &out, nil
}

func (s *Service) buildProfile(in models.NewProfileInput) (models.CleanerProfile, error) {
	fullName := validator.SanitizeString(in.FullName, validator.MaxNameLength)
	if fullName == "" {
		return models.CleanerProfile{}, apperrors.NewValidationError("full_name", "must not be empty")
	}
	if err := validator.ValidateEmail(in.Email); err != nil {
		return models.CleanerProfile{}, apperrors.NewValidationError("email", err.Error())
	}

	city := strings.TrimSpace(in.City)
	if city == "" {
		city = DefaultCity
	}
	if !IsCity(city) {
		return models.CleanerProfile{}, apperrors.NewValidationError("city", "unknown city")
	}
	if in.BasePrice < 0 {
		return models.CleanerProfile{}, apperrors.NewValidationError("base_price", "must not be negative")
	}

	services, err := parseServices(in.Services)
	if err != nil {
		return models.CleanerProfile{}, err
	}
	if len(services) == 0 {
		return models.CleanerProfile{}, apperrors.NewValidationError("services", "at least one service is required")
	}

	firstName := strings.ToLower(strings.Fields(fullName)[0])

	return models.CleanerProfile{
		ID:           s.newID(),
		FullName:     fullName,
		City:         city,
		Rating:       DefaultRating,
		ReviewCount:  0,
		BasePrice:    in.BasePrice,
		Bio:          strings.TrimSpace(in.Bio),
		Services:     services,
		Phone:        validator.SanitizeString(in.Phone, 40),
		Email:        validator.NormalizeEmail(in.Email),
		ImageURL:     fmt.Sprintf(imageURLPattern, firstName),
		IsVerified:   false,
		Reviews:      []models.Review{},
		Availability: DefaultAvailability,
	}, nil
}

// parseServices canonicalizes and de-duplicates services, rejecting unknown names
func parseServices(in []models.ServiceType) ([]models.ServiceType, error) {
	seen := make(map[models.ServiceType]bool, len(in))
	out := make([]models.ServiceType, 0, len(in))
	for _, raw := range in {
		svc, ok := ParseService(string(raw))
		if !ok {
			return nil, apperrors.NewValidationError("services", fmt.Sprintf("unknown service %q", raw))
		}
		if !seen[svc] {
			seen[svc] = true
			out = append(out, svc)
		}
	}
	return out, nil
}

// AddReview prepends a review and recomputes rating and review count from the review list
func (s *Service) AddReview(ctx context.Context, cleanerID string, author *models.User, rating int, comment string) (*models.CleanerProfile, error) {
	if author == nil || strings.TrimSpace(author.FullName) == "" {
		return nil, apperrors.NewValidationError("user", "an identity is required to review")
	}
	if err := validator.ValidateRange(rating, 1, 5); err != nil {
		return nil, apperrors.NewValidationError("rating", "must be between 1 and 5")
	}
	if err := validator.RequireText(comment, validator.MaxCommentLength); err != nil {
		return nil, apperrors.NewValidationError("comment", err.Error())
	}

	review := models.Review{
		ID:      s.newID(),
		User:    author.FullName,
		Rating:  rating,
		Comment: comment,
		Date:    s.now().Format(reviewDateLayout),
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	idx := -1
	for i := range s.profiles {
		if s.profiles[i].ID == cleanerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, apperrors.ErrCleanerNotFound
	}

	p := clone(s.profiles[idx])
	p.Reviews = append([]models.Review{review}, p.Reviews...)
	p.Rating = averageRating(p.Reviews)
	p.ReviewCount = len(p.Reviews)
	s.profiles[idx] = p
	snapshot := cloneAll(s.profiles)
	s.mu.Unlock()

	s.save(ctx, snapshot)

	out := clone(p)
	return &out, nil
}

// averageRating is the mean rating rounded to one decimal
func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return DefaultRating
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return math.Round(float64(total)/float64(len(reviews))*10) / 10
}

func clone(p models.CleanerProfile) models.CleanerProfile {
	out := p
	out.Services = append([]models.ServiceType{}, p.Services...)
	out.Reviews = append([]models.Review{}, p.Reviews...)
	return out
}

func cloneAll(profiles []models.CleanerProfile) []models.CleanerProfile {
	out := make([]models.CleanerProfile, len(profiles))
	for i, p := range profiles {
		out[i] = clone(p)
	}
	return out
}
