// Package identity issues the mock identities the marketplace runs on. Any
// credentials are accepted; the service only manufactures a user and a
// bearer token bound to it.
package identity

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/models"
	"github.com/welldanyogia/sjajred-backend/internal/storage"
	"github.com/welldanyogia/sjajred-backend/internal/validator"
)

// Key prefixes in the key-value store
const (
	SessionPrefix = "session:"
	AccountPrefix = "account:"
)

// DefaultSessionTTL is used when no TTL is configured
const DefaultSessionTTL = 30 * 24 * time.Hour

// Service manufactures users and resolves bearer tokens
type Service struct {
	kv       storage.KeyValueStore
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
	newToken func() string
	logger   *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithTTL sets the session lifetime; zero or negative disables expiry
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDFunc replaces the user id generator
func WithIDFunc(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates an identity Service backed by kv
func NewService(kv storage.KeyValueStore, opts ...Option) *Service {
	s := &Service{
		kv:       kv,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		newID:    uuid.NewString,
		newToken: uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login accepts any email and signs the user in. The display name is the
// email's local part unless the address registered earlier.
func (s *Service) Login(ctx context.Context, email string, role models.Role) (*models.Session, error) {
	email, role, err := normalizeCredentials(email, role)
	if err != nil {
		return nil, err
	}

	user, err := s.account(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{ID: s.newID(), FullName: validator.LocalPart(email), Email: email}
	}
	user.Role = role

	if err := s.putAccount(ctx, user); err != nil {
		return nil, err
	}
	return s.startSession(ctx, *user)
}

// Register signs a user in under the given display name
func (s *Service) Register(ctx context.Context, fullName, email string, role models.Role) (*models.Session, error) {
	fullName = validator.SanitizeString(fullName, validator.MaxNameLength)
	if fullName == "" {
		return nil, apperrors.NewValidationError("full_name", "must not be empty")
	}
	email, role, err := normalizeCredentials(email, role)
	if err != nil {
		return nil, err
	}

	user, err := s.account(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{ID: s.newID(), Email: email}
	}
	user.FullName = fullName
	user.Role = role

	if err := s.putAccount(ctx, user); err != nil {
		return nil, err
	}
	return s.startSession(ctx, *user)
}

func normalizeCredentials(email string, role models.Role) (string, models.Role, error) {
	if err := validator.ValidateEmail(email); err != nil {
		return "", "", apperrors.NewValidationError("email", err.Error())
	}
	if role == "" {
		role = models.RoleClient
	}
	if !role.Valid() {
		return "", "", apperrors.NewValidationError("role", "must be client or cleaner")
	}
	return validator.NormalizeEmail(email), role, nil
}

func (s *Service) account(ctx context.Context, email string) (*models.User, error) {
	data, err := s.kv.Get(ctx, AccountPrefix+email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "load account")
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.logger.Warn("discarding unreadable account", slog.Any("error", err))
		return nil, nil
	}
	return &user, nil
}

func (s *Service) putAccount(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return apperrors.Wrap(err, "encode account")
	}
	if err := s.kv.Put(ctx, AccountPrefix+user.Email, data); err != nil {
		return apperrors.Wrap(err, "save account")
	}
	return nil
}

func (s *Service) startSession(ctx context.Context, user models.User) (*models.Session, error) {
	now := s.now().UTC()
	session := &models.Session{
		Token:     s.newToken(),
		User:      user,
		CreatedAt: now.Format(time.RFC3339),
	}
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl).Format(time.RFC3339)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, apperrors.Wrap(err, "encode session")
	}
	if err := s.kv.Put(ctx, SessionPrefix+session.Token, data); err != nil {
		return nil, apperrors.Wrap(err, "save session")
	}

	s.logger.Info("session started",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return session, nil
}

// Resolve returns the user bound to token, or ErrUnauthorized
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	data, err := s.kv.Get(ctx, SessionPrefix+token)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.Wrap(err, "load session")
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if s.expired(session) {
		if derr := s.kv.Delete(ctx, SessionPrefix+token); derr != nil {
			s.logger.Warn("failed to drop expired session", slog.Any("error", derr))
		}
		return nil, apperrors.ErrUnauthorized
	}
	return &session.User, nil
}

func (s *Service) expired(session models.Session) bool {
	if session.ExpiresAt == "" {
		return false
	}
	expires, err := time.Parse(time.RFC3339, session.ExpiresAt)
	return err != nil || !s.now().Before(expires)
}

// Logout ends the session; unknown tokens are ignored
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.kv.Delete(ctx, SessionPrefix+token); err != nil {
		return apperrors.Wrap(err, "delete session")
	}
	return nil
}

// PurgeExpired removes sessions past their expiry and returns how many were dropped
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx, SessionPrefix)
	if err != nil {
		return 0, apperrors.Wrap(err, "list sessions")
	}

	purged := 0
	for _, key := range keys {
		data, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var session models.Session
		if json.Unmarshal(data, &session) == nil && !s.expired(session) {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			return purged, apperrors.Wrap(err, "delete session")
		}
		purged++
	}
	return purged, nil
}
