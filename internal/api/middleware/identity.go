// Package middleware provides HTTP middleware for the Sjaj&Red API.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/response"
	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/logger"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

const (
	userContextKey  = "current_user"
	tokenContextKey = "session_token"
)

// SessionResolver maps a bearer token to a user
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Identity attaches the user behind a Bearer token to the request context.
// Requests without a valid token continue anonymously.
func Identity(resolver SessionResolver, secLogger *logger.SecurityLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				if secLogger != nil {
					secLogger.SuspiciousActivity(c.RealIP(), c.Path(), "malformed authorization header")
				}
				return next(c)
			}

			user, err := resolver.Resolve(c.Request().Context(), token)
			switch {
			case err == nil:
				c.Set(userContextKey, user)
				c.Set(tokenContextKey, token)
			case errors.Is(err, apperrors.ErrUnauthorized):
				if secLogger != nil {
					secLogger.AuthFailure(c.RealIP(), c.Path(), "unknown or expired session")
				}
			default:
				return response.Error(c, apperrors.NewAppError(err, "session lookup failed", apperrors.CodeUnavailable))
			}
			return next(c)
		}
	}
}

// RequireUser rejects requests that carry no resolved identity
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return response.Unauthorized(c, "sign in required")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the signed-in user, or nil
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

// SessionToken returns the bearer token the user signed in with
func SessionToken(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}

// SetCurrentUser binds user to the request; used by tests and handlers that sign in
func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(userContextKey, user)
}

// SetSessionToken binds the bearer token to the request
func SetSessionToken(c echo.Context, token string) {
	c.Set(tokenContextKey, token)
}
