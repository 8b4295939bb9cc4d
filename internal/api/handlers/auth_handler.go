package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/middleware"
	"github.com/welldanyogia/sjajred-backend/internal/api/response"
	"github.com/welldanyogia/sjajred-backend/internal/logger"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// AuthHandler handles sign-in HTTP requests
type AuthHandler struct {
	sessions  SessionService
	secLogger *logger.SecurityLogger
}

// NewAuthHandler creates a new AuthHandler. secLogger may be nil.
func NewAuthHandler(sessions SessionService, secLogger *logger.SecurityLogger) *AuthHandler {
	return &AuthHandler{sessions: sessions, secLogger: secLogger}
}

// audit records a session lifecycle event; the token itself is never logged
func (h *AuthHandler) audit(c echo.Context, event string, user *models.User) {
	if h.secLogger == nil {
		return
	}
	details := map[string]string{"path": c.Path()}
	if user != nil {
		details["user_id"] = user.ID
		details["role"] = string(user.Role)
	}
	h.secLogger.SecurityEvent(event, c.RealIP(), details)
}

// RegisterRequest represents the request body for registering
type RegisterRequest struct {
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// LoginRequest represents the request body for signing in.
// Password is accepted for client compatibility and not checked.
type LoginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	session, err := h.sessions.Register(c.Request().Context(), req.FullName, req.Email, req.Role)
	if err != nil {
		return response.Error(c, err)
	}
	h.audit(c, "session_started", &session.User)

	return response.Created(c, session)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	session, err := h.sessions.Login(c.Request().Context(), req.Email, req.Role)
	if err != nil {
		return response.Error(c, err)
	}
	h.audit(c, "session_started", &session.User)

	return response.Success(c, session)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.SessionToken(c)
	if token == "" {
		return response.SuccessWithMessage(c, nil, "signed out")
	}

	if err := h.sessions.Logout(c.Request().Context(), token); err != nil {
		return response.Error(c, err)
	}
	h.audit(c, "session_ended", middleware.CurrentUser(c))

	return response.SuccessWithMessage(c, nil, "signed out")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "sign in required")
	}
	return response.Success(c, user)
}
