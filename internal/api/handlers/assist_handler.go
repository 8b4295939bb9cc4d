package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/response"
	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/models"
	"github.com/welldanyogia/sjajred-backend/internal/validator"
)

// AssistHandler handles text assistance HTTP requests
type AssistHandler struct {
	assistant Assistant
}

// NewAssistHandler creates a new AssistHandler
func NewAssistHandler(assistant Assistant) *AssistHandler {
	return &AssistHandler{assistant: assistant}
}

// BioRequest represents the request body for improving a bio
type BioRequest struct {
	Bio      string               `json:"bio"`
	Services []models.ServiceType `json:"services"`
}

// BioResponse carries the improved bio
type BioResponse struct {
	Bio string `json:"bio"`
}

// ExperienceRequest represents the request body for service suggestions
type ExperienceRequest struct {
	Experience string `json:"experience"`
}

// Bio handles POST /api/assist/bio. On generator failure the submitted bio comes back unchanged.
func (h *AssistHandler) Bio(c echo.Context) error {
	var req BioRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validator.RequireText(req.Bio, validator.MaxBioLength); err != nil {
		return response.Error(c, apperrors.NewValidationError("bio", err.Error()))
	}

	bio := h.assistant.OptimizeBio(c.Request().Context(), req.Bio, req.Services)
	return response.Success(c, BioResponse{Bio: bio})
}

// Services handles POST /api/assist/services
func (h *AssistHandler) Services(c echo.Context) error {
	var req ExperienceRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validator.RequireText(req.Experience, validator.MaxBioLength); err != nil {
		return response.Error(c, apperrors.NewValidationError("experience", err.Error()))
	}

	services := h.assistant.SuggestServices(c.Request().Context(), req.Experience)
	return response.Success(c, services)
}
