package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/middleware"
	"github.com/welldanyogia/sjajred-backend/internal/api/response"
	"github.com/welldanyogia/sjajred-backend/internal/catalog"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// CleanerHandler handles cleaner profile HTTP requests
type CleanerHandler struct {
	catalog CatalogService
}

// NewCleanerHandler creates a new CleanerHandler
func NewCleanerHandler(catalog CatalogService) *CleanerHandler {
	return &CleanerHandler{catalog: catalog}
}

// ReviewRequest represents the request body for reviewing a cleaner
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// List handles GET /api/cleaners
func (h *CleanerHandler) List(c echo.Context) error {
	filter := catalog.Filter{
		Search: strings.TrimSpace(c.QueryParam("search")),
		City:   strings.TrimSpace(c.QueryParam("city")),
	}
	if s := c.QueryParam("service"); s != "" {
		svc, ok := catalog.ParseService(s)
		if !ok {
			return response.BadRequest(c, "unknown service")
		}
		filter.Service = svc
	}

	return list(c, h.catalog.List(filter))
}

// Get handles GET /api/cleaners/:id
func (h *CleanerHandler) Get(c echo.Context) error {
	profile, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}

// Create handles POST /api/cleaners. Name and email default to the signed-in user's.
func (h *CleanerHandler) Create(c echo.Context) error {
	var in models.NewProfileInput
	if err := c.Bind(&in); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if user := middleware.CurrentUser(c); user != nil {
		if strings.TrimSpace(in.FullName) == "" {
			in.FullName = user.FullName
		}
		if strings.TrimSpace(in.Email) == "" {
			in.Email = user.Email
		}
	}

	profile, err := h.catalog.Create(c.Request().Context(), in)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, profile)
}

// AddReview handles POST /api/cleaners/:id/reviews
func (h *CleanerHandler) AddReview(c echo.Context) error {
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	profile, err := h.catalog.AddReview(c.Request().Context(), c.Param("id"), middleware.CurrentUser(c), req.Rating, req.Comment)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, profile)
}
