package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/response"
	"github.com/welldanyogia/sjajred-backend/internal/catalog"
)

// MetaHandler serves the option lists the client renders in forms
type MetaHandler struct{}

// NewMetaHandler creates a new MetaHandler
func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// Cities handles GET /api/meta/cities
func (h *MetaHandler) Cities(c echo.Context) error {
	return response.Success(c, catalog.Cities)
}

// Services handles GET /api/meta/services
func (h *MetaHandler) Services(c echo.Context) error {
	return response.Success(c, catalog.ServiceOptions)
}
