package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/inquiry"
	"github.com/welldanyogia/sjajred-backend/internal/notify"
	"gorm.io/gorm"
)

// PersistenceReporter exposes the inquiry store's save health
type PersistenceReporter interface {
	PersistenceStatus() inquiry.PersistenceStatus
}

// HandoffReporter exposes email handoff counters
type HandoffReporter interface {
	Stats() notify.Stats
}

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db      *gorm.DB
	store   PersistenceReporter
	handoff HandoffReporter
}

// NewHealthHandler creates a new HealthHandler. db is nil when snapshots live
// on the file backend; handoff is nil when email handoff is disabled.
func NewHealthHandler(db *gorm.DB, store PersistenceReporter, handoff HandoffReporter) *HealthHandler {
	return &HealthHandler{db: db, store: store, handoff: handoff}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string                     `json:"status"`
	Services    map[string]string          `json:"services"`
	Persistence *inquiry.PersistenceStatus `json:"persistence,omitempty"`
	Handoff     *notify.Stats              `json:"handoff,omitempty"`
}

func (h *HealthHandler) pingDatabase() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	services := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.pingDatabase(); err != nil {
			services["database"] = "unhealthy"
			status = "unhealthy"
		} else {
			services["database"] = "healthy"
		}
	}

	resp := HealthResponse{Services: services}

	if h.store != nil {
		ps := h.store.PersistenceStatus()
		resp.Persistence = &ps
		if ps.Healthy {
			services["inquiry_store"] = "healthy"
		} else {
			// Saves keep failing but the in-memory store still serves requests
			services["inquiry_store"] = "degraded"
			if status == "healthy" {
				status = "degraded"
			}
		}
	}

	if h.handoff != nil {
		stats := h.handoff.Stats()
		resp.Handoff = &stats
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	resp.Status = status

	return c.JSON(statusCode, resp)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c echo.Context) error {
	if h.db != nil {
		if err := h.pingDatabase(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "database ping failed",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}
