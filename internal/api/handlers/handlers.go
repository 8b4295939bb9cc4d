// Package handlers implements the HTTP endpoints of the Sjaj&Red API.
package handlers

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/response"
	"github.com/welldanyogia/sjajred-backend/internal/catalog"
	"github.com/welldanyogia/sjajred-backend/internal/models"
	"github.com/welldanyogia/sjajred-backend/internal/validator"
)

// InquiryService is the inquiry thread engine as seen by the HTTP layer
type InquiryService interface {
	OpenInquiry(ctx context.Context, sender *models.User, cleaner models.CleanerRef, message string) (*models.Inquiry, error)
	MarkRead(ctx context.Context, id string) error
	Reply(ctx context.Context, id string, author *models.User, text string) (*models.MessageReply, error)
	DeleteInquiry(ctx context.Context, id string) error
	GetInquiry(id string) (*models.Inquiry, error)
	ListReceived(user *models.User) []models.Inquiry
	ListSent(user *models.User) []models.Inquiry
	UnreadCount(user *models.User) int
}

// CatalogService is the cleaner profile catalog
type CatalogService interface {
	List(f catalog.Filter) []models.CleanerProfile
	Get(id string) (*models.CleanerProfile, error)
	Create(ctx context.Context, in models.NewProfileInput) (*models.CleanerProfile, error)
	AddReview(ctx context.Context, cleanerID string, author *models.User, rating int, comment string) (*models.CleanerProfile, error)
}

// SessionService issues and revokes session tokens
type SessionService interface {
	Login(ctx context.Context, email string, role models.Role) (*models.Session, error)
	Register(ctx context.Context, fullName, email string, role models.Role) (*models.Session, error)
	Logout(ctx context.Context, token string) error
}

// Assistant drafts profile text
type Assistant interface {
	OptimizeBio(ctx context.Context, rawBio string, services []models.ServiceType) string
	SuggestServices(ctx context.Context, experience string) []models.ServiceType
}

// page applies limit/offset to items. ok is false when the request asked for
// no pagination, in which case the full list is returned.
func page[T any](c echo.Context, items []T) (out []T, limit, offset int, ok bool) {
	l := c.QueryParam("limit")
	if l == "" {
		return items, 0, 0, false
	}

	limit, _ = strconv.Atoi(l)
	if o := c.QueryParam("offset"); o != "" {
		offset, _ = strconv.Atoi(o)
	}
	limit, offset = validator.ValidatePagination(limit, offset)

	if offset >= len(items) {
		return []T{}, limit, offset, true
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], limit, offset, true
}

// list writes items either whole or as one page
func list[T any](c echo.Context, items []T) error {
	pageItems, limit, offset, ok := page(c, items)
	if !ok {
		return response.Success(c, items)
	}
	return response.Paginated(c, pageItems, int64(len(items)), limit, offset)
}
