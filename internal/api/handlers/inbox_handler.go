package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/middleware"
	"github.com/welldanyogia/sjajred-backend/internal/api/response"
	"github.com/welldanyogia/sjajred-backend/internal/inquiry"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// Inbox ordering values for the order query parameter
const (
	OrderNewest = "newest"
	OrderOldest = "oldest"
)

// InboxHandler handles inbox HTTP requests
type InboxHandler struct {
	inquiries InquiryService
}

// NewInboxHandler creates a new InboxHandler
func NewInboxHandler(inquiries InquiryService) *InboxHandler {
	return &InboxHandler{inquiries: inquiries}
}

// UnreadCountResponse is the body of GET /api/inbox/unread-count
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// Received handles GET /api/inbox/received
func (h *InboxHandler) Received(c echo.Context) error {
	return h.respond(c, h.inquiries.ListReceived(middleware.CurrentUser(c)))
}

// Sent handles GET /api/inbox/sent
func (h *InboxHandler) Sent(c echo.Context) error {
	return h.respond(c, h.inquiries.ListSent(middleware.CurrentUser(c)))
}

// UnreadCount handles GET /api/inbox/unread-count. Anonymous callers get 0.
func (h *InboxHandler) UnreadCount(c echo.Context) error {
	return response.Success(c, UnreadCountResponse{
		Count: h.inquiries.UnreadCount(middleware.CurrentUser(c)),
	})
}

// respond orders the inbox (newest first unless order=oldest) and optionally
// summarizes it with view=summary
func (h *InboxHandler) respond(c echo.Context, items []models.Inquiry) error {
	switch c.QueryParam("order") {
	case "", OrderNewest:
		items = inquiry.NewestFirst(items)
	case OrderOldest:
	default:
		return response.BadRequest(c, "order must be newest or oldest")
	}

	if c.QueryParam("view") == "summary" {
		summaries := make([]models.InquiryListItem, len(items))
		for i, inq := range items {
			summaries[i] = inquiry.ToListItem(inq)
		}
		return list(c, summaries)
	}

	return list(c, items)
}
