package handlers

import (
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/middleware"
	"github.com/welldanyogia/sjajred-backend/internal/api/response"
	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/logger"
	"github.com/welldanyogia/sjajred-backend/internal/models"
	"github.com/welldanyogia/sjajred-backend/internal/validator"
)

// InquiryHandler handles inquiry thread HTTP requests
type InquiryHandler struct {
	inquiries InquiryService
	catalog   CatalogService
	secLogger *logger.SecurityLogger
}

// NewInquiryHandler creates a new InquiryHandler. secLogger may be nil.
func NewInquiryHandler(inquiries InquiryService, catalog CatalogService, secLogger *logger.SecurityLogger) *InquiryHandler {
	return &InquiryHandler{
		inquiries: inquiries,
		catalog:   catalog,
		secLogger: secLogger,
	}
}

// MessageRequest represents the request body for messaging a cleaner from their profile
type MessageRequest struct {
	Message string `json:"message"`
}

// OpenInquiryRequest represents the request body for messaging an explicit recipient
type OpenInquiryRequest struct {
	models.CleanerRef
	Message string `json:"message"`
}

// ReplyRequest represents the request body for replying to a thread
type ReplyRequest struct {
	Text string `json:"text"`
}

func tooLong(field, text string, max int) error {
	if utf8.RuneCountInString(text) > max {
		return apperrors.NewValidationError(field, validator.ErrInputTooLong.Error())
	}
	return nil
}

// OpenForCleaner handles POST /api/cleaners/:id/inquiries
func (h *InquiryHandler) OpenForCleaner(c echo.Context) error {
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := tooLong("message", req.Message, validator.MaxMessageLength); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	inq, err := h.inquiries.OpenInquiry(c.Request().Context(), middleware.CurrentUser(c), profile.Ref(), req.Message)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, inq)
}

// Open handles POST /api/inquiries
func (h *InquiryHandler) Open(c echo.Context) error {
	var req OpenInquiryRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := tooLong("message", req.Message, validator.MaxMessageLength); err != nil {
		return response.Error(c, err)
	}

	inq, err := h.inquiries.OpenInquiry(c.Request().Context(), middleware.CurrentUser(c), req.CleanerRef, req.Message)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, inq)
}

// Get handles GET /api/inquiries/:id
func (h *InquiryHandler) Get(c echo.Context) error {
	inq, err := h.inquiries.GetInquiry(c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, inq)
}

// MarkRead handles PATCH /api/inquiries/:id/read
func (h *InquiryHandler) MarkRead(c echo.Context) error {
	id := c.Param("id")
	h.auditMutation(c, "mark_read", id)

	if err := h.inquiries.MarkRead(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, nil, "inquiry marked as read")
}

// Reply handles POST /api/inquiries/:id/replies. Replying to a thread that no
// longer exists is not an error.
func (h *InquiryHandler) Reply(c echo.Context) error {
	var req ReplyRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := tooLong("text", req.Text, validator.MaxMessageLength); err != nil {
		return response.Error(c, err)
	}

	id := c.Param("id")
	h.auditMutation(c, "reply", id)

	reply, err := h.inquiries.Reply(c.Request().Context(), id, middleware.CurrentUser(c), req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	if reply == nil {
		return response.SuccessWithMessage(c, nil, "inquiry no longer exists")
	}

	return response.Created(c, reply)
}

// Delete handles DELETE /api/inquiries/:id
func (h *InquiryHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	h.auditMutation(c, "delete", id)

	if err := h.inquiries.DeleteInquiry(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}

	return response.NoContent(c)
}

// auditMutation records mutations by someone who is neither the sender nor the
// recipient. The mutation itself still goes ahead.
func (h *InquiryHandler) auditMutation(c echo.Context, action, id string) {
	if h.secLogger == nil {
		return
	}
	inq, err := h.inquiries.GetInquiry(id)
	if err != nil {
		return
	}

	user := middleware.CurrentUser(c)
	if user != nil && (user.ID == inq.SenderID || user.MatchesEmail(inq.CleanerEmail)) {
		return
	}

	userID := "anonymous"
	if user != nil {
		userID = user.ID
	}
	h.secLogger.NonParticipantMutation(c.RealIP(), c.Path(), action, id, userID)
}
