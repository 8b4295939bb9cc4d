package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/notify"
)

// MailCatcher exposes mail captured by the development SMTP sink
type MailCatcher interface {
	Messages() []notify.ParsedEmail
}

// DevMailHandler lists handoff mail caught by the development sink
type DevMailHandler struct {
	sink MailCatcher
}

// NewDevMailHandler creates a new DevMailHandler
func NewDevMailHandler(sink MailCatcher) *DevMailHandler {
	return &DevMailHandler{sink: sink}
}

// List handles GET /dev/mail, newest first
func (h *DevMailHandler) List(c echo.Context) error {
	msgs := h.sink.Messages()
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return list(c, msgs)
}
