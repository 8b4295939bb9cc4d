// Package notify hands new inquiries to the cleaner by email. Delivery runs
// beside the inquiry store and never affects what was stored.
package notify

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// DefaultFromName is the display name on outgoing handoff mail
const DefaultFromName = "Sjaj&Red"

// InquiryIDHeader carries the inquiry id so replies can be traced
const InquiryIDHeader = "X-Inquiry-Id"

// Subject returns the handoff subject line for a cleaner
func Subject(cleanerName string) string {
	return "Upit za čišćenje: " + cleanerName
}

// Body returns the plain-text handoff body
func Body(inq models.Inquiry) string {
	return fmt.Sprintf("Od: %s\nE-mail klijenta: %s\n\nPoruka:\n%s",
		inq.SenderName, inq.SenderEmail, inq.Message)
}

// Compose builds the RFC 5322 handoff message for inq. Replies go straight
// to the client through Reply-To.
func Compose(inq models.Inquiry, from string, date time.Time) ([]byte, error) {
	part, err := enmime.Builder().
		From(DefaultFromName, from).
		To(inq.CleanerName, inq.CleanerEmail).
		ReplyTo(inq.SenderName, inq.SenderEmail).
		Subject(Subject(inq.CleanerName)).
		Date(date).
		Header(InquiryIDHeader, inq.ID).
		Text([]byte(Body(inq))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build handoff message: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode handoff message: %w", err)
	}
	return buf.Bytes(), nil
}
