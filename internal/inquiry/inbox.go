package inquiry

import (
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

const snippetLength = 80

// Received returns the inquiries addressed to user's email, in store order
func Received(inquiries []models.Inquiry, user *models.User) []models.Inquiry {
	out := []models.Inquiry{}
	if user == nil {
		return out
	}
	for _, inq := range inquiries {
		if user.MatchesEmail(inq.CleanerEmail) {
			out = append(out, inq)
		}
	}
	return out
}

// Sent returns the inquiries user created, in store order
func Sent(inquiries []models.Inquiry, user *models.User) []models.Inquiry {
	out := []models.Inquiry{}
	if user == nil {
		return out
	}
	for _, inq := range inquiries {
		if inq.SenderID == user.ID {
			out = append(out, inq)
		}
	}
	return out
}

// UnreadCount counts received inquiries whose read flag is false
func UnreadCount(inquiries []models.Inquiry, user *models.User) int {
	if user == nil {
		return 0
	}
	n := 0
	for _, inq := range inquiries {
		if !inq.IsRead && user.MatchesEmail(inq.CleanerEmail) {
			n++
		}
	}
	return n
}

// NewestFirst returns a reversed copy of inquiries
func NewestFirst(inquiries []models.Inquiry) []models.Inquiry {
	out := make([]models.Inquiry, len(inquiries))
	for i, inq := range inquiries {
		out[len(inquiries)-1-i] = inq
	}
	return out
}

// ToListItem summarizes an inquiry for inbox listings
func ToListItem(inq models.Inquiry) models.InquiryListItem {
	snippet := []rune(inq.Message)
	if len(snippet) > snippetLength {
		snippet = append(snippet[:snippetLength], '…')
	}
	return models.InquiryListItem{
		ID:           inq.ID,
		SenderName:   inq.SenderName,
		SenderEmail:  inq.SenderEmail,
		CleanerName:  inq.CleanerName,
		CleanerEmail: inq.CleanerEmail,
		Snippet:      string(snippet),
		Date:         inq.Date,
		IsRead:       inq.IsRead,
		ReplyCount:   len(inq.Replies),
	}
}
