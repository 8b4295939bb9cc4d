package notify

import (
	"io"
	"strings"

	"github.com/jhillyerd/enmime"
)

// ParsedEmail is a handoff message as read back off the wire
type ParsedEmail struct {
	SenderEmail string `json:"sender_email"`
	SenderName  string `json:"sender_name"`
	ReplyTo     string `json:"reply_to"`
	To          string `json:"to"`
	Subject     string `json:"subject"`
	InquiryID   string `json:"inquiry_id,omitempty"`
	Snippet     string `json:"snippet"`
	BodyText    string `json:"body_text"`
}

// ParseEmail parses a message from r
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEmail{
		ReplyTo:   env.GetHeader("Reply-To"),
		To:        env.GetHeader("To"),
		Subject:   env.GetHeader("Subject"),
		InquiryID: env.GetHeader(InquiryIDHeader),
		BodyText:  env.Text,
	}
	if from, err := env.AddressList("From"); err == nil && len(from) > 0 {
		parsed.SenderName = from[0].Name
		parsed.SenderEmail = from[0].Address
	}
	parsed.Snippet = snippet(env.Text)

	return parsed, nil
}

// snippet collapses whitespace and truncates to 255 runes
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > 255 {
		return string(runes[:252]) + "..."
	}
	return text
}
