package models

// Inquiry is a message from a sender to a cleaner together with its reply thread.
// Only IsRead and Replies change after creation.
type Inquiry struct {
	ID           string         `json:"id"`
	SenderID     string         `json:"sender_id"`
	SenderName   string         `json:"sender_name"`
	SenderEmail  string         `json:"sender_email"`
	CleanerID    string         `json:"cleaner_id"`
	CleanerName  string         `json:"cleaner_name"`
	CleanerEmail string         `json:"cleaner_email"`
	Message      string         `json:"message"`
	Date         string         `json:"date"`
	IsRead       bool           `json:"is_read"`
	Replies      []MessageReply `json:"replies"`
}

// MessageReply is one entry in an inquiry thread
type MessageReply struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	Date       string `json:"date"`
}

// Clone returns a deep copy so callers never share the replies backing array
func (i Inquiry) Clone() Inquiry {
	out := i
	out.Replies = make([]MessageReply, len(i.Replies))
	copy(out.Replies, i.Replies)
	return out
}

// CleanerRef is the routing triple an inquiry records about its recipient
type CleanerRef struct {
	ID    string `json:"cleaner_id"`
	Name  string `json:"cleaner_name"`
	Email string `json:"cleaner_email"`
}

// InquiryListItem is a lightweight version for inbox views
type InquiryListItem struct {
	ID           string `json:"id"`
	SenderName   string `json:"sender_name"`
	SenderEmail  string `json:"sender_email"`
	CleanerName  string `json:"cleaner_name"`
	CleanerEmail string `json:"cleaner_email"`
	Snippet      string `json:"snippet"`
	Date         string `json:"date"`
	IsRead       bool   `json:"is_read"`
	ReplyCount   int    `json:"reply_count"`
}
