package inquiry

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout renders timestamps the way the Croatian locale displays them
const DateLayout = "2. 1. 2006. 15:04:05"

// IDGenerator issues unique ids for inquiries and replies
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues time-ordered UUIDv7 ids
type UUIDGenerator struct{}

// NewID returns a new UUIDv7, falling back to a random UUID if the clock read fails
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// FormatDate formats t with DateLayout in the given location (local time when nil)
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}
