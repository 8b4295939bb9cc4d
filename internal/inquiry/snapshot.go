package inquiry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// EncodeSnapshot serializes the collection as an indented JSON array, oldest first
func EncodeSnapshot(inquiries []models.Inquiry) ([]byte, error) {
	out := make([]models.Inquiry, len(inquiries))
	for i, inq := range inquiries {
		out[i] = inq.Clone()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot written by EncodeSnapshot. An empty
// payload decodes to an empty collection; duplicate ids are rejected.
func DecodeSnapshot(data []byte) ([]models.Inquiry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Inquiry{}, nil
	}

	var inquiries []models.Inquiry
	if err := json.Unmarshal(data, &inquiries); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if inquiries == nil {
		return []models.Inquiry{}, nil
	}

	seen := make(map[string]struct{}, len(inquiries))
	for i := range inquiries {
		id := inquiries[i].ID
		if id == "" {
			return nil, fmt.Errorf("decode snapshot: inquiry at position %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("decode snapshot: duplicate inquiry id %q", id)
		}
		seen[id] = struct{}{}
		if inquiries[i].Replies == nil {
			inquiries[i].Replies = []models.MessageReply{}
		}
	}
	return inquiries, nil
}
