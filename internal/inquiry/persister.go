package inquiry

import (
	"context"
	"fmt"

	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/models"
	"github.com/welldanyogia/sjajred-backend/internal/storage"
)

// SnapshotKey is the key the inquiry collection is stored under
const SnapshotKey = "inquiries"

// Persister loads and saves the full inquiry collection
type Persister interface {
	Load(ctx context.Context) ([]models.Inquiry, error)
	Save(ctx context.Context, inquiries []models.Inquiry) error
}

// KVPersister stores the snapshot as one value in a KeyValueStore
type KVPersister struct {
	kv  storage.KeyValueStore
	key string
}

// NewKVPersister creates a Persister writing under SnapshotKey
func NewKVPersister(kv storage.KeyValueStore) *KVPersister {
	return &KVPersister{kv: kv, key: SnapshotKey}
}

// Load returns the stored collection. A key that was never written is an empty collection.
func (p *KVPersister) Load(ctx context.Context) ([]models.Inquiry, error) {
	data, err := p.kv.Get(ctx, p.key)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return []models.Inquiry{}, nil
		}
		return nil, fmt.Errorf("load %s: %w: %w", p.key, apperrors.ErrPersistence, err)
	}

	inquiries, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", p.key, apperrors.ErrPersistence, err)
	}
	return inquiries, nil
}

// Save replaces the stored collection
func (p *KVPersister) Save(ctx context.Context, inquiries []models.Inquiry) error {
	data, err := EncodeSnapshot(inquiries)
	if err != nil {
		return fmt.Errorf("save %s: %w: %w", p.key, apperrors.ErrPersistence, err)
	}
	if err := p.kv.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("save %s: %w: %w", p.key, apperrors.ErrPersistence, err)
	}
	return nil
}
