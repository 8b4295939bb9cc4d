package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/welldanyogia/sjajred-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRepository defines the interface for snapshot data access
type KVRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// kvRepository implements KVRepository using GORM
type kvRepository struct {
	db *gorm.DB
}

// NewKVRepository creates a new KVRepository instance
func NewKVRepository(db *gorm.DB) KVRepository {
	return &kvRepository{db: db}
}

// Get retrieves the value stored under key
func (r *kvRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("empty key: %w", ErrInvalidInput)
	}

	var entry models.KVEntry
	result := r.db.WithContext(ctx).Where(&models.KVEntry{Key: key}).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get key %q: %w", key, result.Error)
	}
	return []byte(entry.Value), nil
}

// Put inserts or replaces the value stored under key
func (r *kvRepository) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", ErrInvalidInput)
	}

	entry := models.KVEntry{Key: key, Value: string(value)}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("key %q written concurrently: %w", key, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to put key %q: %w", key, result.Error)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *kvRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", ErrInvalidInput)
	}

	result := r.db.WithContext(ctx).Where(&models.KVEntry{Key: key}).Delete(&models.KVEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, result.Error)
	}
	return nil
}

// Keys lists stored keys starting with prefix, sorted
func (r *kvRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	result := r.db.WithContext(ctx).
		Model(&models.KVEntry{}).
		Where(clause.Like{Column: clause.Column{Name: "key"}, Value: prefix + "%"}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Pluck("key", &keys)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list keys: %w", result.Error)
	}

	// LIKE wildcards inside prefix can only widen the match; trim back to exact prefixes.
	matched := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}
