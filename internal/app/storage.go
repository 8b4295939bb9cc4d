// Package app assembles the persistence layer shared by the API server and sjajctl.
package app

import (
	"fmt"
	"log/slog"

	"github.com/welldanyogia/sjajred-backend/internal/config"
	"github.com/welldanyogia/sjajred-backend/internal/database"
	"github.com/welldanyogia/sjajred-backend/internal/repository"
	"github.com/welldanyogia/sjajred-backend/internal/storage"
	"gorm.io/gorm"
)

// Storage is the key-value store every snapshot lives in
type Storage struct {
	KV storage.KeyValueStore
	DB *gorm.DB // nil on the file backend
}

// OpenStorage opens the backend selected by cfg.StorageBackend
func OpenStorage(cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageFile:
		kv, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		logger.Info("using file storage", slog.String("data_dir", cfg.DataDir))
		return &Storage{KV: kv}, nil

	case config.StorageDatabase:
		db, err := database.Connect(cfg.DatabaseURL, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		return &Storage{KV: repository.NewKVRepository(db), DB: db}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Close releases the database connection, if any
func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return database.Close(s.DB)
}
