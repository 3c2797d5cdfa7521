package main

import (
	"context"
	"fmt"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/config"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/db"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/storage"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/store"

	"go.uber.org/zap"
)

// openStore connects the configured medication store
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; medications are lost on restart")
		return store.NewMemoryStore(), nil
	case config.StoreSQLite:
		st, err := store.NewSQLiteStore(store.WithDSN(cfg.SQLitePath))
		if err != nil {
			return nil, err
		}
		logger.Info("Using SQLite store", zap.String("path", cfg.SQLitePath))
		return st, nil
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// openArchive connects the export archive backend
func openArchive(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.ExportBackend {
	case config.ExportMinio:
		archive, err := storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Archiving exports to MinIO",
			zap.String("endpoint", cfg.Minio.Endpoint),
			zap.String("bucket", cfg.Minio.Bucket))
		return archive, nil
	default:
		archive, err := storage.NewLocalStorage(cfg.ExportDir)
		if err != nil {
			return nil, err
		}
		logger.Info("Archiving exports to disk", zap.String("dir", cfg.ExportDir))
		return archive, nil
	}
}
