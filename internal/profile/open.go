package profile

import (
	"context"
	"fmt"

	"github.com/lewisedginton/shopping_chat_client/internal/config"
	"github.com/lewisedginton/shopping_chat_client/internal/storage_manager"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// Open builds the Store for profileName on the configured backend.
func Open(ctx context.Context, cfg config.StorageConfig, profileName string, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case config.StorageRedis:
		log.Info("Using Redis profile storage",
			logger.StringField("addr", cfg.RedisURL),
			logger.IntField("db", cfg.RedisDatabase),
			logger.StringField("profile", profileName))

		client, err := DialRedis(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDatabase)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.RedisKeyPrefix, profileName, cfg.RedisTTL), nil

	case config.StorageLocal, config.StorageS3:
		log.Info("Using file profile storage",
			logger.StringField("backend", cfg.Backend),
			logger.StringField("directory", cfg.LocalDir),
			logger.StringField("bucket", cfg.S3Bucket),
			logger.StringField("profile", profileName))

		sm, err := storage_manager.New(ctx, storage_manager.Config{
			Backend:   storage_manager.BackendType(cfg.Backend),
			LocalDir:  cfg.LocalDir,
			S3Bucket:  cfg.S3Bucket,
			S3Prefix:  cfg.S3Prefix,
			S3Region:  cfg.S3Region,
			S3Profile: cfg.S3Profile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create storage manager: %w", err)
		}
		return NewFileStore(sm.GetProvider(profileName)), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
