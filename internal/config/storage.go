package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Storage backends for the profile store
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageRedis = "redis"
)

// StorageConfig holds profile persistence configuration
type StorageConfig struct {
	Backend   string `env:"STORAGE_BACKEND" yaml:"backend" default:"local"`                     // "local", "s3", or "redis"
	LocalDir  string `env:"STORAGE_LOCAL_DIR" yaml:"local_dir" default:"./.shopping-chat"`      // Base directory for local storage
	S3Bucket  string `env:"STORAGE_S3_BUCKET" yaml:"s3_bucket"`                                 // S3 bucket name
	S3Prefix  string `env:"STORAGE_S3_PREFIX" yaml:"s3_prefix"`                                 // S3 object key prefix (optional)
	S3Region  string `env:"STORAGE_S3_REGION" yaml:"s3_region"`                                 // AWS region
	S3Profile string `env:"STORAGE_S3_PROFILE" yaml:"s3_profile"`                               // AWS profile name (optional)

	RedisURL       string        `env:"REDIS_URL" yaml:"redis_url" default:"localhost:6379"` // host:port
	RedisPassword  string        `env:"REDIS_PASSWORD" yaml:"redis_password"`
	RedisDatabase  int           `env:"REDIS_DATABASE" yaml:"redis_database" default:"0"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX" yaml:"redis_key_prefix" default:"shopping_chat"`
	RedisTTL       time.Duration `env:"REDIS_TTL" yaml:"redis_ttl"` // zero keeps keys forever
}

// Validate checks the backend-specific fields
func (s StorageConfig) Validate() error {
	var result error
	switch s.Backend {
	case StorageLocal:
		if s.LocalDir == "" {
			result = multierror.Append(result, fmt.Errorf("storage local_dir is required for the local backend"))
		}
	case StorageS3:
		if s.S3Bucket == "" {
			result = multierror.Append(result, fmt.Errorf("storage s3_bucket is required for the s3 backend"))
		}
	case StorageRedis:
		if s.RedisURL == "" {
			result = multierror.Append(result, fmt.Errorf("storage redis_url is required for the redis backend"))
		}
		if s.RedisDatabase < 0 {
			result = multierror.Append(result, fmt.Errorf("storage redis_database cannot be negative"))
		}
		if s.RedisTTL < 0 {
			result = multierror.Append(result, fmt.Errorf("storage redis_ttl cannot be negative"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported storage backend: %s (must be 'local', 's3' or 'redis')", s.Backend))
	}
	return result
}
