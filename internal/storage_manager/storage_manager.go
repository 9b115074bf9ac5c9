package storage_manager //nolint:revive // var-naming: using underscores for domain clarity

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BackendType represents the type of storage backend.
type BackendType string

const (
	// BackendLocal uses the local filesystem for storage.
	BackendLocal BackendType = "local"
	// BackendS3 uses AWS S3 for storage.
	BackendS3 BackendType = "s3"
)

// Config holds the configuration for the StorageManager.
type Config struct {
	Backend BackendType

	// LocalDir is the root directory for the local backend.
	LocalDir string

	// S3 settings. Client is optional; when nil one is built from the default AWS chain.
	S3Bucket  string
	S3Prefix  string
	S3Region  string
	S3Profile string
	S3Client  *s3.Client
}

// StorageManager hands out namespace-scoped file providers over one backend.
type StorageManager struct {
	backend  BackendType
	provider FileProvider
}

// New creates a new StorageManager with the given configuration.
func New(ctx context.Context, config Config) (*StorageManager, error) {
	var provider FileProvider

	switch config.Backend {
	case BackendLocal:
		if config.LocalDir == "" {
			return nil, fmt.Errorf("base directory is required for local backend")
		}
		if err := os.MkdirAll(config.LocalDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		provider = NewLocalFileProvider(config.LocalDir)

	case BackendS3:
		if config.S3Bucket == "" {
			return nil, fmt.Errorf("bucket is required for s3 backend")
		}
		client := config.S3Client
		if client == nil {
			var err error
			client, err = newS3Client(ctx, config.S3Region, config.S3Profile)
			if err != nil {
				return nil, err
			}
		}
		provider = NewS3FileProvider(config.S3Bucket, config.S3Prefix, NewAWSS3Client(client))

	default:
		return nil, fmt.Errorf("unsupported backend type: %s (must be 'local' or 's3')", config.Backend)
	}

	return &StorageManager{backend: config.Backend, provider: provider}, nil
}

func newS3Client(ctx context.Context, region, profile string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// NewWithProvider creates a StorageManager over a custom FileProvider, mainly for tests.
func NewWithProvider(provider FileProvider) *StorageManager {
	return &StorageManager{provider: provider}
}

// GetProvider returns a FileProvider isolated under namespace, e.g. a profile name.
func (m *StorageManager) GetProvider(namespace string) FileProvider {
	if namespace == "" {
		return m.provider
	}
	return NewPrefixedFileProvider(m.provider, namespace)
}

// Backend returns the configured backend type.
func (m *StorageManager) Backend() BackendType {
	return m.backend
}
