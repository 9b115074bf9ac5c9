package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/lewisedginton/shopping_chat_client/internal/storage_manager"
)

const stateFile = "state.json"

// FileStore keeps the whole profile as one JSON object in a storage_manager.FileProvider,
// so it works unchanged on local disk and S3.
type FileStore struct {
	provider storage_manager.FileProvider
	mu       sync.Mutex
	values   map[string]string
}

// NewFileStore creates a FileStore over provider. Nothing is read until first use.
func NewFileStore(provider storage_manager.FileProvider) *FileStore {
	return &FileStore{provider: provider}
}

// load must be called with mu held.
func (s *FileStore) load(ctx context.Context) error {
	if s.values != nil {
		return nil
	}

	data, err := s.provider.Read(ctx, stateFile)
	if errors.Is(err, storage_manager.ErrNotFound) {
		s.values = map[string]string{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	values := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("failed to parse profile: %w", err)
		}
	}
	s.values = values
	return nil
}

// save must be called with mu held.
func (s *FileStore) save(ctx context.Context) error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.provider.Write(ctx, stateFile, data); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return "", false, err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}
	if cur, ok := s.values[key]; ok && cur == value {
		return nil
	}
	s.values[key] = value
	return s.save(ctx)
}

func (s *FileStore) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save(ctx)
}

func (s *FileStore) Close() error { return nil }
