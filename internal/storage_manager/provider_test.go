package storage_manager //nolint:revive // var-naming: using underscores for domain clarity

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memS3 is an in-memory S3Client.
type memS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemS3() *memS3 {
	return &memS3{objects: map[string][]byte{}}
}

func (m *memS3) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *memS3) PutObject(_ context.Context, bucket, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = data
	return nil
}

func (m *memS3) HeadObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[bucket+"/"+key]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *memS3) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+key)
	return nil
}

func exerciseProvider(t *testing.T, p FileProvider) {
	t.Helper()
	ctx := context.Background()

	_, err := p.Read(ctx, "state.json")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := p.Exists(ctx, "state.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.Write(ctx, "state.json", []byte(`{"a":"1"}`)))
	require.NoError(t, p.Write(ctx, "state.json", []byte(`{"a":"2"}`)))

	data, err := p.Read(ctx, "state.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2"}`, string(data))

	ok, err = p.Exists(ctx, "state.json")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, p.Delete(ctx, "state.json"))
	require.NoError(t, p.Delete(ctx, "state.json"))

	_, err = p.Read(ctx, "state.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalFileProvider(t *testing.T) {
	exerciseProvider(t, NewLocalFileProvider(t.TempDir()))
}

func TestLocalFileProviderLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewLocalFileProvider(dir)
	require.NoError(t, p.Write(context.Background(), "nested/state.json", []byte("{}")))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestS3FileProvider(t *testing.T) {
	client := newMemS3()
	exerciseProvider(t, NewS3FileProvider("bucket", "chat", client))

	p := NewS3FileProvider("bucket", "chat", client)
	require.NoError(t, p.Write(context.Background(), "state.json", []byte("{}")))
	_, ok := client.objects["bucket/chat/state.json"]
	assert.True(t, ok, "key should carry the configured prefix")
}

func TestStorageManagerNamespaces(t *testing.T) {
	dir := t.TempDir()
	sm, err := New(context.Background(), Config{Backend: BackendLocal, LocalDir: dir})
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, sm.Backend())

	ctx := context.Background()
	require.NoError(t, sm.GetProvider("alice").Write(ctx, "state.json", []byte(`"a"`)))
	require.NoError(t, sm.GetProvider("bob").Write(ctx, "state.json", []byte(`"b"`)))

	data, err := os.ReadFile(filepath.Join(dir, "alice", "state.json"))
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(data))

	data, err = sm.GetProvider("bob").Read(ctx, "state.json")
	require.NoError(t, err)
	assert.Equal(t, `"b"`, string(data))
}

func TestNewValidation(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{Backend: BackendLocal})
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: BackendS3})
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: "ftp"})
	assert.Error(t, err)
}
