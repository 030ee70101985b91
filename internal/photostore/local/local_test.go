package local

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/artcatalog/internal/domain"
)

func TestLocalPhotoStoreSaveAndLoad(t *testing.T) {
	store := NewLocalPhotoStore(t.TempDir())
	ctx := context.Background()
	imageData := []byte("fake png data")

	id, err := store.Save(ctx, "image/png", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, ".png"))

	data, mimeType, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, imageData, data)
}

func TestLocalPhotoStoreRoundTripArbitraryBytes(t *testing.T) {
	store := NewLocalPhotoStore(t.TempDir())
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for _, size := range []int{0, 1, 255, 4096, 1 << 20} {
		payload := make([]byte, size)
		rng.Read(payload)

		id, err := store.Save(ctx, "application/octet-stream", bytes.NewReader(payload))
		require.NoError(t, err)

		data, _, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(payload, data), "size %d", size)
	}
}

func TestLocalPhotoStoreGeneratesUniqueIDs(t *testing.T) {
	store := NewLocalPhotoStore(t.TempDir())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := store.Save(ctx, "image/jpeg", bytes.NewReader([]byte{0xFF, 0xD8}))
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestLocalPhotoStoreCreatesDirectoryLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Photos")
	store := NewLocalPhotoStore(dir)
	ctx := context.Background()

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "directory must not exist before first save")

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = store.Save(ctx, "image/png", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalPhotoStoreDeleteIsIdempotent(t *testing.T) {
	store := NewLocalPhotoStore(t.TempDir())
	ctx := context.Background()

	id, err := store.Save(ctx, "image/png", bytes.NewReader([]byte("test data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))

	_, _, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalPhotoStoreNotFound(t *testing.T) {
	store := NewLocalPhotoStore(t.TempDir())

	_, _, err := store.Load(context.Background(), "nonexistent.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalPhotoStoreList(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalPhotoStore(dir)
	ctx := context.Background()

	a, err := store.Save(ctx, "image/png", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	b, err := store.Save(ctx, "image/jpeg", bytes.NewReader([]byte("b")))
	require.NoError(t, err)
	// A leftover temp file from an interrupted save is not a stored photo.
	require.NoError(t, os.WriteFile(filepath.Join(dir, tempPrefix+"123"), []byte("partial"), 0644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, ids)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("camera roll unavailable") }

func TestLocalPhotoStoreSave_WriteFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalPhotoStore(dir)
	ctx := context.Background()

	_, err := store.Save(ctx, "image/png", failingReader{})
	assert.ErrorIs(t, err, domain.ErrStorageWrite)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalPhotoStoreSave_UnwritableDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "blocked")
	// A regular file where the directory should be makes MkdirAll fail.
	require.NoError(t, os.WriteFile(base, []byte("not a dir"), 0644))
	store := NewLocalPhotoStore(base)

	_, err := store.Save(context.Background(), "image/png", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, domain.ErrStorageWrite)
}

func TestLocalPhotoStorePathTraversal(t *testing.T) {
	store := NewLocalPhotoStore(t.TempDir())
	ctx := context.Background()

	_, _, err := store.Load(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "../outside.png"), domain.ErrNotFound)
}

func TestLocalPhotoStoreInvalidIDs(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalPhotoStore(dir)
	ctx := context.Background()

	_, err := store.Save(ctx, "image/png", bytes.NewReader([]byte("keep me")))
	require.NoError(t, err)

	for _, id := range []string{"", ".", "sub/photo.png", ".tmp-123"} {
		_, _, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "load %q", id)
		assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrNotFound, "delete %q", id)
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
