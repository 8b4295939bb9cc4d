package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
)

func newTestStore(t *testing.T) (*fileStore, string) {
	tempDir := t.TempDir()
	store, err := NewFileStore(tempDir)
	require.NoError(t, err)
	return store.(*fileStore), tempDir
}

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestValidatePath_PathTraversal(t *testing.T) {
	fs, _ := newTestStore(t)

	tests := []struct {
		name string
		path string
	}{
		{"simple traversal", "../etc/passwd"},
		{"nested traversal", "subdir/../../../etc/passwd"},
		{"absolute", "/etc/passwd"},
		{"base itself", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fs.validatePath(tt.path)
			assert.ErrorIs(t, err, ErrPathTraversal)
		})
	}
}

func TestValidatePath_ValidPath(t *testing.T) {
	fs, tempDir := newTestStore(t)

	result, err := fs.validatePath("inquiries.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result, tempDir))
}

func TestFileStore_KeysNeverEscapeBase(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	err := fs.Put(ctx, "..", []byte("x"))
	assert.ErrorIs(t, err, ErrPathTraversal)

	// A slash inside the key is escaped into the file name
	require.NoError(t, fs.Put(ctx, "a/b", []byte("x")))
	got, err := fs.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestFileStore_PutGetDelete(t *testing.T) {
	fs, tempDir := newTestStore(t)
	ctx := context.Background()

	// Arrange
	require.NoError(t, fs.Put(ctx, "inquiries", []byte(`[{"id":"1"}]`)))

	// Act
	got, err := fs.Get(ctx, "inquiries")

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))
	assert.FileExists(t, filepath.Join(tempDir, "inquiries.json"))

	require.NoError(t, fs.Put(ctx, "inquiries", []byte(`[]`)))
	got, err = fs.Get(ctx, "inquiries")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, fs.Delete(ctx, "inquiries"))
	_, err = fs.Get(ctx, "inquiries")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFileStore_GetMissing_ReturnsNotFound(t *testing.T) {
	fs, _ := newTestStore(t)

	_, err := fs.Get(context.Background(), "cleaners")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestFileStore_DeleteMissing_IsNoop(t *testing.T) {
	fs, _ := newTestStore(t)

	assert.NoError(t, fs.Delete(context.Background(), "nothing"))
}

func TestFileStore_EmptyKey(t *testing.T) {
	fs, _ := newTestStore(t)

	_, err := fs.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestFileStore_PutLeavesNoTempFiles(t *testing.T) {
	fs, tempDir := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, fs.Put(ctx, "inquiries", []byte("[]")))
	}

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_KeysByPrefix(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Put(ctx, "session:b", []byte("{}")))
	require.NoError(t, fs.Put(ctx, "session:a", []byte("{}")))
	require.NoError(t, fs.Put(ctx, "inquiries", []byte("[]")))

	keys, err := fs.Keys(ctx, "session:")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:a", "session:b"}, keys)

	all, err := fs.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFileStore_CancelledContext(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, fs.Put(ctx, "k", []byte("v")), context.Canceled)
}
