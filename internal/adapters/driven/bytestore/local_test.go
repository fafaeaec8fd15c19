package bytestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockeep/dockeep/internal/core/domain"
)

func newTestStore(t *testing.T) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)
	return store, dir
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestCopy(t *testing.T) {
	store, dir := newTestStore(t)
	src := writeSource(t, "document bytes")

	stored, err := store.Copy(context.Background(), src, "abc-123.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc-123.txt"), stored)

	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "document bytes", string(data))

	// The source is untouched.
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestCopyRefusesOverwrite(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, "first")

	_, err := store.Copy(context.Background(), src, "same-name.txt")
	require.NoError(t, err)

	_, err = store.Copy(context.Background(), src, "same-name.txt")
	assert.Error(t, err, "stored names are unique, never overwritten")
}

func TestCopyMissingSource(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Copy(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), "x.pdf")
	assert.Error(t, err)
}

func TestMove(t *testing.T) {
	store, dir := newTestStore(t)
	src := writeSource(t, "bytes")

	stored, err := store.Copy(context.Background(), src, "old.pdf")
	require.NoError(t, err)

	moved, err := store.Move(context.Background(), stored, "new.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "new.pdf"), moved)

	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(moved)
	assert.NoError(t, err)
}

func TestMoveCollision(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, "bytes")

	first, err := store.Copy(context.Background(), src, "a.pdf")
	require.NoError(t, err)
	_, err = store.Copy(context.Background(), src, "b.pdf")
	require.NoError(t, err)

	_, err = store.Move(context.Background(), first, "b.pdf")
	assert.ErrorIs(t, err, domain.ErrRenameCollision)

	// The original file is still in place after the refused move.
	_, statErr := os.Stat(first)
	assert.NoError(t, statErr)
}

func TestMoveToSameName(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, "bytes")

	stored, err := store.Copy(context.Background(), src, "same.pdf")
	require.NoError(t, err)

	moved, err := store.Move(context.Background(), stored, "same.pdf")
	require.NoError(t, err)
	assert.Equal(t, stored, moved)
}

func TestDeleteAndList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	src := writeSource(t, "bytes")

	a, err := store.Copy(ctx, src, "a.pdf")
	require.NoError(t, err)
	b, err := store.Copy(ctx, src, "b.pdf")
	require.NoError(t, err)

	paths, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, paths)

	require.NoError(t, store.Delete(ctx, a))

	paths, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, paths)
}

func TestSize(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, "12345")

	stored, err := store.Copy(context.Background(), src, "sized.txt")
	require.NoError(t, err)

	size, err := store.Size(context.Background(), stored)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}
