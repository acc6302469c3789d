package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/meshkit/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behaviour every BlobStore must share.
func testStore(t *testing.T, store BlobStore) {
	t.Helper()

	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte("hello mesh")
	require.NoError(t, store.Put(ctx, "objects/ab/cdef", data))
	require.NoError(t, store.Put(ctx, "refs/main", []byte("abcdef")))
	require.NoError(t, store.Put(ctx, "refs/dev", []byte("012345")))

	got, err := store.Get(ctx, "objects/ab/cdef")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Stored data is decoupled from the caller's slice.
	data[0] = 'X'
	got, err = store.Get(ctx, "objects/ab/cdef")
	require.NoError(t, err)
	assert.Equal(t, "hello mesh", string(got))

	names, err := store.List(ctx, "refs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/dev", "refs/main"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ok, err := Exists(ctx, store, "refs/main")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(ctx, store, "refs/ma")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "refs/main", []byte("fedcba")))
	got, err = store.Get(ctx, "refs/main")
	require.NoError(t, err)
	assert.Equal(t, "fedcba", string(got))

	require.NoError(t, store.Delete(ctx, "refs/main"))
	require.NoError(t, store.Delete(ctx, "refs/main"))

	_, err = store.Get(ctx, "refs/main")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	testStore(t, NewLocalStore(t.TempDir()))
}

func TestLocalStore_Layout(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "objects/ab/cdef", []byte("x")))

	_, err := os.Stat(filepath.Join(tmpDir, "objects", "ab", "cdef"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(tmpDir, "objects", "ab"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestLocalStore_MissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_FailedPutKeepsOldBlob(t *testing.T) {
	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{name: "torn write", fault: fs.Fault{FailAfterBytes: 2}},
		{name: "sync", fault: fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{name: "close", fault: fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{name: "rename", fault: fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tmpDir := t.TempDir()
			ffs := fs.NewFaultyFS(nil)
			store := NewLocalStore(tmpDir, WithFileSystem(ffs))

			require.NoError(t, store.Put(ctx, "refs/main", []byte("first")))

			ffs.AddRule("refs", tt.fault)
			err := store.Put(ctx, "refs/main", []byte("second"))
			require.ErrorIs(t, err, fs.ErrInjected)
			ffs.Clear()

			got, err := store.Get(ctx, "refs/main")
			require.NoError(t, err)
			assert.Equal(t, "first", string(got))

			entries, err := os.ReadDir(filepath.Join(tmpDir, "refs"))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary file removed after failure")

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"refs/main"}, names)
		})
	}
}

func TestLocalStore_ListPrunes(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	for _, name := range []string{"objects/ab/1", "objects/cd/2", "refs/main", "refs-old"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "objects/ab", want: []string{"objects/ab/1"}},
		{prefix: "ref", want: []string{"refs-old", "refs/main"}},
		{prefix: "refs/", want: []string{"refs/main"}},
		{prefix: "zzz", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			names, err := store.List(ctx, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, store := range map[string]BlobStore{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, store.Put(ctx, "a", nil), context.Canceled)

			_, err := store.Get(ctx, "a")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}
