package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meshkit/blobstore"
	"github.com/hupe1980/meshkit/codec"
	"github.com/hupe1980/meshkit/testutil"
)

func newRepo(t *testing.T, store blobstore.BlobStore, opts ...Option) *Repository {
	t.Helper()

	r, err := New(store, opts...)
	require.NoError(t, err)

	return r
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		opts []Option
	}{
		{"default", nil},
		{"json lz4 uncached", []Option{WithCodec(codec.JSON{}), WithCompression(codec.CompressionLZ4), WithCacheSize(0)}},
		{"yaml raw", []Option{WithCodec(codec.YAML{}), WithCompression(codec.CompressionNone)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			repo := newRepo(t, store, tt.opts...)
			m := testutil.QuadGrid(3, 2, 0)

			ref, err := repo.Save(ctx, m)
			require.NoError(t, err)
			assert.True(t, ref.Valid())

			again, err := repo.Save(ctx, m)
			require.NoError(t, err)
			assert.Equal(t, ref, again, "content addressed")

			refs, err := repo.Refs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []Ref{ref}, refs)

			got, err := repo.Load(ctx, ref)
			require.NoError(t, err)
			assert.Equal(t, testutil.Connectivity(m), testutil.Connectivity(got))

			// A fresh repository over the same store reads it back.
			got, err = newRepo(t, store).Load(ctx, ref)
			require.NoError(t, err)
			assert.Equal(t, m.NumNodes(), got.NumNodes())
		})
	}
}

func TestLoadIsIndependent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, blobstore.NewMemoryStore())

	ref, err := repo.Save(ctx, testutil.QuadGrid(1, 1, 0))
	require.NoError(t, err)

	a, err := repo.Load(ctx, ref)
	require.NoError(t, err)

	v, err := a.BorrowMut()
	require.NoError(t, err)
	require.NoError(t, v.SetCoord(0, []float64{-5, -5}))
	v.Release()

	b, err := repo.Load(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, b.Coord(0))
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, blobstore.NewLocalStore(t.TempDir()))

	r1, err := repo.Save(ctx, testutil.QuadGrid(1, 1, 0))
	require.NoError(t, err)
	r2, err := repo.Save(ctx, testutil.QuadGrid(2, 1, 0))
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2)

	require.NoError(t, repo.Tag(ctx, "main", r1))
	require.NoError(t, repo.Tag(ctx, "dev", r2))
	require.NoError(t, repo.Tag(ctx, "main", r2))

	got, err := repo.Resolve(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, r2, got)

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "main"}, tags)

	m, err := repo.LoadTag(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, 6, m.NumNodes())

	require.NoError(t, repo.Untag(ctx, "dev"))
	_, err = repo.Resolve(ctx, "dev")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	repo := newRepo(t, store, WithCacheSize(0))

	ref, err := repo.Save(ctx, testutil.QuadGrid(1, 1, 0))
	require.NoError(t, err)

	other, err := newRepo(t, blobstore.NewMemoryStore()).Save(ctx, testutil.QuadGrid(4, 4, 0))
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"bad ref", func() error { _, err := repo.Load(ctx, "nope"); return err }, ErrInvalidRef},
		{"unknown ref", func() error { _, err := repo.Load(ctx, other); return err }, ErrNotFound},
		{"tag unknown ref", func() error { return repo.Tag(ctx, "main", other) }, ErrNotFound},
		{"bad tag", func() error { return repo.Tag(ctx, "a/b", ref) }, ErrInvalidRef},
		{"empty tag", func() error { _, err := repo.Resolve(ctx, ""); return err }, ErrInvalidRef},
		{"unknown tag", func() error { _, err := repo.Resolve(ctx, "main"); return err }, ErrNotFound},
		{"delete bad ref", func() error { return repo.Delete(ctx, "x") }, ErrInvalidRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}

	t.Run("corrupt object", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, objectsPrefix+string(ref), []byte("garbage")))

		_, err := repo.Load(ctx, ref)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestRefValid(t *testing.T) {
	ref := refOf([]byte("frame"))
	assert.Len(t, ref.String(), 43)

	tests := []struct {
		ref  Ref
		want bool
	}{
		{ref, true},
		{"", false},
		{ref[:42], false},
		{ref + "A", false},
		{"!!!!", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.ref), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Valid())
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, blobstore.NewMemoryStore())

	ref, err := repo.Save(ctx, testutil.QuadGrid(1, 1, 0))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, ref))

	ok, err := repo.Has(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Load(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)

	// Saving again after a delete stores the object again.
	_, err = repo.Save(ctx, testutil.QuadGrid(1, 1, 0))
	require.NoError(t, err)

	ok, err = repo.Has(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)
}
