package blobstore

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/meshkit/internal/fs"
)

const tmpPrefix = ".tmp-"

var tmpSeq atomic.Uint64

// LocalStore implements BlobStore using the local file system. Names may
// contain slashes; they map to subdirectories of the root.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem replaces the file system the store writes through.
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fs: fs.Default}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Put writes to a temporary file and renames it into place, so readers see
// either the old blob or the complete new one.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := s.path(name)
	dir := filepath.Dir(dst)

	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := filepath.Join(dir, tmpPrefix+strconv.Itoa(os.Getpid())+"-"+strconv.FormatUint(tmpSeq.Add(1), 10))

	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = s.fs.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	if err := s.fs.Rename(tmp, dst); err != nil {
		return err
	}

	committed = true

	return nil
}

// Get reads the whole file.
func (s *LocalStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(s.fs, s.path(name))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, ErrNotFound
	}

	return data, err
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(s.path(name))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	}

	return err
}

// List walks the root and returns slash-separated names.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	if err := s.walk(ctx, "", prefix, &names); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	slices.Sort(names)

	return names, nil
}

func (s *LocalStore) walk(ctx context.Context, rel, prefix string, names *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := s.fs.ReadDir(s.path(rel))
	if err != nil {
		if rel != "" && errors.Is(err, iofs.ErrNotExist) {
			// Removed concurrently.
			return nil
		}

		return err
	}

	for _, e := range entries {
		name := e.Name()
		if rel != "" {
			name = path.Join(rel, name)
		}

		if e.IsDir() {
			// Skip subtrees that cannot contain the prefix.
			if !strings.HasPrefix(name+"/", prefix) && !strings.HasPrefix(prefix, name+"/") {
				continue
			}

			if err := s.walk(ctx, name, prefix, names); err != nil {
				return err
			}

			continue
		}

		if strings.HasPrefix(e.Name(), tmpPrefix) || !strings.HasPrefix(name, prefix) {
			continue
		}

		*names = append(*names, name)
	}

	return nil
}

var (
	_ BlobStore = (*LocalStore)(nil)
	_ BlobStore = (*MemoryStore)(nil)
)
