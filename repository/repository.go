package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/minio/blake2b-simd"

	"github.com/hupe1980/meshkit/blobstore"
	"github.com/hupe1980/meshkit/codec"
	"github.com/hupe1980/meshkit/mesh"
)

const (
	objectsPrefix = "objects/"
	refsPrefix    = "refs/"
)

var (
	// ErrNotFound is returned for unknown refs and tags.
	ErrNotFound = errors.New("repository: not found")
	// ErrInvalidRef is returned for malformed refs and tag names.
	ErrInvalidRef = errors.New("repository: invalid ref")
	// ErrCorrupt is returned when stored bytes no longer match their ref.
	ErrCorrupt = errors.New("repository: corrupt object")
)

// Ref is the content address of a snapshot: the unpadded base64url
// blake2b-256 hash of its encoded frame.
type Ref string

// refSize is the length of a blake2b-256 digest.
const refSize = 32

func refOf(data []byte) Ref {
	sum := blake2b.Sum256(data)
	return Ref(base64.RawURLEncoding.EncodeToString(sum[:]))
}

// Valid reports whether r looks like a ref produced by Save.
func (r Ref) Valid() bool {
	b, err := base64.RawURLEncoding.DecodeString(string(r))
	return err == nil && len(b) == refSize
}

func (r Ref) String() string { return string(r) }

// Repository stores snapshots. Safe for concurrent use.
type Repository struct {
	store blobstore.BlobStore
	codec codec.Codec
	comp  codec.Compression
	cache *lru.ARCCache
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	codec     codec.Codec
	comp      codec.Compression
	cacheSize int
}

// WithCodec sets the codec snapshots are written with. Reading never
// depends on it.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithCompression sets the frame compression.
func WithCompression(c codec.Compression) Option {
	return func(o *options) { o.comp = c }
}

// WithCacheSize sets the number of decoded documents kept in memory. Zero
// disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// New creates a repository over store.
func New(store blobstore.BlobStore, opts ...Option) (*Repository, error) {
	o := options{
		codec:     codec.Default,
		comp:      codec.CompressionZstd,
		cacheSize: 64,
	}

	for _, fn := range opts {
		fn(&o)
	}

	r := &Repository{store: store, codec: o.codec, comp: o.comp}

	if o.cacheSize > 0 {
		cache, err := lru.NewARC(o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("repository: cache: %w", err)
		}

		r.cache = cache
	}

	return r, nil
}

// Save stores m and returns its ref. Saving an identical snapshot again is
// a no-op.
func (r *Repository) Save(ctx context.Context, m mesh.Reader) (Ref, error) {
	doc := codec.FromMesh(m)

	data, err := codec.Encode(doc, r.codec, r.comp)
	if err != nil {
		return "", err
	}

	ref := refOf(data)

	if r.cache != nil && r.cache.Contains(ref) {
		return ref, nil
	}

	if err := r.store.Put(ctx, objectsPrefix+string(ref), data); err != nil {
		return "", fmt.Errorf("repository: store %s: %w", ref, err)
	}

	if r.cache != nil {
		r.cache.Add(ref, doc)
	}

	return ref, nil
}

// Load rebuilds the snapshot stored under ref.
func (r *Repository) Load(ctx context.Context, ref Ref) (*mesh.Mesh, error) {
	doc, err := r.document(ctx, ref)
	if err != nil {
		return nil, err
	}

	return doc.Mesh()
}

func (r *Repository) document(ctx context.Context, ref Ref) (*codec.Document, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	if r.cache != nil {
		if v, ok := r.cache.Get(ref); ok {
			return v.(*codec.Document), nil
		}
	}

	data, err := r.store.Get(ctx, objectsPrefix+string(ref))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}

		return nil, fmt.Errorf("repository: fetch %s: %w", ref, err)
	}

	if refOf(data) != ref {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, ref)
	}

	doc, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, ref, err)
	}

	if r.cache != nil {
		r.cache.Add(ref, doc)
	}

	return doc, nil
}

// Has reports whether ref is stored.
func (r *Repository) Has(ctx context.Context, ref Ref) (bool, error) {
	if !ref.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	return blobstore.Exists(ctx, r.store, objectsPrefix+string(ref))
}

// Refs lists every stored snapshot.
func (r *Repository) Refs(ctx context.Context) ([]Ref, error) {
	names, err := r.store.List(ctx, objectsPrefix)
	if err != nil {
		return nil, err
	}

	refs := make([]Ref, 0, len(names))
	for _, name := range names {
		refs = append(refs, Ref(strings.TrimPrefix(name, objectsPrefix)))
	}

	return refs, nil
}

// Delete removes a snapshot. Tags pointing at it are left dangling.
func (r *Repository) Delete(ctx context.Context, ref Ref) error {
	if !ref.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	if r.cache != nil {
		r.cache.Remove(ref)
	}

	return r.store.Delete(ctx, objectsPrefix+string(ref))
}

func checkTag(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: tag %q", ErrInvalidRef, name)
	}

	return nil
}

// Tag points name at ref. The snapshot must exist.
func (r *Repository) Tag(ctx context.Context, name string, ref Ref) error {
	if err := checkTag(name); err != nil {
		return err
	}

	ok, err := r.Has(ctx, ref)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	return r.store.Put(ctx, refsPrefix+name, []byte(ref))
}

// Resolve returns the ref a tag points to.
func (r *Repository) Resolve(ctx context.Context, name string) (Ref, error) {
	if err := checkTag(name); err != nil {
		return "", err
	}

	data, err := r.store.Get(ctx, refsPrefix+name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", fmt.Errorf("%w: tag %q", ErrNotFound, name)
		}

		return "", err
	}

	ref := Ref(strings.TrimSpace(string(data)))
	if !ref.Valid() {
		return "", fmt.Errorf("%w: tag %q holds %q", ErrCorrupt, name, data)
	}

	return ref, nil
}

// Untag removes a tag.
func (r *Repository) Untag(ctx context.Context, name string) error {
	if err := checkTag(name); err != nil {
		return err
	}

	return r.store.Delete(ctx, refsPrefix+name)
}

// Tags lists tag names in sorted order.
func (r *Repository) Tags(ctx context.Context) ([]string, error) {
	names, err := r.store.List(ctx, refsPrefix)
	if err != nil {
		return nil, err
	}

	for i, name := range names {
		names[i] = strings.TrimPrefix(name, refsPrefix)
	}

	return names, nil
}

// LoadTag resolves name and loads the snapshot.
func (r *Repository) LoadTag(ctx context.Context, name string) (*mesh.Mesh, error) {
	ref, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	return r.Load(ctx, ref)
}
