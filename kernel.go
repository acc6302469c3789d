package meshkit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hupe1980/meshkit/blobstore"
	"github.com/hupe1980/meshkit/canon"
	"github.com/hupe1980/meshkit/combine"
	"github.com/hupe1980/meshkit/crack"
	"github.com/hupe1980/meshkit/field"
	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/merge"
	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/repository"
	"github.com/hupe1980/meshkit/selector"
	"github.com/hupe1980/meshkit/spatial"
	"github.com/hupe1980/meshkit/topology"
)

// Kernel applies one configuration (tolerance, equivalence mode, geometric
// predicates, logging and metrics) to every mesh operation. It holds no mesh
// state and is safe for concurrent use.
type Kernel struct {
	o    options
	repo *repository.Repository
}

// New creates a kernel.
func New(optFns ...Option) (*Kernel, error) {
	o := applyOptions(optFns)

	if o.tolerance < 0 {
		return nil, &StructuralError{Op: "new kernel", Detail: "tolerance must not be negative"}
	}

	k := &Kernel{o: o}

	if o.store != nil {
		store := o.store
		if o.throttle != (blobstore.ThrottleConfig{}) {
			store = blobstore.NewThrottledStore(store, o.throttle)
		}

		repo, err := repository.New(store,
			repository.WithCodec(o.codec),
			repository.WithCompression(o.compression),
			repository.WithCacheSize(o.cacheSize),
		)
		if err != nil {
			return nil, err
		}

		k.repo = repo
	}

	return k, nil
}

// Tolerance returns the merge tolerance.
func (k *Kernel) Tolerance() float64 { return k.o.tolerance }

// Mode returns the equivalence mode.
func (k *Kernel) Mode() canon.Mode { return k.o.mode }

// Predicates returns the geometric predicates.
func (k *Kernel) Predicates() geom.Predicates { return k.o.pred }

// Logger returns the configured logger.
func (k *Kernel) Logger() *Logger { return k.o.logger }

func (k *Kernel) observe(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	k.o.metricsCollector.RecordOperation(op, time.Since(start), err)
	k.o.logger.LogOperation(ctx, op, append(attrs, slog.Duration("duration", time.Since(start))), err)
}

func (k *Kernel) rejections(ctx context.Context, op string, n int, err error) {
	if n == 0 {
		return
	}

	k.o.metricsCollector.RecordRejections(op, n)
	k.o.logger.LogRejections(ctx, op, n, err)
}

func meshAttrs(prefix string, r mesh.Reader) []slog.Attr {
	if r == nil {
		return nil
	}

	return []slog.Attr{
		slog.Int(prefix+"nodes", r.NumNodes()),
		slog.Int(prefix+"elements", mesh.NumElements(r)),
	}
}

func (k *Kernel) topologyOptions(extra []topology.Option) []topology.Option {
	opts := make([]topology.Option, 0, len(extra)+1)
	if k.o.parallelism > 1 {
		opts = append(opts, topology.WithParallelism(k.o.parallelism))
	}

	return append(opts, extra...)
}

// Descend builds the descending mesh of src.
func (k *Kernel) Descend(ctx context.Context, src mesh.Reader, opts ...topology.Option) (*topology.Descent, error) {
	start := time.Now()
	d, err := topology.Descend(src, k.o.mode, k.topologyOptions(opts)...)

	var attrs []slog.Attr
	if d != nil {
		attrs = append(meshAttrs("", d.Mesh()), slog.Int("source_dim", int(d.SourceDim())), slog.Int("target_dim", int(d.TargetDim())))
	}

	k.observe(ctx, "descend", start, err, attrs...)

	return d, err
}

// Boundary returns the sub-entities of src with exactly one parent.
func (k *Kernel) Boundary(ctx context.Context, src mesh.Reader, opts ...topology.Option) (*mesh.Mesh, error) {
	start := time.Now()
	b, err := topology.Boundary(src, k.o.mode, k.topologyOptions(opts)...)

	var attrs []slog.Attr
	if b != nil {
		attrs = meshAttrs("", b)
	}

	k.observe(ctx, "boundary", start, err, attrs...)

	return b, err
}

// Neighbors returns the element adjacency graph of src.
func (k *Kernel) Neighbors(ctx context.Context, src mesh.Reader, opts ...topology.Option) (*topology.Graph, error) {
	start := time.Now()
	g, err := topology.Neighbors(src, k.o.mode, k.topologyOptions(opts)...)

	var attrs []slog.Attr
	if g != nil {
		attrs = []slog.Attr{slog.Int("elements", g.Len()), slog.Int("edges", g.NumEdges())}
	}

	k.observe(ctx, "neighbors", start, err, attrs...)

	return g, err
}

// ConnectedComponents partitions the elements of src by adjacency.
func (k *Kernel) ConnectedComponents(ctx context.Context, src mesh.Reader, opts ...topology.Option) ([][]mesh.ElementID, error) {
	start := time.Now()
	comps, err := topology.ConnectedComponents(src, k.o.mode, k.topologyOptions(opts)...)
	k.observe(ctx, "connected_components", start, err, slog.Int("components", len(comps)))

	return comps, err
}

// Validate checks src for degenerate elements and non-manifold faces.
func (k *Kernel) Validate(ctx context.Context, src mesh.Reader) error {
	start := time.Now()
	err := topology.Validate(src, k.o.mode, k.o.pred)
	k.observe(ctx, "validate", start, err, meshAttrs("", src)...)

	return err
}

func (k *Kernel) mergeOptions() []merge.Option {
	opts := []merge.Option{merge.WithPredicates(k.o.pred), merge.WithRepresentative(k.o.representative)}
	if k.o.strict {
		opts = append(opts, merge.WithStrict())
	}

	return opts
}

// MergeNodes merges the nodes of src closer than the tolerance.
func (k *Kernel) MergeNodes(ctx context.Context, src mesh.Reader) (*merge.Result, error) {
	start := time.Now()
	res, err := merge.MergeNodes(src, k.o.tolerance, k.mergeOptions()...)

	attrs := []slog.Attr{slog.Float64("tolerance", k.o.tolerance)}
	if res != nil {
		attrs = append(attrs, slog.Int("clusters", len(res.Merged)), slog.Int("nodes", res.Mesh.NumNodes()))
		k.rejections(ctx, "merge_nodes", res.Diagnostics.Len(), res.Diagnostics.Err())
	}

	k.observe(ctx, "merge_nodes", start, err, attrs...)

	return res, err
}

// Snap moves the nodes of subject onto unique reference nodes within the
// tolerance.
func (k *Kernel) Snap(ctx context.Context, subject, reference mesh.Reader) (*merge.SnapResult, error) {
	start := time.Now()
	res, err := merge.Snap(subject, reference, k.o.tolerance, k.mergeOptions()...)

	attrs := []slog.Attr{slog.Float64("tolerance", k.o.tolerance)}
	if res != nil {
		attrs = append(attrs, slog.Int("moved", res.Moved))
		k.rejections(ctx, "snap", res.Diagnostics.Len(), res.Diagnostics.Err())
	}

	k.observe(ctx, "snap", start, err, attrs...)

	return res, err
}

// Crack duplicates the nodes of src along cut.
func (k *Kernel) Crack(ctx context.Context, src, cut mesh.Reader) (*crack.Result, error) {
	start := time.Now()
	res, err := crack.Crack(src, cut, k.o.mode)

	var attrs []slog.Attr
	if res != nil {
		attrs = []slog.Attr{slog.Int("duplicated", len(res.Origin)), slog.Int("ignored", res.Ignored)}
	}

	k.observe(ctx, "crack", start, err, attrs...)

	return res, err
}

// Aggregate concatenates meshes without any geometric processing.
func (k *Kernel) Aggregate(ctx context.Context, meshes ...mesh.Reader) (*combine.Result, error) {
	start := time.Now()
	res, err := combine.Aggregate(meshes...)
	k.finishCombine(ctx, "aggregate", start, res, err)

	return res, err
}

func (k *Kernel) combineOptions() []combine.Option {
	opts := []combine.Option{
		combine.WithPredicates(k.o.pred),
		combine.WithTolerance(k.o.tolerance),
		combine.WithReduction(k.o.reduction),
	}

	if k.o.triangulate {
		opts = append(opts, combine.WithTriangulate())
	}

	if k.o.strict {
		opts = append(opts, combine.WithStrict())
	}

	return opts
}

func (k *Kernel) finishCombine(ctx context.Context, op string, start time.Time, res *combine.Result, err error) {
	var attrs []slog.Attr
	if res != nil {
		attrs = meshAttrs("", res.Mesh)
		k.rejections(ctx, op, res.Diagnostics.Len(), res.Diagnostics.Err())
	}

	k.observe(ctx, op, start, err, attrs...)
}

type combineFunc func(a, b mesh.Reader, opts ...combine.Option) (*combine.Result, error)

func (k *Kernel) combine(ctx context.Context, op string, fn combineFunc, a, b mesh.Reader) (*combine.Result, error) {
	start := time.Now()
	res, err := fn(a, b, k.combineOptions()...)
	k.finishCombine(ctx, op, start, res, err)

	return res, err
}

// Fuse returns the conforming union of a and b.
func (k *Kernel) Fuse(ctx context.Context, a, b mesh.Reader) (*combine.Result, error) {
	return k.combine(ctx, "fuse", combine.Fuse, a, b)
}

// Intersect returns the region covered by both a and b.
func (k *Kernel) Intersect(ctx context.Context, a, b mesh.Reader) (*combine.Result, error) {
	return k.combine(ctx, "intersect", combine.Intersect, a, b)
}

// Subtract returns the region of a not covered by b.
func (k *Kernel) Subtract(ctx context.Context, a, b mesh.Reader) (*combine.Result, error) {
	return k.combine(ctx, "subtract", combine.Subtract, a, b)
}

// Split returns a cut along the cells of b.
func (k *Kernel) Split(ctx context.Context, a, b mesh.Reader) (*combine.Result, error) {
	return k.combine(ctx, "split", combine.Split, a, b)
}

// Conformize resolves overlaps and hanging nodes inside one mesh.
func (k *Kernel) Conformize(ctx context.Context, m mesh.Reader) (*combine.Result, error) {
	start := time.Now()
	res, err := combine.Conformize(m, k.combineOptions()...)
	k.finishCombine(ctx, "conformize", start, res, err)

	return res, err
}

// Select evaluates s over every element of r and extracts the matches.
func (k *Kernel) Select(ctx context.Context, r mesh.Reader, s selector.Selector) (*mesh.IDSet, *mesh.Mesh, error) {
	start := time.Now()
	ids, sub, err := selector.Select(r, s)

	var attrs []slog.Attr
	if ids != nil {
		attrs = []slog.Attr{slog.Int("selected", ids.Len())}
	}

	k.observe(ctx, "select", start, err, attrs...)

	return ids, sub, err
}

// Measure stores the length, area or volume of every element of m's
// topological dimension as the field name, using the kernel's predicates.
func (k *Kernel) Measure(ctx context.Context, m *mesh.Mesh, name string) error {
	start := time.Now()

	err := k.assign(m, func(v *mesh.ViewMut) error { return field.AssignMeasure(v, k.o.pred, name) })
	k.observe(ctx, "measure", start, err, slog.String("field", name))

	return err
}

// AssignField evaluates e over the elements of dimension dim of m and stores
// the result as the field name.
func (k *Kernel) AssignField(ctx context.Context, m *mesh.Mesh, name string, e field.Expr, dim mesh.Dimension) error {
	start := time.Now()

	err := k.assign(m, func(v *mesh.ViewMut) error { return field.Assign(v, name, e, dim) })
	k.observe(ctx, "assign_field", start, err, slog.String("field", name), slog.String("expr", e.String()))

	return err
}

func (k *Kernel) assign(m *mesh.Mesh, fn func(v *mesh.ViewMut) error) error {
	v, err := m.BorrowMut()
	if err != nil {
		return err
	}
	defer v.Release()

	return fn(v)
}

// Locate returns the elements of r of its topological dimension whose
// closure contains p.
func (k *Kernel) Locate(ctx context.Context, r mesh.Reader, p []float64) ([]mesh.ElementID, error) {
	start := time.Now()

	var (
		ids []mesh.ElementID
		err error
	)

	if len(p) != r.SpaceDim() {
		err = &DimensionError{Op: "locate", SpaceDim: r.SpaceDim(), Detail: "point has a different dimension"}
	} else if d := mesh.TopologicalDimension(r); d >= 0 {
		ids = spatial.NewLocator(r, k.o.pred, d).Locate(p)
	}

	k.observe(ctx, "locate", start, err, slog.Int("found", len(ids)))

	return ids, err
}

// Repository returns the snapshot repository, or nil without a store.
func (k *Kernel) Repository() *repository.Repository { return k.repo }

// Save stores a snapshot of m and returns its ref.
func (k *Kernel) Save(ctx context.Context, m mesh.Reader) (repository.Ref, error) {
	if k.repo == nil {
		return "", ErrNoRepository
	}

	start := time.Now()
	ref, err := k.repo.Save(ctx, m)
	k.o.metricsCollector.RecordOperation("save", time.Since(start), err)
	k.o.logger.LogSnapshot(ctx, "saved", ref.String(), err)

	return ref, err
}

// Load rebuilds a snapshot. name is either a ref or a tag.
func (k *Kernel) Load(ctx context.Context, name string) (*mesh.Mesh, error) {
	if k.repo == nil {
		return nil, ErrNoRepository
	}

	start := time.Now()

	ref := repository.Ref(name)
	if !ref.Valid() {
		resolved, err := k.repo.Resolve(ctx, name)
		if err != nil {
			k.o.metricsCollector.RecordOperation("load", time.Since(start), err)
			k.o.logger.LogSnapshot(ctx, "load", name, err)

			return nil, err
		}

		ref = resolved
	}

	m, err := k.repo.Load(ctx, ref)
	k.o.metricsCollector.RecordOperation("load", time.Since(start), err)
	k.o.logger.LogSnapshot(ctx, "loaded", ref.String(), err)

	return m, err
}

// Tag names a stored snapshot.
func (k *Kernel) Tag(ctx context.Context, name string, ref repository.Ref) error {
	if k.repo == nil {
		return ErrNoRepository
	}

	return k.repo.Tag(ctx, name, ref)
}

// IsNotFound reports whether err means a missing snapshot or tag.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
