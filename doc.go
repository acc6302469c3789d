// Package meshkit is an in-memory unstructured-mesh kernel.
//
// A mesh is a shared coordinate store plus one element block per element
// type (points, segments, polygons, polyhedra, linear and high order). The
// subpackages hold the algorithms:
//
//   - mesh: the container, views, builders and element sets
//   - canon: rotation, reflection and set equivalence of node tuples
//   - topology: descending meshes, boundaries, neighbor graphs, validation
//   - merge: tolerance-based node merging and snapping
//   - crack: node duplication along internal faces
//   - combine: aggregate, fuse, intersect, subtract, split, conformize
//   - selector: composable element queries
//   - codec, repository, blobstore: snapshots in memory, on disk, S3 or MinIO
//
// # Quick Start
//
//	ctx := context.Background()
//	k, _ := meshkit.New(meshkit.WithTolerance(1e-6))
//
//	b := mesh.NewBuilder(2)
//	n0 := b.AddNode(0, 0)
//	n1 := b.AddNode(1, 0)
//	n2 := b.AddNode(1, 1)
//	n3 := b.AddNode(0, 1)
//	b.AddElement(mesh.Quad4, n0, n1, n2, n3)
//	m, _ := b.Build()
//
//	boundary, _ := k.Boundary(ctx, m)
//
// # Kernel
//
// Kernel applies one configuration to every operation: merge tolerance,
// equivalence mode, geometric predicates, field reduction, logging and
// metrics. The algorithm packages can also be used directly; the kernel adds
// no behavior beyond configuration and observability.
//
// # Ownership
//
// Meshes share coordinate storage copy-on-write. Operations never modify
// their inputs; results are new meshes that may share coordinates with them.
// In-place edits go through mesh.ViewMut, one borrower at a time.
//
// # Configuration
//
// Options can be loaded from YAML:
//
//	cfg, _ := meshkit.LoadConfig("meshkit.yaml")
//	opts, _ := cfg.Options()
//	k, _ := meshkit.New(opts...)
package meshkit
