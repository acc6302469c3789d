package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/meshkit/mesh"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// UniformPoints generates num points with coordinates in [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dim : (i+1)*dim]
		for j := range p {
			p[j] = r.rand.Float64()
		}
		points[i] = p
	}

	return points
}

// Jitter moves every coordinate of points by a uniform offset in
// [-amount, amount).
func (r *RNG) Jitter(points [][]float64, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range points {
		for j := range p {
			p[j] += (r.rand.Float64()*2 - 1) * amount
		}
	}
}

// RandomTriangles builds a 2-D mesh of n TRI3 cells, each over three
// distinct random points of pts. Cells may overlap and may be degenerate.
func (r *RNG) RandomTriangles(pts [][]float64, n int) (*mesh.Mesh, error) {
	b := mesh.NewBuilder(2, mesh.WithName("random-triangles"))
	for _, p := range pts {
		b.AddNode(p[0], p[1])
	}

	for range n {
		perm := r.Perm(len(pts))
		b.AddElement(mesh.Tri3, perm[0], perm[1], perm[2])
	}

	return b.Build()
}

// PointCloud builds a mesh of one VERTEX element per point.
func PointCloud(pts [][]float64) (*mesh.Mesh, error) {
	dim := 1
	if len(pts) > 0 {
		dim = len(pts[0])
	}

	b := mesh.NewBuilder(dim, mesh.WithName("point-cloud"))
	for _, p := range pts {
		b.AddElement(mesh.Vertex, b.AddNode(p...))
	}

	return b.Build()
}
