package spatial

import (
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"
)

const (
	minChildren = 25
	maxChildren = 50
)

// pad keeps degenerate boxes non-empty; rtreego treats touching boxes as
// disjoint.
const pad = 1e-12

type entry struct {
	id   int
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

func rect(lo, hi []float64, grow float64) rtreego.Rect {
	a, b := make(rtreego.Point, len(lo)), make(rtreego.Point, len(hi))
	for k := range lo {
		g := grow + pad*math.Max(1, math.Max(math.Abs(lo[k]), math.Abs(hi[k])))
		a[k] = lo[k] - g
		b[k] = hi[k] + g
	}

	r, _ := rtreego.NewRectFromPoints(a, b)

	return r
}

func ids(objs []rtreego.Spatial) []int {
	out := make([]int, len(objs))
	for i, o := range objs {
		out[i] = o.(*entry).id
	}

	slices.Sort(out)

	return out
}

// PointIndex answers radius queries over a fixed point set.
type PointIndex struct {
	dim  int
	pts  [][]float64
	tree *rtreego.Rtree
}

// NewPointIndex indexes n points of dimension dim resolved through at.
func NewPointIndex(dim, n int, at func(i int) []float64) *PointIndex {
	idx := &PointIndex{dim: dim, pts: make([][]float64, n)}
	objs := make([]rtreego.Spatial, n)

	for i := range n {
		p := at(i)
		idx.pts[i] = p
		objs[i] = &entry{id: i, rect: rect(p, p, 0)}
	}

	idx.tree = rtreego.NewTree(dim, minChildren, maxChildren, objs...)

	return idx
}

// Len returns the number of indexed points.
func (x *PointIndex) Len() int { return len(x.pts) }

// Within returns the sorted indices of every point at distance <= eps from p.
func (x *PointIndex) Within(p []float64, eps float64) []int {
	cands := ids(x.tree.SearchIntersect(rect(p, p, eps)))

	return slices.DeleteFunc(cands, func(i int) bool {
		return distance(x.pts[i], p) > eps
	})
}

// Nearest returns the index of the point closest to p.
func (x *PointIndex) Nearest(p []float64) (int, bool) {
	if len(x.pts) == 0 {
		return 0, false
	}

	s := x.tree.NearestNeighbor(rtreego.Point(p))
	if s == nil {
		return 0, false
	}

	return s.(*entry).id, true
}

// BoxIndex answers overlap queries over axis-aligned boxes.
type BoxIndex struct {
	dim  int
	tree *rtreego.Rtree
	n    int
}

// NewBoxIndex creates an empty box index.
func NewBoxIndex(dim int) *BoxIndex {
	return &BoxIndex{dim: dim, tree: rtreego.NewTree(dim, minChildren, maxChildren)}
}

// Insert adds the box [lo, hi] under id.
func (x *BoxIndex) Insert(id int, lo, hi []float64) {
	x.tree.Insert(&entry{id: id, rect: rect(lo, hi, 0)})
	x.n++
}

// Len returns the number of indexed boxes.
func (x *BoxIndex) Len() int { return x.n }

// Overlapping returns the sorted ids of every box that intersects or touches
// [lo, hi].
func (x *BoxIndex) Overlapping(lo, hi []float64) []int {
	if x.n == 0 {
		return nil
	}

	return ids(x.tree.SearchIntersect(rect(lo, hi, 0)))
}

func distance(a, b []float64) float64 {
	s := 0.0
	for k := range a {
		d := a[k] - b[k]
		s += d * d
	}

	return math.Sqrt(s)
}
