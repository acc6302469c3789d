package spatial

import (
	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
)

// Locator finds the elements of a mesh that contain a point.
type Locator struct {
	r    mesh.Reader
	pred geom.Predicates
	ids  []mesh.ElementID
	box  *BoxIndex
}

// NewLocator indexes the elements of dimension d of r. A negative d selects
// the topological dimension of r.
func NewLocator(r mesh.Reader, pred geom.Predicates, d mesh.Dimension) *Locator {
	if d < 0 {
		d = mesh.TopologicalDimension(r)
	}

	l := &Locator{r: r, pred: pred, box: NewBoxIndex(r.SpaceDim())}

	for id := range mesh.ElementsOfDim(r, d) {
		lo, hi, _ := mesh.Bounds(r, id)
		l.box.Insert(len(l.ids), lo, hi)
		l.ids = append(l.ids, id)
	}

	return l
}

// Locate returns the ids of every indexed element whose closure contains p,
// in id order.
func (l *Locator) Locate(p []float64) []mesh.ElementID {
	eps := l.pred.Tolerance()
	lo, hi := make([]float64, len(p)), make([]float64, len(p))

	for k, x := range p {
		lo[k], hi[k] = x-eps, x+eps
	}

	var out []mesh.ElementID

	at := geom.ReaderPoints(l.r)

	for _, i := range l.box.Overlapping(lo, hi) {
		id := l.ids[i]
		b, _ := l.r.Block(id.Type)

		if l.pred.Contains(id.Type, b.Element(id.Index), at, p) {
			out = append(out, id)
		}
	}

	return out
}
