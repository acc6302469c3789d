package combine

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/spatial"
)

// slot is one input cell.
type slot struct {
	operand int
	id      mesh.ElementID
	nodes   []int // in combined node numbering
	ring    geom.Polygon
}

// cell is one output cell under construction.
type cell struct {
	et      mesh.ElementType
	nodes   []int
	parents []Parent
	// reshaped marks cells whose geometry or node list was rebuilt.
	reshaped bool
}

type piece struct {
	poly    geom.Polygon
	parents []Parent
}

// combiner runs the overlay of the 2-D cells of one or two meshes.
type combiner struct {
	op     string
	o      options
	inputs []mesh.Reader
	coords []float64
	slots  []slot
	boxes  *spatial.BoxIndex
	cells  []*cell
}

func newCombiner(op string, o options, inputs ...mesh.Reader) (*combiner, error) {
	c := &combiner{op: op, o: o, inputs: inputs, boxes: spatial.NewBoxIndex(2)}

	for k, r := range inputs {
		if r.SpaceDim() != 2 {
			return nil, &mesh.DimensionError{Op: op, SpaceDim: r.SpaceDim(), Detail: fmt.Sprintf("operand %d must live in 2-D space", k)}
		}

		for _, et := range r.Types() {
			if b, _ := r.Block(et); b.Len() > 0 && et.Dimension() != mesh.D2 {
				return nil, &mesh.DimensionError{Op: op, SpaceDim: r.SpaceDim(), TopoDim: et.Dimension(), Detail: fmt.Sprintf("operand %d holds %s elements, only 2-D cells can be overlaid", k, et)}
			}
		}

		offset := len(c.coords) / 2
		c.coords = append(c.coords, r.Coords().Data()...)

		for id, nodes := range mesh.ElementsOfDim(r, mesh.D2) {
			shifted := make([]int, len(nodes))
			for i, n := range nodes {
				shifted[i] = n + offset
			}

			ring := geom.RingOf(id.Type, nodes, r.Coord)
			lo, hi := bounds(ring)
			c.boxes.Insert(len(c.slots), lo, hi)
			c.slots = append(c.slots, slot{operand: k, id: id, nodes: shifted, ring: ring})
		}
	}

	return c, nil
}

// arrange overlays every slot accepted by visit with all other slots. A slot
// owns its region minus the earlier slots overlapping it; that region is
// then split by every later overlapping slot. Pieces whose parents pass keep
// become output cells. Slots overlapping nothing are emitted unchanged.
func (c *combiner) arrange(visit func(slot) bool, keep func([]Parent) bool) {
	for s, sl := range c.slots {
		if !visit(sl) {
			continue
		}

		self := Parent{Operand: sl.operand, ID: sl.id}
		earlier, later := c.overlapping(s)

		if len(earlier)+len(later) == 0 {
			if keep([]Parent{self}) {
				c.cells = append(c.cells, &cell{et: sl.id.Type, nodes: slices.Clone(sl.nodes), parents: []Parent{self}})
			}

			continue
		}

		region := []geom.Polygon{sl.ring}
		for _, t := range earlier {
			var next []geom.Polygon
			for _, p := range region {
				next = append(next, c.o.pred.Subtract(p, c.slots[t].ring)...)
			}

			region = next
		}

		pieces := make([]piece, len(region))
		for i, p := range region {
			pieces[i] = piece{poly: p, parents: []Parent{self}}
		}

		for _, t := range later {
			other := Parent{Operand: c.slots[t].operand, ID: c.slots[t].id}

			var next []piece

			for _, p := range pieces {
				for _, q := range c.o.pred.Intersect(p.poly, c.slots[t].ring) {
					next = append(next, piece{poly: q, parents: append(slices.Clip(p.parents), other)})
				}

				for _, q := range c.o.pred.Subtract(p.poly, c.slots[t].ring) {
					next = append(next, piece{poly: q, parents: p.parents})
				}
			}

			pieces = next
		}

		for _, p := range pieces {
			if keep(p.parents) {
				c.addFragment(p)
			}
		}
	}
}

// overlapping returns the slots sharing a positive area with slot s, split
// into those before and after it.
func (c *combiner) overlapping(s int) (earlier, later []int) {
	ring := c.slots[s].ring
	lo, hi := bounds(ring)

	for _, t := range c.boxes.Overlapping(lo, hi) {
		if t == s {
			continue
		}

		area := 0.0
		for _, p := range c.o.pred.Intersect(ring, c.slots[t].ring) {
			area += p.Area()
		}

		if area <= c.o.pred.Tolerance() {
			continue
		}

		if t < s {
			earlier = append(earlier, t)
		} else {
			later = append(later, t)
		}
	}

	return earlier, later
}

func (c *combiner) addFragment(p piece) {
	poly := p.poly.CCW()
	nodes := make([]int, len(poly))

	for i, q := range poly {
		nodes[i] = len(c.coords) / 2
		c.coords = append(c.coords, q.X, q.Y)
	}

	c.cells = append(c.cells, &cell{et: mesh.PolygonType(len(nodes)), nodes: nodes, parents: p.parents, reshaped: true})
}

func bounds(ring geom.Polygon) (lo, hi []float64) {
	l := geom.Point{X: math.Inf(1), Y: math.Inf(1)}
	h := geom.Point{X: math.Inf(-1), Y: math.Inf(-1)}

	for _, q := range ring {
		l = geom.Point{X: min(l.X, q.X), Y: min(l.Y, q.Y)}
		h = geom.Point{X: max(h.X, q.X), Y: max(h.Y, q.Y)}
	}

	return []float64{l.X, l.Y}, []float64{h.X, h.Y}
}

func hasOperand(parents []Parent, k int) bool {
	return slices.ContainsFunc(parents, func(p Parent) bool { return p.Operand == k })
}
