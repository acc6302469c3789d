package mesh

import (
	"fmt"
	"slices"
)

// RegularGrid builds a structured grid over the given axis coordinates:
// SEG2 cells for one axis, QUAD4 for two, HEX8 for three. Node indices grow
// fastest along the first axis.
func RegularGrid(axes ...[]float64) (*Mesh, error) {
	const op = "regular grid"

	if len(axes) < 1 || len(axes) > 3 {
		return nil, &DimensionError{Op: op, SpaceDim: len(axes), Detail: "need 1 to 3 axes"}
	}

	for k, ax := range axes {
		if len(ax) < 2 {
			return nil, structuralf(op, "axis %d needs at least 2 coordinates", k)
		}

		for i := 1; i < len(ax); i++ {
			if ax[i] <= ax[i-1] {
				return nil, structuralf(op, "axis %d is not strictly increasing", k)
			}
		}
	}

	dim := len(axes)
	size := []int{1, 1, 1}

	for k, ax := range axes {
		size[k] = len(ax)
	}

	nx, ny := size[0], size[1]
	node := func(i, j, k int) int { return i + nx*(j+ny*k) }

	coords := make([]float64, 0, nx*ny*size[2]*dim)

	for k := range size[2] {
		for j := range ny {
			for i := range nx {
				idx := []int{i, j, k}
				for d := range dim {
					coords = append(coords, axes[d][idx[d]])
				}
			}
		}
	}

	var (
		et   ElementType
		data []int
	)

	switch dim {
	case 1:
		et = Seg2
		for i := range nx - 1 {
			data = append(data, i, i+1)
		}
	case 2:
		et = Quad4
		for j := range ny - 1 {
			for i := range nx - 1 {
				data = append(data, node(i, j, 0), node(i+1, j, 0), node(i+1, j+1, 0), node(i, j+1, 0))
			}
		}
	case 3:
		et = Hex8
		for k := range size[2] - 1 {
			for j := range ny - 1 {
				for i := range nx - 1 {
					data = append(data,
						node(i, j, k), node(i+1, j, k), node(i+1, j+1, k), node(i, j+1, k),
						node(i, j, k+1), node(i+1, j, k+1), node(i+1, j+1, k+1), node(i, j+1, k+1),
					)
				}
			}
		}
	}

	cs, err := NewCoordStore(dim, coords)
	if err != nil {
		return nil, err
	}

	conn, err := NewRegular(et.NumNodes(), data)
	if err != nil {
		return nil, err
	}

	b, err := NewElementBlock(et, conn)
	if err != nil {
		return nil, err
	}

	return New(cs, []*ElementBlock{b}, WithName(fmt.Sprintf("grid-%s", et)))
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}

	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)

	for i := range out {
		out[i] = lo + float64(i)*step
	}

	out[n-1] = hi

	return out
}

// Extrude sweeps r along a new last coordinate axis through the given
// layer heights: VERTEX becomes SEG2, SEG2 becomes QUAD4 and QUAD4 becomes
// HEX8. Fields are copied to every layer; groups are not carried.
func Extrude(r Reader, layers []float64) (*Mesh, error) {
	const op = "extrude"

	if r.SpaceDim() >= 3 {
		return nil, &DimensionError{Op: op, SpaceDim: r.SpaceDim(), TopoDim: TopologicalDimension(r), Detail: "cannot add a fourth axis"}
	}

	if len(layers) < 2 || !slices.IsSorted(layers) {
		return nil, structuralf(op, "need at least 2 increasing layers")
	}

	nn := r.NumNodes()
	dim := r.SpaceDim() + 1
	coords := make([]float64, 0, nn*len(layers)*dim)

	for _, h := range layers {
		for i := range nn {
			coords = append(coords, r.Coord(i)...)
			coords = append(coords, h)
		}
	}

	cs, err := NewCoordStore(dim, coords)
	if err != nil {
		return nil, err
	}

	var blocks []*ElementBlock

	for _, et := range r.Types() {
		src, _ := r.Block(et)

		var out ElementType

		switch et {
		case Vertex:
			out = Seg2
		case Seg2:
			out = Quad4
		case Quad4:
			out = Hex8
		default:
			return nil, structuralf(op, "cannot extrude %s", et)
		}

		var data []int

		fields := make(map[string][]float64)

		for l := range len(layers) - 1 {
			lo, hi := l*nn, (l+1)*nn

			for i := range src.Len() {
				e := src.Element(i)

				switch et {
				case Vertex:
					data = append(data, e[0]+lo, e[0]+hi)
				case Seg2:
					data = append(data, e[0]+lo, e[1]+lo, e[1]+hi, e[0]+hi)
				case Quad4:
					for _, n := range e {
						data = append(data, n+lo)
					}

					for _, n := range e {
						data = append(data, n+hi)
					}
				}
			}

			for _, name := range src.FieldNames() {
				v, _ := src.Field(name)
				fields[name] = append(fields[name], v...)
			}
		}

		conn, err := NewRegular(out.NumNodes(), data)
		if err != nil {
			return nil, err
		}

		b, err := NewElementBlock(out, conn, WithFields(fields))
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, b)
	}

	return New(cs, blocks, WithName(r.Name()), WithDescription(r.Description()))
}
