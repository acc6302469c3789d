package geom

import "gonum.org/v1/gonum/spatial/r2"

// clipHalfPlane keeps the part of subject left of the directed line a->b
// (Sutherland-Hodgman, one edge).
func clipHalfPlane(subject Polygon, a, b Point, eps float64) Polygon {
	if len(subject) == 0 {
		return nil
	}

	out := make(Polygon, 0, len(subject)+2)

	for i := range subject {
		cur, next := subject[i], subject[(i+1)%len(subject)]
		dc, dn := cross(a, b, cur), cross(a, b, next)
		inC, inN := dc >= -eps, dn >= -eps

		if inC {
			out = append(out, cur)
		}

		if inC != inN {
			t := dc / (dc - dn)
			out = append(out, r2.Add(cur, r2.Scale(t, r2.Sub(next, cur))))
		}
	}

	return out
}

// convexIntersect clips subject against the convex counter-clockwise ring c.
func convexIntersect(subject, c Polygon, eps float64) Polygon {
	out := subject
	for i := range c {
		out = clipHalfPlane(out, c[i], c[(i+1)%len(c)], eps)
		if len(out) < 3 {
			return nil
		}
	}

	return keep(out, eps)
}

// convexSubtract returns subject \ c as disjoint convex pieces, c convex and
// counter-clockwise.
func convexSubtract(subject, c Polygon, eps float64) []Polygon {
	var pieces []Polygon

	rem := subject

	for i := range c {
		a, b := c[i], c[(i+1)%len(c)]

		if outside := keep(clipHalfPlane(rem, b, a, eps), eps); outside != nil {
			pieces = append(pieces, outside)
		}

		rem = clipHalfPlane(rem, a, b, eps)
		if len(rem) < 3 {
			break
		}
	}

	return pieces
}

// keep cleans p and drops it when it has no area.
func keep(p Polygon, eps float64) Polygon {
	p = p.Clean(eps)
	if len(p) < 3 || p.Area() <= eps {
		return nil
	}

	return p
}

// convexParts splits p into convex counter-clockwise pieces.
func convexParts(p Polygon, eps float64) []Polygon {
	p = p.CCW()
	if p.IsConvex(eps) {
		return []Polygon{p}
	}

	tris := p.Triangulate(eps)
	out := make([]Polygon, 0, len(tris))

	for _, t := range tris {
		out = append(out, Polygon{p[t[0]], p[t[1]], p[t[2]]})
	}

	return out
}
