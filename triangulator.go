package geotiler

import (
	"github.com/fogleman/delaunay"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Triangulator is the constrained-triangulation primitive the mesh pipeline
// delegates to. Implementations take the full projected point set and a list
// of mandatory edges (index pairs into points, forming closed rings) and
// return triangles as a flat sequence of index triples. Constraint edges must
// not be crossed by any returned triangle; internal failures surface as
// ErrTriangulation.
type Triangulator interface {
	Triangulate(points []r2.Point, constraints [][2]int) ([]uint32, error)
}

// DelaunayTriangulator is the default Triangulator. It runs an unconstrained
// Delaunay triangulation over the point set and then enforces the constraints
// subtractively: triangles whose edges properly cross a constraint segment,
// or whose centroid falls outside the region the constraint rings enclose
// (even-odd rule), are discarded. With a densified boundary the Delaunay
// result contains the boundary edges in practice, so this reduces to clipping
// the triangulation to the polygon. A strict edge-recovering CDT can be
// swapped in through the Triangulator interface.
type DelaunayTriangulator struct{}

func (DelaunayTriangulator) Triangulate(points []r2.Point, constraints [][2]int) ([]uint32, error) {
	dpoints := make([]delaunay.Point, len(points))
	for i, p := range points {
		dpoints[i] = delaunay.Point{X: p.X, Y: p.Y}
	}

	tri, err := delaunay.Triangulate(dpoints)
	if err != nil {
		return nil, errors.Wrap(ErrTriangulation, err.Error())
	}

	segments := make([][2]r2.Point, len(constraints))
	for i, c := range constraints {
		if c[0] < 0 || c[0] >= len(points) || c[1] < 0 || c[1] >= len(points) {
			return nil, errors.Wrapf(ErrTriangulation, "constraint edge (%d, %d) out of range", c[0], c[1])
		}
		segments[i] = [2]r2.Point{points[c[0]], points[c[1]]}
	}

	out := make([]uint32, 0, len(tri.Triangles))
	for t := 0; t < len(tri.Triangles); t += 3 {
		i, j, k := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		a, b, c := points[i], points[j], points[k]

		centroid := r2.Point{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
		if !insideConstraints(centroid, segments) {
			continue
		}
		if crossesAny(a, b, segments) || crossesAny(b, c, segments) || crossesAny(c, a, segments) {
			continue
		}
		out = append(out, uint32(i), uint32(j), uint32(k))
	}
	return out, nil
}

// insideConstraints applies the even-odd rule against the constraint segment
// set. Since constraints always form closed rings (exterior plus holes), an
// odd crossing count means the point is inside the exterior and outside the
// holes.
func insideConstraints(p r2.Point, segments [][2]r2.Point) bool {
	crossings := 0
	for _, s := range segments {
		a, b := s[0], s[1]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				crossings++
			}
		}
	}
	return crossings%2 == 1
}

func crossesAny(a, b r2.Point, segments [][2]r2.Point) bool {
	for _, s := range segments {
		if properIntersection(a, b, s[0], s[1]) {
			return true
		}
	}
	return false
}

// properIntersection reports whether segments ab and cd cross at a point
// interior to both. Shared endpoints and mere touching do not count, so
// triangle edges that coincide with a constraint edge are not rejected.
func properIntersection(a, b, c, d r2.Point) bool {
	d1 := cross2(c, d, a)
	d2 := cross2(c, d, b)
	d3 := cross2(a, b, c)
	d4 := cross2(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross2(o, a, b r2.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
