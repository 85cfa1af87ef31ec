package geotiler

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// DefaultInteriorPointTarget is the number of interior points the pipeline
// aims to retain inside a polygon when no explicit target is given.
const DefaultInteriorPointTarget = 1024

// maxInteriorCandidates caps the Fibonacci candidate set. Small polygons
// cover a tiny fraction of the sphere, so scaling candidates by the inverse
// of that fraction has to stop somewhere.
const maxInteriorCandidates = 65536

// PolygonMeshData is a triangulated mesh on the unit sphere. Triangles is a
// flat sequence of index triples into Vertices; every index is valid by
// construction.
type PolygonMeshData struct {
	Vertices  []r3.Vector
	Triangles []uint32
}

// MeshOptions tunes the mesh pipeline. The zero value selects the defaults.
type MeshOptions struct {
	// InteriorPoints is the approximate number of interior fill points to
	// retain. Zero means DefaultInteriorPointTarget.
	InteriorPoints int
	// MaxEdgeDistance densifies boundary edges longer than this many degrees
	// before meshing. Zero disables densification.
	MaxEdgeDistance float64
	// Triangulator overrides the constrained-triangulation primitive.
	// Nil means DelaunayTriangulator.
	Triangulator Triangulator
}

// GeneratePolygonFeatureMesh converts a geographic polygon into a
// triangulated mesh on the unit sphere using the default options.
func GeneratePolygonFeatureMesh(p orb.Polygon) (*PolygonMeshData, error) {
	return GeneratePolygonFeatureMeshOpts(p, MeshOptions{})
}

// GeneratePolygonFeatureMeshOpts runs the full pipeline: densify the
// boundary, fill the interior with Fibonacci points, convert everything to
// Cartesian, rotate the set onto the south pole, project to the plane, and
// hand the 2D points plus the boundary constraint edges to the triangulation
// primitive. The returned vertices are the pre-rotation Cartesian points; the
// rotated and projected copies exist only to compute the 2D topology.
func GeneratePolygonFeatureMeshOpts(p orb.Polygon, opts MeshOptions) (*PolygonMeshData, error) {
	points, ringSizes, err := collectMeshPoints(p, opts)
	if err != nil {
		return nil, err
	}

	constraints := ringConstraints(ringSizes)

	rotated, err := RotateToSouthPole(points)
	if err != nil {
		return nil, err
	}

	projected := make([]r2.Point, len(rotated))
	for i, v := range rotated {
		projected[i], err = ProjectStereographic(v)
		if err != nil {
			return nil, err
		}
	}

	tr := opts.Triangulator
	if tr == nil {
		tr = DelaunayTriangulator{}
	}
	triangles, err := tr.Triangulate(projected, constraints)
	if err != nil {
		return nil, err
	}

	return &PolygonMeshData{Vertices: points, Triangles: triangles}, nil
}

// GetMeshPoints returns the Cartesian point set the pipeline would
// triangulate, boundary vertices first in ring order followed by the
// retained interior points, for callers that want to run their own
// triangulation or density analysis.
func GetMeshPoints(p orb.Polygon) ([]r3.Vector, error) {
	points, _, err := collectMeshPoints(p, MeshOptions{})
	return points, err
}

// collectMeshPoints implements the shared front half of the pipeline. It
// returns the deduplicated Cartesian point set in stable order along with the
// number of points contributed by each surviving boundary ring.
func collectMeshPoints(p orb.Polygon, opts MeshOptions) ([]r3.Vector, []int, error) {
	if len(p) == 0 || len(p[0]) == 0 {
		return nil, nil, errors.Wrap(ErrEmptyPointSet, "outer ring cannot be empty")
	}

	if opts.MaxEdgeDistance > 0 {
		p = DensifyEdges(p, opts.MaxEdgeDistance)
	}

	var points []r3.Vector
	var ringSizes []int
	for ri, ring := range p {
		open := dedupeRing(ring)
		if len(open) < 3 {
			if ri == 0 {
				return nil, nil, errors.Wrapf(ErrMeshGeneration,
					"outer ring has %d distinct points, need at least 3", len(open))
			}
			// Degenerate hole: contributes nothing.
			continue
		}
		for _, pt := range open {
			v, err := GeographicToCartesian(pt.Lon(), pt.Lat())
			if err != nil {
				return nil, nil, err
			}
			points = append(points, v)
		}
		ringSizes = append(ringSizes, len(open))
	}

	boundaryCount := len(points)
	interior, err := interiorPoints(p, opts.InteriorPoints)
	if err != nil {
		return nil, nil, err
	}
	for _, v := range interior {
		if nearAny(v, points[:boundaryCount]) {
			continue
		}
		points = append(points, v)
	}

	if len(points) < 3 {
		return nil, nil, errors.Wrapf(ErrMeshGeneration,
			"only %d distinct points after deduplication", len(points))
	}
	return points, ringSizes, nil
}

// interiorPoints generates the Fibonacci candidate set, sized so that the
// polygon's share of the sphere is expected to contain about target points,
// and keeps the candidates that fall inside the polygon (holes excluded).
func interiorPoints(p orb.Polygon, target int) ([]r3.Vector, error) {
	if target <= 0 {
		target = DefaultInteriorPointTarget
	}

	candidates, err := FibonacciSphere(candidateCount(p, target))
	if err != nil {
		return nil, err
	}

	var inside []r3.Vector
	for _, v := range candidates {
		lon, lat := CartesianToGeographic(v)
		if planar.PolygonContains(p, orb.Point{lon, lat}) {
			inside = append(inside, v)
		}
	}
	return inside, nil
}

// candidateCount scales the target by the inverse of the polygon's
// solid-angle fraction of the sphere, estimated from its bounding box.
func candidateCount(p orb.Polygon, target int) int {
	b := p[0].Bound()
	dLon := (b.Max.Lon() - b.Min.Lon()) * math.Pi / 180
	dSin := math.Sin(b.Max.Lat()*math.Pi/180) - math.Sin(b.Min.Lat()*math.Pi/180)
	fraction := dLon * dSin / (4 * math.Pi)
	if fraction <= 0 {
		return target
	}
	n := float64(target) / fraction
	if n > maxInteriorCandidates {
		return maxInteriorCandidates
	}
	if n < float64(target) {
		return target
	}
	return int(n)
}

// dedupeRing drops the closing duplicate and any vertex within DedupeEpsilon
// of the previously kept one, returning the ring as an open point sequence.
func dedupeRing(ring orb.Ring) []orb.Point {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}

	var open []orb.Point
	for i := 0; i < n; i++ {
		if len(open) > 0 && planarDistance(open[len(open)-1], ring[i]) < DedupeEpsilon {
			continue
		}
		open = append(open, ring[i])
	}
	// The last vertex can also coincide with the first.
	for len(open) > 1 && planarDistance(open[0], open[len(open)-1]) < DedupeEpsilon {
		open = open[:len(open)-1]
	}
	return open
}

func nearAny(v r3.Vector, points []r3.Vector) bool {
	for _, p := range points {
		if v.Sub(p).Norm() < DedupeEpsilon {
			return true
		}
	}
	return false
}

// ringConstraints builds the mandatory boundary edges as consecutive index
// pairs per ring, wrapping each ring back to its first point.
func ringConstraints(ringSizes []int) [][2]int {
	var edges [][2]int
	offset := 0
	for _, size := range ringSizes {
		for i := 0; i < size; i++ {
			edges = append(edges, [2]int{offset + i, offset + (i+1)%size})
		}
		offset += size
	}
	return edges
}
