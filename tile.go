package geotiler

import (
	"math"
	"runtime"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SnapEpsilon is how close a fragment vertex must be to its tile's boundary
// for ClampPolygons to rewrite it to the exact boundary coordinate. Clipped
// intersection points land within floating-point noise of the boundary, so
// this only needs to absorb that noise.
const SnapEpsilon = 1e-7

// Tile is one cell of the angular grid: a closed boundary polygon in
// geographic coordinates plus the clipped fragments of input polygons that
// intersect it. Fragments are appended by ClipPolygonToTiles; tiles never
// reference each other.
type Tile struct {
	Boundary orb.Polygon
	Polygons []orb.Polygon
}

// Bound returns the tile's axis-aligned extent.
func (t *Tile) Bound() orb.Bound {
	return t.Boundary[0].Bound()
}

// GenerateGrid builds a lattice of step by step degree tiles covering the whole
// sphere, longitude -180..180 and latitude -90..90. The step must be positive,
// at most 180, and divide both 360 and 180 evenly; anything else fails with
// ErrGridGeneration. A step of 10 yields 36*18 = 648 tiles.
func GenerateGrid(step int) ([]Tile, error) {
	if step <= 0 {
		return nil, errors.Wrapf(ErrGridGeneration, "step %d must be greater than 0", step)
	}
	if step > 180 {
		return nil, errors.Wrapf(ErrGridGeneration, "step %d exceeds the 180 degree maximum", step)
	}
	if 360%step != 0 {
		return nil, errors.Wrapf(ErrGridGeneration, "step %d does not evenly divide 360 degrees of longitude", step)
	}
	if 180%step != 0 {
		return nil, errors.Wrapf(ErrGridGeneration, "step %d does not evenly divide 180 degrees of latitude", step)
	}

	grid := make([]Tile, 0, (360/step)*(180/step))
	for lon := -180; lon < 180; lon += step {
		for lat := -90; lat < 90; lat += step {
			minLon, minLat := float64(lon), float64(lat)
			maxLon, maxLat := float64(lon+step), float64(lat+step)
			grid = append(grid, Tile{
				Boundary: orb.Polygon{orb.Ring{
					{minLon, minLat},
					{maxLon, minLat},
					{maxLon, maxLat},
					{minLon, maxLat},
					{minLon, minLat},
				}},
			})
		}
	}
	return grid, nil
}

// ClipPolygonToTiles intersects the polygon with every tile's boundary and
// appends each non-empty fragment to that tile's fragment list. A polygon
// spanning several tiles leaves one fragment in each of them; tiles the
// polygon misses are untouched. Tiles are clipped concurrently, which is safe
// because each tile only ever mutates its own fragment list.
//
// Malformed input (too few vertices, non-finite coordinates, or a
// self-intersecting ring) fails with ErrInvalidPolygon before any tile is
// modified.
func ClipPolygonToTiles(grid []Tile, p orb.Polygon) error {
	if err := validatePolygon(p); err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range grid {
		i := i
		g.Go(func() error {
			clipped := clip.Polygon(grid[i].Bound(), p.Clone())
			if len(clipped) > 0 && len(clipped[0]) > 0 {
				grid[i].Polygons = append(grid[i].Polygons, clipped)
			}
			return nil
		})
	}
	return g.Wait()
}

// ClampPolygons snaps fragment vertices lying within SnapEpsilon of their
// tile's boundary onto the exact boundary coordinate. Adjacent tiles share
// exact boundary values, so after clamping their fragments' shared edge
// vertices are bit-identical and fragments meshed independently cannot open
// seams between tiles.
func ClampPolygons(tiles []Tile) {
	for ti := range tiles {
		b := tiles[ti].Bound()
		for _, fragment := range tiles[ti].Polygons {
			for _, ring := range fragment {
				for i := range ring {
					ring[i][0] = snap(ring[i][0], b.Min.Lon(), b.Max.Lon())
					ring[i][1] = snap(ring[i][1], b.Min.Lat(), b.Max.Lat())
				}
			}
		}
	}
}

func snap(v, lo, hi float64) float64 {
	if math.Abs(v-lo) < SnapEpsilon {
		return lo
	}
	if math.Abs(v-hi) < SnapEpsilon {
		return hi
	}
	return v
}

func validatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return errors.Wrap(ErrInvalidPolygon, "polygon has no rings")
	}
	if n := len(p[0]); n < 4 {
		return errors.Wrapf(ErrInvalidPolygon, "polygon must have at least 3 vertices, found %d", n-1)
	}
	for _, ring := range p {
		for _, pt := range ring {
			if !isFinite(pt[0]) || !isFinite(pt[1]) {
				return errors.Wrap(ErrInvalidPolygon, "polygon contains NaN or infinite coordinates")
			}
		}
		if selfIntersects(ring) {
			return errors.Wrap(ErrInvalidPolygon, "polygon ring intersects itself")
		}
	}
	return nil
}

// selfIntersects checks every pair of non-adjacent ring segments for a proper
// crossing. Quadratic, but rings here are boundary rings, not meshes.
func selfIntersects(ring orb.Ring) bool {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closure
			}
			if segmentsCross(ring[i], ring[(i+1)%n], ring[j], ring[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a, b, c, d orb.Point) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func orient(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
