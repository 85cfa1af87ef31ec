package geotiler

import (
	"math"

	"github.com/paulmach/orb"
)

// DensifyEdges returns a copy of the polygon in which every ring edge longer
// than maxDistance has been subdivided with evenly spaced intermediate points,
// so that no segment exceeds the threshold. Both the exterior ring and any
// holes are densified. Original vertices are kept in order, ring closure is
// preserved, and edges already within the threshold pass through untouched.
// The input polygon is never modified.
//
// Distances are planar in degree space, consistent with the point-in-polygon
// filtering downstream.
func DensifyEdges(p orb.Polygon, maxDistance float64) orb.Polygon {
	if maxDistance <= 0 {
		return p.Clone()
	}

	out := make(orb.Polygon, 0, len(p))
	for _, ring := range p {
		out = append(out, densifyRing(ring, maxDistance))
	}
	return out
}

func densifyRing(ring orb.Ring, maxDistance float64) orb.Ring {
	if len(ring) < 2 {
		return ring.Clone()
	}

	dense := make(orb.Ring, 0, len(ring))
	dense = append(dense, ring[0])
	for i := 0; i < len(ring)-1; i++ {
		a, b := ring[i], ring[i+1]
		if d := planarDistance(a, b); d > maxDistance {
			segments := int(math.Ceil(d / maxDistance))
			for j := 1; j < segments; j++ {
				t := float64(j) / float64(segments)
				dense = append(dense, orb.Point{
					a[0] + t*(b[0]-a[0]),
					a[1] + t*(b[1]-a[1]),
				})
			}
		}
		dense = append(dense, b)
	}
	return dense
}

func planarDistance(a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return math.Sqrt(dx*dx + dy*dy)
}
