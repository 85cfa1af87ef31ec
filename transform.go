package geotiler

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/pkg/errors"
)

// Tolerance within which a coordinate just past the geographic range is
// clamped to the boundary rather than rejected. Values further out than this
// are genuine range errors.
const coordinateClampEpsilon = 1e-10

// Points closer to each other than this are considered coincident. The value
// matches the round-trip precision of the projection pair below, so merging
// at this distance never collapses points the projection can distinguish.
const DedupeEpsilon = 1e-9

// GeographicToCartesian converts a longitude/latitude pair in decimal degrees
// to a point on the unit sphere. Longitude must be in [-180, 180], latitude in
// [-90, 90]; anything further out than a float rounding error fails with
// ErrCoordinateRange.
func GeographicToCartesian(lon, lat float64) (r3.Vector, error) {
	if math.Abs(lon) > 180+coordinateClampEpsilon || math.Abs(lat) > 90+coordinateClampEpsilon {
		return r3.Vector{}, errors.Wrapf(ErrCoordinateRange, "lon %v, lat %v", lon, lat)
	}
	lon = clamp(lon, -180, 180)
	lat = clamp(lat, -90, 90)

	lonRad := lon * math.Pi / 180
	latRad := lat * math.Pi / 180
	return r3.Vector{
		X: math.Cos(latRad) * math.Cos(lonRad),
		Y: math.Cos(latRad) * math.Sin(lonRad),
		Z: math.Sin(latRad),
	}, nil
}

// CartesianToGeographic is the inverse of GeographicToCartesian. The input
// need not be exactly unit length; only its direction matters.
func CartesianToGeographic(v r3.Vector) (lon, lat float64) {
	lon = math.Atan2(v.Y, v.X) * 180 / math.Pi
	lat = math.Asin(clamp(v.Z/v.Norm(), -1, 1)) * 180 / math.Pi
	return lon, lat
}

// RotateToSouthPole rotates the point set so that its centroid direction maps
// onto the south pole (0, 0, -1), and applies the same rotation to every
// point. Centering the set on the south pole keeps the subsequent
// stereographic projection well away from its singularity at the north pole.
//
// Fails with ErrEmptyPointSet on an empty slice and with ErrRotation when the
// centroid is the zero vector (perfectly antipodal cancellation), since no
// rotation direction exists then. A centroid already at the south pole is an
// identity rotation; a centroid at the north pole is a half-turn about the X
// axis. Neither pole case touches the (degenerate) cross product.
func RotateToSouthPole(points []r3.Vector) ([]r3.Vector, error) {
	if len(points) == 0 {
		return nil, errors.Wrap(ErrEmptyPointSet, "cannot rotate zero points")
	}

	var center r3.Vector
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1 / float64(len(points)))

	if center.Norm() < 1e-15 {
		return nil, errors.Wrap(ErrRotation, "point centroid is effectively zero")
	}
	center = center.Normalize()

	southPole := r3.Vector{X: 0, Y: 0, Z: -1}
	axis := center.Cross(southPole)
	angle := center.Angle(southPole)

	if axis.Norm() < 1e-15 {
		if center.Z < 0 {
			// Already at the south pole.
			out := make([]r3.Vector, len(points))
			copy(out, points)
			return out, nil
		}
		// North pole: any half-turn through the equator works.
		axis = r3.Vector{X: 1, Y: 0, Z: 0}
		angle = s1.Angle(math.Pi)
	}
	axisPoint := s2.Point{Vector: axis.Normalize()}

	out := make([]r3.Vector, len(points))
	for i, p := range points {
		out[i] = s2.Rotate(s2.Point{Vector: p}, axisPoint, angle).Vector
	}
	return out, nil
}

// ProjectStereographic maps a unit-sphere point onto the plane z = 0 by
// projecting from the north pole: (x, y, z) -> (x/(1-z), y/(1-z)). The north
// pole itself has no image and fails with ErrProjection.
func ProjectStereographic(v r3.Vector) (r2.Point, error) {
	if math.Abs(v.Z-1) < 1e-15 {
		return r2.Point{}, errors.Wrapf(ErrProjection, "point (%v, %v, %v) is the north pole", v.X, v.Y, v.Z)
	}
	return r2.Point{X: v.X / (1 - v.Z), Y: v.Y / (1 - v.Z)}, nil
}

// UnprojectStereographic is the exact inverse of ProjectStereographic. Fails
// with ErrInverseProjection when either coordinate is NaN or infinite.
func UnprojectStereographic(p r2.Point) (r3.Vector, error) {
	if !isFinite(p.X) || !isFinite(p.Y) {
		return r3.Vector{}, errors.Wrapf(ErrInverseProjection, "non-finite input (%v, %v)", p.X, p.Y)
	}
	// Written so that an overflowing |p|^2 degrades to the north pole
	// instead of producing NaN components.
	inv := 1 / (1 + p.X*p.X + p.Y*p.Y)
	return r3.Vector{
		X: 2 * p.X * inv,
		Y: 2 * p.Y * inv,
		Z: 1 - 2*inv,
	}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
