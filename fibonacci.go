package geotiler

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// goldenAngle is pi*(3-sqrt(5)), the azimuthal increment between consecutive spiral
// points. It is the most irrational rotation available, which is what spreads
// the points evenly instead of lining them up along meridians.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// FibonacciSphere places n points on the unit sphere along a golden-angle
// spiral. Point i sits at height z = 1 - 2(i+0.5)/n with longitude i*pi*(3-sqrt(5)),
// giving near-uniform angular spacing on the order of 3.6/sqrt(n) radians. The
// result is deterministic for a given n. Fails with ErrFibonacci when n <= 0.
func FibonacciSphere(n int) ([]r3.Vector, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrFibonacci, "point count %d", n)
	}

	points := make([]r3.Vector, 0, n)
	for i := 0; i < n; i++ {
		z := 1 - 2*(float64(i)+0.5)/float64(n)
		theta := goldenAngle * float64(i)
		r := math.Sqrt(1 - z*z)
		points = append(points, r3.Vector{
			X: r * math.Cos(theta),
			Y: r * math.Sin(theta),
			Z: z,
		})
	}
	return points, nil
}
