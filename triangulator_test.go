package geotiler

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleArea(a, b, c r2.Point) float64 {
	return math.Abs((b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X)) / 2
}

func TestDelaunayTriangulatorSquareWithCenter(t *testing.T) {
	points := []r2.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		{X: 0.5, Y: 0.5},
	}
	constraints := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

	triangles, err := DelaunayTriangulator{}.Triangulate(points, constraints)
	require.NoError(t, err)
	assert.Len(t, triangles, 12)

	var area float64
	for i := 0; i+2 < len(triangles); i += 3 {
		area += triangleArea(points[triangles[i]], points[triangles[i+1]], points[triangles[i+2]])
	}
	assert.InDelta(t, 1.0, area, 1e-9)
}

func TestDelaunayTriangulatorRespectsConcaveBoundary(t *testing.T) {
	// L shape; the notch between (1,1), (2,1) and (1,2) is outside the
	// constrained region even though it is inside the convex hull.
	points := []r2.Point{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
		{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	constraints := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0}}

	triangles, err := DelaunayTriangulator{}.Triangulate(points, constraints)
	require.NoError(t, err)
	require.NotEmpty(t, triangles)

	var area float64
	for i := 0; i+2 < len(triangles); i += 3 {
		a := points[triangles[i]]
		b := points[triangles[i+1]]
		c := points[triangles[i+2]]
		area += triangleArea(a, b, c)

		centroid := r2.Point{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
		assert.False(t, centroid.X > 1 && centroid.Y > 1,
			"triangle centroid %v is in the notch", centroid)
	}
	// Kept triangles tile exactly the L-shaped region.
	assert.InDelta(t, 3.0, area, 1e-9)
}

func TestDelaunayTriangulatorConstraintOutOfRange(t *testing.T) {
	points := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	_, err := DelaunayTriangulator{}.Triangulate(points, [][2]int{{0, 5}})
	assert.True(t, errors.Is(err, ErrTriangulation))
}

func TestDelaunayTriangulatorHole(t *testing.T) {
	// 4x4 square with a 2x2 hole: constraints are both rings, and no triangle
	// centroid may land inside the hole.
	points := []r2.Point{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4},
		{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3},
	}
	constraints := [][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
	}

	triangles, err := DelaunayTriangulator{}.Triangulate(points, constraints)
	require.NoError(t, err)
	require.NotEmpty(t, triangles)

	for i := 0; i+2 < len(triangles); i += 3 {
		a := points[triangles[i]]
		b := points[triangles[i+1]]
		c := points[triangles[i+2]]
		centroid := r2.Point{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
		inHole := centroid.X > 1 && centroid.X < 3 && centroid.Y > 1 && centroid.Y < 3
		assert.False(t, inHole, "triangle centroid %v is in the hole", centroid)
	}
}
