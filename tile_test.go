package geotiler

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGridInvalidStep(t *testing.T) {
	for _, step := range []int{0, -10, 181, 360, 7, 11} {
		_, err := GenerateGrid(step)
		assert.True(t, errors.Is(err, ErrGridGeneration), "step %d", step)
	}
}

func TestGenerateGridBasic(t *testing.T) {
	grid, err := GenerateGrid(10)
	require.NoError(t, err)
	require.Len(t, grid, 36*18)

	seen := make(map[orb.Point]bool)
	for i := range grid {
		ring := grid[i].Boundary[0]
		require.Len(t, ring, 5)
		assert.Equal(t, ring[0], ring[4], "ring must be closed")
		assert.Empty(t, grid[i].Polygons)

		b := grid[i].Bound()
		assert.InDelta(t, 10.0, b.Max.Lon()-b.Min.Lon(), 1e-12)
		assert.InDelta(t, 10.0, b.Max.Lat()-b.Min.Lat(), 1e-12)

		// Each tile occupies a distinct grid cell.
		assert.False(t, seen[b.Min])
		seen[b.Min] = true
	}
}

func TestGenerateGridCoverage(t *testing.T) {
	grid, err := GenerateGrid(90)
	require.NoError(t, err)
	require.Len(t, grid, 8)

	minLon, maxLon := math.Inf(1), math.Inf(-1)
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	var area float64
	for i := range grid {
		b := grid[i].Bound()
		minLon = math.Min(minLon, b.Min.Lon())
		maxLon = math.Max(maxLon, b.Max.Lon())
		minLat = math.Min(minLat, b.Min.Lat())
		maxLat = math.Max(maxLat, b.Max.Lat())
		area += (b.Max.Lon() - b.Min.Lon()) * (b.Max.Lat() - b.Min.Lat())
	}
	assert.Equal(t, -180.0, minLon)
	assert.Equal(t, 180.0, maxLon)
	assert.Equal(t, -90.0, minLat)
	assert.Equal(t, 90.0, maxLat)
	// Disjoint cells summing to the full sphere extent means no gaps.
	assert.InDelta(t, 360.0*180.0, area, 1e-9)
}

func TestClipPolygonToTilesSingleTile(t *testing.T) {
	grid, err := GenerateGrid(90)
	require.NoError(t, err)

	// Entirely within the tile spanning lon 0..90, lat 0..90.
	p := orb.Polygon{{{10, 10}, {20, 10}, {20, 20}, {10, 20}, {10, 10}}}
	require.NoError(t, ClipPolygonToTiles(grid, p))

	var total int
	for i := range grid {
		if len(grid[i].Polygons) == 0 {
			continue
		}
		total += len(grid[i].Polygons)
		b := grid[i].Bound()
		assert.Equal(t, 0.0, b.Min.Lon())
		assert.Equal(t, 0.0, b.Min.Lat())
	}
	assert.Equal(t, 1, total)
}

func TestClipPolygonToTilesSpanningTwoTiles(t *testing.T) {
	grid, err := GenerateGrid(90)
	require.NoError(t, err)

	// Straddles the lon=0 meridian between two adjacent tiles.
	p := orb.Polygon{{{-10, 10}, {10, 10}, {10, 20}, {-10, 20}, {-10, 10}}}
	require.NoError(t, ClipPolygonToTiles(grid, p))

	var fragments []orb.Polygon
	for i := range grid {
		if len(grid[i].Polygons) > 0 {
			require.Len(t, grid[i].Polygons, 1)
			fragments = append(fragments, grid[i].Polygons[0])
		}
	}
	require.Len(t, fragments, 2)

	ClampPolygons(grid)

	// Both fragments must contain the shared-boundary vertices (0,10) and
	// (0,20), bit-identical after clamping.
	for _, want := range []orb.Point{{0, 10}, {0, 20}} {
		for fi, fragment := range fragments {
			found := false
			for _, pt := range fragment[0] {
				if pt == want {
					found = true
					break
				}
			}
			assert.True(t, found, "fragment %d missing shared vertex %v", fi, want)
		}
	}
}

func TestClipPolygonToTilesMissesAllButIntersecting(t *testing.T) {
	grid, err := GenerateGrid(45)
	require.NoError(t, err)

	p := orb.Polygon{{{100, -50}, {120, -50}, {120, -40}, {100, -40}, {100, -50}}}
	require.NoError(t, ClipPolygonToTiles(grid, p))

	for i := range grid {
		b := grid[i].Bound()
		intersects := b.Min.Lon() < 120 && b.Max.Lon() > 100 &&
			b.Min.Lat() < -40 && b.Max.Lat() > -50
		if intersects {
			assert.NotEmpty(t, grid[i].Polygons)
		} else {
			assert.Empty(t, grid[i].Polygons)
		}
	}
}

func TestClipPolygonToTilesInvalidInput(t *testing.T) {
	grid, err := GenerateGrid(90)
	require.NoError(t, err)

	cases := map[string]orb.Polygon{
		"no rings":          {},
		"too few vertices":  {{{0, 0}, {1, 1}, {0, 0}}},
		"non-finite coords": {{{0, 0}, {10, 0}, {math.NaN(), 10}, {0, 10}, {0, 0}}},
		"self-intersecting": {{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			err := ClipPolygonToTiles(grid, p)
			assert.True(t, errors.Is(err, ErrInvalidPolygon))
			for i := range grid {
				assert.Empty(t, grid[i].Polygons)
			}
		})
	}
}

func TestClampPolygonsSnapsNearBoundary(t *testing.T) {
	grid, err := GenerateGrid(90)
	require.NoError(t, err)

	// Plant a fragment with vertices just off the tile boundary.
	for i := range grid {
		b := grid[i].Bound()
		if b.Min.Lon() == 0 && b.Min.Lat() == 0 {
			grid[i].Polygons = append(grid[i].Polygons, orb.Polygon{{
				{1e-9, 5}, {20, 5}, {20, 90 - 1e-10}, {1e-9, 90 - 1e-10}, {1e-9, 5},
			}})
		}
	}

	ClampPolygons(grid)

	for i := range grid {
		for _, fragment := range grid[i].Polygons {
			assert.Equal(t, 0.0, fragment[0][0][0])
			assert.Equal(t, 90.0, fragment[0][2][1])
		}
	}
}
