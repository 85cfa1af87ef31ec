package geotiler

import (
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
)

// This is for visually debugging the projected triangulation.

const drawPadding = 20

// DrawTriangulation renders the 2D projected point set and its triangles to a
// PNG at the given path, scaled to fit. Useful for eyeballing whether the
// constraint filtering kept the right triangles before the mesh goes back
// onto the sphere.
func DrawTriangulation(points []r2.Point, triangles []uint32, size int, path string) error {
	if size <= drawPadding*2 {
		size = drawPadding*2 + 1
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	// Coincident or missing points have no extent to normalize by.
	extent := math.Max(maxX-minX, maxY-minY)
	if extent <= 0 || math.IsInf(extent, 0) {
		extent = 1
		minX, minY = minX-0.5, minY-0.5
		if len(points) == 0 {
			minX, minY = 0, 0
		}
	}

	scale := float64(size-drawPadding*2) / extent
	c := gg.NewContext(size, size)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(size), float64(size))
	c.Fill()

	// Flip the context so the origin is at the bottom left.
	c.Translate(0, float64(size))
	c.Scale(1, -1)
	c.Translate(drawPadding, drawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	c.SetLineWidth(1)
	for t := 0; t+2 < len(triangles); t += 3 {
		a := points[triangles[t]]
		b := points[triangles[t+1]]
		d := points[triangles[t+2]]
		c.MoveTo(a.X, a.Y)
		c.LineTo(b.X, b.Y)
		c.LineTo(d.X, d.Y)
		c.ClosePath()
	}
	c.SetRGB(0, 0.5, 0)
	c.FillPreserve()
	c.SetRGB(0, 1, 1)
	c.Stroke()

	return c.SavePNG(path)
}
