package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/logrusorgru/aurora"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	geotiler "github.com/thomasspina/geo-tiler"
)

// Reads a GeoJSON FeatureCollection, meshes every polygon it contains, and
// writes the meshes as JSON. With --step the polygons are first clipped to a
// tile grid and each fragment is meshed independently.
var (
	step    = kingpin.Flag("step", "Tile grid step in degrees; 0 meshes polygons whole.").Default("0").Int()
	maxEdge = kingpin.Flag("max-edge", "Densify boundary edges longer than this many degrees.").Default("1").Float64()
	points  = kingpin.Flag("points", "Approximate interior point target per polygon.").Default("1024").Int()
	draw    = kingpin.Flag("draw", "Write a debug PNG of the first mesh to this path.").String()
	show    = kingpin.Flag("show", "Cat the debug PNG to the terminal.").Bool()
	output  = kingpin.Flag("output", "Output file; defaults to stdout.").Short('o').String()
	input   = kingpin.Arg("input", "GeoJSON file; defaults to stdin.").String()
)

type meshJSON struct {
	Vertices  [][3]float64 `json:"vertices"`
	Triangles []uint32     `json:"triangles"`
}

func main() {
	kingpin.Parse()

	data, err := readInput(*input)
	if err != nil {
		fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		fatal(err)
	}

	polygons := collectPolygons(fc)
	if *step > 0 {
		polygons, err = tilePolygons(polygons, *step)
		if err != nil {
			fatal(err)
		}
	}

	opts := geotiler.MeshOptions{
		InteriorPoints:  *points,
		MaxEdgeDistance: *maxEdge,
	}

	meshes := make([]meshJSON, 0, len(polygons))
	for _, p := range polygons {
		mesh, err := geotiler.GeneratePolygonFeatureMeshOpts(p, opts)
		if err != nil {
			fatal(err)
		}
		meshes = append(meshes, toJSON(mesh))
	}

	if err := writeOutput(*output, meshes); err != nil {
		fatal(err)
	}

	var triangles int
	for _, m := range meshes {
		triangles += len(m.Triangles) / 3
	}
	fmt.Fprintf(os.Stderr, "%s %s polygons, %s triangles\n",
		aurora.Green("meshed"),
		aurora.Cyan(fmt.Sprint(len(meshes))),
		aurora.Cyan(fmt.Sprint(triangles)))

	if *draw != "" && len(meshes) > 0 {
		if err := drawMesh(meshes[0], *draw); err != nil {
			fatal(err)
		}
		if *show {
			imgcat.CatFile(*draw, os.Stdout)
		}
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, meshes []meshJSON) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	return enc.Encode(meshes)
}

func collectPolygons(fc *geojson.FeatureCollection) []orb.Polygon {
	var polygons []orb.Polygon
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		}
	}
	return polygons
}

// tilePolygons clips every polygon against a fresh grid and returns the
// accumulated fragments, boundary-clamped so adjacent fragments share exact
// edge coordinates.
func tilePolygons(polygons []orb.Polygon, step int) ([]orb.Polygon, error) {
	grid, err := geotiler.GenerateGrid(step)
	if err != nil {
		return nil, err
	}
	for _, p := range polygons {
		if err := geotiler.ClipPolygonToTiles(grid, p); err != nil {
			return nil, err
		}
	}
	geotiler.ClampPolygons(grid)

	var fragments []orb.Polygon
	for i := range grid {
		fragments = append(fragments, grid[i].Polygons...)
	}
	return fragments, nil
}

// drawMesh renders the mesh in lon/lat space, which is good enough to spot
// missing or stray triangles.
func drawMesh(m meshJSON, path string) error {
	points := make([]r2.Point, len(m.Vertices))
	for i, v := range m.Vertices {
		lon, lat := geotiler.CartesianToGeographic(r3.Vector{X: v[0], Y: v[1], Z: v[2]})
		points[i] = r2.Point{X: lon, Y: lat}
	}
	return geotiler.DrawTriangulation(points, m.Triangles, 1024, path)
}

func toJSON(m *geotiler.PolygonMeshData) meshJSON {
	out := meshJSON{
		Vertices:  make([][3]float64, len(m.Vertices)),
		Triangles: m.Triangles,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = [3]float64{v.X, v.Y, v.Z}
	}
	return out
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", aurora.Red("error:"), err)
	os.Exit(1)
}
