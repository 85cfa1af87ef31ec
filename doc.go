// Package geotiler turns longitude/latitude polygons into triangulated meshes
// on the unit sphere, for rendering geographic regions on a globe without the
// faceting a naive flat projection produces.
//
// The pipeline densifies the polygon boundary, fills the interior with a
// Fibonacci point distribution, lifts everything onto the sphere, rotates the
// set over the south pole, flattens it with a stereographic projection, runs
// a constrained triangulation in the plane, and keeps the original spherical
// vertices for the output mesh. Large polygons can first be partitioned with
// the tile grid so each fragment stays a tractable, locally flat problem.
//
// All operations are deterministic pure functions over their inputs; there is
// no shared state between calls.
package geotiler
