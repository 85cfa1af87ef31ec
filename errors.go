package geotiler

import "github.com/pkg/errors"

// Every fallible operation wraps one of these sentinels with context via
// pkg/errors, so callers can branch on the failure kind with errors.Is while
// still getting a useful message. Failures abort the stage that produced
// them; no stage retries or returns partial results.
var (
	ErrCoordinateRange   = errors.New("coordinates outside geographic range")
	ErrProjection        = errors.New("stereographic projection undefined")
	ErrInverseProjection = errors.New("inverse stereographic projection undefined")
	ErrFibonacci         = errors.New("invalid fibonacci sphere point count")
	ErrRotation          = errors.New("rotation to south pole undefined")
	ErrEmptyPointSet     = errors.New("empty point set")
	ErrMeshGeneration    = errors.New("mesh generation failed")
	ErrGridGeneration    = errors.New("grid generation failed")
	ErrInvalidPolygon    = errors.New("invalid polygon geometry")
	ErrTriangulation     = errors.New("triangulation failed")
)
