// Package kernel defines the capability interface corecad expects from a
// geometry kernel and a registry for concrete backends.
//
// The core pipeline is written once against [Backend]; OpenCascade-class
// engines, exchange-format writers, and test doubles all plug in through the
// same interface and are validated by the shared conformance suite in
// kernel/kerneltest.
package kernel

import (
	"errors"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	"github.com/openmagnetics/corecad"
)

// Common kernel errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("kernel: backend not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("kernel: not initialized")
)

// Plane is a principal view/section plane.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneZY
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "xy"
	case PlaneXZ:
		return "xz"
	case PlaneZY:
		return "zy"
	default:
		return "unknown"
	}
}

// Normal returns the plane's normal, which doubles as the projection
// direction for silhouette views on that plane.
func (p Plane) Normal() r3.Vec {
	switch p {
	case PlaneXY:
		return r3.Vec{Z: 1}
	case PlaneXZ:
		return r3.Vec{Y: 1}
	default:
		return r3.Vec{X: 1}
	}
}

// Box is an axis-aligned bounding box in working units.
type Box struct {
	Min, Max r3.Vec
}

// Size returns the box extents along each axis.
func (b Box) Size() r3.Vec {
	return r3.Vec{X: b.Max.X - b.Min.X, Y: b.Max.Y - b.Min.Y, Z: b.Max.Z - b.Min.Z}
}

// Center returns the box midpoint.
func (b Box) Center() r3.Vec {
	return r3.Vec{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	return Box{
		Min: r3.Vec{X: min(b.Min.X, o.Min.X), Y: min(b.Min.Y, o.Min.Y), Z: min(b.Min.Z, o.Min.Z)},
		Max: r3.Vec{X: max(b.Max.X, o.Max.X), Y: max(b.Max.Y, o.Max.Y), Z: max(b.Max.Z, o.Max.Z)},
	}
}

// Solid is an opaque handle to backend-owned 3D geometry. A Solid is valid
// only within the request that produced it and only with the backend that
// created it.
type Solid interface {
	// BoundingBox returns the axis-aligned bounds in working units.
	BoundingBox() Box

	// Volume returns the enclosed volume in cubic working units. Backends
	// that can only bound it return the best available estimate.
	Volume() float64
}

// SweepPathKind selects the sweep path form.
type SweepPathKind int

const (
	// SweepCircle is a closed circular path (a concentric turn around a
	// round column).
	SweepCircle SweepPathKind = iota

	// SweepRacetrack is a closed rounded-rectangle path (a concentric turn
	// around a rectangular column).
	SweepRacetrack

	// SweepPolyline is an open or closed sequence of straight runs joined
	// by circular bends (a toroidal turn loop).
	SweepPolyline
)

// SweepPath is a 3D path a wire cross-section is swept along.
//
// Circle paths use Center, Radius, and Normal. Racetrack paths additionally
// use Width and Height for the straight runs (Radius is the corner radius).
// Polyline paths use Points and BendRadius; Closed marks a loop.
type SweepPath struct {
	Kind       SweepPathKind
	Center     r3.Vec
	Normal     r3.Vec
	Radius     float64
	Width      float64
	Height     float64
	Points     []r3.Vec
	BendRadius float64
	Closed     bool
}

// Mesh is a tessellated solid.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles [][3]int
}

// Format is a solid/mesh exchange format for Export.
type Format string

const (
	FormatSTEP Format = "step"
	FormatSTL  Format = "stl"
)

// Edge is one tagged 2D curve of a projected or sectioned view.
type Edge struct {
	Segment curve.PathSegment
	Hidden  bool
}

// Backend is the geometry-kernel capability interface.
//
// All closed outlines are given as [curve.BezPath] in the XY working plane;
// paths may contain multiple subpaths, with winding determining holes.
// Backends must be registered via Register and are selected via Get or
// Default.
type Backend interface {
	// Name returns the backend identifier (e.g. "occt", "analytic").
	Name() string

	// Init initializes the backend. It must be called before any
	// construction operation.
	Init() error

	// Close releases all backend resources. The backend must not be used
	// after Close.
	Close()

	// Extrude builds a solid by extruding a closed outline along +Z by
	// height.
	Extrude(outline curve.BezPath, height float64) (Solid, error)

	// Sweep builds a solid by sweeping a closed cross-section along path.
	Sweep(section curve.BezPath, path SweepPath) (Solid, error)

	// Revolve builds a solid of revolution by rotating a closed outline
	// drawn in the XZ half-plane x >= 0 a full turn about the Z axis.
	Revolve(outline curve.BezPath) (Solid, error)

	// Union, Subtract, and Intersect are the regularized booleans.
	Union(a, b Solid) (Solid, error)
	Subtract(a, b Solid) (Solid, error)
	Intersect(a, b Solid) (Solid, error)

	// Translate moves a solid by v.
	Translate(s Solid, v r3.Vec) (Solid, error)

	// Rotate rotates a solid by angle radians about the axis direction
	// through the point about.
	Rotate(s Solid, axis r3.Vec, angle float64, about r3.Vec) (Solid, error)

	// Section slices the solid with the given principal plane at offset
	// along the plane normal and returns the cut edges.
	Section(s Solid, plane Plane, offset float64) ([]Edge, error)

	// Project computes the visible/hidden-edge silhouette of the solid
	// viewed along dir.
	Project(s Solid, dir r3.Vec) ([]Edge, error)

	// Tessellate meshes the solid at the given quality.
	Tessellate(s Solid, q corecad.Quality) (Mesh, error)

	// Export writes the solid to w in the given exchange format,
	// tessellating at q where the format requires it.
	Export(s Solid, format Format, q corecad.Quality, w io.Writer) error
}
