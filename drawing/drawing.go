// Package drawing derives annotated 2D technical drawing views from built
// solids.
//
// A view is an abstract set of tagged primitives: projected or sectioned
// edges plus dimension annotations. Encoding to a concrete format (SVG,
// raster preview) is a separate step so the same view can feed several
// outputs.
package drawing

import (
	"math"

	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// Fidelity selects how view edges are derived.
type Fidelity int

const (
	// FidelityProjection uses the hidden-line silhouette along the plane
	// normal.
	FidelityProjection Fidelity = iota

	// FidelitySection slices the solid exactly at the view plane.
	FidelitySection
)

// Axis is the direction a dimension annotation measures along. Its offset
// band runs perpendicular to it.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Line is one projected or sectioned edge in view coordinates.
type Line struct {
	Segment curve.PathSegment
	Hidden  bool
}

// Annotation is one dimension line: a measured span, a label, and the
// clearance band it is drawn in. For AxisX annotations the band offset is
// added to y; for AxisY it is added to x.
type Annotation struct {
	Name           string
	Label          string
	Axis           Axis
	Start, End     curve.Point
	Offset         float64
	LabelAlignment float64
}

// Band returns the occupied offset interval of the annotation, one tight
// increment wide so the narrower family pitch never collides with itself.
func (a Annotation) Band() (lo, hi float64) {
	return a.Offset - uBandIncrement/2, a.Offset + uBandIncrement/2
}

// View is a single drawing view of a solid.
type View struct {
	Plane       kernel.Plane
	Fidelity    Fidelity
	Lines       []Line
	Annotations []Annotation
	Bounds      curve.Rect
}

// NewView derives a view of the solid on the given plane. Section fidelity
// slices at offset along the plane normal; projection ignores offset.
func NewView(b kernel.Backend, s kernel.Solid, plane kernel.Plane, fidelity Fidelity, offset float64) (*View, error) {
	var (
		edges []kernel.Edge
		err   error
	)
	switch fidelity {
	case FidelitySection:
		edges, err = b.Section(s, plane, offset)
	default:
		edges, err = b.Project(s, plane.Normal())
	}
	if err != nil {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageProjectDrawing,
			Backend: b.Name(),
			Err:     err,
		}
	}

	v := &View{Plane: plane, Fidelity: fidelity}
	for _, e := range edges {
		v.Lines = append(v.Lines, Line{Segment: e.Segment, Hidden: e.Hidden})
	}
	v.Bounds = lineBounds(v.Lines)
	return v, nil
}

func lineBounds(lines []Line) curve.Rect {
	if len(lines) == 0 {
		return curve.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(p curve.Point) {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	for _, l := range lines {
		grow(l.Segment.P0)
		grow(l.Segment.P1)
		switch l.Segment.Kind {
		case curve.QuadKind:
			grow(l.Segment.P2)
		case curve.CubicKind:
			grow(l.Segment.P2)
			grow(l.Segment.P3)
		}
	}
	return curve.Rect{X0: minX, Y0: minY, X1: maxX, Y1: maxY}
}

// place adds the annotation to the view, bumping its offset outward by
// whole bands until it overlaps no previously placed annotation measuring
// along the same axis.
func (v *View) place(a Annotation) {
	for {
		lo, hi := a.Band()
		clear := true
		for _, prev := range v.Annotations {
			if prev.Axis != a.Axis {
				continue
			}
			plo, phi := prev.Band()
			if lo < phi && plo < hi {
				clear = false
				break
			}
		}
		if clear {
			break
		}
		a.Offset += bandIncrement
	}
	v.Annotations = append(v.Annotations, a)
}
