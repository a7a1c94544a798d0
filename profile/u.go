package profile

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// uBoundary is the two-leg-plus-yoke planform shared by U and C: the
// winding leg straddles x=0 and the return leg closes the far side.
func uBoundary(d Dims) curve.BezPath {
	c := d["C"] / 2
	legWidth := (d["A"] - d["E"]) / 2
	left := d["A"] - legWidth/2
	right := legWidth / 2
	return curve.Rect{X0: -left, Y0: -c, X1: right, Y1: c}.Path(pathTolerance)
}

func uWindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	legWidth := (d["A"] - d["E"]) / 2
	return box(b, d["E"], d["C"]*2, d["D"],
		r3.Vec{X: -(legWidth/2 + d["E"]/2), Z: windowZ(d)})
}

// uGapTool grinds straight across the selected leg; U legs have no center
// column to spare.
func uGapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	legWidth := (d["A"] - d["E"]) / 2
	at, err := corecad.ConvertAxis(op.Coordinates[:])
	if err != nil {
		return nil, err
	}
	return box(b, legWidth, d["C"], op.Length, at)
}

// uShaper is the plain U core.
type uShaper struct{}

func (*uShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E"}}
}

func (*uShaper) Height(d Dims) float64 { return d["B"] }

func (*uShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return uBoundary(d), nil
}

func (*uShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return uWindowTool(b, d)
}

func (*uShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*uShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return uGapTool(b, d, op)
}

// cShaper is the C core. The planform and window are U's; what differs is
// the rounded outer bottom corners and the composition rule (always a
// mirrored pair), which assembly owns.
type cShaper struct{}

func (*cShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E"}}
}

func (*cShaper) Height(d Dims) float64 { return d["B"] }

func (*cShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return uBoundary(d), nil
}

func (*cShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return uWindowTool(b, d)
}

func (*cShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	legWidth := (d["A"] - d["E"]) / 2
	left := d["A"] - legWidth/2
	right := legWidth / 2

	piece, err := filletBottomEdge(b, d, piece, right, 1, legWidth)
	if err != nil {
		return nil, err
	}
	piece, err = filletBottomEdge(b, d, piece, -left, -1, legWidth)
	if err != nil {
		return nil, err
	}
	return dropBelowZero(b, d, piece)
}

// filletBottomEdge rounds one bottom edge running along Y by subtracting
// the corner material outside a quarter cylinder of the given radius. outer
// is the x of the edge, side +1 for the right face, -1 for the left.
func filletBottomEdge(b kernel.Backend, d Dims, piece kernel.Solid, outer, side, radius float64) (kernel.Solid, error) {
	corner, err := box(b, radius, d["C"], radius,
		r3.Vec{X: outer - side*radius/2, Z: radius / 2})
	if err != nil {
		return nil, err
	}
	round, err := cylinder(b, d["C"], radius, r3.Vec{})
	if err != nil {
		return nil, err
	}
	round, err = b.Rotate(round, r3.Vec{X: 1}, math.Pi/2, r3.Vec{})
	if err != nil {
		return nil, kerr(b, err)
	}
	round, err = translate(b, round, r3.Vec{X: outer - side*radius, Z: radius})
	if err != nil {
		return nil, err
	}
	corner, err = subtract(b, corner, round)
	if err != nil {
		return nil, err
	}
	return subtract(b, piece, corner)
}

func (*cShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return uGapTool(b, d, op)
}

// urShaper is the round-legged U core. Subtypes choose which legs are round
// and whether the planform right side is an arc or a flat.
type urShaper struct{}

func (*urShaper) Subtypes() map[int][]string {
	return map[int][]string{
		1: {"A", "B", "C", "D", "H"},
		2: {"A", "B", "C", "D", "H"},
		3: {"A", "B", "C", "D", "F", "H"},
		4: {"A", "B", "C", "D", "F", "G", "H"},
	}
}

func (*urShaper) Height(d Dims) float64 { return d["B"] }

// urLegWidth is the winding-leg diameter: F where cataloged, C otherwise.
func urLegWidth(d Dims) float64 {
	if f, ok := d["F"]; ok && f > 0 {
		return f
	}
	return d["C"]
}

func (*urShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	c := d["C"] / 2
	switch subtype {
	case 1, 3:
		legWidth := d["C"]
		if subtype == 3 {
			legWidth = d["F"]
		}
		left := d["A"] - legWidth/2
		right := legWidth / 2

		var p curve.BezPath
		p.MoveTo(curve.Pt(0, c))
		p.LineTo(curve.Pt(-left, c))
		p.LineTo(curve.Pt(-left, -c))
		p.LineTo(curve.Pt(0, -c))
		arcThrough(&p, curve.Pt(0, -c), curve.Pt(right, 0), curve.Pt(0, c))
		p.ClosePath()
		return p, nil
	case 2, 4:
		legWidth := d["C"]
		if subtype == 4 {
			legWidth = d["F"]
		}
		left := d["A"] - legWidth
		return curve.Rect{X0: -left, Y0: -c, X1: 0, Y1: c}.Path(pathTolerance), nil
	}
	return nil, &corecad.ConfigurationError{
		Stage:   corecad.StageBuildProfile,
		Subject: "ur",
		Detail:  "unknown family subtype",
	}
}

func (*urShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return box(b, d["A"]*2, d["C"]*2, d["D"], r3.Vec{Z: windowZ(d)})
}

func (*urShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	piece, err := urColumns(b, d, subtype, piece)
	if err != nil {
		return nil, err
	}
	piece, err = urWireHoles(b, d, piece)
	if err != nil {
		return nil, err
	}
	return dropBelowZero(b, d, piece)
}

// urColumns adds back the winding and return legs the window cut removed.
func urColumns(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	var winding, lateral kernel.Solid
	var err error
	switch subtype {
	case 1:
		winding, err = cylinder(b, d["D"], d["C"]/2, r3.Vec{Z: windowZ(d)})
		if err == nil {
			lateral, err = box(b, d["H"], d["C"], d["D"],
				r3.Vec{X: -(d["A"] - d["C"]/2 - d["H"]/2), Z: windowZ(d)})
		}
	case 2:
		winding, err = cylinder(b, d["B"], d["C"]/2, r3.Vec{Z: d["B"] / 2})
		if err == nil {
			lateral, err = cylinder(b, d["B"], d["C"]/2,
				r3.Vec{X: -(d["A"] - d["C"]), Z: d["B"] / 2})
		}
	case 3:
		winding, err = cylinder(b, d["D"], d["F"]/2, r3.Vec{Z: windowZ(d)})
		if err == nil {
			lateral, err = box(b, d["H"], d["C"], d["D"],
				r3.Vec{X: -(d["A"] - d["F"]/2 - d["H"]/2), Z: windowZ(d)})
		}
	case 4:
		winding, err = cylinder(b, d["B"], d["F"]/2, r3.Vec{Z: d["B"] / 2})
		if err == nil {
			lateral, err = cylinder(b, d["B"], d["F"]/2,
				r3.Vec{X: -(d["A"] - d["F"]), Z: d["B"] / 2})
		}
	}
	if err != nil {
		return nil, err
	}
	piece, err = union(b, piece, winding)
	if err != nil {
		return nil, err
	}
	return union(b, piece, lateral)
}

// urWireHoles pierces the optional S keyhole slots in both legs.
func urWireHoles(b kernel.Backend, d Dims, piece kernel.Solid) (kernel.Solid, error) {
	s, ok := d["S"]
	if !ok || s <= 0 {
		return piece, nil
	}
	windingWidth := urLegWidth(d)
	lateralWidth := d["F"]
	if h, ok := d["H"]; ok && h > 0 {
		lateralWidth = h
	}

	drill := func(piece kernel.Solid, roundX, slotX float64) (kernel.Solid, error) {
		round, err := cylinder(b, d["B"], s/2, r3.Vec{X: roundX, Z: d["B"] / 2})
		if err != nil {
			return nil, err
		}
		slot, err := box(b, s/2, s, d["B"], r3.Vec{X: slotX, Z: d["B"] / 2})
		if err != nil {
			return nil, err
		}
		hole, err := union(b, round, slot)
		if err != nil {
			return nil, err
		}
		return subtract(b, piece, hole)
	}

	piece, err := drill(piece,
		-(d["A"] - lateralWidth/2 - s/2),
		-(d["A"] - lateralWidth/2 - s/4))
	if err != nil {
		return nil, err
	}
	return drill(piece, windingWidth/2-s/2, windingWidth/2-s/4)
}

func (*urShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	at, err := corecad.ConvertAxis(op.Coordinates[:])
	if err != nil {
		return nil, err
	}
	return box(b, math.Max(d["C"], d["H"]), d["C"]*2, op.Length, at)
}

// utShaper is the closed rectangular UT core: a block hollowed through its
// middle band with both yoke columns added back over a partial depth.
// Like the toroid it is a single closed piece, built centered on the
// assembly plane.
type utShaper struct{}

func (*utShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F"}}
}

func (*utShaper) Height(d Dims) float64 { return d["B"] }

func (*utShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	c := d["C"] / 2
	a := d["A"] / 2
	return curve.Rect{X0: -c, Y0: -a, X1: c, Y1: a}.Path(pathTolerance), nil
}

func (*utShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return box(b, d["C"], d["A"], d["D"], r3.Vec{Z: d["B"] / 2})
}

func (*utShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	top, err := box(b, d["C"], d["F"], d["D"],
		r3.Vec{Y: -d["A"]/2 + d["F"]/2, Z: d["B"] / 2})
	if err != nil {
		return nil, err
	}
	bottomWidth := d["A"] - d["E"] - d["F"]
	bottom, err := box(b, d["C"], bottomWidth, d["D"],
		r3.Vec{Y: d["A"]/2 - bottomWidth/2, Z: d["B"] / 2})
	if err != nil {
		return nil, err
	}
	piece, err = union(b, piece, top)
	if err != nil {
		return nil, err
	}
	piece, err = union(b, piece, bottom)
	if err != nil {
		return nil, err
	}
	return translate(b, piece, r3.Vec{Z: -d["B"] / 2})
}

func (*utShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	at, err := corecad.ConvertAxis(op.Coordinates[:])
	if err != nil {
		return nil, err
	}
	return box(b, d["C"], d["F"], op.Length, at)
}
