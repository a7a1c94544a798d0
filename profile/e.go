package profile

import (
	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// Shared sub-algorithms of the E-like families. Each shaper composes these
// rather than inheriting them; the combinations differ per family.

// rectBoundary is the A wide, C deep rectangular planform shared by the flat
// E families.
func rectBoundary(d Dims) curve.BezPath {
	a := d["A"] / 2
	c := d["C"] / 2
	return curve.Rect{X0: -a, Y0: -c, X1: a, Y1: c}.Path(pathTolerance)
}

// windowZ is the z center offset that top-aligns a window of height D inside
// a piece of height B.
func windowZ(d Dims) float64 {
	return d["D"]/2 + (d["B"] - d["D"])
}

// slabWindow is the rectangular window minus rectangular center leg used by
// the flat E profile.
func slabWindow(b kernel.Backend, d Dims) (kernel.Solid, error) {
	at := r3.Vec{Z: windowZ(d)}
	window, err := box(b, d["E"], d["C"], d["D"], at)
	if err != nil {
		return nil, err
	}
	column, err := box(b, d["F"], d["C"], d["D"], at)
	if err != nil {
		return nil, err
	}
	return subtract(b, window, column)
}

// roundWindow is the annular window of the round-center-leg families: a
// cylinder of diameter E minus the center column of diameter F.
func roundWindow(b kernel.Backend, d Dims) (kernel.Solid, error) {
	at := r3.Vec{Z: windowZ(d)}
	window, err := cylinder(b, d["D"], d["E"]/2, at)
	if err != nil {
		return nil, err
	}
	column, err := centerColumnCylinder(b, d)
	if err != nil {
		return nil, err
	}
	return subtract(b, window, column)
}

func centerColumnCylinder(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return cylinder(b, d["D"], d["F"]/2, r3.Vec{Z: windowZ(d)})
}

// dropBelowZero rests the piece with its mating face at z=0.
func dropBelowZero(b kernel.Backend, d Dims, piece kernel.Solid) (kernel.Solid, error) {
	return translate(b, piece, r3.Vec{Z: -d["B"]})
}

// eGapTool is the machining tool of the flat and round-leg E families: the
// center leg gets a tool matching the leg footprint, an outer leg gets a
// half-width slab spared around the (slightly inflated) center column so
// the center leg survives lateral grinding.
func eGapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	if op.Coordinates[0] == 0 {
		width := d["F"]
		length := d["C"]
		x := 0.0
		if k, ok := d["K"]; ok {
			length = d["C"] - k
			x = k
		}
		return box(b, width, length, op.Length, r3.Vec{X: x, Z: op.Coordinates[1]})
	}

	x := d["A"] / 2
	if op.Coordinates[0] < 0 {
		x = -x
	}
	tool, err := box(b, d["A"]/2, d["A"], op.Length, r3.Vec{X: x, Z: op.Coordinates[1]})
	if err != nil {
		return nil, err
	}

	columnLength := d["C"] * columnClearance
	if k, ok := d["K"]; ok {
		columnLength = (d["C"] - 2*k) * columnClearance
	}
	protector, err := box(b, d["F"]*columnClearance, columnLength, op.Length,
		r3.Vec{Z: op.Coordinates[1] - op.Length/2})
	if err != nil {
		return nil, err
	}
	return subtract(b, tool, protector)
}

// columnClearance inflates the center-column protector so a lateral tool
// never grazes the center leg through numeric noise.
const columnClearance = 1.001

// eShaper is the flat E core (and its planar variant).
type eShaper struct{}

func (*eShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F"}}
}

func (*eShaper) Height(d Dims) float64 { return d["B"] }

func (*eShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return rectBoundary(d), nil
}

func (*eShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return slabWindow(b, d)
}

func (*eShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*eShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return eGapTool(b, d, op)
}

// erShaper is the round-center-leg E core (and its planar variant). The
// optional G lateral cut widens the window where the bobbin pins pass.
type erShaper struct{}

func (*erShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F", "G"}}
}

func (*erShaper) Height(d Dims) float64 { return d["B"] }

func (*erShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return rectBoundary(d), nil
}

func (*erShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	window, err := roundWindow(b, d)
	if err != nil {
		return nil, err
	}
	g, ok := d["G"]
	if !ok || g <= d["F"] {
		return window, nil
	}
	if d["C"] <= d["F"] {
		return nil, &corecad.GeometryError{
			Stage:   corecad.StageBuildProfile,
			Subject: "G",
			Detail:  "lateral cut wider than the body depth",
		}
	}
	cut, err := box(b, g, d["C"], d["D"], r3.Vec{Z: windowZ(d)})
	if err != nil {
		return nil, err
	}
	column, err := centerColumnCylinder(b, d)
	if err != nil {
		return nil, err
	}
	cut, err = subtract(b, cut, column)
	if err != nil {
		return nil, err
	}
	return union(b, window, cut)
}

func (*erShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*erShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return eGapTool(b, d, op)
}

// etdShaper is the ETD core: an ER without the lateral cut dimension.
type etdShaper struct{}

func (*etdShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F"}}
}

func (*etdShaper) Height(d Dims) float64 { return d["B"] }

func (*etdShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return rectBoundary(d), nil
}

func (*etdShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return roundWindow(b, d)
}

func (*etdShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*etdShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return eGapTool(b, d, op)
}

// eqShaper is the EQ core. G is part of the catalog dimension set but does
// not alter the window.
type eqShaper struct{}

func (*eqShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F", "G"}}
}

func (*eqShaper) Height(d Dims) float64 { return d["B"] }

func (*eqShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return rectBoundary(d), nil
}

func (*eqShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return roundWindow(b, d)
}

func (*eqShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*eqShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return eGapTool(b, d, op)
}

// lpShaper is the low-profile LP core: a round-leg window opened to one side
// so the winding exits flat.
type lpShaper struct{}

func (*lpShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F", "G"}}
}

func (*lpShaper) Height(d Dims) float64 { return d["B"] }

func (*lpShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return rectBoundary(d), nil
}

func (*lpShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	window, err := roundWindow(b, d)
	if err != nil {
		return nil, err
	}

	top, err := box(b, d["G"], d["C"], d["D"],
		r3.Vec{Y: d["C"]/2 + d["F"]/2, Z: windowZ(d)})
	if err != nil {
		return nil, err
	}
	window, err = union(b, window, top)
	if err != nil {
		return nil, err
	}

	bottom, err := box(b, d["E"], d["C"], d["D"],
		r3.Vec{Y: -d["C"] / 2, Z: windowZ(d)})
	if err != nil {
		return nil, err
	}
	column, err := centerColumnCylinder(b, d)
	if err != nil {
		return nil, err
	}
	bottom, err = subtract(b, bottom, column)
	if err != nil {
		return nil, err
	}
	return union(b, window, bottom)
}

func (*lpShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*lpShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return eGapTool(b, d, op)
}

// ecShaper is the EC core: an ER with semicircular dents in the long sides.
type ecShaper struct{}

func (*ecShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F", "T", "s"}}
}

func (*ecShaper) Height(d Dims) float64 { return d["B"] }

func (*ecShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	a := d["A"] / 2
	c := d["C"] / 2
	t := d["T"] / 2
	s := d["s"] / 2

	var p curve.BezPath
	p.MoveTo(curve.Pt(-a, c))
	p.LineTo(curve.Pt(a, c))
	p.LineTo(curve.Pt(a, s))
	p.LineTo(curve.Pt(t+s, s))
	arcThrough(&p, curve.Pt(t+s, s), curve.Pt(t, 0), curve.Pt(t+s, -s))
	p.LineTo(curve.Pt(a, -s))
	p.LineTo(curve.Pt(a, -c))
	p.LineTo(curve.Pt(-a, -c))
	p.LineTo(curve.Pt(-a, -s))
	p.LineTo(curve.Pt(-(t + s), -s))
	arcThrough(&p, curve.Pt(-(t+s), -s), curve.Pt(-t, 0), curve.Pt(-(t+s), s))
	p.LineTo(curve.Pt(-a, s))
	p.LineTo(curve.Pt(-a, c))
	p.ClosePath()
	return p, nil
}

func (*ecShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return roundWindow(b, d)
}

func (*ecShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*ecShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return eGapTool(b, d, op)
}

// elShaper is the EL core (and its planar variant): a flat E whose center
// leg is a stadium, F wide and F2 long end to end.
type elShaper struct{}

func (*elShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F", "F2"}}
}

func (*elShaper) Height(d Dims) float64 { return d["B"] }

func (*elShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return rectBoundary(d), nil
}

func (*elShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	at := r3.Vec{Z: windowZ(d)}

	column, err := box(b, d["F"], d["F2"]-d["F"], d["D"], at)
	if err != nil {
		return nil, err
	}
	for _, y := range []float64{d["F2"]/2 - d["F"]/2, -(d["F2"]/2 - d["F"]/2)} {
		round, err := cylinder(b, d["D"], d["F"]/2, r3.Vec{Y: y, Z: windowZ(d)})
		if err != nil {
			return nil, err
		}
		column, err = union(b, column, round)
		if err != nil {
			return nil, err
		}
	}

	window, err := box(b, d["E"], d["C"], d["D"], at)
	if err != nil {
		return nil, err
	}
	return subtract(b, window, column)
}

func (*elShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*elShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return eGapTool(b, d, op)
}
