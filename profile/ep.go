package profile

import (
	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// epShaper is the EP pot-like core: a rectangular body shifted so the round
// center leg sits K from the back wall, with the window open to the front.
type epShaper struct{}

func (*epShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F", "G", "K"}}
}

func (*epShaper) Height(d Dims) float64 { return d["B"] }

func (*epShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	a := d["A"] / 2
	top := d["C"] - d["K"]
	bottom := d["K"]
	return curve.Rect{X0: -a, Y0: -bottom, X1: a, Y1: top}.Path(pathTolerance), nil
}

func (*epShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	window, err := roundWindow(b, d)
	if err != nil {
		return nil, err
	}

	if g, ok := d["G"]; ok && g > 0 {
		top, err := box(b, g, d["C"], d["D"],
			r3.Vec{Y: d["C"]/2 + d["F"]/2, Z: windowZ(d)})
		if err != nil {
			return nil, err
		}
		window, err = union(b, window, top)
		if err != nil {
			return nil, err
		}
	}

	bottom, err := box(b, d["E"], d["C"], d["D"], r3.Vec{Y: -d["C"] / 2, Z: windowZ(d)})
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

func (*epShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

// GapTool distinguishes three cases via the selector: center leg, a lateral
// leg standing free of the center, and a lateral leg joined to the center
// (third coordinate nonzero), which grinds the whole back face sparing an
// inflated center column.
func (*epShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	var width, length, x float64
	switch {
	case op.Coordinates[0] == 0 && op.Coordinates[2] == 0:
		width, length = d["F"], d["F"]
	case op.Coordinates[0] != 0 && op.Coordinates[2] == 0:
		width, length = d["A"]/2, d["C"]*2
		x = width / 2
		if op.Coordinates[0] < 0 {
			x = -x
		}
	default:
		width, length = d["A"], d["C"]*2
	}

	tool, err := box(b, width, length, op.Length, r3.Vec{X: x, Z: op.Coordinates[1]})
	if err != nil {
		return nil, err
	}
	if op.Coordinates[0] == 0 && op.Coordinates[2] == 0 {
		return tool, nil
	}

	protector, err := cylinder(b, d["D"]*2, d["F"]/2*1.2,
		r3.Vec{Z: op.Coordinates[1] - op.Length/2})
	if err != nil {
		return nil, err
	}
	return subtract(b, tool, protector)
}

// epxShaper is the EPX core: an EP whose center leg is a stadium reaching K
// beyond the round end.
type epxShaper struct{}

func (*epxShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F", "G", "K"}}
}

func (*epxShaper) Height(d Dims) float64 { return d["B"] }

func (*epxShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	a := d["A"] / 2
	columnLength := d["K"] + d["F"]/2
	top := d["C"] - columnLength/2
	bottom := columnLength / 2
	return curve.Rect{X0: -a, Y0: -bottom, X1: a, Y1: top}.Path(pathTolerance), nil
}

// epxColumn builds the stadium center leg: a rectangle joining two rounds.
func epxColumn(b kernel.Backend, d Dims, at r3.Vec) (kernel.Solid, error) {
	straight := d["K"] - d["F"]/2
	column, err := box(b, d["F"], straight, d["D"], at)
	if err != nil {
		return nil, err
	}
	for _, y := range []float64{straight / 2, -straight / 2} {
		round, err := cylinder(b, d["D"], d["F"]/2, r3.Vec{X: at.X, Y: at.Y + y, Z: at.Z})
		if err != nil {
			return nil, err
		}
		column, err = union(b, column, round)
		if err != nil {
			return nil, err
		}
	}
	return column, nil
}

func (*epxShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	straight := d["K"] - d["F"]/2
	columnLength := d["K"] + d["F"]/2

	window, err := cylinder(b, d["D"], d["E"]/2, r3.Vec{Y: straight / 2, Z: windowZ(d)})
	if err != nil {
		return nil, err
	}
	column, err := epxColumn(b, d, r3.Vec{Z: windowZ(d)})
	if err != nil {
		return nil, err
	}
	window, err = subtract(b, window, column)
	if err != nil {
		return nil, err
	}

	if g, ok := d["G"]; ok && g > 0 {
		top, err := box(b, g, d["C"], d["D"],
			r3.Vec{Y: d["C"]/2 + columnLength/2, Z: windowZ(d)})
		if err != nil {
			return nil, err
		}
		window, err = union(b, window, top)
		if err != nil {
			return nil, err
		}
	}

	bottom, err := box(b, d["E"], d["C"], d["D"],
		r3.Vec{Y: -d["C"]/2 + straight/2, Z: windowZ(d)})
	if err != nil {
		return nil, err
	}
	bottom, err = subtract(b, bottom, column)
	if err != nil {
		return nil, err
	}
	return union(b, window, bottom)
}

func (*epxShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*epxShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	var width, length, x float64
	switch {
	case op.Coordinates[0] == 0 && op.Coordinates[2] == 0:
		width, length = d["F"], d["K"]+d["F"]/2
	case op.Coordinates[0] != 0 && op.Coordinates[2] == 0:
		width, length = d["A"]/2, d["C"]*2
		x = width / 2
		if op.Coordinates[0] < 0 {
			x = -x
		}
	default:
		width, length = d["A"], d["C"]*2
	}

	tool, err := box(b, width, length, op.Length, r3.Vec{X: x, Z: op.Coordinates[1]})
	if err != nil {
		return nil, err
	}
	if op.Coordinates[0] == 0 && op.Coordinates[2] == 0 {
		return tool, nil
	}

	protector, err := epxColumn(b, d, r3.Vec{})
	if err != nil {
		return nil, err
	}
	return subtract(b, tool, protector)
}

// efdShaper is the EFD core: a flat body with a triangular dent over the
// center leg and a chamfered rectangular leg added back after the window
// cut, so the leg protrudes below the body plane.
type efdShaper struct{}

func (*efdShaper) Subtypes() map[int][]string {
	required := []string{"A", "B", "C", "D", "E", "F", "F2", "K", "q"}
	return map[int][]string{1: required, 2: required}
}

func (*efdShaper) Height(d Dims) float64 { return d["B"] }

func (*efdShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	a := d["A"] / 2
	top := d["C"] - d["K"] - d["F2"]/2
	bottom := d["K"] + d["F2"]/2
	dentHeight := d["C"] * 2 / 5
	dentTop := d["F"] / 2
	dentBottom := d["F"]/2 - d["q"]

	if d["K"] > 0 {
		semi := d["F"]/2 - d["q"]
		depth := d["K"]
		return polygon(
			curve.Pt(-a, top),
			curve.Pt(-dentTop, top),
			curve.Pt(-dentBottom, top-dentHeight),
			curve.Pt(dentBottom, top-dentHeight),
			curve.Pt(dentTop, top),
			curve.Pt(a, top),
			curve.Pt(a, -bottom),
			curve.Pt(semi, -bottom),
			curve.Pt(semi, -bottom+depth),
			curve.Pt(-semi, -bottom+depth),
			curve.Pt(-semi, -bottom),
			curve.Pt(-a, -bottom),
		), nil
	}
	return polygon(
		curve.Pt(-a, top),
		curve.Pt(-dentTop, top),
		curve.Pt(-dentBottom, top-dentHeight),
		curve.Pt(dentBottom, top-dentHeight),
		curve.Pt(dentTop, top),
		curve.Pt(a, top),
		curve.Pt(a, -bottom),
		curve.Pt(-a, -bottom),
	), nil
}

func (*efdShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return box(b, d["E"], d["C"]*2, d["D"], r3.Vec{Z: windowZ(d)})
}

// chamferedRect is an F by F2 rectangle with its corners cut back by q.
func chamferedRect(f, f2, q float64) curve.BezPath {
	hx := f / 2
	hy := f2 / 2
	return polygon(
		curve.Pt(-hx+q, -hy),
		curve.Pt(hx-q, -hy),
		curve.Pt(hx, -hy+q),
		curve.Pt(hx, hy-q),
		curve.Pt(hx-q, hy),
		curve.Pt(-hx+q, hy),
		curve.Pt(-hx, hy-q),
		curve.Pt(-hx, -hy+q),
	)
}

func (*efdShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	column, err := b.Extrude(chamferedRect(d["F"], d["F2"], d["q"]), d["B"])
	if err != nil {
		return nil, kerr(b, err)
	}
	piece, err = union(b, piece, column)
	if err != nil {
		return nil, err
	}
	return dropBelowZero(b, d, piece)
}

func (*efdShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	if op.Coordinates[0] == 0 {
		return box(b, d["F"], d["F2"], op.Length, r3.Vec{Z: op.Coordinates[1]})
	}

	x := d["A"] / 2
	if op.Coordinates[0] < 0 {
		x = -x
	}
	tool, err := box(b, d["A"]/2, d["A"], op.Length, r3.Vec{X: x, Z: op.Coordinates[1]})
	if err != nil {
		return nil, err
	}
	protector, err := box(b, d["F"]*columnClearance, d["F2"]*columnClearance, d["D"]*2, r3.Vec{})
	if err != nil {
		return nil, err
	}
	return subtract(b, tool, protector)
}
