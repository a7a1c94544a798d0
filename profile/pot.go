package profile

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// pGapTool is the machining tool of the pot families: the center leg gets a
// tool matching the round leg's bounding square, a lateral grind spans the
// outer shell sparing an inflated center column.
func pGapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	if op.Coordinates[0] == 0 {
		return box(b, d["F"], d["F"], op.Length, r3.Vec{Z: op.Coordinates[1]})
	}

	tool, err := box(b, d["A"]/2, d["A"], op.Length,
		r3.Vec{X: d["A"] / 2, Z: op.Coordinates[1]})
	if err != nil {
		return nil, err
	}
	protector, err := box(b, d["F"]*columnClearance, d["F"]*columnClearance, op.Length,
		r3.Vec{Z: op.Coordinates[1] - op.Length/2})
	if err != nil {
		return nil, err
	}
	return subtract(b, tool, protector)
}

// centerHole drills the optional H through-hole of the pot families.
func centerHole(b kernel.Backend, d Dims, piece kernel.Solid) (kernel.Solid, error) {
	h, ok := d["H"]
	if !ok || h <= 0 {
		return piece, nil
	}
	hole, err := cylinder(b, d["B"], h/2, r3.Vec{Z: d["B"] / 2})
	if err != nil {
		return nil, err
	}
	return subtract(b, piece, hole)
}

// pShaper is the round pot core. Subtypes open the shell differently:
// 1 and 2 cut lateral wire slots (2 additionally dents the full height),
// 3 pierces round-ended holes instead of slots.
type pShaper struct{}

func (*pShaper) Subtypes() map[int][]string {
	full := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	return map[int][]string{
		1: full,
		2: full,
		3: {"A", "B", "D", "E", "F", "G", "H"},
		4: full,
	}
}

func (*pShaper) Height(d Dims) float64 { return d["B"] }

func (*pShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return curve.Circle{Center: curve.Pt(0, 0), Radius: d["A"] / 2}.Path(pathTolerance), nil
}

func (*pShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return roundWindow(b, d)
}

func (*pShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	var err error
	switch subtype {
	case 1, 2:
		piece, err = pLateralSlots(b, d, subtype, piece)
	case 3:
		piece, err = pRoundedHoles(b, d, piece)
	}
	if err != nil {
		return nil, err
	}
	piece, err = centerHole(b, d, piece)
	if err != nil {
		return nil, err
	}
	return dropBelowZero(b, d, piece)
}

func pLateralSlots(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	length := (d["A"] - d["F"]) / 2
	for _, side := range []float64{1, -1} {
		cut, err := box(b, length, d["G"], d["D"],
			r3.Vec{X: side * (length/2 + d["F"]/2), Z: d["D"]/2 + d["B"] - d["D"]})
		if err != nil {
			return nil, err
		}
		piece, err = subtract(b, piece, cut)
		if err != nil {
			return nil, err
		}
	}
	if subtype != 2 {
		return piece, nil
	}

	// Full-height dents past the shell radius; derive the flat half-depth
	// from the window circle when C is not cataloged.
	var c float64
	if v, ok := d["C"]; ok && v > 0 {
		c = v / 2
	} else {
		c = decimalFloor(d["E"]*math.Cos(math.Asin(d["G"]/d["E"]))/2, 6) * 0.95
	}
	dentLength := d["A"]/2 - c
	for _, side := range []float64{1, -1} {
		dent, err := box(b, dentLength, d["G"], d["B"],
			r3.Vec{X: side * (dentLength/2 + c), Z: d["B"] / 2})
		if err != nil {
			return nil, err
		}
		piece, err = subtract(b, piece, dent)
		if err != nil {
			return nil, err
		}
	}
	return piece, nil
}

// pRoundedHoles pierces the subtype 3 round-ended wire holes, one per side.
func pRoundedHoles(b kernel.Backend, d Dims, piece kernel.Solid) (kernel.Solid, error) {
	holeWidth := d["G"] / 2
	holeLength := (d["E"]-d["F"])/2 - holeWidth

	hole, err := box(b, holeLength, holeWidth, d["B"],
		r3.Vec{X: holeWidth/2 + holeLength/2 + d["F"]/2, Z: d["B"] / 2})
	if err != nil {
		return nil, err
	}
	for _, x := range []float64{holeWidth/2 + d["F"]/2, holeWidth/2 + holeLength + d["F"]/2} {
		round, err := cylinder(b, d["B"], holeWidth/2, r3.Vec{X: x, Z: d["B"] / 2})
		if err != nil {
			return nil, err
		}
		hole, err = union(b, hole, round)
		if err != nil {
			return nil, err
		}
	}
	piece, err = subtract(b, piece, hole)
	if err != nil {
		return nil, err
	}

	mirrored, err := translate(b, hole, r3.Vec{X: -(holeWidth + holeLength + d["F"])})
	if err != nil {
		return nil, err
	}
	return subtract(b, piece, mirrored)
}

func (*pShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return pGapTool(b, d, op)
}

// pqShaper is the PQ core: a round center leg with square-cornered outer
// plates top and bottom.
type pqShaper struct{}

func (*pqShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C", "D", "E", "F", "G"}}
}

func (*pqShaper) Height(d Dims) float64 { return d["B"] }

func (*pqShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	// Catalog shapes rarely list L and J; derive them the standard way.
	l := d["L"]
	if l == 0 {
		l = d["F"] + (d["C"]-d["F"])/3
	}
	j := d["J"]
	if j == 0 {
		j = d["F"] / 2
	}

	var gAngle float64
	if g, ok := d["G"]; ok {
		gAngle = math.Asin(g / d["E"])
	} else {
		gAngle = math.Asin((d["E"] - (d["E"]-d["F"])/2) / d["E"])
	}

	a := d["A"] / 2
	c := d["C"] / 2
	e := d["E"] / 2
	es := e * math.Sin(gAngle)
	ec := e * math.Cos(gAngle)

	plate := []curve.Point{
		{X: a, Y: -c},
		{X: a, Y: c},
		{X: es, Y: c},
		{X: es, Y: ec},
		{X: j / 2, Y: l / 2},
		{X: j / 4, Y: l / 4},
		{X: j / 4, Y: -l / 4},
		{X: j / 2, Y: -l / 2},
		{X: es, Y: -ec},
		{X: es, Y: -c},
	}
	p := polygon(plate...)

	// Mirror across x=0, reversing so both loops wind the same way.
	mirrored := make([]curve.Point, len(plate))
	for i, pt := range plate {
		mirrored[len(plate)-1-i] = curve.Pt(-pt.X, pt.Y)
	}
	p = append(p, polygon(mirrored...)...)

	column := curve.Circle{Center: curve.Pt(0, 0), Radius: d["F"] / 2}.Path(pathTolerance)
	return append(p, column...), nil
}

func (*pqShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return roundWindow(b, d)
}

func (*pqShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	return dropBelowZero(b, d, piece)
}

func (*pqShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return pGapTool(b, d, op)
}

// rmShaper is the RM core: a pot squared off at 45 degrees so pieces pack on
// a grid. Subtypes choose how far the flats cut into the round shell.
type rmShaper struct{}

func (*rmShaper) Subtypes() map[int][]string {
	required := []string{"A", "B", "C", "D", "E", "F", "G", "H", "J"}
	return map[int][]string{1: required, 2: required, 3: required, 4: required}
}

func (*rmShaper) Height(d Dims) float64 { return d["B"] }

func (*rmShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	p := math.Sqrt2*d["J"] - d["A"]
	alpha := math.Asin(d["G"] / d["E"])
	z := d["E"] / 2 * math.Cos(alpha)
	a := d["A"] / 2
	c := d["C"] / 2
	g := d["G"] / 2
	e := d["E"] / 2
	f := d["F"] / 2

	var t, n float64
	switch subtype {
	case 1:
		t, n = 0, (z-c)/g
	case 2:
		t, n = f*math.Sin(math.Acos(c/f)), (z-c)/g
	case 3:
		t, n = c-e*math.Cos(math.Asin(g/e))+g, (z-c)/g
	case 4:
		t, n = 0, 1
	}
	r := (a + p/2 - c + n*t) / (n + 1)
	s := n*r + c

	return polygon(
		curve.Pt(a, -p/2),
		curve.Pt(a, p/2),
		curve.Pt(r, s),
		curve.Pt(t, c),
		curve.Pt(-t, c),
		curve.Pt(-r, s),
		curve.Pt(-a, p/2),
		curve.Pt(-a, -p/2),
		curve.Pt(-r, -s),
		curve.Pt(-t, -c),
		curve.Pt(t, -c),
		curve.Pt(r, -s),
	), nil
}

func (*rmShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return roundWindow(b, d)
}

func (*rmShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	piece, err := centerHole(b, d, piece)
	if err != nil {
		return nil, err
	}
	return dropBelowZero(b, d, piece)
}

func (*rmShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return pGapTool(b, d, op)
}

// pmShaper is the PM power pot core: arc flanks joined by angled flats, the
// round center leg added back after the window cut.
type pmShaper struct{}

func (*pmShaper) Subtypes() map[int][]string {
	required := []string{"A", "B", "C", "D", "E", "F", "G", "H", "b", "t", "alpha"}
	return map[int][]string{1: required, 2: required}
}

func (*pmShaper) Height(d Dims) float64 { return d["B"] }

func (*pmShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	a := d["A"] / 2
	c := d["C"] / 2
	g := d["G"] / 2
	e := d["E"] / 2
	f := d["F"] / 2

	alphaDeg := d["alpha"]
	if alphaDeg == 0 {
		if subtype == 1 {
			alphaDeg = 120
		} else {
			alphaDeg = 90
		}
	}
	alpha := alphaDeg / 180 * math.Pi

	beta := math.Asin(g / e)
	gcos := e * math.Cos(beta)
	wall := a - e
	slope := (gcos - c) / g
	cornerX := g + wall*math.Sin(alpha/2)
	cornerY := gcos + cornerX*slope

	var path curve.BezPath
	if subtype == 1 {
		path.MoveTo(curve.Pt(cornerX, -cornerY))
		arcThrough(&path, curve.Pt(cornerX, -cornerY), curve.Pt(a, 0), curve.Pt(cornerX, cornerY))
		path.LineTo(curve.Pt(0, c))
		path.LineTo(curve.Pt(-cornerX, cornerY))
		arcThrough(&path, curve.Pt(-cornerX, cornerY), curve.Pt(-a, 0), curve.Pt(-cornerX, -cornerY))
		path.LineTo(curve.Pt(0, -c))
		path.LineTo(curve.Pt(cornerX, -cornerY))
		path.ClosePath()
		return path, nil
	}

	// Subtype 2 blunts the corners and replaces the apexes with flats.
	y := cornerY / 1.3
	path.MoveTo(curve.Pt(cornerX, -y))
	arcThrough(&path, curve.Pt(cornerX, -y), curve.Pt(a, 0), curve.Pt(cornerX, y))
	path.LineTo(curve.Pt(f/2, c))
	path.LineTo(curve.Pt(-f/2, c))
	path.LineTo(curve.Pt(-cornerX, y))
	arcThrough(&path, curve.Pt(-cornerX, y), curve.Pt(-a, 0), curve.Pt(-cornerX, -y))
	path.LineTo(curve.Pt(-f/2, -c))
	path.LineTo(curve.Pt(f/2, -c))
	path.LineTo(curve.Pt(cornerX, -y))
	path.ClosePath()
	return path, nil
}

func (*pmShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return roundWindow(b, d)
}

func (*pmShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	column, err := cylinder(b, d["B"], d["F"]/2, r3.Vec{Z: d["B"] / 2})
	if err != nil {
		return nil, err
	}
	piece, err = union(b, piece, column)
	if err != nil {
		return nil, err
	}
	piece, err = centerHole(b, d, piece)
	if err != nil {
		return nil, err
	}
	return dropBelowZero(b, d, piece)
}

func (*pmShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return pGapTool(b, d, op)
}
