package profile

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// tShaper is the toroid: a ring of outer diameter A, inner diameter B and
// height C. The bore is the winding window, so there is nothing to
// subtract, and the ring is reoriented so its axis matches the toroidal
// winding convention.
type tShaper struct{}

func (*tShaper) Subtypes() map[int][]string {
	return map[int][]string{1: {"A", "B", "C"}}
}

// Height is the ring height C; toroids are the one family whose extrusion
// depth is not B.
func (*tShaper) Height(d Dims) float64 { return d["C"] }

func (*tShaper) Boundary(d Dims, subtype int) (curve.BezPath, error) {
	return annulus(d["A"]/2, d["B"]/2), nil
}

func (*tShaper) WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error) {
	return nil, nil
}

func (*tShaper) Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error) {
	piece, err := translate(b, piece, r3.Vec{Z: -d["C"] / 2})
	if err != nil {
		return nil, err
	}
	piece, err = b.Rotate(piece, r3.Vec{Y: -1}, math.Pi/2, r3.Vec{})
	if err != nil {
		return nil, kerr(b, err)
	}
	return piece, nil
}

func (*tShaper) GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error) {
	return nil, &corecad.GeometryError{
		Stage:   corecad.StageApplyMachining,
		Subject: string(corecad.FamilyT),
		Detail:  "toroidal cores take no machining",
	}
}
