package corecad

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Family is the magnetic core shape family tag following EN 60205 naming.
// Values are the lowercase MAS schema spellings; [ParseFamily] normalizes
// free-form input.
type Family string

const (
	FamilyE        Family = "e"
	FamilyEC       Family = "ec"
	FamilyEFD      Family = "efd"
	FamilyEL       Family = "el"
	FamilyEP       Family = "ep"
	FamilyEPX      Family = "epx"
	FamilyEQ       Family = "eq"
	FamilyER       Family = "er"
	FamilyETD      Family = "etd"
	FamilyLP       Family = "lp"
	FamilyP        Family = "p"
	FamilyPM       Family = "pm"
	FamilyPQ       Family = "pq"
	FamilyRM       Family = "rm"
	FamilyT        Family = "t"
	FamilyU        Family = "u"
	FamilyUR       Family = "ur"
	FamilyUT       Family = "ut"
	FamilyC        Family = "c"
	FamilyPlanarE  Family = "planar e"
	FamilyPlanarEL Family = "planar el"
	FamilyPlanarER Family = "planar er"
)

// ParseFamily normalizes a free-form family name ("Planar ER", "PLANAR_ER")
// to its canonical Family value. It does not validate against the registry;
// unknown families surface as ConfigurationError at profile lookup.
func ParseFamily(s string) Family {
	return Family(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " "))
}

// ShapeSpec selects a profile strategy and parameterizes it.
//
// Dimensions must contain exactly the axis names the (family, subtype)
// requirement table declares; missing names fail profile construction with
// a ConfigurationError naming the axis.
type ShapeSpec struct {
	Name       string     `json:"name,omitempty"`
	Family     Family     `json:"family"`
	Subtype    int        `json:"familySubtype,string,omitempty"`
	Dimensions Dimensions `json:"dimensions"`
}

// PieceKind distinguishes the roles a piece plays in an assembly.
type PieceKind string

const (
	// PieceHalfSet is one of two mating pieces forming a non-toroidal core.
	PieceHalfSet PieceKind = "half set"

	// PieceClosed is a single-piece core (a toroid) with no mating partner.
	PieceClosed PieceKind = "toroidal"

	// PieceSpacer is a plain box shim between half sets.
	PieceSpacer PieceKind = "spacer"
)

// MachiningOp is a subtractive operation creating or enlarging an air gap.
//
// Coordinates semantics: index 0 selects the leg (0 = center leg, negative =
// left outer leg, positive = right outer leg); index 1 is the offset of the
// gap center from the mating face along the winding axis; index 2 is
// reserved (nonzero marks legs joined to the center on shapes without
// separated laterals, e.g. EP).
type MachiningOp struct {
	Length      float64    `json:"length"`
	Coordinates [3]float64 `json:"coordinates"`
}

// GeometricalPiece is one physical part of a core: a half set, a closed
// toroid, or a spacer, positioned in assembly space.
//
// Rotation holds rotations about the assembly origin axes in radians,
// applied before translation in the order X, Z, Y.
// Coordinates follow the MAS convention (winding axis is Y); ConvertAxis
// maps them to kernel space.
type GeometricalPiece struct {
	Kind        PieceKind     `json:"type"`
	Shape       ShapeSpec     `json:"shape"`
	Rotation    [3]float64    `json:"rotation"`
	Coordinates []float64     `json:"coordinates"`
	Machining   []MachiningOp `json:"machining,omitempty"`

	// SpacerDimensions is the box extent of a PieceSpacer (width, height,
	// depth in meters). Unused for the other kinds.
	SpacerDimensions [3]float64 `json:"dimensions,omitempty"`
}

// ConvertAxis maps MAS piece coordinates to kernel space. Two-component
// coordinates are (y, z) offsets in the winding plane; three-component
// coordinates are MAS (x, y, z) with y the winding axis.
func ConvertAxis(coordinates []float64) (r3.Vec, error) {
	switch len(coordinates) {
	case 0:
		return r3.Vec{}, nil
	case 2:
		return r3.Vec{X: 0, Y: coordinates[0], Z: coordinates[1]}, nil
	case 3:
		return r3.Vec{X: coordinates[0], Y: coordinates[2], Z: coordinates[1]}, nil
	default:
		return r3.Vec{}, &ConfigurationError{
			Stage:   StageComposePiece,
			Subject: "coordinates",
			Detail:  "must have 2 or 3 components",
		}
	}
}

// CoreAssembly is the ordered list of pieces forming one core.
//
// Invariants: a toroid has exactly one PieceClosed; a standard core has two
// half sets related by a 180° rotation; a C core is always a mirrored
// half-set pair. Validate enforces the kind-level invariants.
type CoreAssembly struct {
	Name   string             `json:"name,omitempty"`
	Pieces []GeometricalPiece `json:"geometricalDescription"`
}

// Validate checks the piece-kind invariants of the assembly.
func (a *CoreAssembly) Validate() error {
	var closed, halves int
	for _, p := range a.Pieces {
		switch p.Kind {
		case PieceClosed:
			closed++
		case PieceHalfSet:
			halves++
		case PieceSpacer:
		default:
			return &ConfigurationError{
				Stage:   StageComposePiece,
				Subject: string(p.Kind),
				Detail:  "unknown piece kind",
			}
		}
	}
	if closed > 0 && (closed != 1 || halves != 0) {
		return &GeometryError{
			Stage:   StageComposePiece,
			Subject: a.Name,
			Detail:  "a toroidal assembly has exactly one closed piece and no half sets",
		}
	}
	if closed == 0 && halves == 0 {
		return &ConfigurationError{
			Stage:   StageComposePiece,
			Subject: a.Name,
			Detail:  "assembly has no core pieces",
		}
	}
	return nil
}
