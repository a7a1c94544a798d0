// Package profile turns per-family dimension sets into piece geometry.
//
// Each magnetic core shape family (E, ER, PQ, RM, toroids, U cores and the
// rest) is a [Shaper]: a strategy that knows the family's planform boundary,
// its winding-window negative solid, the extra features some subtypes carry,
// and the footprint of the gap machining tool for each leg. Shapers are held
// in a registry keyed by family; planar variants alias their base family.
//
// Dimensions are passed pre-resolved as [Dims], a flat map of axis letter to
// working-unit value (millimeters throughout the pipeline). Use
// [corecad.Dimensions.Flatten] to produce one from schema input.
//
// All geometry is built on a [kernel.Backend]; shapers never touch backend
// state beyond the constructive calls, so a single shaper value is safe for
// concurrent use.
package profile

import (
	"sort"
	"sync"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
	"honnef.co/go/curve"
)

// Dims maps dimension axis letters to resolved working-unit values.
type Dims = map[string]float64

// Shaper builds one shape family's geometry.
//
// The construction pipeline calls the methods in order: Boundary is extruded
// by Height, WindowTool is subtracted, Finish adds family extras and moves
// the piece to its resting position. GapTool is invoked once per machining
// operation on the finished piece.
type Shaper interface {
	// Subtypes returns the required dimension axis names per subtype.
	Subtypes() map[int][]string

	// Height is the extrusion depth of the boundary planform.
	Height(d Dims) float64

	// Boundary is the outer planform of the piece, drawn in the plane
	// perpendicular to the extrusion axis and centered on the winding
	// column.
	Boundary(d Dims, subtype int) (curve.BezPath, error)

	// WindowTool builds the winding-window negative solid to subtract from
	// the extruded boundary. A nil solid (with nil error) means the family
	// has no window cutout.
	WindowTool(b kernel.Backend, d Dims) (kernel.Solid, error)

	// Finish applies subtype extras (lateral cuts, added columns, center
	// holes) and translates the piece so the mating face sits at z=0 with
	// the body below it.
	Finish(b kernel.Backend, d Dims, subtype int, piece kernel.Solid) (kernel.Solid, error)

	// GapTool builds the subtractive solid of one machining operation,
	// sized to the footprint of the leg the operation selects.
	GapTool(b kernel.Backend, d Dims, op corecad.MachiningOp) (kernel.Solid, error)
}

var (
	registryMu sync.RWMutex
	shapers    = map[corecad.Family]Shaper{}
)

// Register adds or replaces the shaper for a family. Aliasing two families
// to one shaper value is allowed and is how planar variants are handled.
func Register(f corecad.Family, s Shaper) {
	registryMu.Lock()
	defer registryMu.Unlock()
	shapers[f] = s
}

// Lookup returns the shaper for a family.
func Lookup(f corecad.Family) (Shaper, error) {
	registryMu.RLock()
	s, ok := shapers[f]
	registryMu.RUnlock()
	if !ok {
		return nil, &corecad.ConfigurationError{
			Stage:   corecad.StageBuildProfile,
			Subject: string(f),
			Detail:  "unknown shape family",
		}
	}
	return s, nil
}

// Families returns the registered family names, sorted.
func Families() []corecad.Family {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]corecad.Family, 0, len(shapers))
	for f := range shapers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NormalizeSubtype substitutes the family's sole subtype for an unset one
// and validates the subtype exists.
func NormalizeSubtype(f corecad.Family, s Shaper, subtype int) (int, error) {
	if subtype == 0 {
		subtype = 1
	}
	if _, ok := s.Subtypes()[subtype]; !ok {
		return 0, &corecad.ConfigurationError{
			Stage:   corecad.StageBuildProfile,
			Subject: string(f),
			Detail:  "unknown family subtype",
		}
	}
	return subtype, nil
}

// CheckDimensions verifies that every axis the (family, subtype) pair
// requires resolved to a positive value, except lowercase auxiliary axes
// which may be zero. The first missing axis is reported.
func CheckDimensions(f corecad.Family, s Shaper, subtype int, d Dims) error {
	required, ok := s.Subtypes()[subtype]
	if !ok {
		return &corecad.ConfigurationError{
			Stage:   corecad.StageBuildProfile,
			Subject: string(f),
			Detail:  "unknown family subtype",
		}
	}
	for _, name := range required {
		if name == "alpha" {
			// Resolved per subtype default when absent.
			continue
		}
		if _, present := d[name]; !present {
			return &corecad.ConfigurationError{
				Stage:   corecad.StageResolveDimensions,
				Subject: name,
				Detail:  "required dimension missing for family " + string(f),
			}
		}
	}
	return nil
}

func init() {
	e := &eShaper{}
	er := &erShaper{}
	el := &elShaper{}

	Register(corecad.FamilyE, e)
	Register(corecad.FamilyPlanarE, e)
	Register(corecad.FamilyER, er)
	Register(corecad.FamilyPlanarER, er)
	Register(corecad.FamilyEL, el)
	Register(corecad.FamilyPlanarEL, el)
	Register(corecad.FamilyETD, &etdShaper{})
	Register(corecad.FamilyEQ, &eqShaper{})
	Register(corecad.FamilyLP, &lpShaper{})
	Register(corecad.FamilyEC, &ecShaper{})
	Register(corecad.FamilyEP, &epShaper{})
	Register(corecad.FamilyEPX, &epxShaper{})
	Register(corecad.FamilyEFD, &efdShaper{})
	Register(corecad.FamilyP, &pShaper{})
	Register(corecad.FamilyPQ, &pqShaper{})
	Register(corecad.FamilyRM, &rmShaper{})
	Register(corecad.FamilyPM, &pmShaper{})
	Register(corecad.FamilyU, &uShaper{})
	Register(corecad.FamilyC, &cShaper{})
	Register(corecad.FamilyUR, &urShaper{})
	Register(corecad.FamilyUT, &utShaper{})
	Register(corecad.FamilyT, &tShaper{})
}
