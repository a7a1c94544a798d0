// Package winding converts turn records and wire specs into swept conductor
// solids.
//
// Turns keep their declared order throughout; it is electrically
// significant. Grouping into windings and layers is a labeling concern and
// never changes geometry.
package winding

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/internal/parallel"
	"github.com/openmagnetics/corecad/kernel"
)

const (
	// unitScale converts MAS meters to millimeter working units.
	unitScale = 1000

	// defaultWireDiameter stands in when a wire spec carries no diameter,
	// in meters.
	defaultWireDiameter = 0.001

	// defaultRadialHeight stands in for a toroidal window with no radial
	// height, in meters.
	defaultRadialHeight = 0.003

	pathTolerance = 0.01
)

// Builder sweeps coil turns on a kernel backend. Turns of one coil are
// built concurrently on its worker pool.
type Builder struct {
	backend kernel.Backend
	pool    *parallel.WorkerPool
	log     *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithWorkers sets the number of turn-building workers. Zero or negative
// uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.pool = parallel.NewWorkerPool(n) }
}

// WithLogger overrides the package-wide corecad logger for this Builder.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates a Builder on the given backend.
func New(backend kernel.Backend, opts ...Option) *Builder {
	b := &Builder{backend: backend, log: corecad.Logger()}
	for _, opt := range opts {
		opt(b)
	}
	if b.pool == nil {
		b.pool = parallel.NewWorkerPool(0)
	}
	return b
}

// Close stops the Builder's workers.
func (b *Builder) Close() {
	b.pool.Close()
}

// Turn is one built conductor turn, in the order the coil declared it.
type Turn struct {
	Winding string
	Index   int // position within the whole coil, declaration order
	Solid   kernel.Solid
}

// Group is a labeling view: the coil-level indices of one winding's turns
// in declared order.
type Group struct {
	Winding string
	Turns   []int
}

// GroupTurns partitions turn indices by winding name, preserving both the
// windings' declaration order and the turns' order within each winding.
func GroupTurns(coil *corecad.CoilSpec) []Group {
	byName := make(map[string]int, len(coil.Windings))
	groups := make([]Group, 0, len(coil.Windings))
	for _, w := range coil.Windings {
		byName[w.Name] = len(groups)
		groups = append(groups, Group{Winding: w.Name})
	}
	for i, t := range coil.Turns {
		gi, ok := byName[t.Winding]
		if !ok {
			continue
		}
		groups[gi].Turns = append(groups[gi].Turns, i)
	}
	return groups
}

// TurnLabel names one turn's place in the coil stack, carrying no
// geometry. A section is a contiguous run of one winding's turns in
// declared order, stacked radially; a layer is one radial position within
// its section, the layer's turns stacked along the window height.
type TurnLabel struct {
	Winding string
	Section int
	Layer   int
}

// radialTolerance separates turns into layers: radial positions closer
// than this (in meters) are the same layer.
const radialTolerance = 1e-9

// LabelTurns assigns section and layer labels to every turn by adjacency
// in declared order. A new section opens whenever the winding name changes
// between consecutive turns; within a section the layer advances whenever
// the radial coordinate moves. Turns referencing an undeclared winding get
// negative labels and do not break the adjacency of their neighbors.
func LabelTurns(coil *corecad.CoilSpec) []TurnLabel {
	known := make(map[string]bool, len(coil.Windings))
	for _, w := range coil.Windings {
		known[w.Name] = true
	}

	labels := make([]TurnLabel, len(coil.Turns))
	section, layer := -1, 0
	var (
		prevWinding string
		prevRadial  float64
	)
	for i, t := range coil.Turns {
		labels[i] = TurnLabel{Winding: t.Winding, Section: -1, Layer: -1}
		if !known[t.Winding] {
			continue
		}
		var radial float64
		if len(t.Coordinates) > 0 {
			radial = t.Coordinates[0]
		}
		switch {
		case section < 0 || t.Winding != prevWinding:
			section++
			layer = 0
		case math.Abs(radial-prevRadial) > radialTolerance:
			layer++
		}
		labels[i] = TurnLabel{Winding: t.Winding, Section: section, Layer: layer}
		prevWinding, prevRadial = t.Winding, radial
	}
	return labels
}

// BuildCoil builds every turn of the coil, preserving declaration order.
func (b *Builder) BuildCoil(ctx context.Context, coil *corecad.CoilSpec) ([]Turn, error) {
	wires := make(map[string]corecad.WireSpec, len(coil.Windings))
	for _, w := range coil.Windings {
		wires[w.Name] = w.Wire
	}

	turns := make([]Turn, len(coil.Turns))
	err := b.pool.ForEach(ctx, len(coil.Turns), func(i int) error {
		spec := coil.Turns[i]
		wire, ok := wires[spec.Winding]
		if !ok {
			return &corecad.GeometryError{
				Stage:   corecad.StageBuildTurn,
				Subject: spec.Winding,
				Detail:  "turn references undefined winding",
			}
		}
		if wire.Kind == "" {
			return &corecad.GeometryError{
				Stage:   corecad.StageBuildTurn,
				Subject: spec.Winding,
				Detail:  "winding has no wire",
			}
		}
		solid, err := b.buildTurn(&coil.Bobbin, wire, spec)
		if err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
		turns[i] = Turn{Winding: spec.Winding, Index: i, Solid: solid}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("built coil", slog.Int("turns", len(turns)))
	return turns, nil
}

func (b *Builder) buildTurn(bobbin *corecad.BobbinSpec, wire corecad.WireSpec, spec corecad.TurnSpec) (kernel.Solid, error) {
	window := bobbin.Window()
	if window.RadialHeight > 0 || window.Angle != nil {
		return b.buildToroidalTurn(bobbin, wire, spec)
	}
	return b.buildConcentricTurn(bobbin, wire, spec)
}

// buildConcentricTurn sweeps the wire section around the bobbin column at
// the turn's height. Coordinates are (radial position, height) in meters.
func (b *Builder) buildConcentricTurn(bobbin *corecad.BobbinSpec, wire corecad.WireSpec, spec corecad.TurnSpec) (kernel.Solid, error) {
	if len(spec.Coordinates) < 2 {
		return nil, &corecad.GeometryError{
			Stage:   corecad.StageBuildTurn,
			Subject: spec.Winding,
			Detail:  "concentric turn needs (radial, height) coordinates",
		}
	}
	radial := spec.Coordinates[0] * unitScale
	height := spec.Coordinates[1] * unitScale

	section, err := b.wireSection(bobbin, wire, spec.Winding)
	if err != nil {
		return nil, err
	}

	path := kernel.SweepPath{
		Kind:   kernel.SweepCircle,
		Center: r3.Vec{Z: height},
		Normal: r3.Vec{Z: 1},
		Radius: radial,
		Closed: true,
	}
	if bobbin.ColumnShape == corecad.ColumnRectangular {
		margin := radial - bobbin.ColumnWidth*unitScale/2
		if margin <= 0 {
			return nil, &corecad.GeometryError{
				Stage:   corecad.StageBuildTurn,
				Subject: spec.Winding,
				Detail:  "turn lies inside the bobbin column",
			}
		}
		path = kernel.SweepPath{
			Kind:   kernel.SweepRacetrack,
			Center: r3.Vec{Z: height},
			Normal: r3.Vec{Z: 1},
			Width:  bobbin.ColumnWidth * unitScale,
			Height: bobbin.ColumnDepth * unitScale,
			Radius: margin,
			Closed: true,
		}
	}

	solid, err := b.backend.Sweep(section, path)
	if err != nil {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageBuildTurn,
			Backend: b.backend.Name(),
			Err:     err,
		}
	}
	return solid, nil
}

// buildToroidalTurn loops the wire through the bore and over the ring: an
// inner run through the bore, a radial run across each face, and an outer
// run down the rim, with wire-radius bends at the corners. The loop is laid
// out on the negative X side and rotated to the turn's angular position.
func (b *Builder) buildToroidalTurn(bobbin *corecad.BobbinSpec, wire corecad.WireSpec, spec corecad.TurnSpec) (kernel.Solid, error) {
	if len(spec.Coordinates) < 2 {
		return nil, &corecad.GeometryError{
			Stage:   corecad.StageBuildTurn,
			Subject: spec.Winding,
			Detail:  "toroidal turn needs (x, z) bore coordinates",
		}
	}

	wireRadius, err := wireDiameter(wire)
	if err != nil {
		return nil, &corecad.GeometryError{
			Stage:   corecad.StageBuildTurn,
			Subject: spec.Winding,
			Detail:  err.Error(),
		}
	}
	wireRadius /= 2

	halfDepth := bobbin.ColumnDepth * unitScale
	bend := wireRadius

	innerRadial := math.Hypot(spec.Coordinates[0], spec.Coordinates[1]) * unitScale
	outerRadial := innerRadial
	switch {
	case len(spec.AdditionalCoordinates) > 0 && len(spec.AdditionalCoordinates[0]) >= 2:
		ac := spec.AdditionalCoordinates[0]
		outerRadial = math.Hypot(ac[0], ac[1]) * unitScale
	case bobbin.Window().RadialHeight > 0:
		outerRadial += bobbin.Window().RadialHeight * unitScale
	default:
		outerRadial += defaultRadialHeight * unitScale
	}
	if outerRadial <= innerRadial {
		return nil, &corecad.GeometryError{
			Stage:   corecad.StageBuildTurn,
			Subject: spec.Winding,
			Detail:  "outer turn position is inside the inner one",
		}
	}
	if halfDepth <= bend {
		return nil, &corecad.GeometryError{
			Stage:   corecad.StageBuildTurn,
			Subject: spec.Winding,
			Detail:  "wire is thicker than the core depth",
		}
	}

	// Corner points of the loop center line; Y is the core axis.
	corners := []r3.Vec{
		{X: -innerRadial, Y: halfDepth},
		{X: -outerRadial, Y: halfDepth},
		{X: -outerRadial, Y: -halfDepth},
		{X: -innerRadial, Y: -halfDepth},
	}
	if rot := spec.Rotation - math.Pi; math.Abs(rot) > 1e-9 {
		r := r3.NewRotation(rot, r3.Vec{Y: 1})
		for i := range corners {
			corners[i] = r.Rotate(corners[i])
		}
	}

	section := curve.Circle{Radius: wireRadius}.Path(pathTolerance)
	solid, err := b.backend.Sweep(section, kernel.SweepPath{
		Kind:       kernel.SweepPolyline,
		Points:     corners,
		BendRadius: bend,
		Closed:     true,
	})
	if err != nil {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageBuildTurn,
			Backend: b.backend.Name(),
			Err:     err,
		}
	}
	return solid, nil
}

// wireSection builds the swept cross-section in working units per the wire
// kind. Foil with no declared height spans the full window height.
func (b *Builder) wireSection(bobbin *corecad.BobbinSpec, wire corecad.WireSpec, winding string) (curve.BezPath, error) {
	badWire := func(detail string) error {
		return &corecad.GeometryError{
			Stage:   corecad.StageBuildTurn,
			Subject: winding,
			Detail:  detail,
		}
	}
	switch wire.Kind {
	case corecad.WireRound, corecad.WireLitz:
		d, err := wireDiameter(wire)
		if err != nil {
			return nil, badWire(err.Error())
		}
		return curve.Circle{Radius: d / 2}.Path(pathTolerance), nil

	case corecad.WireRectangular:
		w := resolveOr(wire.OuterWidth, wire.ConductingWidth, 0)
		h := resolveOr(wire.OuterHeight, wire.ConductingHeight, 0)
		if w <= 0 || h <= 0 {
			return nil, badWire("rectangular wire needs width and height")
		}
		return rectSection(w, h), nil

	case corecad.WireFoil:
		w := resolveOr(wire.OuterWidth, wire.ConductingWidth, 0)
		if w <= 0 {
			return nil, badWire("foil wire needs a thickness")
		}
		h := resolveOr(wire.OuterHeight, wire.ConductingHeight, 0)
		if h <= 0 {
			h = bobbin.Window().Height * unitScale
		}
		if h <= 0 {
			return nil, badWire("foil wire needs a height or a window to span")
		}
		return rectSection(w, h), nil

	default:
		return nil, badWire(fmt.Sprintf("unknown wire kind %q", wire.Kind))
	}
}

// wireDiameter resolves the sweep diameter in working units: the outer
// diameter, else the conducting diameter, else the stock default.
func wireDiameter(wire corecad.WireSpec) (float64, error) {
	d := resolveOr(wire.OuterDiameter, wire.ConductingDiameter, defaultWireDiameter*unitScale)
	if d <= 0 {
		return 0, fmt.Errorf("wire diameter must be positive")
	}
	return d, nil
}

// resolveOr resolves the first populated dimension to working units,
// falling back to def (already in working units).
func resolveOr(primary, secondary corecad.DimensionValue, def float64) float64 {
	for _, v := range []corecad.DimensionValue{primary, secondary} {
		if v.IsZero() {
			continue
		}
		if r, err := v.Resolve(unitScale); err == nil {
			return r
		}
	}
	return def
}

func rectSection(w, h float64) curve.BezPath {
	return curve.Rect{X0: -w / 2, Y0: -h / 2, X1: w / 2, Y1: h / 2}.Path(pathTolerance)
}
