// Package assembly composes profile pieces into positioned core assemblies.
//
// The profile package builds a single piece in its canonical pose (mating
// face on z=0, winding axis +Z). This package owns everything that happens
// after that: rotating pieces into assembly pose, grinding air gaps,
// translating to the assembly coordinates, inserting spacers, and exporting
// the finished core.
package assembly

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/internal/parallel"
	"github.com/openmagnetics/corecad/kernel"
	"github.com/openmagnetics/corecad/profile"
)

const (
	// unitScale converts MAS meters to the millimeter working units the
	// profile layer builds in.
	unitScale = 1000

	// residualGap is the face-to-face clearance left between the two half
	// sets of a ground core, in millimeters. Each half moves half of it
	// away from the mating plane.
	residualGap = 0.005
)

// Builder turns geometrical descriptions into backend solids. It is safe
// for concurrent use; piece construction within one core is parallelized
// on its worker pool.
type Builder struct {
	backend kernel.Backend
	pool    *parallel.WorkerPool
	log     *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithWorkers sets the number of piece-building workers. Zero or negative
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

// New creates a Builder on the given backend. The caller keeps ownership of
// the backend; Close releases only the Builder's own workers.
func New(backend kernel.Backend, opts ...Option) *Builder {
	b := &Builder{
		backend: backend,
		log:     corecad.Logger(),
	}
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

// Part is one built piece of a core, in the order the assembly declared it.
type Part struct {
	Kind  corecad.PieceKind
	Solid kernel.Solid
}

// prepared is a shape spec resolved against the profile registry, with
// dimensions flattened to working units.
type prepared struct {
	family  corecad.Family
	subtype int
	shaper  profile.Shaper
	dims    profile.Dims
}

func (b *Builder) prepare(shape corecad.ShapeSpec) (*prepared, error) {
	family := corecad.ParseFamily(string(shape.Family))
	shaper, err := profile.Lookup(family)
	if err != nil {
		return nil, err
	}
	subtype, err := profile.NormalizeSubtype(family, shaper, shape.Subtype)
	if err != nil {
		return nil, err
	}
	dims, err := shape.Dimensions.Flatten(unitScale)
	if err != nil {
		return nil, err
	}
	if err := profile.CheckDimensions(family, shaper, subtype, dims); err != nil {
		return nil, err
	}
	return &prepared{family: family, subtype: subtype, shaper: shaper, dims: dims}, nil
}

func (b *Builder) buildPrepared(p *prepared) (kernel.Solid, error) {
	boundary, err := p.shaper.Boundary(p.dims, p.subtype)
	if err != nil {
		return nil, err
	}
	piece, err := b.backend.Extrude(boundary, p.shaper.Height(p.dims))
	if err != nil {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageBuildProfile,
			Backend: b.backend.Name(),
			Err:     err,
		}
	}
	window, err := p.shaper.WindowTool(b.backend, p.dims)
	if err != nil {
		return nil, err
	}
	if window != nil {
		piece, err = b.backend.Subtract(piece, window)
		if err != nil {
			return nil, &corecad.KernelError{
				Stage:   corecad.StageBuildProfile,
				Backend: b.backend.Name(),
				Err:     err,
			}
		}
	}
	return p.shaper.Finish(b.backend, p.dims, p.subtype, piece)
}

// BuildShape builds one piece in canonical pose: mating face on the z=0
// plane for half sets, centered for closed shapes. Dimensions are taken in
// meters and the solid is built in millimeters.
func (b *Builder) BuildShape(ctx context.Context, shape corecad.ShapeSpec) (kernel.Solid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := b.prepare(shape)
	if err != nil {
		return nil, err
	}
	solid, err := b.buildPrepared(p)
	if err != nil {
		return nil, err
	}
	b.log.Debug("built shape",
		slog.String("family", string(p.family)),
		slog.Int("subtype", p.subtype),
		slog.String("name", shape.Name))
	return solid, nil
}

// BuildPiece builds one positioned piece of an assembly: the canonical
// shape rotated into pose, machined, and translated to its coordinates.
// Spacers skip the profile layer entirely and become plain boxes.
func (b *Builder) BuildPiece(ctx context.Context, piece corecad.GeometricalPiece) (kernel.Solid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if piece.Kind == corecad.PieceSpacer {
		return b.buildSpacer(piece)
	}

	p, err := b.prepare(piece.Shape)
	if err != nil {
		return nil, err
	}
	solid, err := b.buildPrepared(p)
	if err != nil {
		return nil, err
	}

	solid, err = b.rotateIntoPose(solid, piece.Rotation)
	if err != nil {
		return nil, err
	}

	for _, op := range piece.Machining {
		solid, err = b.applyMachining(p, solid, op)
		if err != nil {
			return nil, err
		}
	}

	at, err := corecad.ConvertAxis(piece.Coordinates)
	if err != nil {
		return nil, err
	}
	at = r3.Scale(unitScale, at)
	if piece.Kind == corecad.PieceHalfSet {
		// Ground mating faces never touch perfectly; leave the residual
		// clearance split across the pair.
		if piece.Rotation[0] > 0 {
			at.Z += residualGap / 2
		} else {
			at.Z -= residualGap / 2
		}
	}
	solid, err = b.backend.Translate(solid, at)
	if err != nil {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageComposePiece,
			Backend: b.backend.Name(),
			Err:     err,
		}
	}
	return solid, nil
}

// rotateIntoPose applies the piece rotation about the assembly origin.
// Axis order follows the MAS convention: X first, then the component
// stored third about Y, then the component stored second about Z, all
// about the negative axis directions.
func (b *Builder) rotateIntoPose(solid kernel.Solid, rotation [3]float64) (kernel.Solid, error) {
	steps := []struct {
		axis  r3.Vec
		angle float64
	}{
		{r3.Vec{X: -1}, rotation[0]},
		{r3.Vec{Y: -1}, rotation[2]},
		{r3.Vec{Z: -1}, rotation[1]},
	}
	var err error
	for _, step := range steps {
		solid, err = b.backend.Rotate(solid, step.axis, step.angle, r3.Vec{})
		if err != nil {
			return nil, &corecad.KernelError{
				Stage:   corecad.StageComposePiece,
				Backend: b.backend.Name(),
				Err:     err,
			}
		}
	}
	return solid, nil
}

// applyMachining grinds one air gap into the piece. Machining coordinates
// arrive in meters in the assembly frame; pieces are already rotated into
// pose when gaps are ground.
func (b *Builder) applyMachining(p *prepared, solid kernel.Solid, op corecad.MachiningOp) (kernel.Solid, error) {
	scaled := corecad.MachiningOp{Length: op.Length * unitScale}
	for i, c := range op.Coordinates {
		scaled.Coordinates[i] = c * unitScale
	}

	tool, err := p.shaper.GapTool(b.backend, p.dims, scaled)
	if err != nil {
		return nil, err
	}

	// A grind running the full depth of the winding window would cut the
	// leg off the piece. Legs only span the window depth D from the mating
	// plane, so the check is bounded by that slab, not the whole piece.
	pb, tb := solid.BoundingBox(), tool.BoundingBox()
	legMin, legMax := pb.Min.Z, pb.Max.Z
	if d, ok := p.dims["D"]; ok && d > 0 && d < legMax-legMin {
		if math.Abs(pb.Max.Z) <= math.Abs(pb.Min.Z) {
			legMin = legMax - d
		} else {
			legMax = legMin + d
		}
	}
	if tb.Min.Z <= legMin+1e-9 && tb.Max.Z >= legMax-1e-9 {
		return nil, &corecad.GeometryError{
			Stage:   corecad.StageApplyMachining,
			Subject: string(p.family),
			Detail:  "gap exceeds the leg extent",
		}
	}

	machined, err := b.backend.Subtract(solid, tool)
	if err != nil {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageApplyMachining,
			Backend: b.backend.Name(),
			Err:     err,
		}
	}
	b.log.Debug("machined gap",
		slog.String("family", string(p.family)),
		slog.Float64("length", op.Length))
	return machined, nil
}

func (b *Builder) buildSpacer(piece corecad.GeometricalPiece) (kernel.Solid, error) {
	d := piece.SpacerDimensions
	if d[0] <= 0 || d[1] <= 0 || d[2] <= 0 {
		return nil, &corecad.ConfigurationError{
			Stage:   corecad.StageComposePiece,
			Subject: "spacer",
			Detail:  "dimensions must be positive",
		}
	}
	at, err := corecad.ConvertAxis(piece.Coordinates)
	if err != nil {
		return nil, err
	}
	// MAS spacer dimensions are (width, height, depth); the kernel box is
	// laid out width, depth, height.
	w, h, dp := d[0]*unitScale, d[1]*unitScale, d[2]*unitScale
	outline := rectOutline(w, dp)
	box, err := b.backend.Extrude(outline, h)
	if err != nil {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageComposePiece,
			Backend: b.backend.Name(),
			Err:     err,
		}
	}
	at = r3.Scale(unitScale, at)
	at.Z -= h / 2
	box, err = b.backend.Translate(box, at)
	if err != nil {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageComposePiece,
			Backend: b.backend.Name(),
			Err:     err,
		}
	}
	return box, nil
}

func rectOutline(w, d float64) curve.BezPath {
	return curve.Rect{X0: -w / 2, Y0: -d / 2, X1: w / 2, Y1: d / 2}.Path(0.01)
}

// BuildCore builds every piece of the assembly, preserving declaration
// order. Pieces are built concurrently on the Builder's pool.
func (b *Builder) BuildCore(ctx context.Context, core corecad.CoreAssembly) ([]Part, error) {
	if err := core.Validate(); err != nil {
		return nil, err
	}
	parts := make([]Part, len(core.Pieces))
	err := b.pool.ForEach(ctx, len(core.Pieces), func(i int) error {
		solid, err := b.BuildPiece(ctx, core.Pieces[i])
		if err != nil {
			return fmt.Errorf("piece %d: %w", i, err)
		}
		parts[i] = Part{Kind: core.Pieces[i].Kind, Solid: solid}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("built core",
		slog.String("name", core.Name),
		slog.Int("pieces", len(parts)))
	return parts, nil
}

// ExportCore builds the assembly and writes the union of its pieces to w.
func (b *Builder) ExportCore(ctx context.Context, core corecad.CoreAssembly, format kernel.Format, q corecad.Quality, w io.Writer) error {
	parts, err := b.BuildCore(ctx, core)
	if err != nil {
		return err
	}
	compound := parts[0].Solid
	for _, part := range parts[1:] {
		compound, err = b.backend.Union(compound, part.Solid)
		if err != nil {
			return &corecad.KernelError{
				Stage:   corecad.StageComposePiece,
				Backend: b.backend.Name(),
				Err:     err,
			}
		}
	}
	return b.backend.Export(compound, format, q, w)
}
