package winding

import (
	"context"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// BuildBobbin builds the coil former: a tube hugging the core's winding
// column between two flanges that close the winding window off axially.
// The tube inner cavity is left open for the column along the full height.
func (b *Builder) BuildBobbin(ctx context.Context, bobbin *corecad.BobbinSpec) (kernel.Solid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	badBobbin := func(detail string) error {
		return &corecad.ConfigurationError{
			Stage:   corecad.StageBuildBobbin,
			Subject: "bobbin",
			Detail:  detail,
		}
	}

	window := bobbin.Window()
	width := window.Width * unitScale
	height := window.Height * unitScale
	if width <= 0 || height <= 0 {
		return nil, badBobbin("winding window needs width and height")
	}

	colWidth := bobbin.ColumnWidth * unitScale
	colDepth := bobbin.ColumnDepth * unitScale
	if colDepth <= 0 {
		colDepth = colWidth
	}
	thickness := bobbin.ColumnThickness * unitScale
	wall := bobbin.WallThickness * unitScale
	if colWidth <= 0 {
		return nil, badBobbin("column width must be positive")
	}
	if thickness <= 0 || 2*thickness >= colWidth || 2*thickness >= colDepth {
		return nil, badBobbin("column thickness must be positive and thinner than the column")
	}

	round := bobbin.ColumnShape != corecad.ColumnRectangular
	outline := func(w, d float64) curve.BezPath {
		if round {
			return curve.Circle{Radius: w / 2}.Path(pathTolerance)
		}
		return rectSection(w, d)
	}

	fail := func(err error) (kernel.Solid, error) {
		return nil, &corecad.KernelError{
			Stage:   corecad.StageBuildBobbin,
			Backend: b.backend.Name(),
			Err:     err,
		}
	}

	// Tube between the flanges, centered on z=0.
	tube, err := b.backend.Extrude(outline(colWidth, colDepth), height)
	if err != nil {
		return fail(err)
	}
	solid, err := b.backend.Translate(tube, r3.Vec{Z: -height / 2})
	if err != nil {
		return fail(err)
	}

	if wall > 0 {
		flangeWidth := colWidth + 2*width
		flangeDepth := colDepth + 2*width
		for _, z := range []float64{-height/2 - wall, height / 2} {
			flange, err := b.backend.Extrude(outline(flangeWidth, flangeDepth), wall)
			if err != nil {
				return fail(err)
			}
			flange, err = b.backend.Translate(flange, r3.Vec{Z: z})
			if err != nil {
				return fail(err)
			}
			solid, err = b.backend.Union(solid, flange)
			if err != nil {
				return fail(err)
			}
		}
	}

	// The column cavity runs through tube and flanges alike.
	cavityHeight := height + 2*wall
	cavity, err := b.backend.Extrude(outline(colWidth-2*thickness, colDepth-2*thickness), cavityHeight)
	if err != nil {
		return fail(err)
	}
	cavity, err = b.backend.Translate(cavity, r3.Vec{Z: -cavityHeight / 2})
	if err != nil {
		return fail(err)
	}
	solid, err = b.backend.Subtract(solid, cavity)
	if err != nil {
		return fail(err)
	}

	b.log.Debug("built bobbin",
		slog.String("column", string(bobbin.ColumnShape)),
		slog.Float64("height", window.Height))
	return solid, nil
}
