// Command coredemo builds a gapped E core and writes its mesh export, an
// annotated front-view drawing, and a raster preview.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/assembly"
	"github.com/openmagnetics/corecad/drawing"
	"github.com/openmagnetics/corecad/kernel"
)

func main() {
	var (
		stlOut = flag.String("stl", "core.stl", "mesh output file")
		svgOut = flag.String("svg", "core.svg", "drawing output file")
		pngOut = flag.String("png", "core.png", "preview output file")
		gap    = flag.Float64("gap", 0.001, "center leg gap length in meters")
	)
	flag.Parse()

	shape := corecad.ShapeSpec{
		Name:   "E 42/21/20",
		Family: corecad.FamilyE,
		Dimensions: corecad.Dimensions{
			"A": corecad.Nominal(0.042),
			"B": corecad.Nominal(0.0211),
			"C": corecad.Nominal(0.020),
			"D": corecad.Nominal(0.0151),
			"E": corecad.Nominal(0.0295),
			"F": corecad.Nominal(0.0122),
		},
	}
	machining := []corecad.MachiningOp{
		{Length: *gap / 2, Coordinates: [3]float64{0, *gap / 4, 0}},
	}
	core := corecad.CoreAssembly{
		Name: shape.Name,
		Pieces: []corecad.GeometricalPiece{
			{
				Kind:        corecad.PieceHalfSet,
				Shape:       shape,
				Rotation:    [3]float64{math.Pi, math.Pi, 0},
				Coordinates: []float64{0, 0, 0},
				Machining:   machining,
			},
			{
				Kind:        corecad.PieceHalfSet,
				Shape:       shape,
				Coordinates: []float64{0, 0, 0},
				Machining:   machining,
			},
		},
	}

	backend := kernel.Get(kernel.BackendAnalytic)
	if backend == nil {
		log.Fatal("analytic backend not registered")
	}
	if err := backend.Init(); err != nil {
		log.Fatalf("kernel init: %v", err)
	}
	defer backend.Close()

	builder := assembly.New(backend)
	defer builder.Close()
	ctx := context.Background()

	stl, err := os.Create(*stlOut)
	if err != nil {
		log.Fatalf("create %s: %v", *stlOut, err)
	}
	defer stl.Close()
	if err := builder.ExportCore(ctx, core, kernel.FormatSTL, corecad.DefaultQuality(), stl); err != nil {
		log.Fatalf("export core: %v", err)
	}

	solid, err := builder.BuildShape(ctx, shape)
	if err != nil {
		log.Fatalf("build shape: %v", err)
	}
	view, err := drawing.NewView(backend, solid, kernel.PlaneXZ, drawing.FidelitySection, 0)
	if err != nil {
		log.Fatalf("project view: %v", err)
	}
	dims, err := shape.Dimensions.Flatten(1000)
	if err != nil {
		log.Fatalf("resolve dimensions: %v", err)
	}
	view.AnnotateShape(shape.Family, dims)
	view.AnnotateGaps([]drawing.Gap{
		{Length: *gap, Coordinates: [3]float64{0, 0, 0}, SectionWidth: 0.0122},
	}, 0.0302)

	svg, err := os.Create(*svgOut)
	if err != nil {
		log.Fatalf("create %s: %v", *svgOut, err)
	}
	defer svg.Close()
	if err := view.WriteSVG(svg, drawing.DefaultStyle()); err != nil {
		log.Fatalf("write svg: %v", err)
	}

	png, err := os.Create(*pngOut)
	if err != nil {
		log.Fatalf("create %s: %v", *pngOut, err)
	}
	defer png.Close()
	if err := view.WritePNG(png, 1200); err != nil {
		log.Fatalf("write png: %v", err)
	}

	log.Printf("wrote %s, %s, %s", *stlOut, *svgOut, *pngOut)
}
