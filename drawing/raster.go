package drawing

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"honnef.co/go/curve"
)

// rasterSamples is the number of line segments a curved projection edge
// is flattened into for the preview.
const rasterSamples = 16

// Rasterize renders a quick preview of the view into an RGBA image of
// the given pixel width, black strokes on white. It covers the same
// extents as WriteSVG.
func (v *View) Rasterize(width int) *image.RGBA {
	style := DefaultStyle()
	lo, hi := v.extents(style)
	lo.X -= style.Margin
	lo.Y -= style.Margin
	hi.X += style.Margin
	hi.Y += style.Margin

	scale := float64(width) / (hi.X - lo.X)
	height := int(math.Ceil((hi.Y - lo.Y) * scale))
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	toPx := func(p curve.Point) (float64, float64) {
		return (p.X - lo.X) * scale, (hi.Y - p.Y) * scale
	}

	stroke := func(p0, p1 curve.Point, w float64) {
		x0, y0 := toPx(p0)
		x1, y1 := toPx(p1)
		dx, dy := x1-x0, y1-y0
		l := math.Hypot(dx, dy)
		if l == 0 {
			return
		}
		// Perpendicular half-width quad.
		nx, ny := -dy/l*w/2, dx/l*w/2
		r := vector.NewRasterizer(width, height)
		r.DrawOp = draw.Over
		r.MoveTo(float32(x0+nx), float32(y0+ny))
		r.LineTo(float32(x1+nx), float32(y1+ny))
		r.LineTo(float32(x1-nx), float32(y1-ny))
		r.LineTo(float32(x0-nx), float32(y0-ny))
		r.ClosePath()
		r.Draw(img, img.Bounds(), image.Black, image.Point{})
	}

	for _, ln := range v.Lines {
		prev := ln.Segment.Start()
		for i := 1; i <= rasterSamples; i++ {
			p := ln.Segment.Eval(float64(i) / rasterSamples)
			if !ln.Hidden || i%2 == 1 {
				stroke(prev, p, style.ProjectionWidth*scale)
			}
			prev = p
		}
	}

	for _, a := range v.Annotations {
		var p0, p1, at curve.Point
		switch a.Axis {
		case AxisY:
			x := a.Start.X + a.Offset
			p0 = curve.Pt(x, a.Start.Y)
			p1 = curve.Pt(x, a.End.Y)
			at = curve.Pt(x+style.FontSize/2, (a.Start.Y+a.End.Y)/2)
		case AxisX:
			y := a.Start.Y - a.Offset
			p0 = curve.Pt(a.Start.X, y)
			p1 = curve.Pt(a.End.X, y)
			at = curve.Pt((a.Start.X+a.End.X)/2, y-style.FontSize)
		}
		stroke(a.Start, p0, style.DimensionWidth*scale)
		stroke(a.End, p1, style.DimensionWidth*scale)
		stroke(p0, p1, style.DimensionWidth*scale)
		drawLabel(img, toPx, at, a.Label)
	}

	return img
}

// WritePNG renders the preview and encodes it as PNG.
func (v *View) WritePNG(w io.Writer, width int) error {
	return png.Encode(w, v.Rasterize(width))
}

func drawLabel(img *image.RGBA, toPx func(curve.Point) (float64, float64), at curve.Point, label string) {
	face := basicfont.Face7x13
	x, y := toPx(at)
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(int(x), int(y)),
	}
	d.Dot.X -= d.MeasureString(label) / 2
	d.DrawString(label)
}
