package drawing

import (
	"fmt"
	"io"
	"strings"

	"honnef.co/go/curve"
)

// Style controls stroke and text appearance of exported drawings.
type Style struct {
	ProjectionColor string
	DimensionColor  string
	FontSize        float64
	ProjectionWidth float64
	DimensionWidth  float64
	Margin          float64
}

func DefaultStyle() Style {
	return Style{
		ProjectionColor: "#000000",
		DimensionColor:  "#000000",
		FontSize:        20,
		ProjectionWidth: 4,
		DimensionWidth:  1,
		Margin:          35,
	}
}

func svgNum(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func svgCoord(p curve.Point) string {
	// Model y points up, SVG y points down.
	return svgNum(p.X) + "," + svgNum(-p.Y)
}

func segmentData(seg curve.PathSegment) string {
	var b strings.Builder
	b.WriteString("M" + svgCoord(seg.P0))
	switch seg.Kind {
	case curve.LineKind:
		b.WriteString(" L" + svgCoord(seg.P1))
	case curve.QuadKind:
		b.WriteString(" Q" + svgCoord(seg.P1) + " " + svgCoord(seg.P2))
	case curve.CubicKind:
		b.WriteString(" C" + svgCoord(seg.P1) + " " + svgCoord(seg.P2) + " " + svgCoord(seg.P3))
	}
	return b.String()
}

// WriteSVG encodes the view as a standalone SVG document. Projection
// lines come first, then one group per dimension annotation with its
// extension lines, arrowheads and label.
func (v *View) WriteSVG(w io.Writer, style Style) error {
	lo, hi := v.extents(style)
	lo.X -= style.Margin
	lo.Y -= style.Margin
	hi.X += style.Margin
	hi.Y += style.Margin

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s">`+"\n",
		svgNum(lo.X), svgNum(-hi.Y), svgNum(hi.X-lo.X), svgNum(hi.Y-lo.Y))

	fmt.Fprintf(&b, `<g fill="none" stroke="%s" stroke-width="%s">`+"\n",
		style.ProjectionColor, svgNum(style.ProjectionWidth))
	for _, ln := range v.Lines {
		dash := ""
		if ln.Hidden {
			dash = ` stroke-dasharray="8 4"`
		}
		fmt.Fprintf(&b, `<path d="%s"%s/>`+"\n", segmentData(ln.Segment), dash)
	}
	b.WriteString("</g>\n")

	for _, a := range v.Annotations {
		writeDimension(&b, a, style)
	}

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// extents grows the projection bounds to cover every dimension line and
// its label band.
func (v *View) extents(style Style) (lo, hi curve.Point) {
	lo = curve.Pt(v.Bounds.X0, v.Bounds.Y0)
	hi = curve.Pt(v.Bounds.X1, v.Bounds.Y1)
	grow := func(p curve.Point) {
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		hi.X = max(hi.X, p.X)
		hi.Y = max(hi.Y, p.Y)
	}
	for _, a := range v.Annotations {
		grow(a.Start)
		grow(a.End)
		switch a.Axis {
		case AxisY:
			x := a.Start.X + a.Offset + style.FontSize
			grow(curve.Pt(x, a.Start.Y))
			grow(curve.Pt(x, a.End.Y))
		case AxisX:
			y := a.Start.Y - a.Offset - style.FontSize
			grow(curve.Pt(a.Start.X, y))
			grow(curve.Pt(a.End.X, y))
		}
	}
	return lo, hi
}

func writeDimension(b *strings.Builder, a Annotation, style Style) {
	fmt.Fprintf(b, `<g stroke="%s" stroke-width="%s" fill="%s" font-size="%s">`+"\n",
		style.DimensionColor, svgNum(style.DimensionWidth), style.DimensionColor,
		svgNum(style.FontSize))
	switch a.Axis {
	case AxisY:
		writeDimensionY(b, a, style)
	case AxisX:
		writeDimensionX(b, a, style)
	}
	b.WriteString("</g>\n")
}

func writeDimensionY(b *strings.Builder, a Annotation, style Style) {
	x := a.Start.X + a.Offset
	y0, y1 := a.Start.Y, a.End.Y
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	line(b, curve.Pt(a.Start.X, a.Start.Y), curve.Pt(x, a.Start.Y))
	line(b, curve.Pt(a.End.X, a.End.Y), curve.Pt(x, a.End.Y))
	line(b, curve.Pt(x, y0), curve.Pt(x, y1))
	arrow(b, curve.Pt(x, y1), "M0,0 L3,10 L-3,10 L0,0")
	arrow(b, curve.Pt(x, y0), "M0,0 L-3,-10 L3,-10 L0,0")

	ly := (y0 + y1) / 2
	if a.LabelAlignment != 0 {
		ly = a.LabelAlignment
	}
	tx, ty := x+style.FontSize, -ly
	fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="middle" stroke="none" transform="rotate(-90 %s %s)">%s</text>`+"\n",
		svgNum(tx), svgNum(ty), svgNum(tx), svgNum(ty), a.Label)
}

func writeDimensionX(b *strings.Builder, a Annotation, style Style) {
	y := a.Start.Y - a.Offset
	x0, x1 := a.Start.X, a.End.X
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	line(b, curve.Pt(a.Start.X, a.Start.Y), curve.Pt(a.Start.X, y))
	line(b, curve.Pt(a.End.X, a.End.Y), curve.Pt(a.End.X, y))
	line(b, curve.Pt(x0, y), curve.Pt(x1, y))
	arrow(b, curve.Pt(x0, y), "M0,0 L10,-3 L10,3 L0,0")
	arrow(b, curve.Pt(x1, y), "M0,0 L-10,3 L-10,-3 L0,0")

	lx := (x0 + x1) / 2
	if a.LabelAlignment != 0 {
		lx = a.LabelAlignment
	}
	fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="middle" stroke="none">%s</text>`+"\n",
		svgNum(lx), svgNum(-y+style.FontSize*1.5), a.Label)
}

func line(b *strings.Builder, p0, p1 curve.Point) {
	fmt.Fprintf(b, `<path d="M%s L%s"/>`+"\n", svgCoord(p0), svgCoord(p1))
}

func arrow(b *strings.Builder, at curve.Point, d string) {
	fmt.Fprintf(b, `<path transform="translate(%s)" d="%s" fill-rule="nonzero" stroke="none"/>`+"\n",
		svgCoord(at), d)
}
