package drawing

import (
	"fmt"
	"math"
	"sort"

	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// Clearance band layout constants, in working units (mm of drawing space).
// The U and toroid tables run on a tighter pitch than the concentric ones.
const (
	bandStart      = 75.0
	bandIncrement  = 75.0
	uBandIncrement = 50.0
	gapBandOffset  = 60.0
)

func dimLabel(name string, value float64) string {
	return fmt.Sprintf("%s: %s mm", name, trimmed(value))
}

func trimmed(v float64) string {
	return fmt.Sprintf("%.4g", math.Round(v*100)/100)
}

// offsets tracks the next free horizontal and vertical clearance bands
// while a family table emits annotations.
type offsets struct {
	h, v, step float64
}

func newOffsets(step float64) *offsets {
	return &offsets{h: bandStart, v: bandStart, step: step}
}

func (o *offsets) nextH() float64 { h := o.h; o.h += o.step; return h }
func (o *offsets) nextV() float64 { v := o.v; o.v += o.step; return v }

// AnnotateShape adds the family's standard dimension annotations to the
// view. Dimensions are in working units; the XY plane is treated as the
// top view, any other plane as the front view.
func (v *View) AnnotateShape(family corecad.Family, dims map[string]float64) {
	top := v.Plane == kernel.PlaneXY
	switch family {
	case corecad.FamilyUR:
		v.annotateUR(dims, top)
	case corecad.FamilyUT:
		v.annotateUT(dims, top)
	case corecad.FamilyT:
		v.annotateT(dims, top)
	default:
		v.annotateEFamily(family, dims, top)
	}
}

// annotateEFamily covers the concentric and U/C families: center leg and
// window widths across the top view, depth and heights on the sides.
func (v *View) annotateEFamily(family corecad.Family, dims map[string]float64, top bool) {
	o := newOffsets(bandIncrement)

	semiHeight := dims["C"] / 2
	if family == corecad.FamilyP {
		semiHeight = dims["A"] / 2
	}

	if !top {
		// Front view: window depth against the leg, then total height.
		d0 := dims["E"] / 2
		v.place(Annotation{
			Name: "D", Label: dimLabel("D", dims["D"]), Axis: AxisY,
			Start:          curve.Pt(d0, -dims["B"]/2),
			End:            curve.Pt(d0, -dims["B"]/2+dims["D"]),
			Offset:         o.nextH() + (dims["A"]/2 - d0),
			LabelAlignment: -dims["B"]/2 + dims["D"]/2,
		})
		v.place(Annotation{
			Name: "B", Label: dimLabel("B", dims["B"]), Axis: AxisY,
			Start:  curve.Pt(dims["A"]/2, -dims["B"]/2),
			End:    curve.Pt(dims["A"]/2, dims["B"]/2),
			Offset: o.nextH(),
		})
		return
	}

	correction := 0.0
	if l := dims["L"]; l > 0 {
		v.place(Annotation{
			Name: "L", Label: dimLabel("L", l), Axis: AxisY,
			Start:  curve.Pt(dims["J"]/2, -l/2),
			End:    curve.Pt(dims["J"]/2, l/2),
			Offset: o.nextH() + dims["A"]/2 - dims["J"]/2,
		})
	}

	k := 0.0
	if kd := dims["K"]; kd > 0 {
		var dimHeight float64
		switch family {
		case corecad.FamilyEFD:
			dimHeight = dims["C"] / 2
			k = -kd
		case corecad.FamilyEP:
			dimHeight = 0
			k = -kd
		default:
			dimHeight = -dims["C"] / 2
			k = kd
		}
		if kd < 0 {
			correction = kd / 2
		}
		v.place(Annotation{
			Name: "K", Label: dimLabel("K", kd), Axis: AxisY,
			Start:          curve.Pt(dims["F"]/2, dimHeight+correction),
			End:            curve.Pt(dims["F"]/2, dimHeight+k+correction),
			Offset:         o.nextH() + (dims["A"]/2 - dims["F"]/2),
			LabelAlignment: dimHeight + k/2 + correction,
		})
	}

	if f2 := dims["F2"]; f2 > 0 {
		a := Annotation{
			Name: "F2", Label: dimLabel("F2", f2), Axis: AxisY,
			Start:  curve.Pt(0, -f2/2),
			End:    curve.Pt(0, f2/2),
			Offset: o.nextH() + dims["A"]/2,
		}
		if family == corecad.FamilyEFD {
			a.Start = curve.Pt(0, dims["C"]/2+correction-dims["K"]-f2)
			a.End = curve.Pt(0, dims["C"]/2+correction-dims["K"])
			a.LabelAlignment = f2/2 + k/2 + correction
		}
		v.place(a)
	}

	if c := dims["C"]; c > 0 {
		cc := correction
		if family == corecad.FamilyEP {
			cc = c/2 - dims["K"]
		}
		v.place(Annotation{
			Name: "C", Label: dimLabel("C", c), Axis: AxisY,
			Start:  curve.Pt(dims["A"]/2, -c/2+cc),
			End:    curve.Pt(dims["A"]/2, c/2+cc),
			Offset: o.nextH(),
		})
	}

	if h := dims["H"]; h > 0 {
		v.place(Annotation{
			Name: "H", Label: dimLabel("H", h), Axis: AxisX,
			Start:  curve.Pt(-h/2, 0),
			End:    curve.Pt(h/2, 0),
			Offset: o.nextV() + semiHeight,
		})
	}

	if family == corecad.FamilyPQ && dims["J"] > 0 {
		l := dims["L"]
		v.place(Annotation{
			Name: "J", Label: dimLabel("J", dims["J"]), Axis: AxisX,
			Start:  curve.Pt(-dims["J"]/2, l/2),
			End:    curve.Pt(dims["J"]/2, l/2),
			Offset: o.nextV() + semiHeight - l/2,
		})
	}

	// Center leg and window widths share a baseline shifted for the
	// asymmetric families.
	switch family {
	case corecad.FamilyEP, corecad.FamilyEPX:
		k = dims["C"]/2 - dims["K"]
	case corecad.FamilyEFD:
		if dims["K"] < 0 {
			k = -dims["C"]/2 - dims["K"]*2
		}
	default:
		k = 0
	}

	if family != corecad.FamilyP {
		if f := dims["F"]; f > 0 {
			v.place(Annotation{
				Name: "F", Label: dimLabel("F", f), Axis: AxisX,
				Start:  curve.Pt(-f/2, -k),
				End:    curve.Pt(f/2, -k),
				Offset: o.nextV() + k + semiHeight,
			})
		}
		if g := dims["G"]; g > 0 {
			v.place(Annotation{
				Name: "G", Label: dimLabel("G", g), Axis: AxisX,
				Start:  curve.Pt(-g/2, semiHeight),
				End:    curve.Pt(g/2, semiHeight),
				Offset: o.nextV(),
			})
		}
	} else {
		if g := dims["G"]; g > 0 {
			v.place(Annotation{
				Name: "G", Label: dimLabel("G", g), Axis: AxisX,
				Start:  curve.Pt(-g/2, dims["E"]/2),
				End:    curve.Pt(g/2, dims["E"]/2),
				Offset: o.nextV() + dims["A"]/2 - dims["E"]/2,
			})
		}
		if f := dims["F"]; f > 0 {
			v.place(Annotation{
				Name: "F", Label: dimLabel("F", f), Axis: AxisX,
				Start:  curve.Pt(-f/2, -k),
				End:    curve.Pt(f/2, -k),
				Offset: o.nextV() + k + semiHeight,
			})
		}
	}

	v.place(Annotation{
		Name: "E", Label: dimLabel("E", dims["E"]), Axis: AxisX,
		Start:  curve.Pt(-dims["E"]/2, -k),
		End:    curve.Pt(dims["E"]/2, -k),
		Offset: o.nextV() + k + semiHeight,
	})
	v.place(Annotation{
		Name: "A", Label: dimLabel("A", dims["A"]), Axis: AxisX,
		Start:  curve.Pt(-dims["A"]/2, 0),
		End:    curve.Pt(dims["A"]/2, 0),
		Offset: o.nextV() + semiHeight,
	})
}

// annotateUR lays the leg widths end to end across the top view; the round
// legs have no shared center line to hang symmetric spans on.
func (v *View) annotateUR(dims map[string]float64, top bool) {
	o := newOffsets(uBandIncrement)
	semiHeight := dims["C"] / 2

	f := dims["F"]
	if f == 0 {
		f = dims["C"]
	}

	if !top {
		d0 := dims["E"] / 2
		if h := dims["H"]; h > 0 {
			d0 = h / 2
		}
		v.place(Annotation{
			Name: "D", Label: dimLabel("D", dims["D"]), Axis: AxisY,
			Start:          curve.Pt(d0, -dims["B"]/2),
			End:            curve.Pt(d0, -dims["B"]/2+dims["D"]),
			Offset:         o.nextH() + (dims["A"]/2 - d0),
			LabelAlignment: -dims["B"]/2 + dims["D"]/2,
		})
		v.place(Annotation{
			Name: "B", Label: dimLabel("B", dims["B"]), Axis: AxisY,
			Start:  curve.Pt(dims["A"]/2, -dims["B"]/2),
			End:    curve.Pt(dims["A"]/2, dims["B"]/2),
			Offset: o.nextH(),
		})
		return
	}

	if c := dims["C"]; c > 0 {
		v.place(Annotation{
			Name: "C", Label: dimLabel("C", c), Axis: AxisY,
			Start:  curve.Pt(dims["A"]/2, -c/2),
			End:    curve.Pt(dims["A"]/2, c/2),
			Offset: o.nextH(),
		})
	}

	if g := dims["G"]; g > 0 {
		v.place(Annotation{
			Name: "G", Label: dimLabel("G", g), Axis: AxisX,
			Start:          curve.Pt(-dims["A"]/2+f/2-g/2, 0),
			End:            curve.Pt(-dims["A"]/2+f/2+g/2, 0),
			Offset:         o.nextV() + semiHeight,
			LabelAlignment: -dims["A"]/2 + f/2,
		})
		v.place(Annotation{
			Name: "G", Label: dimLabel("G", g), Axis: AxisX,
			Start:          curve.Pt(dims["A"]/2-f/2+g/2, 0),
			End:            curve.Pt(dims["A"]/2-f/2-g/2, 0),
			Offset:         o.nextV() + semiHeight,
			LabelAlignment: dims["A"]/2 - f/2,
		})
	}

	if f > 0 {
		v.place(Annotation{
			Name: "F", Label: dimLabel("F", f), Axis: AxisX,
			Start:          curve.Pt(-dims["A"]/2, 0),
			End:            curve.Pt(-dims["A"]/2+f, 0),
			Offset:         o.nextV() + semiHeight,
			LabelAlignment: -dims["A"]/2 + f/2,
		})
	}
	if h := dims["H"]; h > 0 {
		v.place(Annotation{
			Name: "H", Label: dimLabel("H", h), Axis: AxisX,
			Start:          curve.Pt(dims["A"]/2-h, 0),
			End:            curve.Pt(dims["A"]/2, 0),
			Offset:         o.nextV() + semiHeight,
			LabelAlignment: dims["A"]/2 - h/2,
		})
	}

	leftCol := f
	rightCol := dims["C"]
	if h := dims["H"]; h > 0 {
		rightCol = h
	}
	e := dims["E"]
	label := dimLabel("E", e)
	if e == 0 {
		// Round legs only bound the window from outside, so the
		// datasheet value is a minimum.
		e = dims["A"] - leftCol - rightCol
		label = fmt.Sprintf("E: Min %s mm", trimmed(e))
	}
	v.place(Annotation{
		Name: "E", Label: label, Axis: AxisX,
		Start:          curve.Pt(-dims["A"]/2+leftCol, 0),
		End:            curve.Pt(dims["A"]/2-rightCol, 0),
		Offset:         o.nextV() + semiHeight,
		LabelAlignment: -dims["A"]/2 + leftCol + (dims["A"]-leftCol-rightCol)/2,
	})
	v.place(Annotation{
		Name: "A", Label: dimLabel("A", dims["A"]), Axis: AxisX,
		Start:  curve.Pt(-dims["A"]/2, 0),
		End:    curve.Pt(dims["A"]/2, 0),
		Offset: o.nextV() + semiHeight,
	})
}

func (v *View) annotateUT(dims map[string]float64, top bool) {
	o := newOffsets(uBandIncrement)
	semiHeight := dims["C"] / 2

	if !top {
		d0 := dims["E"] / 2
		v.place(Annotation{
			Name: "D", Label: dimLabel("D", dims["D"]), Axis: AxisY,
			Start:          curve.Pt(d0, -dims["D"]/2),
			End:            curve.Pt(d0, dims["D"]/2),
			Offset:         o.nextH() + (dims["A"]/2 - d0),
			LabelAlignment: -dims["B"]/2 + dims["D"]/2,
		})
		v.place(Annotation{
			Name: "B", Label: dimLabel("B", dims["B"]), Axis: AxisY,
			Start:  curve.Pt(dims["A"]/2, -dims["B"]/2),
			End:    curve.Pt(dims["A"]/2, dims["B"]/2),
			Offset: o.nextH(),
		})
		return
	}

	if c := dims["C"]; c > 0 {
		v.place(Annotation{
			Name: "C", Label: dimLabel("C", c), Axis: AxisY,
			Start:  curve.Pt(dims["A"]/2, -c/2),
			End:    curve.Pt(dims["A"]/2, c/2),
			Offset: o.nextH(),
		})
	}

	f := dims["F"]
	if f > 0 {
		v.place(Annotation{
			Name: "F", Label: dimLabel("F", f), Axis: AxisX,
			Start:          curve.Pt(-dims["A"]/2, 0),
			End:            curve.Pt(-dims["A"]/2+f, 0),
			Offset:         o.nextV() + semiHeight,
			LabelAlignment: -dims["A"]/2 + f/2,
		})
	}

	leftCol := f
	rightCol := dims["A"] - dims["E"] - leftCol
	v.place(Annotation{
		Name: "E", Label: dimLabel("E", dims["E"]), Axis: AxisX,
		Start:          curve.Pt(-dims["A"]/2+leftCol, 0),
		End:            curve.Pt(dims["A"]/2-rightCol, 0),
		Offset:         o.nextV() + semiHeight,
		LabelAlignment: -dims["A"]/2 + leftCol + (dims["A"]-leftCol-rightCol)/2,
	})
	v.place(Annotation{
		Name: "A", Label: dimLabel("A", dims["A"]), Axis: AxisX,
		Start:  curve.Pt(-dims["A"]/2, 0),
		End:    curve.Pt(dims["A"]/2, 0),
		Offset: o.nextV() + semiHeight,
	})
}

func (v *View) annotateT(dims map[string]float64, top bool) {
	o := newOffsets(uBandIncrement)
	semiHeight := dims["A"] / 2

	if !top {
		v.place(Annotation{
			Name: "C", Label: dimLabel("C", dims["C"]), Axis: AxisY,
			Start:  curve.Pt(0, -dims["C"]/2),
			End:    curve.Pt(0, dims["C"]/2),
			Offset: o.nextH(),
		})
		return
	}

	v.place(Annotation{
		Name: "B", Label: dimLabel("B", dims["B"]), Axis: AxisX,
		Start:  curve.Pt(-dims["B"]/2, 0),
		End:    curve.Pt(dims["B"]/2, 0),
		Offset: o.nextV() + semiHeight,
	})
	v.place(Annotation{
		Name: "A", Label: dimLabel("A", dims["A"]), Axis: AxisX,
		Start:  curve.Pt(-dims["A"]/2, 0),
		End:    curve.Pt(dims["A"]/2, 0),
		Offset: o.nextV() + semiHeight,
	})
}

// Gap is one air gap in a front (XZ) gapping drawing. Lengths and
// coordinates are in meters in the assembly frame; SectionWidth is the
// ground leg's width.
type Gap struct {
	Length       float64
	Coordinates  [3]float64
	SectionWidth float64
}

func gapLabel(length float64) string {
	if length < 0.0001 {
		return fmt.Sprintf("%s µm", trimmed(length*1e6))
	}
	return fmt.Sprintf("%s mm", trimmed(length*1e3))
}

// AnnotateGaps adds per-gap dimension lines: a span across each gap's
// mating faces, and, when a column carries several gaps, the spacer chunks
// between them and to the column ends. columnHeight is the gapped column's
// height in meters. Band placement avoids every previously placed
// annotation, so a gap line never lands in the overall-dimension bands.
func (v *View) AnnotateGaps(gaps []Gap, columnHeight float64) {
	// Per column, ordered along the winding axis.
	byColumn := make(map[[2]float64][]Gap)
	var keys [][2]float64
	for _, g := range gaps {
		key := [2]float64{g.Coordinates[0], g.Coordinates[2]}
		if _, ok := byColumn[key]; !ok {
			keys = append(keys, key)
		}
		byColumn[key] = append(byColumn[key], g)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	semiHeight := columnHeight / 2 * 1000
	for _, key := range keys {
		column := byColumn[key]
		sort.Slice(column, func(i, j int) bool {
			return column[i].Coordinates[1] < column[j].Coordinates[1]
		})

		for i, g := range column {
			x := g.Coordinates[0] * 1000
			y := -g.Coordinates[1] * 1000
			half := g.Length / 2 * 1000
			v.place(Annotation{
				Name: "gap", Label: gapLabel(g.Length), Axis: AxisY,
				Start:          curve.Pt(x, y-half),
				End:            curve.Pt(x, y+half),
				Offset:         g.SectionWidth/2*1000 + gapBandOffset,
				LabelAlignment: y,
			})

			edge := x + g.SectionWidth/2*1000
			if len(column) > 1 && i < len(column)-1 {
				next := column[i+1]
				top := y - half
				bottom := -next.Coordinates[1]*1000 + next.Length/2*1000
				v.place(Annotation{
					Name: "chunk", Label: trimmed(top - bottom), Axis: AxisY,
					Start:          curve.Pt(edge, bottom),
					End:            curve.Pt(edge, top),
					Offset:         gapBandOffset / 2,
					LabelAlignment: (top + bottom) / 2,
				})
			}
			if len(column) > 1 && i == 0 {
				v.place(Annotation{
					Name: "chunk", Label: trimmed(semiHeight - (y + half)), Axis: AxisY,
					Start:          curve.Pt(edge, y+half),
					End:            curve.Pt(edge, semiHeight),
					Offset:         gapBandOffset / 2,
					LabelAlignment: (semiHeight + y + half) / 2,
				})
			}
			if len(column) > 1 && i == len(column)-1 {
				v.place(Annotation{
					Name: "chunk", Label: trimmed(y - half + semiHeight), Axis: AxisY,
					Start:          curve.Pt(edge, -semiHeight),
					End:            curve.Pt(edge, y-half),
					Offset:         gapBandOffset / 2,
					LabelAlignment: (y - half - semiHeight) / 2,
				})
			}
		}
	}
}
