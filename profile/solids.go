package profile

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// pathTolerance is the flattening tolerance for sketch arcs, in working
// units (millimeters). Matches the default tessellation tolerance so arcs
// in boundaries and arcs in meshes agree.
const pathTolerance = 0.01

// kerr wraps a backend failure without interpreting it.
func kerr(b kernel.Backend, err error) error {
	return &corecad.KernelError{Stage: corecad.StageBuildProfile, Backend: b.Name(), Err: err}
}

// box builds a rectangular solid with extents (dx, dy, dz) centered at
// "at", matching the centered-box convention all placement math in this
// package is written against.
func box(b kernel.Backend, dx, dy, dz float64, at r3.Vec) (kernel.Solid, error) {
	outline := curve.Rect{X0: -dx / 2, Y0: -dy / 2, X1: dx / 2, Y1: dy / 2}.Path(pathTolerance)
	s, err := b.Extrude(outline, dz)
	if err != nil {
		return nil, kerr(b, err)
	}
	s, err = b.Translate(s, r3.Vec{X: at.X, Y: at.Y, Z: at.Z - dz/2})
	if err != nil {
		return nil, kerr(b, err)
	}
	return s, nil
}

// cylinder builds a z-axis cylinder of the given height centered at "at".
func cylinder(b kernel.Backend, height, radius float64, at r3.Vec) (kernel.Solid, error) {
	outline := curve.Circle{Center: curve.Pt(0, 0), Radius: radius}.Path(pathTolerance)
	s, err := b.Extrude(outline, height)
	if err != nil {
		return nil, kerr(b, err)
	}
	s, err = b.Translate(s, r3.Vec{X: at.X, Y: at.Y, Z: at.Z - height/2})
	if err != nil {
		return nil, kerr(b, err)
	}
	return s, nil
}

func union(b kernel.Backend, x, y kernel.Solid) (kernel.Solid, error) {
	s, err := b.Union(x, y)
	if err != nil {
		return nil, kerr(b, err)
	}
	return s, nil
}

func subtract(b kernel.Backend, x, y kernel.Solid) (kernel.Solid, error) {
	s, err := b.Subtract(x, y)
	if err != nil {
		return nil, kerr(b, err)
	}
	return s, nil
}

func translate(b kernel.Backend, s kernel.Solid, v r3.Vec) (kernel.Solid, error) {
	out, err := b.Translate(s, v)
	if err != nil {
		return nil, kerr(b, err)
	}
	return out, nil
}

// polygon builds a closed straight-sided path through the points. Duplicate
// consecutive points (which some degenerate subtype parameters produce) are
// dropped.
func polygon(pts ...curve.Point) curve.BezPath {
	var p curve.BezPath
	prev := curve.Point{X: math.Inf(1), Y: math.Inf(1)}
	for _, pt := range pts {
		if pt == prev {
			continue
		}
		if len(p) == 0 {
			p.MoveTo(pt)
		} else {
			p.LineTo(pt)
		}
		prev = pt
	}
	p.ClosePath()
	return p
}

// appendArc continues the path with a circular arc of the given center from
// the current point (assumed at angle "start" on the circle) sweeping by
// "sweep" radians.
func appendArc(p *curve.BezPath, center curve.Point, radius, start, sweep float64) {
	arc := curve.Arc{
		Center:     center,
		Radii:      curve.Vec2{X: radius, Y: radius},
		StartAngle: start,
		SweepAngle: sweep,
	}
	first := true
	for el := range arc.PathElements(pathTolerance) {
		if first {
			// The path is already at the arc start.
			first = false
			continue
		}
		p.Push(el)
	}
}

// arcThrough continues the path from "from" with the circular arc passing
// through "via" and ending at "to". Collinear points degrade to a line.
func arcThrough(p *curve.BezPath, from, via, to curve.Point) {
	cx, cy, r, ok := circumcircle(from, via, to)
	if !ok {
		p.LineTo(to)
		return
	}
	center := curve.Pt(cx, cy)
	a0 := math.Atan2(from.Y-cy, from.X-cx)
	a1 := math.Atan2(to.Y-cy, to.X-cx)
	am := math.Atan2(via.Y-cy, via.X-cx)

	ccwEnd := mod2pi(a1 - a0)
	ccwVia := mod2pi(am - a0)
	sweep := ccwEnd
	if ccwVia > ccwEnd {
		sweep = ccwEnd - 2*math.Pi
	}
	appendArc(p, center, r, a0, sweep)
}

func mod2pi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// circumcircle returns the center and radius of the circle through three
// points, or ok=false when they are collinear.
func circumcircle(p1, p2, p3 curve.Point) (cx, cy, r float64, ok bool) {
	d := 2 * (p1.X*(p2.Y-p3.Y) + p2.X*(p3.Y-p1.Y) + p3.X*(p1.Y-p2.Y))
	if math.Abs(d) < 1e-12 {
		return 0, 0, 0, false
	}
	s1 := p1.X*p1.X + p1.Y*p1.Y
	s2 := p2.X*p2.X + p2.Y*p2.Y
	s3 := p3.X*p3.X + p3.Y*p3.Y
	cx = (s1*(p2.Y-p3.Y) + s2*(p3.Y-p1.Y) + s3*(p1.Y-p2.Y)) / d
	cy = (s1*(p3.X-p2.X) + s2*(p1.X-p3.X) + s3*(p2.X-p1.X)) / d
	r = math.Hypot(p1.X-cx, p1.Y-cy)
	return cx, cy, r, true
}

// annulus builds a ring path: outer circle counterclockwise, inner circle
// reversed so nonzero winding leaves the hole open.
func annulus(outer, inner float64) curve.BezPath {
	p := curve.Circle{Center: curve.Pt(0, 0), Radius: outer}.Path(pathTolerance)
	hole := curve.Circle{Center: curve.Pt(0, 0), Radius: inner}.Path(pathTolerance).ReverseSubpaths()
	return append(p, hole...)
}

// decimalFloor truncates toward negative infinity at the given number of
// decimal places.
func decimalFloor(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Floor(v*f) / f
}
