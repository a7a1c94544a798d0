package kernel

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	"github.com/openmagnetics/corecad"
)

// BackendAnalytic is the name of the built-in analytic backend.
//
// The analytic backend carries no B-rep engine: it tracks the construction
// tree, exact primitive volumes, and axis-aligned bounds of every solid.
// That is enough for dry-run validation of a build pipeline, for the
// severing checks in assembly, and for tests; exported meshes degrade to
// bounding geometry. Production artifact generation registers a full CAD
// backend under a higher priority name.
const BackendAnalytic = "analytic"

func init() {
	Register(BackendAnalytic, func() Backend { return &analyticBackend{} })
}

// analyticSolid is the CSG-tree solid handle of the analytic backend.
type analyticSolid struct {
	op      string // "extrude", "sweep", "revolve", "union", "subtract", "intersect"
	left    *analyticSolid
	right   *analyticSolid
	outline curve.BezPath
	height  float64
	path    SweepPath
	bounds  Box

	// volume is exact for primitives; boolean nodes carry the containing
	// operand bound (union: sum, subtract: left, intersect: min).
	volume float64
}

func (s *analyticSolid) BoundingBox() Box { return s.bounds }

// Volume returns the tracked volume bound of the solid.
func (s *analyticSolid) Volume() float64 { return s.volume }

type analyticBackend struct {
	initialized bool
}

func (b *analyticBackend) Name() string { return BackendAnalytic }

func (b *analyticBackend) Init() error {
	b.initialized = true
	return nil
}

func (b *analyticBackend) Close() { b.initialized = false }

func (b *analyticBackend) check() error {
	if !b.initialized {
		return ErrNotInitialized
	}
	return nil
}

func boxFromRect(r curve.Rect, z0, z1 float64) Box {
	return Box{
		Min: r3.Vec{X: r.MinX(), Y: r.MinY(), Z: min(z0, z1)},
		Max: r3.Vec{X: r.MaxX(), Y: r.MaxY(), Z: max(z0, z1)},
	}
}

func (b *analyticBackend) Extrude(outline curve.BezPath, height float64) (Solid, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	area := math.Abs(outline.SignedArea())
	if area == 0 || height == 0 {
		return nil, fmt.Errorf("analytic: extrude of degenerate outline")
	}
	return &analyticSolid{
		op:      "extrude",
		outline: outline,
		height:  height,
		bounds:  boxFromRect(outline.BoundingBox(), 0, height),
		volume:  area * math.Abs(height),
	}, nil
}

func (b *analyticBackend) Sweep(section curve.BezPath, path SweepPath) (Solid, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	area := math.Abs(section.SignedArea())
	if area == 0 {
		return nil, fmt.Errorf("analytic: sweep of degenerate section")
	}
	length, bounds := sweepExtent(section, path)
	return &analyticSolid{
		op:     "sweep",
		path:   path,
		bounds: bounds,
		volume: area * length,
	}, nil
}

// Revolve interprets the outline's (x, y) as (radial, z). Volume follows
// Pappus with the bounding-box midpoint standing in for the centroid,
// which is exact for the rectangular cross-sections cores use.
func (b *analyticBackend) Revolve(outline curve.BezPath) (Solid, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	area := math.Abs(outline.SignedArea())
	sb := outline.BoundingBox()
	if area == 0 || sb.MinX() < 0 {
		return nil, fmt.Errorf("analytic: revolve outline must be non-degenerate and in x >= 0")
	}
	r := sb.MaxX()
	centroid := (sb.MinX() + sb.MaxX()) / 2
	return &analyticSolid{
		op: "revolve",
		bounds: Box{
			Min: r3.Vec{X: -r, Y: -r, Z: sb.MinY()},
			Max: r3.Vec{X: r, Y: r, Z: sb.MaxY()},
		},
		volume: 2 * math.Pi * centroid * area,
	}, nil
}

// sweepExtent returns the path length and a bounding box inflated by the
// section's largest half-extent.
func sweepExtent(section curve.BezPath, path SweepPath) (float64, Box) {
	sb := section.BoundingBox()
	inflate := max(sb.Width(), sb.Height()) / 2

	var length float64
	var bounds Box
	switch path.Kind {
	case SweepCircle:
		length = 2 * math.Pi * path.Radius
		r := path.Radius + inflate
		bounds = Box{
			Min: r3.Vec{X: path.Center.X - r, Y: path.Center.Y - r, Z: path.Center.Z - r},
			Max: r3.Vec{X: path.Center.X + r, Y: path.Center.Y + r, Z: path.Center.Z + r},
		}
	case SweepRacetrack:
		length = 2*(path.Width+path.Height) + 2*math.Pi*path.Radius
		hw := path.Width/2 + path.Radius + inflate
		hh := path.Height/2 + path.Radius + inflate
		bounds = Box{
			Min: r3.Vec{X: path.Center.X - hw, Y: path.Center.Y - hh, Z: path.Center.Z - inflate},
			Max: r3.Vec{X: path.Center.X + hw, Y: path.Center.Y + hh, Z: path.Center.Z + inflate},
		}
	case SweepPolyline:
		pts := path.Points
		for i := 1; i < len(pts); i++ {
			length += r3.Norm(r3.Sub(pts[i], pts[i-1]))
		}
		if path.Closed && len(pts) > 1 {
			length += r3.Norm(r3.Sub(pts[0], pts[len(pts)-1]))
		}
		if len(pts) > 0 {
			bounds = Box{Min: pts[0], Max: pts[0]}
			for _, p := range pts[1:] {
				bounds = bounds.Union(Box{Min: p, Max: p})
			}
			bounds.Min = r3.Sub(bounds.Min, r3.Vec{X: inflate, Y: inflate, Z: inflate})
			bounds.Max = r3.Add(bounds.Max, r3.Vec{X: inflate, Y: inflate, Z: inflate})
		}
	}
	return length, bounds
}

func (b *analyticBackend) boolean(op string, x, y Solid) (Solid, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	l, ok := x.(*analyticSolid)
	if !ok {
		return nil, fmt.Errorf("analytic: foreign solid %T", x)
	}
	r, ok := y.(*analyticSolid)
	if !ok {
		return nil, fmt.Errorf("analytic: foreign solid %T", y)
	}
	node := &analyticSolid{op: op, left: l, right: r}
	switch op {
	case "union":
		node.bounds = l.bounds.Union(r.bounds)
		node.volume = l.volume + r.volume
	case "subtract":
		node.bounds = l.bounds
		node.volume = l.volume
	case "intersect":
		node.bounds = intersectBox(l.bounds, r.bounds)
		node.volume = min(l.volume, r.volume)
	}
	return node, nil
}

func intersectBox(a, b Box) Box {
	out := Box{
		Min: r3.Vec{X: max(a.Min.X, b.Min.X), Y: max(a.Min.Y, b.Min.Y), Z: max(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: min(a.Max.X, b.Max.X), Y: min(a.Max.Y, b.Max.Y), Z: min(a.Max.Z, b.Max.Z)},
	}
	if out.Max.X < out.Min.X || out.Max.Y < out.Min.Y || out.Max.Z < out.Min.Z {
		return Box{}
	}
	return out
}

func (b *analyticBackend) Union(x, y Solid) (Solid, error)     { return b.boolean("union", x, y) }
func (b *analyticBackend) Subtract(x, y Solid) (Solid, error)  { return b.boolean("subtract", x, y) }
func (b *analyticBackend) Intersect(x, y Solid) (Solid, error) { return b.boolean("intersect", x, y) }

func (b *analyticBackend) Translate(s Solid, v r3.Vec) (Solid, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	sol, ok := s.(*analyticSolid)
	if !ok {
		return nil, fmt.Errorf("analytic: foreign solid %T", s)
	}
	if v == (r3.Vec{}) {
		return sol, nil
	}
	out := *sol
	out.bounds = Box{Min: r3.Add(sol.bounds.Min, v), Max: r3.Add(sol.bounds.Max, v)}
	return &out, nil
}

func (b *analyticBackend) Rotate(s Solid, axis r3.Vec, angle float64, about r3.Vec) (Solid, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	sol, ok := s.(*analyticSolid)
	if !ok {
		return nil, fmt.Errorf("analytic: foreign solid %T", s)
	}
	if angle == 0 {
		return sol, nil
	}
	rot := r3.NewRotation(angle, axis)
	out := *sol
	out.bounds = rotateBox(sol.bounds, rot, about)
	return &out, nil
}

// rotateBox rotates all eight corners and rebounds.
func rotateBox(bb Box, rot r3.Rotation, about r3.Vec) Box {
	corners := [8]r3.Vec{
		{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Max.Z},
		{X: bb.Min.X, Y: bb.Max.Y, Z: bb.Min.Z},
		{X: bb.Min.X, Y: bb.Max.Y, Z: bb.Max.Z},
		{X: bb.Max.X, Y: bb.Min.Y, Z: bb.Min.Z},
		{X: bb.Max.X, Y: bb.Min.Y, Z: bb.Max.Z},
		{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Min.Z},
		{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
	out := Box{Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}}
	for _, c := range corners {
		p := r3.Add(rot.Rotate(r3.Sub(c, about)), about)
		out.Min = r3.Vec{X: min(out.Min.X, p.X), Y: min(out.Min.Y, p.Y), Z: min(out.Min.Z, p.Z)}
		out.Max = r3.Vec{X: max(out.Max.X, p.X), Y: max(out.Max.Y, p.Y), Z: max(out.Max.Z, p.Z)}
	}
	return out
}

// Section returns the rectangular outline of the solid's bounds on the
// plane. The analytic backend has no B-rep to slice; the outline keeps
// downstream view layout functional in dry runs.
func (b *analyticBackend) Section(s Solid, plane Plane, offset float64) ([]Edge, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	bb := s.BoundingBox()
	r := planeRect(bb, plane)
	if r.Width() == 0 || r.Height() == 0 {
		return nil, nil
	}
	return rectEdges(r, false), nil
}

func (b *analyticBackend) Project(s Solid, dir r3.Vec) ([]Edge, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	bb := s.BoundingBox()
	var plane Plane
	switch {
	case dir.Z != 0:
		plane = PlaneXY
	case dir.Y != 0:
		plane = PlaneXZ
	default:
		plane = PlaneZY
	}
	return rectEdges(planeRect(bb, plane), false), nil
}

// planeRect flattens a box onto a principal plane.
func planeRect(bb Box, plane Plane) curve.Rect {
	switch plane {
	case PlaneXY:
		return curve.Rect{X0: bb.Min.X, Y0: bb.Min.Y, X1: bb.Max.X, Y1: bb.Max.Y}
	case PlaneXZ:
		return curve.Rect{X0: bb.Min.X, Y0: bb.Min.Z, X1: bb.Max.X, Y1: bb.Max.Z}
	default:
		return curve.Rect{X0: bb.Min.Z, Y0: bb.Min.Y, X1: bb.Max.Z, Y1: bb.Max.Y}
	}
}

func rectEdges(r curve.Rect, hidden bool) []Edge {
	corners := [4]curve.Point{
		{X: r.MinX(), Y: r.MinY()},
		{X: r.MaxX(), Y: r.MinY()},
		{X: r.MaxX(), Y: r.MaxY()},
		{X: r.MinX(), Y: r.MaxY()},
	}
	edges := make([]Edge, 0, 4)
	for i := range corners {
		j := (i + 1) % 4
		edges = append(edges, Edge{
			Segment: curve.PathSegment{Kind: curve.LineKind, P0: corners[i], P1: corners[j]},
			Hidden:  hidden,
		})
	}
	return edges
}

// Tessellate meshes the solid's bounding box. Quality is accepted for
// interface symmetry; a box needs no refinement.
func (b *analyticBackend) Tessellate(s Solid, q corecad.Quality) (Mesh, error) {
	if err := b.check(); err != nil {
		return Mesh{}, err
	}
	if q.Tolerance <= 0 {
		return Mesh{}, fmt.Errorf("analytic: non-positive tessellation tolerance %v", q.Tolerance)
	}
	bb := s.BoundingBox()
	v := func(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }
	verts := []r3.Vec{
		v(bb.Min.X, bb.Min.Y, bb.Min.Z), v(bb.Max.X, bb.Min.Y, bb.Min.Z),
		v(bb.Max.X, bb.Max.Y, bb.Min.Z), v(bb.Min.X, bb.Max.Y, bb.Min.Z),
		v(bb.Min.X, bb.Min.Y, bb.Max.Z), v(bb.Max.X, bb.Min.Y, bb.Max.Z),
		v(bb.Max.X, bb.Max.Y, bb.Max.Z), v(bb.Min.X, bb.Max.Y, bb.Max.Z),
	}
	tris := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}
	return Mesh{Vertices: verts, Triangles: tris}, nil
}

func (b *analyticBackend) Export(s Solid, format Format, q corecad.Quality, w io.Writer) error {
	if err := b.check(); err != nil {
		return err
	}
	switch format {
	case FormatSTL:
		mesh, err := b.Tessellate(s, q)
		if err != nil {
			return err
		}
		return writeSTL(w, mesh)
	default:
		return fmt.Errorf("analytic: %s export not supported", format)
	}
}

// writeSTL emits an ASCII STL body for the mesh.
func writeSTL(w io.Writer, mesh Mesh) error {
	if _, err := fmt.Fprintln(w, "solid corecad"); err != nil {
		return err
	}
	for _, tri := range mesh.Triangles {
		a, bv, c := mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]
		n := r3.Unit(r3.Cross(r3.Sub(bv, a), r3.Sub(c, a)))
		if _, err := fmt.Fprintf(w, "facet normal %g %g %g\n outer loop\n", n.X, n.Y, n.Z); err != nil {
			return err
		}
		for _, p := range []r3.Vec{a, bv, c} {
			if _, err := fmt.Fprintf(w, "  vertex %g %g %g\n", p.X, p.Y, p.Z); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, " endloop\nendfacet"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "endsolid corecad")
	return err
}
