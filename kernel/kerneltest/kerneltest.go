// Package kerneltest is a conformance suite shared by kernel backends.
//
// A backend package calls [TestBackend] from its own tests with a factory
// for fresh backend instances. The suite checks the contract every
// consumer of [kernel.Backend] relies on: boolean identities, transform
// invariants on bounding boxes, sweep path lengths, and tessellation
// output sanity.
package kerneltest

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

// TestBackend runs the conformance suite against the factory's backend.
// The factory must return a fresh, uninitialized instance on every call.
func TestBackend(t *testing.T, factory kernel.Factory) {
	t.Helper()
	cases := []struct {
		name string
		fn   func(t *testing.T, b kernel.Backend)
	}{
		{"InitClose", testInitClose},
		{"ExtrudeBox", testExtrudeBox},
		{"ExtrudeDegenerate", testExtrudeDegenerate},
		{"SweepCircle", testSweepCircle},
		{"RevolveRing", testRevolveRing},
		{"BooleanIdentities", testBooleanIdentities},
		{"TranslateMovesBounds", testTranslateMovesBounds},
		{"RotateHalfTurn", testRotateHalfTurn},
		{"SectionAndProject", testSectionAndProject},
		{"TessellateTolerance", testTessellateTolerance},
		{"ExportSTL", testExportSTL},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := factory()
			if b == nil {
				t.Fatal("factory returned nil backend")
			}
			if err := b.Init(); err != nil {
				t.Fatalf("Init: %v", err)
			}
			defer b.Close()
			c.fn(t, b)
		})
	}
}

func unitBoxOutline() curve.BezPath {
	return curve.Rect{X0: -0.5, Y0: -0.5, X1: 0.5, Y1: 0.5}.Path(0.01)
}

func unitBox(t *testing.T, b kernel.Backend) kernel.Solid {
	t.Helper()
	s, err := b.Extrude(unitBoxOutline(), 1)
	if err != nil {
		t.Fatalf("Extrude: %v", err)
	}
	return s
}

func near(a, b, tol float64) bool { return scalar.EqualWithinAbs(a, b, tol) }

func testInitClose(t *testing.T, b kernel.Backend) {
	if b.Name() == "" {
		t.Error("backend has no name")
	}
	// Init must be repeatable after Close.
	b.Close()
	if err := b.Init(); err != nil {
		t.Fatalf("re-Init: %v", err)
	}
	if _, err := b.Extrude(unitBoxOutline(), 1); err != nil {
		t.Errorf("Extrude after re-Init: %v", err)
	}
}

func testExtrudeBox(t *testing.T, b kernel.Backend) {
	s := unitBox(t, b)
	bb := s.BoundingBox()
	size := bb.Size()
	if !near(size.X, 1, 1e-9) || !near(size.Y, 1, 1e-9) || !near(size.Z, 1, 1e-9) {
		t.Errorf("box size = %v, want unit", size)
	}
	if !near(s.Volume(), 1, 1e-6) {
		t.Errorf("box volume = %v, want 1", s.Volume())
	}
}

func testExtrudeDegenerate(t *testing.T, b kernel.Backend) {
	var empty curve.BezPath
	if _, err := b.Extrude(empty, 1); err == nil {
		t.Error("extruding an empty outline did not fail")
	}
	if _, err := b.Extrude(unitBoxOutline(), 0); err == nil {
		t.Error("extruding to zero height did not fail")
	}
}

func testSweepCircle(t *testing.T, b kernel.Backend) {
	section := curve.Circle{Radius: 0.1}.Path(0.001)
	s, err := b.Sweep(section, kernel.SweepPath{
		Kind:   kernel.SweepCircle,
		Normal: r3.Vec{Z: 1},
		Radius: 1,
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	// Torus volume: section area times path length.
	want := math.Pi * 0.1 * 0.1 * 2 * math.Pi
	if !near(s.Volume(), want, want*0.05) {
		t.Errorf("torus volume = %v, want %v", s.Volume(), want)
	}
}

func testRevolveRing(t *testing.T, b kernel.Backend) {
	// A 1x1 square centered at radius 2 revolves into a ring.
	outline := curve.Rect{X0: 1.5, Y0: -0.5, X1: 2.5, Y1: 0.5}.Path(0.01)
	s, err := b.Revolve(outline)
	if err != nil {
		t.Fatalf("Revolve: %v", err)
	}
	want := 2 * math.Pi * 2 // Pappus: centroid circumference times area
	if !near(s.Volume(), want, want*0.05) {
		t.Errorf("ring volume = %v, want %v", s.Volume(), want)
	}
	bb := s.BoundingBox()
	if !near(bb.Max.X, 2.5, 1e-9) || !near(bb.Min.X, -2.5, 1e-9) {
		t.Errorf("ring bounds x = [%v, %v], want [-2.5, 2.5]", bb.Min.X, bb.Max.X)
	}

	// Outlines crossing the axis cannot revolve.
	bad := curve.Rect{X0: -1, Y0: -0.5, X1: 1, Y1: 0.5}.Path(0.01)
	if _, err := b.Revolve(bad); err == nil {
		t.Error("revolving an axis-crossing outline did not fail")
	}
}

func testBooleanIdentities(t *testing.T, b kernel.Backend) {
	a := unitBox(t, b)
	far, err := b.Translate(unitBox(t, b), r3.Vec{X: 10})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	// Disjoint union sums the volumes and merges the bounds.
	u, err := b.Union(a, far)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	if !near(u.Volume(), 2, 1e-6) {
		t.Errorf("disjoint union volume = %v, want 2", u.Volume())
	}
	ub := u.BoundingBox()
	if !near(ub.Min.X, -0.5, 1e-9) || !near(ub.Max.X, 10.5, 1e-9) {
		t.Errorf("disjoint union bounds x = [%v, %v], want [-0.5, 10.5]", ub.Min.X, ub.Max.X)
	}

	// Intersection with itself changes nothing.
	i, err := b.Intersect(a, a)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if !near(i.Volume(), a.Volume(), 1e-6) {
		t.Errorf("self intersection volume = %v, want %v", i.Volume(), a.Volume())
	}

	// Subtracting a disjoint solid changes nothing.
	d, err := b.Subtract(a, far)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if !near(d.Volume(), a.Volume(), 1e-6) {
		t.Errorf("disjoint subtraction volume = %v, want %v", d.Volume(), a.Volume())
	}
}

func testTranslateMovesBounds(t *testing.T, b kernel.Backend) {
	a := unitBox(t, b)
	moved, err := b.Translate(a, r3.Vec{X: 2, Y: -1, Z: 0.5})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	got := moved.BoundingBox().Center()
	want := a.BoundingBox().Center()
	want.X += 2
	want.Y += -1
	want.Z += 0.5
	if !near(got.X, want.X, 1e-9) || !near(got.Y, want.Y, 1e-9) || !near(got.Z, want.Z, 1e-9) {
		t.Errorf("moved center = %v, want %v", got, want)
	}
	if !near(moved.Volume(), a.Volume(), 1e-9) {
		t.Errorf("translation changed volume: %v -> %v", a.Volume(), moved.Volume())
	}
}

func testRotateHalfTurn(t *testing.T, b kernel.Backend) {
	a := unitBox(t, b)
	shifted, err := b.Translate(a, r3.Vec{X: 3})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	rotated, err := b.Rotate(shifted, r3.Vec{Z: 1}, math.Pi, r3.Vec{})
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	c := rotated.BoundingBox().Center()
	if !near(c.X, -3, 1e-6) || !near(c.Y, 0, 1e-6) {
		t.Errorf("half turn moved center to %v, want (-3, 0, z)", c)
	}
	if !near(rotated.Volume(), a.Volume(), 1e-6) {
		t.Errorf("rotation changed volume: %v -> %v", a.Volume(), rotated.Volume())
	}
}

func testSectionAndProject(t *testing.T, b kernel.Backend) {
	a := unitBox(t, b)

	edges, err := b.Section(a, kernel.PlaneXZ, 0)
	if err != nil {
		t.Fatalf("Section: %v", err)
	}
	if len(edges) == 0 {
		t.Fatal("section through the solid produced no edges")
	}

	edges, err = b.Project(a, r3.Vec{Z: 1})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(edges) == 0 {
		t.Fatal("projection produced no edges")
	}
	for _, e := range edges {
		if e.Segment.Kind == 0 {
			t.Error("projected edge has no segment kind")
		}
	}
}

func testTessellateTolerance(t *testing.T, b kernel.Backend) {
	a := unitBox(t, b)

	m, err := b.Tessellate(a, corecad.Quality{Tolerance: 0.1, AngularDeflection: 0.5})
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(m.Vertices) == 0 || len(m.Triangles) == 0 {
		t.Fatal("empty mesh")
	}
	for _, tri := range m.Triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(m.Vertices) {
				t.Fatalf("triangle index %d out of range", idx)
			}
		}
	}

	if _, err := b.Tessellate(a, corecad.Quality{}); err == nil {
		t.Error("tessellating with zero tolerance did not fail")
	}
}

func testExportSTL(t *testing.T, b kernel.Backend) {
	a := unitBox(t, b)
	var buf bytes.Buffer
	if err := b.Export(a, kernel.FormatSTL, corecad.DefaultQuality(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "solid") {
		t.Errorf("STL output does not start with solid: %.20q", out)
	}
	if !strings.Contains(out, "endsolid") {
		t.Error("STL output missing endsolid")
	}
}
