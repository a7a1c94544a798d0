package kernel

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	"github.com/openmagnetics/corecad"
)

func newTestBackend(t *testing.T) Backend {
	t.Helper()
	b := Get(BackendAnalytic)
	if b == nil {
		t.Fatal("Get(analytic) returned nil")
	}
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func rectPath(w, h float64) curve.BezPath {
	return curve.Rect{X0: -w / 2, Y0: -h / 2, X1: w / 2, Y1: h / 2}.Path(0.1)
}

func TestAnalyticBackendName(t *testing.T) {
	b := Get(BackendAnalytic)
	if b == nil {
		t.Fatal("Get(analytic) returned nil")
	}
	if b.Name() != "analytic" {
		t.Errorf("Name() = %q, want %q", b.Name(), "analytic")
	}
}

func TestAnalyticBackendRequiresInit(t *testing.T) {
	b := Get(BackendAnalytic)
	if _, err := b.Extrude(rectPath(10, 10), 5); err != ErrNotInitialized {
		t.Errorf("Extrude() before Init() error = %v, want ErrNotInitialized", err)
	}
}

func TestAnalyticExtrude(t *testing.T) {
	b := newTestBackend(t)

	s, err := b.Extrude(rectPath(10, 20), 5)
	if err != nil {
		t.Fatalf("Extrude() error = %v", err)
	}

	bb := s.BoundingBox()
	want := Box{Min: r3.Vec{X: -5, Y: -10, Z: 0}, Max: r3.Vec{X: 5, Y: 10, Z: 5}}
	if bb != want {
		t.Errorf("BoundingBox() = %+v, want %+v", bb, want)
	}

	v := s.(*analyticSolid).Volume()
	if math.Abs(v-1000) > 1e-9 {
		t.Errorf("Volume() = %v, want 1000", v)
	}
}

func TestAnalyticExtrudeDegenerate(t *testing.T) {
	b := newTestBackend(t)

	if _, err := b.Extrude(curve.BezPath{}, 5); err == nil {
		t.Error("Extrude(empty outline) should fail")
	}
	if _, err := b.Extrude(rectPath(10, 10), 0); err == nil {
		t.Error("Extrude(height 0) should fail")
	}
}

func TestAnalyticBooleans(t *testing.T) {
	b := newTestBackend(t)

	big, err := b.Extrude(rectPath(10, 10), 10)
	if err != nil {
		t.Fatalf("Extrude() error = %v", err)
	}
	small, err := b.Extrude(rectPath(4, 4), 10)
	if err != nil {
		t.Fatalf("Extrude() error = %v", err)
	}

	u, err := b.Union(big, small)
	if err != nil {
		t.Fatalf("Union() error = %v", err)
	}
	if bb := u.BoundingBox(); bb != big.BoundingBox() {
		t.Errorf("Union bounds = %+v, want %+v", bb, big.BoundingBox())
	}

	d, err := b.Subtract(big, small)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	if bb := d.BoundingBox(); bb != big.BoundingBox() {
		t.Errorf("Subtract bounds = %+v, want %+v", bb, big.BoundingBox())
	}

	i, err := b.Intersect(big, small)
	if err != nil {
		t.Fatalf("Intersect() error = %v", err)
	}
	if bb := i.BoundingBox(); bb != small.BoundingBox() {
		t.Errorf("Intersect bounds = %+v, want %+v", bb, small.BoundingBox())
	}
}

func TestAnalyticIntersectDisjoint(t *testing.T) {
	b := newTestBackend(t)

	left, _ := b.Extrude(rectPath(2, 2), 1)
	right, _ := b.Extrude(rectPath(2, 2), 1)
	right, err := b.Translate(right, r3.Vec{X: 100})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	i, err := b.Intersect(left, right)
	if err != nil {
		t.Fatalf("Intersect() error = %v", err)
	}
	if bb := i.BoundingBox(); bb != (Box{}) {
		t.Errorf("disjoint Intersect bounds = %+v, want empty", bb)
	}
}

func TestAnalyticTranslate(t *testing.T) {
	b := newTestBackend(t)

	s, _ := b.Extrude(rectPath(2, 2), 2)
	moved, err := b.Translate(s, r3.Vec{X: 1, Y: 2, Z: 3})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	bb := moved.BoundingBox()
	want := Box{Min: r3.Vec{X: 0, Y: 1, Z: 3}, Max: r3.Vec{X: 2, Y: 3, Z: 5}}
	if bb != want {
		t.Errorf("BoundingBox() = %+v, want %+v", bb, want)
	}

	// Zero translation returns the same handle.
	same, err := b.Translate(s, r3.Vec{})
	if err != nil {
		t.Fatalf("Translate(zero) error = %v", err)
	}
	if same != s {
		t.Error("Translate(zero) should return the input solid unchanged")
	}
}

func TestAnalyticRotate(t *testing.T) {
	b := newTestBackend(t)

	s, _ := b.Extrude(rectPath(10, 2), 2)

	// Zero rotation returns the same handle.
	same, err := b.Rotate(s, r3.Vec{Z: 1}, 0, r3.Vec{})
	if err != nil {
		t.Fatalf("Rotate(0) error = %v", err)
	}
	if same != s {
		t.Error("Rotate(0) should return the input solid unchanged")
	}

	// Quarter turn about Z swaps the X and Y extents.
	turned, err := b.Rotate(s, r3.Vec{Z: 1}, math.Pi/2, r3.Vec{})
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	size := turned.BoundingBox().Size()
	if math.Abs(size.X-2) > 1e-9 || math.Abs(size.Y-10) > 1e-9 {
		t.Errorf("rotated size = %+v, want X=2 Y=10", size)
	}
}

func TestAnalyticSweepCircle(t *testing.T) {
	b := newTestBackend(t)

	section := curve.Circle{Center: curve.Pt(0, 0), Radius: 0.5}.Path(0.01)
	s, err := b.Sweep(section, SweepPath{Kind: SweepCircle, Radius: 10})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	// Torus volume 2*pi^2*R*r^2 within the flattening tolerance of the
	// circular section.
	want := 2 * math.Pi * math.Pi * 10 * 0.25
	got := s.(*analyticSolid).Volume()
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("Volume() = %v, want about %v", got, want)
	}
}

func TestAnalyticSweepPolyline(t *testing.T) {
	b := newTestBackend(t)

	section := rectPath(1, 1)
	path := SweepPath{
		Kind: SweepPolyline,
		Points: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 10, Y: 0, Z: 0},
			{X: 10, Y: 5, Z: 0},
		},
	}
	s, err := b.Sweep(section, path)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	got := s.(*analyticSolid).Volume()
	if math.Abs(got-15) > 1e-9 {
		t.Errorf("Volume() = %v, want 15", got)
	}
}

func TestAnalyticSection(t *testing.T) {
	b := newTestBackend(t)

	s, _ := b.Extrude(rectPath(10, 20), 5)
	edges, err := b.Section(s, PlaneXY, 0)
	if err != nil {
		t.Fatalf("Section() error = %v", err)
	}
	if len(edges) != 4 {
		t.Fatalf("Section() returned %d edges, want 4", len(edges))
	}
	for _, e := range edges {
		if e.Hidden {
			t.Error("Section() edges should be visible")
		}
	}
}

func TestAnalyticTessellate(t *testing.T) {
	b := newTestBackend(t)

	s, _ := b.Extrude(rectPath(10, 10), 10)
	mesh, err := b.Tessellate(s, corecad.DefaultQuality())
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if len(mesh.Vertices) != 8 || len(mesh.Triangles) != 12 {
		t.Errorf("Tessellate() = %d vertices %d triangles, want 8 and 12",
			len(mesh.Vertices), len(mesh.Triangles))
	}

	if _, err := b.Tessellate(s, corecad.Quality{Tolerance: -1}); err == nil {
		t.Error("Tessellate() with negative tolerance should fail")
	}
}

func TestAnalyticExportSTL(t *testing.T) {
	b := newTestBackend(t)

	s, _ := b.Extrude(rectPath(10, 10), 10)
	var buf bytes.Buffer
	if err := b.Export(s, FormatSTL, corecad.DefaultQuality(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "solid") || !strings.Contains(out, "endsolid") {
		t.Error("Export(stl) did not produce an STL body")
	}
	if strings.Count(out, "facet normal") != 12 {
		t.Errorf("Export(stl) wrote %d facets, want 12", strings.Count(out, "facet normal"))
	}
}

func TestAnalyticExportSTEPUnsupported(t *testing.T) {
	b := newTestBackend(t)

	s, _ := b.Extrude(rectPath(1, 1), 1)
	var buf bytes.Buffer
	if err := b.Export(s, FormatSTEP, corecad.DefaultQuality(), &buf); err == nil {
		t.Error("Export(step) should fail on the analytic backend")
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	// Analytic backend is auto-registered via init()
	if !IsRegistered(BackendAnalytic) {
		t.Error("analytic backend should be auto-registered")
	}

	b := Get(BackendAnalytic)
	if b == nil {
		t.Fatal("Get(analytic) returned nil")
	}
	if b.Name() != BackendAnalytic {
		t.Errorf("Get(analytic).Name() = %q, want %q", b.Name(), BackendAnalytic)
	}
}

func TestRegistryGetUnregistered(t *testing.T) {
	if b := Get("nonexistent"); b != nil {
		t.Error("Get(nonexistent) should return nil")
	}
}

func TestRegistryAvailable(t *testing.T) {
	found := false
	for _, name := range Available() {
		if name == BackendAnalytic {
			found = true
			break
		}
	}
	if !found {
		t.Error("Available() should include 'analytic'")
	}
}

func TestRegistryDefault(t *testing.T) {
	b := Default()
	if b == nil {
		t.Fatal("Default() returned nil")
	}
	// Analytic is the fallback when no CAD backend is registered
	if b.Name() != BackendAnalytic {
		t.Logf("Default() returned %q (may vary based on registered backends)", b.Name())
	}
}

func TestRegistryInitDefault(t *testing.T) {
	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault() error = %v", err)
	}
	if b == nil {
		t.Fatal("InitDefault() returned nil backend")
	}
	defer b.Close()

	if _, err := b.Extrude(rectPath(1, 1), 1); err != nil {
		t.Errorf("Backend from InitDefault() should be usable, got %v", err)
	}
}

func TestRegistryUnregister(t *testing.T) {
	Register("test-backend", func() Backend { return &analyticBackend{} })

	if !IsRegistered("test-backend") {
		t.Error("test-backend should be registered")
	}

	Unregister("test-backend")

	if IsRegistered("test-backend") {
		t.Error("test-backend should be unregistered")
	}
}

func TestPlaneNormal(t *testing.T) {
	tests := []struct {
		plane Plane
		want  r3.Vec
	}{
		{PlaneXY, r3.Vec{Z: 1}},
		{PlaneXZ, r3.Vec{Y: 1}},
		{PlaneZY, r3.Vec{X: 1}},
	}
	for _, tt := range tests {
		if got := tt.plane.Normal(); got != tt.want {
			t.Errorf("%s Normal() = %+v, want %+v", tt.plane, got, tt.want)
		}
	}
}

func TestBoxUnion(t *testing.T) {
	a := Box{Min: r3.Vec{X: 0, Y: 0, Z: 0}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	b := Box{Min: r3.Vec{X: 2, Y: -1, Z: 0}, Max: r3.Vec{X: 3, Y: 0.5, Z: 2}}
	got := a.Union(b)
	want := Box{Min: r3.Vec{X: 0, Y: -1, Z: 0}, Max: r3.Vec{X: 3, Y: 1, Z: 2}}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
}
