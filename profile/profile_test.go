package profile

import (
	"errors"
	"math"
	"testing"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

func newBackend(t *testing.T) kernel.Backend {
	t.Helper()
	b := kernel.Get(kernel.BackendAnalytic)
	if b == nil {
		t.Fatal("analytic backend not registered")
	}
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

// testDims returns a plausible catalog dimension set (millimeters) for the
// family. A handful of families need adjusted proportions for their derived
// angles to stay real.
func testDims(f corecad.Family) Dims {
	d := Dims{
		"A": 40, "B": 16, "C": 20, "D": 10, "E": 30, "F": 12,
		"G": 14, "H": 4, "J": 30, "K": 4, "T": 6, "s": 3,
		"q": 1, "F2": 18, "b": 8, "t": 2,
	}
	switch f {
	case corecad.FamilyRM:
		d["C"] = 10 // flats must cut inside the round leg
	case corecad.FamilyEPX:
		d["K"] = 8 // stadium leg needs K > F/2
	case corecad.FamilyUR:
		d["H"] = 10 // H is the return leg width here
	case corecad.FamilyUT:
		d["E"] = 20
		d["F"] = 8
	case corecad.FamilyT:
		return Dims{"A": 40, "B": 24, "C": 16}
	}
	return d
}

func TestLookupAllFamilies(t *testing.T) {
	families := []corecad.Family{
		corecad.FamilyE, corecad.FamilyEC, corecad.FamilyEFD, corecad.FamilyEL,
		corecad.FamilyEP, corecad.FamilyEPX, corecad.FamilyEQ, corecad.FamilyER,
		corecad.FamilyETD, corecad.FamilyLP, corecad.FamilyP, corecad.FamilyPM,
		corecad.FamilyPQ, corecad.FamilyRM, corecad.FamilyT, corecad.FamilyU,
		corecad.FamilyUR, corecad.FamilyUT, corecad.FamilyC,
		corecad.FamilyPlanarE, corecad.FamilyPlanarEL, corecad.FamilyPlanarER,
	}
	for _, f := range families {
		if _, err := Lookup(f); err != nil {
			t.Errorf("Lookup(%q) error = %v", f, err)
		}
	}
}

func TestLookupUnknownFamily(t *testing.T) {
	_, err := Lookup(corecad.Family("hexagon"))
	if !errors.Is(err, corecad.ErrConfiguration) {
		t.Errorf("Lookup(hexagon) error = %v, want ErrConfiguration", err)
	}
}

func TestPlanarAliases(t *testing.T) {
	pairs := [][2]corecad.Family{
		{corecad.FamilyPlanarE, corecad.FamilyE},
		{corecad.FamilyPlanarER, corecad.FamilyER},
		{corecad.FamilyPlanarEL, corecad.FamilyEL},
	}
	for _, pair := range pairs {
		alias, err := Lookup(pair[0])
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", pair[0], err)
		}
		base, err := Lookup(pair[1])
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", pair[1], err)
		}
		if alias != base {
			t.Errorf("%q should share the %q shaper", pair[0], pair[1])
		}
	}
}

func TestCheckDimensionsMissingAxis(t *testing.T) {
	s, err := Lookup(corecad.FamilyE)
	if err != nil {
		t.Fatal(err)
	}
	d := testDims(corecad.FamilyE)
	delete(d, "F")

	err = CheckDimensions(corecad.FamilyE, s, 1, d)
	if !errors.Is(err, corecad.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
	var cfg *corecad.ConfigurationError
	if !errors.As(err, &cfg) || cfg.Subject != "F" {
		t.Errorf("error should name the missing axis F, got %v", err)
	}
}

func TestNormalizeSubtype(t *testing.T) {
	s, _ := Lookup(corecad.FamilyP)

	got, err := NormalizeSubtype(corecad.FamilyP, s, 0)
	if err != nil || got != 1 {
		t.Errorf("NormalizeSubtype(0) = %d, %v, want 1, nil", got, err)
	}
	if _, err := NormalizeSubtype(corecad.FamilyP, s, 9); !errors.Is(err, corecad.ErrConfiguration) {
		t.Errorf("NormalizeSubtype(9) error = %v, want ErrConfiguration", err)
	}
}

// buildPiece runs the full shaper pipeline the way assembly does.
func buildPiece(t *testing.T, b kernel.Backend, f corecad.Family, subtype int, d Dims) kernel.Solid {
	t.Helper()
	s, err := Lookup(f)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", f, err)
	}
	if err := CheckDimensions(f, s, subtype, d); err != nil {
		t.Fatalf("%s/%d CheckDimensions error = %v", f, subtype, err)
	}
	boundary, err := s.Boundary(d, subtype)
	if err != nil {
		t.Fatalf("%s/%d Boundary error = %v", f, subtype, err)
	}
	if boundary.SignedArea() == 0 {
		t.Fatalf("%s/%d boundary has zero area", f, subtype)
	}
	piece, err := b.Extrude(boundary, s.Height(d))
	if err != nil {
		t.Fatalf("%s/%d Extrude error = %v", f, subtype, err)
	}
	window, err := s.WindowTool(b, d)
	if err != nil {
		t.Fatalf("%s/%d WindowTool error = %v", f, subtype, err)
	}
	if window != nil {
		piece, err = b.Subtract(piece, window)
		if err != nil {
			t.Fatalf("%s/%d Subtract error = %v", f, subtype, err)
		}
	}
	piece, err = s.Finish(b, d, subtype, piece)
	if err != nil {
		t.Fatalf("%s/%d Finish error = %v", f, subtype, err)
	}
	return piece
}

func TestBuildEveryFamilyAndSubtype(t *testing.T) {
	b := newBackend(t)
	for _, f := range Families() {
		s, err := Lookup(f)
		if err != nil {
			t.Fatal(err)
		}
		for subtype := range s.Subtypes() {
			piece := buildPiece(t, b, f, subtype, testDims(f))
			bb := piece.BoundingBox()
			if bb.Size() == (kernel.Box{}).Size() {
				t.Errorf("%s/%d piece has empty bounds", f, subtype)
			}
		}
	}
}

func TestHalfSetPiecesRestBelowZero(t *testing.T) {
	b := newBackend(t)
	for _, f := range []corecad.Family{
		corecad.FamilyE, corecad.FamilyER, corecad.FamilyETD, corecad.FamilyPQ,
		corecad.FamilyU, corecad.FamilyC,
	} {
		d := testDims(f)
		piece := buildPiece(t, b, f, 1, d)
		bb := piece.BoundingBox()
		if bb.Max.Z > 1e-9 {
			t.Errorf("%s piece top = %v, want mating face at z=0", f, bb.Max.Z)
		}
		if math.Abs(bb.Min.Z+d["B"]) > 1e-9 {
			t.Errorf("%s piece bottom = %v, want -B = %v", f, bb.Min.Z, -d["B"])
		}
	}
}

func TestToroidIsCenteredAndWindowless(t *testing.T) {
	b := newBackend(t)
	s, _ := Lookup(corecad.FamilyT)
	d := testDims(corecad.FamilyT)

	window, err := s.WindowTool(b, d)
	if err != nil {
		t.Fatalf("WindowTool error = %v", err)
	}
	if window != nil {
		t.Error("toroid should have no winding window tool")
	}

	boundary, err := s.Boundary(d, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Ring area with the bore wound out of the fill.
	want := math.Pi * (d["A"]*d["A"] - d["B"]*d["B"]) / 4
	got := math.Abs(boundary.SignedArea())
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("ring area = %v, want about %v", got, want)
	}

	if s.Height(d) != d["C"] {
		t.Errorf("Height = %v, want C = %v", s.Height(d), d["C"])
	}
}

func TestToroidRejectsMachining(t *testing.T) {
	b := newBackend(t)
	s, _ := Lookup(corecad.FamilyT)
	_, err := s.GapTool(b, testDims(corecad.FamilyT), corecad.MachiningOp{Length: 1})
	if !errors.Is(err, corecad.ErrGeometry) {
		t.Errorf("GapTool error = %v, want ErrGeometry", err)
	}
}

func TestERLateralCutTooWide(t *testing.T) {
	b := newBackend(t)
	s, _ := Lookup(corecad.FamilyER)
	d := testDims(corecad.FamilyER)
	d["C"] = 10 // body depth at most the leg diameter
	d["G"] = 14 // cut wider than the leg

	_, err := s.WindowTool(b, d)
	if !errors.Is(err, corecad.ErrGeometry) {
		t.Errorf("WindowTool error = %v, want ErrGeometry", err)
	}
}

func TestEGapToolFootprints(t *testing.T) {
	b := newBackend(t)
	s, _ := Lookup(corecad.FamilyE)
	d := testDims(corecad.FamilyE)

	center, err := s.GapTool(b, d, corecad.MachiningOp{Length: 2, Coordinates: [3]float64{0, -8, 0}})
	if err != nil {
		t.Fatalf("center GapTool error = %v", err)
	}
	size := center.BoundingBox().Size()
	if math.Abs(size.X-d["F"]) > 1e-9 || math.Abs(size.Y-d["C"]) > 1e-9 || math.Abs(size.Z-2) > 1e-9 {
		t.Errorf("center tool size = %+v, want F x C x length", size)
	}

	lateral, err := s.GapTool(b, d, corecad.MachiningOp{Length: 2, Coordinates: [3]float64{1, -8, 0}})
	if err != nil {
		t.Fatalf("lateral GapTool error = %v", err)
	}
	bb := lateral.BoundingBox()
	if bb.Min.X < d["A"]/4-1e-9 {
		t.Errorf("right lateral tool reaches x = %v, should stay right of A/4", bb.Min.X)
	}

	left, err := s.GapTool(b, d, corecad.MachiningOp{Length: 2, Coordinates: [3]float64{-1, -8, 0}})
	if err != nil {
		t.Fatalf("left GapTool error = %v", err)
	}
	if left.BoundingBox().Max.X > -d["A"]/4+1e-9 {
		t.Errorf("left lateral tool reaches x = %v, should stay left of -A/4", left.BoundingBox().Max.X)
	}
}

func TestPCenterGapMatchesLegSquare(t *testing.T) {
	b := newBackend(t)
	s, _ := Lookup(corecad.FamilyP)
	d := testDims(corecad.FamilyP)

	tool, err := s.GapTool(b, d, corecad.MachiningOp{Length: 1.5, Coordinates: [3]float64{0, -5, 0}})
	if err != nil {
		t.Fatalf("GapTool error = %v", err)
	}
	size := tool.BoundingBox().Size()
	if math.Abs(size.X-d["F"]) > 1e-9 || math.Abs(size.Y-d["F"]) > 1e-9 {
		t.Errorf("center tool footprint = %+v, want F x F", size)
	}
}

func TestBoundaryAreas(t *testing.T) {
	tests := []struct {
		family corecad.Family
		want   func(d Dims) float64
	}{
		{corecad.FamilyE, func(d Dims) float64 { return d["A"] * d["C"] }},
		{corecad.FamilyU, func(d Dims) float64 { return d["A"] * d["C"] }},
		{corecad.FamilyP, func(d Dims) float64 { return math.Pi * d["A"] * d["A"] / 4 }},
	}
	for _, tt := range tests {
		s, err := Lookup(tt.family)
		if err != nil {
			t.Fatal(err)
		}
		d := testDims(tt.family)
		boundary, err := s.Boundary(d, 1)
		if err != nil {
			t.Fatalf("%s Boundary error = %v", tt.family, err)
		}
		got := math.Abs(boundary.SignedArea())
		want := tt.want(d)
		if math.Abs(got-want)/want > 0.01 {
			t.Errorf("%s boundary area = %v, want about %v", tt.family, got, want)
		}
	}
}

func TestRegisterReplacesShaper(t *testing.T) {
	custom := &tShaper{}
	Register(corecad.Family("custom"), custom)
	defer func() {
		registryMu.Lock()
		delete(shapers, corecad.Family("custom"))
		registryMu.Unlock()
	}()

	got, err := Lookup(corecad.Family("custom"))
	if err != nil {
		t.Fatalf("Lookup(custom) error = %v", err)
	}
	if got != custom {
		t.Error("Lookup should return the registered shaper")
	}
}
