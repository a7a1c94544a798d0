package winding

import (
	"context"
	"errors"
	"math"
	"testing"

	corecad "github.com/openmagnetics/corecad"
	"github.com/openmagnetics/corecad/kernel"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	backend := kernel.Get(kernel.BackendAnalytic)
	if backend == nil {
		t.Fatal("analytic backend not registered")
	}
	if err := backend.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(backend.Close)

	b := New(backend, WithWorkers(2))
	t.Cleanup(b.Close)
	return b
}

func roundWire(d float64) corecad.WireSpec {
	return corecad.WireSpec{Kind: corecad.WireRound, OuterDiameter: corecad.Nominal(d)}
}

func concentricCoil() *corecad.CoilSpec {
	return &corecad.CoilSpec{
		Bobbin: corecad.BobbinSpec{
			ColumnShape: corecad.ColumnRound,
			ColumnDepth: 0.010,
			ColumnWidth: 0.010,
			WindingWindows: []corecad.WindingWindow{
				{Width: 0.008, Height: 0.020},
			},
		},
		Windings: []corecad.WindingSpec{
			{Name: "primary", Wire: roundWire(0.001)},
			{Name: "secondary", Wire: roundWire(0.0005)},
		},
		Turns: []corecad.TurnSpec{
			{Winding: "primary", Coordinates: []float64{0.010, 0.002}, Parallel: 0},
			{Winding: "secondary", Coordinates: []float64{0.012, 0.002}, Parallel: 0},
			{Winding: "primary", Coordinates: []float64{0.010, -0.002}, Parallel: 0},
		},
	}
}

func TestGroupTurnsPreservesOrder(t *testing.T) {
	groups := GroupTurns(concentricCoil())
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Winding != "primary" || len(groups[0].Turns) != 2 {
		t.Errorf("groups[0] = %+v, want primary with turns [0 2]", groups[0])
	}
	if groups[0].Turns[0] != 0 || groups[0].Turns[1] != 2 {
		t.Errorf("primary turns = %v, want [0 2]", groups[0].Turns)
	}
	if groups[1].Winding != "secondary" || len(groups[1].Turns) != 1 || groups[1].Turns[0] != 1 {
		t.Errorf("groups[1] = %+v, want secondary with turns [1]", groups[1])
	}
}

func TestLabelTurnsSectionsAndLayers(t *testing.T) {
	coil := &corecad.CoilSpec{
		Windings: []corecad.WindingSpec{
			{Name: "primary", Wire: roundWire(0.001)},
			{Name: "secondary", Wire: roundWire(0.0005)},
		},
		Turns: []corecad.TurnSpec{
			// Two primary layers, then a secondary section, then the
			// primaries resume as a third section.
			{Winding: "primary", Coordinates: []float64{0.010, 0.002}},
			{Winding: "primary", Coordinates: []float64{0.010, -0.002}},
			{Winding: "primary", Coordinates: []float64{0.011, -0.002}},
			{Winding: "secondary", Coordinates: []float64{0.013, 0.002}},
			{Winding: "primary", Coordinates: []float64{0.015, 0.002}},
		},
	}

	want := []TurnLabel{
		{Winding: "primary", Section: 0, Layer: 0},
		{Winding: "primary", Section: 0, Layer: 0},
		{Winding: "primary", Section: 0, Layer: 1},
		{Winding: "secondary", Section: 1, Layer: 0},
		{Winding: "primary", Section: 2, Layer: 0},
	}
	got := LabelTurns(coil)
	if len(got) != len(want) {
		t.Fatalf("len(labels) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("labels[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLabelTurnsUndeclaredWinding(t *testing.T) {
	coil := &corecad.CoilSpec{
		Windings: []corecad.WindingSpec{
			{Name: "primary", Wire: roundWire(0.001)},
		},
		Turns: []corecad.TurnSpec{
			{Winding: "primary", Coordinates: []float64{0.010, 0.002}},
			{Winding: "ghost", Coordinates: []float64{0.020, 0}},
			{Winding: "primary", Coordinates: []float64{0.010, -0.002}},
		},
	}

	got := LabelTurns(coil)
	if got[1].Section != -1 || got[1].Layer != -1 {
		t.Errorf("undeclared turn label = %+v, want -1/-1", got[1])
	}
	// The stray turn does not split its neighbors apart.
	if got[2].Section != 0 || got[2].Layer != 0 {
		t.Errorf("labels[2] = %+v, want section 0 layer 0", got[2])
	}
}

func TestBuildCoilConcentric(t *testing.T) {
	b := newBuilder(t)
	turns, err := b.BuildCoil(context.Background(), concentricCoil())
	if err != nil {
		t.Fatalf("BuildCoil() error = %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("len(turns) = %d, want 3", len(turns))
	}
	for i, turn := range turns {
		if turn.Index != i {
			t.Errorf("turns[%d].Index = %d, declaration order must hold", i, turn.Index)
		}
	}

	// Ring torus volume: section area times circumference.
	want := math.Pi * 0.5 * 0.5 * 2 * math.Pi * 10
	got := turns[0].Solid.Volume()
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("turn volume = %v, want about %v", got, want)
	}
}

func TestBuildCoilUndefinedWinding(t *testing.T) {
	b := newBuilder(t)
	coil := concentricCoil()
	coil.Turns[1].Winding = "tertiary"

	_, err := b.BuildCoil(context.Background(), coil)
	if !errors.Is(err, corecad.ErrGeometry) {
		t.Fatalf("error = %v, want ErrGeometry", err)
	}
	var ge *corecad.GeometryError
	if !errors.As(err, &ge) || ge.Subject != "tertiary" {
		t.Errorf("error should name the winding, got %v", err)
	}
}

func TestBuildCoilMissingWire(t *testing.T) {
	b := newBuilder(t)
	coil := concentricCoil()
	coil.Windings[1].Wire = corecad.WireSpec{}

	_, err := b.BuildCoil(context.Background(), coil)
	if !errors.Is(err, corecad.ErrGeometry) {
		t.Errorf("error = %v, want ErrGeometry", err)
	}
}

func TestBuildCoilRectangularColumnUsesRacetrack(t *testing.T) {
	b := newBuilder(t)
	coil := concentricCoil()
	coil.Bobbin.ColumnShape = corecad.ColumnRectangular

	turns, err := b.BuildCoil(context.Background(), coil)
	if err != nil {
		t.Fatalf("BuildCoil() error = %v", err)
	}
	// Corner radius is the margin past the column face, so the loop is
	// longer than the plain circle of the same radial position.
	circleLen := 2 * math.Pi * 10.0
	sectionArea := math.Pi * 0.5 * 0.5
	if v := turns[0].Solid.Volume(); v <= sectionArea*circleLen {
		t.Errorf("racetrack turn volume = %v, want more than the circular %v", v, sectionArea*circleLen)
	}
}

func TestBuildCoilTurnInsideColumn(t *testing.T) {
	b := newBuilder(t)
	coil := concentricCoil()
	coil.Bobbin.ColumnShape = corecad.ColumnRectangular
	coil.Turns[0].Coordinates = []float64{0.004, 0}

	_, err := b.BuildCoil(context.Background(), coil)
	if !errors.Is(err, corecad.ErrGeometry) {
		t.Errorf("error = %v, want ErrGeometry", err)
	}
}

func TestBuildCoilFoilSpansWindow(t *testing.T) {
	b := newBuilder(t)
	coil := concentricCoil()
	coil.Windings[0].Wire = corecad.WireSpec{
		Kind:            corecad.WireFoil,
		ConductingWidth: corecad.Nominal(0.0002),
	}
	turns, err := b.BuildCoil(context.Background(), coil)
	if err != nil {
		t.Fatalf("BuildCoil() error = %v", err)
	}
	size := turns[0].Solid.BoundingBox().Size()
	if math.Abs(size.Z-20) > 1e-6 {
		t.Errorf("foil turn height = %v, want the 20 mm window height", size.Z)
	}
}

func toroidalCoil() *corecad.CoilSpec {
	return &corecad.CoilSpec{
		Bobbin: corecad.BobbinSpec{
			ColumnShape: corecad.ColumnRound,
			ColumnDepth: 0.008,
			WindingWindows: []corecad.WindingWindow{
				{RadialHeight: 0.012, Angle: new(float64)},
			},
		},
		Windings: []corecad.WindingSpec{
			{Name: "primary", Wire: roundWire(0.001)},
		},
		Turns: []corecad.TurnSpec{
			{
				Winding:               "primary",
				Coordinates:           []float64{-0.010, 0},
				AdditionalCoordinates: [][]float64{{-0.022, 0}},
				Rotation:              math.Pi,
			},
		},
	}
}

func TestBuildCoilToroidalTurn(t *testing.T) {
	b := newBuilder(t)
	turns, err := b.BuildCoil(context.Background(), toroidalCoil())
	if err != nil {
		t.Fatalf("BuildCoil() error = %v", err)
	}

	// Loop center line: two radial runs of 12 and two axial runs of 16.
	perimeter := 2*12.0 + 2*16.0
	want := math.Pi * 0.5 * 0.5 * perimeter
	got := turns[0].Solid.Volume()
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("toroidal turn volume = %v, want about %v", got, want)
	}

	// Rotation pi keeps the layout side: inner run at x = -10.
	bb := turns[0].Solid.BoundingBox()
	if bb.Max.X > -10+1 || bb.Min.X < -22-1 {
		t.Errorf("turn x extent = [%v, %v], want near [-22, -10]", bb.Min.X, bb.Max.X)
	}
}

func TestBuildCoilToroidalTurnRotates(t *testing.T) {
	b := newBuilder(t)
	coil := toroidalCoil()
	coil.Turns[0].Rotation = 0

	turns, err := b.BuildCoil(context.Background(), coil)
	if err != nil {
		t.Fatalf("BuildCoil() error = %v", err)
	}
	bb := turns[0].Solid.BoundingBox()
	if bb.Min.X < 10-1 || bb.Max.X > 22+1 {
		t.Errorf("rotated turn x extent = [%v, %v], want near [10, 22]", bb.Min.X, bb.Max.X)
	}
}

func TestBuildCoilToroidalOuterInsideInner(t *testing.T) {
	b := newBuilder(t)
	coil := toroidalCoil()
	coil.Turns[0].AdditionalCoordinates = [][]float64{{-0.005, 0}}

	_, err := b.BuildCoil(context.Background(), coil)
	if !errors.Is(err, corecad.ErrGeometry) {
		t.Errorf("error = %v, want ErrGeometry", err)
	}
}

func TestBuildBobbinDimensions(t *testing.T) {
	b := newBuilder(t)
	bobbin := &corecad.BobbinSpec{
		ColumnShape:     corecad.ColumnRectangular,
		ColumnWidth:     0.010,
		ColumnDepth:     0.006,
		ColumnThickness: 0.001,
		WallThickness:   0.0005,
		WindingWindows: []corecad.WindingWindow{
			{Width: 0.008, Height: 0.020},
		},
	}

	solid, err := b.BuildBobbin(context.Background(), bobbin)
	if err != nil {
		t.Fatalf("BuildBobbin() error = %v", err)
	}
	bb := solid.BoundingBox()

	// Flanges reach one window width past the column on every side.
	if math.Abs(bb.Max.X-13) > 1e-9 || math.Abs(bb.Min.X+13) > 1e-9 {
		t.Errorf("x bounds = [%v, %v], want ±13", bb.Min.X, bb.Max.X)
	}
	if math.Abs(bb.Max.Y-11) > 1e-9 || math.Abs(bb.Min.Y+11) > 1e-9 {
		t.Errorf("y bounds = [%v, %v], want ±11", bb.Min.Y, bb.Max.Y)
	}
	// Window height plus a flange at either end.
	if math.Abs(bb.Max.Z-10.5) > 1e-9 || math.Abs(bb.Min.Z+10.5) > 1e-9 {
		t.Errorf("z bounds = [%v, %v], want ±10.5", bb.Min.Z, bb.Max.Z)
	}
}

func TestBuildBobbinRoundColumn(t *testing.T) {
	b := newBuilder(t)
	bobbin := &corecad.BobbinSpec{
		ColumnShape:     corecad.ColumnRound,
		ColumnWidth:     0.010,
		ColumnThickness: 0.001,
		WallThickness:   0.0005,
		WindingWindows: []corecad.WindingWindow{
			{Width: 0.008, Height: 0.020},
		},
	}

	solid, err := b.BuildBobbin(context.Background(), bobbin)
	if err != nil {
		t.Fatalf("BuildBobbin() error = %v", err)
	}
	bb := solid.BoundingBox()
	if math.Abs(bb.Max.X-13) > 0.05 || math.Abs(bb.Min.Y+13) > 0.05 {
		t.Errorf("flange bounds = [%v, %v], want ±13", bb.Min.Y, bb.Max.X)
	}
}

func TestBuildBobbinRejectsBadSpecs(t *testing.T) {
	b := newBuilder(t)
	window := []corecad.WindingWindow{{Width: 0.008, Height: 0.020}}
	cases := map[string]*corecad.BobbinSpec{
		"no window": {
			ColumnShape: corecad.ColumnRound, ColumnWidth: 0.010, ColumnThickness: 0.001,
		},
		"zero thickness": {
			ColumnShape: corecad.ColumnRound, ColumnWidth: 0.010, WindingWindows: window,
		},
		"thickness swallows column": {
			ColumnShape: corecad.ColumnRound, ColumnWidth: 0.010, ColumnThickness: 0.006,
			WindingWindows: window,
		},
	}
	for name, bobbin := range cases {
		if _, err := b.BuildBobbin(context.Background(), bobbin); !errors.Is(err, corecad.ErrConfiguration) {
			t.Errorf("%s: error = %v, want ErrConfiguration", name, err)
		}
	}
}
