package corecad

import (
	"encoding/json"
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseFamily(t *testing.T) {
	cases := []struct {
		in   string
		want Family
	}{
		{"E", FamilyE},
		{"etd", FamilyETD},
		{" PQ ", FamilyPQ},
		{"planar_e", FamilyPlanarE},
		{"Planar ER", FamilyPlanarER},
	}
	for _, c := range cases {
		if got := ParseFamily(c.in); got != c.want {
			t.Errorf("ParseFamily(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestShapeSpecJSON(t *testing.T) {
	raw := `{
		"name": "ETD 44/22/15",
		"family": "etd",
		"familySubtype": "1",
		"dimensions": {
			"A": 0.044,
			"B": {"minimum": 0.0215, "maximum": 0.0225}
		}
	}`
	var spec ShapeSpec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if spec.Family != FamilyETD {
		t.Errorf("Family = %q", spec.Family)
	}
	if spec.Subtype != 1 {
		t.Errorf("Subtype = %d, want 1", spec.Subtype)
	}
	if !spec.Dimensions.Has("A") || !spec.Dimensions.Has("B") {
		t.Error("dimensions not populated")
	}
}

func TestConvertAxis(t *testing.T) {
	got, err := ConvertAxis([]float64{1, 2})
	if err != nil {
		t.Fatalf("ConvertAxis(2): %v", err)
	}
	if got != (r3.Vec{X: 0, Y: 1, Z: 2}) {
		t.Errorf("ConvertAxis(2) = %v", got)
	}

	got, err = ConvertAxis([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("ConvertAxis(3): %v", err)
	}
	if got != (r3.Vec{X: 1, Y: 3, Z: 2}) {
		t.Errorf("ConvertAxis(3) = %v", got)
	}

	got, err = ConvertAxis(nil)
	if err != nil || got != (r3.Vec{}) {
		t.Errorf("ConvertAxis(nil) = %v, %v", got, err)
	}

	if _, err := ConvertAxis([]float64{1}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("ConvertAxis(1) error = %v, want ErrConfiguration", err)
	}
}

func halfSet() GeometricalPiece {
	return GeometricalPiece{Kind: PieceHalfSet, Shape: ShapeSpec{Family: FamilyE}}
}

func TestValidateHalfSetPair(t *testing.T) {
	a := CoreAssembly{Pieces: []GeometricalPiece{halfSet(), halfSet()}}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateToroid(t *testing.T) {
	a := CoreAssembly{Pieces: []GeometricalPiece{
		{Kind: PieceClosed, Shape: ShapeSpec{Family: FamilyT}},
	}}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateMixedKinds(t *testing.T) {
	a := CoreAssembly{Pieces: []GeometricalPiece{
		{Kind: PieceClosed, Shape: ShapeSpec{Family: FamilyT}},
		halfSet(),
	}}
	if err := a.Validate(); !errors.Is(err, ErrGeometry) {
		t.Errorf("Validate = %v, want ErrGeometry", err)
	}
}

func TestValidateEmpty(t *testing.T) {
	a := CoreAssembly{Pieces: []GeometricalPiece{{Kind: PieceSpacer}}}
	if err := a.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Validate = %v, want ErrConfiguration", err)
	}
}

func TestValidateUnknownKind(t *testing.T) {
	a := CoreAssembly{Pieces: []GeometricalPiece{{Kind: "sheet"}}}
	if err := a.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Validate = %v, want ErrConfiguration", err)
	}
}
