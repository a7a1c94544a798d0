package corecad

// WireKind is the conductor cross-section taxonomy.
type WireKind string

const (
	WireRound       WireKind = "round"
	WireLitz        WireKind = "litz"
	WireRectangular WireKind = "rectangular"
	WireFoil        WireKind = "foil"
)

// WireSpec describes one conductor. Round and litz wires populate the
// diameters; rectangular and foil wires populate widths and heights. Litz
// wire sweeps by its outer diameter like round wire; the strand bundle is
// not modeled at this layer.
type WireSpec struct {
	Kind               WireKind       `json:"type"`
	ConductingDiameter DimensionValue `json:"conductingDiameter,omitempty"`
	OuterDiameter      DimensionValue `json:"outerDiameter,omitempty"`
	ConductingWidth    DimensionValue `json:"conductingWidth,omitempty"`
	ConductingHeight   DimensionValue `json:"conductingHeight,omitempty"`
	OuterWidth         DimensionValue `json:"outerWidth,omitempty"`
	OuterHeight        DimensionValue `json:"outerHeight,omitempty"`
	NumberConductors   int            `json:"numberConductors,omitempty"`
}

// TurnSpec describes one physical conductor turn.
//
// Coordinates semantics depend on core topology: for concentric cores they
// are (radial position, height) in the winding window; for toroidal cores
// they are Cartesian (x, z) of the conductor center in the bore plane, with
// AdditionalCoordinates carrying the matching outer position.
type TurnSpec struct {
	Winding               string      `json:"winding"`
	Coordinates           []float64   `json:"coordinates"`
	AdditionalCoordinates [][]float64 `json:"additionalCoordinates,omitempty"`
	Length                float64     `json:"length,omitempty"`
	Parallel              int         `json:"parallel"`
	Rotation              float64     `json:"rotation,omitempty"` // angular position on a toroid, radians
}

// WindingWindow is one open rectangle (or annular sector, for toroids)
// available for conductor turns.
type WindingWindow struct {
	Width        float64  `json:"width,omitempty"`
	Height       float64  `json:"height,omitempty"`
	RadialHeight float64  `json:"radialHeight,omitempty"`
	Angle        *float64 `json:"angle,omitempty"`
}

// ColumnShape is the bobbin center-column cross-section.
type ColumnShape string

const (
	ColumnRound       ColumnShape = "round"
	ColumnRectangular ColumnShape = "rectangular"
)

// BobbinSpec is the processed bobbin description a coil is wound on.
type BobbinSpec struct {
	ColumnShape     ColumnShape     `json:"columnShape"`
	ColumnDepth     float64         `json:"columnDepth"`
	ColumnWidth     float64         `json:"columnWidth"`
	ColumnThickness float64         `json:"columnThickness"`
	WallThickness   float64         `json:"wallThickness"`
	WindingWindows  []WindingWindow `json:"windingWindows"`
}

// Window returns the first winding window, or a zero window when none is
// declared.
func (b *BobbinSpec) Window() WindingWindow {
	if len(b.WindingWindows) == 0 {
		return WindingWindow{}
	}
	return b.WindingWindows[0]
}

// WindingSpec names one electrical winding and the conductor it is wound
// with.
type WindingSpec struct {
	Name string   `json:"name"`
	Wire WireSpec `json:"wire"`
}

// CoilSpec is a complete coil description: the bobbin the turns sit on, the
// declared windings, and the physical turns in electrical order.
type CoilSpec struct {
	Bobbin   BobbinSpec    `json:"bobbin"`
	Windings []WindingSpec `json:"functionalDescription"`
	Turns    []TurnSpec    `json:"turnsDescription"`
}
