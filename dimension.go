package corecad

import (
	"encoding/json"
	"fmt"
	"math"
)

// DimensionValue is one named dimension of a shape. Exactly one of the three
// encodings is populated: an exact number, a nominal value, or a
// (minimum, maximum) tolerance range.
//
// The JSON forms accepted are the MAS schema forms:
//
//	0.042
//	{"nominal": 0.042}
//	{"minimum": 0.041, "maximum": 0.043}
type DimensionValue struct {
	Nominal *float64 `json:"nominal,omitempty"`
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// Nominal returns a DimensionValue holding a single nominal value.
func Nominal(v float64) DimensionValue {
	return DimensionValue{Nominal: &v}
}

// Range returns a DimensionValue holding a (minimum, maximum) tolerance
// range. It resolves to the arithmetic mean.
func Range(minimum, maximum float64) DimensionValue {
	return DimensionValue{Minimum: &minimum, Maximum: &maximum}
}

// IsZero reports whether no encoding is populated.
func (v DimensionValue) IsZero() bool {
	return v.Nominal == nil && v.Minimum == nil && v.Maximum == nil
}

// Resolve normalizes the value to a single float and applies scale.
// A range resolves to (minimum+maximum)/2 rounded to six decimals before
// scaling, matching datasheet nominal precision. A value with no populated
// encoding resolves with a ConfigurationError.
func (v DimensionValue) Resolve(scale float64) (float64, error) {
	switch {
	case v.Nominal != nil:
		return *v.Nominal * scale, nil
	case v.Minimum != nil && v.Maximum != nil:
		return round6((*v.Minimum+*v.Maximum)/2) * scale, nil
	case v.Minimum != nil:
		return *v.Minimum * scale, nil
	case v.Maximum != nil:
		return *v.Maximum * scale, nil
	default:
		return 0, &ConfigurationError{
			Stage:   StageResolveDimensions,
			Subject: "dimension",
			Detail:  "neither nominal nor range populated",
		}
	}
}

// round6 rounds to six decimal places.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// UnmarshalJSON accepts both the object form and a bare number.
func (v *DimensionValue) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		v.Nominal = &n
		v.Minimum = nil
		v.Maximum = nil
		return nil
	}

	type plain DimensionValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("dimension value: %w", err)
	}
	*v = DimensionValue(p)
	return nil
}

// MarshalJSON emits the bare number form for pure nominal values and the
// object form otherwise.
func (v DimensionValue) MarshalJSON() ([]byte, error) {
	if v.Nominal != nil && v.Minimum == nil && v.Maximum == nil {
		return json.Marshal(*v.Nominal)
	}
	type plain DimensionValue
	return json.Marshal(plain(v))
}

// Dimensions maps dimension axis names ("A", "B", ... per EN 60205 drawings)
// to their values.
type Dimensions map[string]DimensionValue

// Flatten resolves every axis to a single scaled float. The angular "alpha"
// axis is excluded from the result; families that consume it apply their own
// subtype defaults. Axis resolution failures name the axis.
func (d Dimensions) Flatten(scale float64) (map[string]float64, error) {
	out := make(map[string]float64, len(d))
	for name, value := range d {
		if name == "alpha" {
			continue
		}
		resolved, err := value.Resolve(scale)
		if err != nil {
			return nil, &ConfigurationError{
				Stage:   StageResolveDimensions,
				Subject: name,
				Detail:  "neither nominal nor range populated",
			}
		}
		out[name] = resolved
	}
	return out, nil
}

// Has reports whether axis name is present with a strictly positive
// resolved value. Optional dimensions (center holes, dents) are modeled as
// absent-or-zero throughout the profile strategies.
func (d Dimensions) Has(name string) bool {
	v, ok := d[name]
	if !ok || v.IsZero() {
		return false
	}
	r, err := v.Resolve(1)
	return err == nil && r > 0
}
