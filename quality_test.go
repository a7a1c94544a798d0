package corecad

import "testing"

func TestDefaultQuality(t *testing.T) {
	q := DefaultQuality()
	if q.Tolerance != DefaultTolerance {
		t.Errorf("Tolerance = %v, want %v", q.Tolerance, DefaultTolerance)
	}
	if q.AngularDeflection != DefaultAngularDeflection {
		t.Errorf("AngularDeflection = %v, want %v", q.AngularDeflection, DefaultAngularDeflection)
	}
}

func TestSetDefaultQuality(t *testing.T) {
	orig := DefaultQuality()
	defer SetDefaultQuality(orig)

	SetDefaultQuality(Quality{Tolerance: 0.01, AngularDeflection: 0.2})
	if got := DefaultQuality(); got.Tolerance != 0.01 || got.AngularDeflection != 0.2 {
		t.Errorf("DefaultQuality() = %+v", got)
	}

	// Non-positive fields fall back to the stock values.
	SetDefaultQuality(Quality{Tolerance: -1})
	if got := DefaultQuality(); got.Tolerance != DefaultTolerance || got.AngularDeflection != DefaultAngularDeflection {
		t.Errorf("DefaultQuality() after invalid set = %+v", got)
	}
}
