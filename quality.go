package corecad

import "sync/atomic"

// Quality controls tessellation of curved geometry into mesh artifacts.
// It is threaded explicitly through every tessellating kernel call; the
// package-level default exists only as the value requests start from.
type Quality struct {
	// Tolerance is the maximum chordal deviation between a curved face and
	// its tessellation, in working units.
	Tolerance float64

	// AngularDeflection is the maximum angle between adjacent facet
	// normals, in radians.
	AngularDeflection float64
}

// DefaultTolerance and DefaultAngularDeflection are the stock mesh quality
// for exported artifacts.
const (
	DefaultTolerance         = 0.1
	DefaultAngularDeflection = 0.5
)

var qualityPtr atomic.Pointer[Quality]

func init() {
	q := Quality{Tolerance: DefaultTolerance, AngularDeflection: DefaultAngularDeflection}
	qualityPtr.Store(&q)
}

// DefaultQuality returns the process-wide tessellation quality new requests
// start from.
func DefaultQuality() Quality {
	return *qualityPtr.Load()
}

// SetDefaultQuality replaces the process-wide tessellation quality. It must
// only be called between requests: a generation in flight keeps the Quality
// value it was started with.
func SetDefaultQuality(q Quality) {
	if q.Tolerance <= 0 {
		q.Tolerance = DefaultTolerance
	}
	if q.AngularDeflection <= 0 {
		q.AngularDeflection = DefaultAngularDeflection
	}
	qualityPtr.Store(&q)
}
