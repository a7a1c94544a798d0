package corecad

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline stage at which an error occurred.
type Stage int

const (
	StageResolveDimensions Stage = iota
	StageBuildProfile
	StageComposePiece
	StageApplyMachining
	StageBuildTurn
	StageBuildBobbin
	StageProjectDrawing
)

func (s Stage) String() string {
	switch s {
	case StageResolveDimensions:
		return "resolve-dimensions"
	case StageBuildProfile:
		return "build-profile"
	case StageComposePiece:
		return "compose-piece"
	case StageApplyMachining:
		return "apply-machining"
	case StageBuildTurn:
		return "build-turn"
	case StageBuildBobbin:
		return "build-bobbin"
	case StageProjectDrawing:
		return "project-drawing"
	default:
		return "unknown"
	}
}

// Sentinel error categories. Match with errors.Is; the concrete
// ConfigurationError/GeometryError/KernelError values carry the stage and
// offending identifier.
var (
	// ErrConfiguration marks invalid input schema: unknown family or
	// subtype, missing or extra required dimension.
	ErrConfiguration = errors.New("corecad: configuration error")

	// ErrGeometry marks geometrically impossible requests: a gap tool that
	// severs its leg, a degenerate profile, a turn naming an undefined
	// winding.
	ErrGeometry = errors.New("corecad: geometry error")

	// ErrKernel marks opaque failures surfaced unchanged from the geometry
	// kernel backend.
	ErrKernel = errors.New("corecad: kernel error")
)

// ConfigurationError reports invalid input schema. It satisfies
// errors.Is(err, ErrConfiguration).
type ConfigurationError struct {
	Stage   Stage
	Subject string // family name, dimension axis, or backend name
	Detail  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("corecad: %s: %s: %s", e.Stage, e.Subject, e.Detail)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// GeometryError reports a geometrically impossible request. It satisfies
// errors.Is(err, ErrGeometry).
type GeometryError struct {
	Stage   Stage
	Subject string // piece index, winding name, or leg selector
	Detail  string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("corecad: %s: %s: %s", e.Stage, e.Subject, e.Detail)
}

func (e *GeometryError) Is(target error) bool { return target == ErrGeometry }

// KernelError wraps a failure from the geometry kernel unchanged. It
// satisfies errors.Is(err, ErrKernel) and unwraps to the backend's error.
type KernelError struct {
	Stage   Stage
	Backend string
	Err     error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("corecad: %s: backend %s: %v", e.Stage, e.Backend, e.Err)
}

func (e *KernelError) Is(target error) bool { return target == ErrKernel }

func (e *KernelError) Unwrap() error { return e.Err }
