package corecad

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStageStrings(t *testing.T) {
	cases := map[Stage]string{
		StageResolveDimensions: "resolve-dimensions",
		StageBuildProfile:      "build-profile",
		StageComposePiece:      "compose-piece",
		StageApplyMachining:    "apply-machining",
		StageBuildTurn:         "build-turn",
		StageBuildBobbin:       "build-bobbin",
		StageProjectDrawing:    "project-drawing",
		Stage(99):              "unknown",
	}
	for stage, want := range cases {
		if got := stage.String(); got != want {
			t.Errorf("Stage(%d).String() = %q, want %q", stage, got, want)
		}
	}
}

func TestErrorCategories(t *testing.T) {
	var err error = &ConfigurationError{Stage: StageBuildProfile, Subject: "xx", Detail: "unknown shape family"}
	if !errors.Is(err, ErrConfiguration) {
		t.Error("ConfigurationError does not match ErrConfiguration")
	}
	if errors.Is(err, ErrGeometry) {
		t.Error("ConfigurationError matches ErrGeometry")
	}

	err = &GeometryError{Stage: StageApplyMachining, Subject: "e", Detail: "gap would sever the piece"}
	if !errors.Is(err, ErrGeometry) {
		t.Error("GeometryError does not match ErrGeometry")
	}
}

func TestErrorCategoriesSurviveWrapping(t *testing.T) {
	inner := &GeometryError{Stage: StageComposePiece, Subject: "core", Detail: "bad"}
	err := fmt.Errorf("piece 2: %w", inner)
	if !errors.Is(err, ErrGeometry) {
		t.Error("wrapped GeometryError does not match ErrGeometry")
	}
	var g *GeometryError
	if !errors.As(err, &g) || g.Subject != "core" {
		t.Error("wrapped GeometryError not recoverable with errors.As")
	}
}

func TestKernelErrorUnwrap(t *testing.T) {
	cause := errors.New("backend exploded")
	err := &KernelError{Stage: StageBuildProfile, Backend: "analytic", Err: cause}
	if !errors.Is(err, ErrKernel) {
		t.Error("KernelError does not match ErrKernel")
	}
	if !errors.Is(err, cause) {
		t.Error("KernelError does not unwrap to its cause")
	}
}

func TestErrorMessagesNameStageAndSubject(t *testing.T) {
	err := &ConfigurationError{Stage: StageResolveDimensions, Subject: "F", Detail: "required dimension missing"}
	msg := err.Error()
	for _, part := range []string{"resolve-dimensions", "F", "required dimension missing"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q missing %q", msg, part)
		}
	}
}
