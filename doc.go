// Package corecad computes parametric geometry for magnetic-core parts and
// complete core+bobbin+coil assemblies from a declarative dimension schema.
//
// # Overview
//
// corecad turns abstract per-family dimension sets (the EN 60205 shape
// taxonomy: E, ETD, ER, EP, EPX, PQ, PM, P, RM, EQ, LP, EC, EFD, EL, U, UR,
// UT, C, T, plus the planar E variants) into concrete 2D profile boundaries,
// gap machining tool placement, winding-turn sweep geometry, and annotated
// 2D technical drawings.
//
// The library is organized into:
//   - corecad (root): dimension schema, dimension resolution, error taxonomy,
//     tessellation quality configuration
//   - profile: shape profile registry, one strategy per (family, subtype)
//   - assembly: piece extrusion, machining placement, core composition
//   - winding: turn and wire sweep composition
//   - drawing: view projection and dimension annotation layout
//   - kernel: the geometry-kernel capability interface and backend registry
//
// # Quick Start
//
//	spec := corecad.ShapeSpec{
//	    Family:  corecad.FamilyETD,
//	    Subtype: 1,
//	    Dimensions: corecad.Dimensions{
//	        "A": corecad.Nominal(0.044), "B": corecad.Nominal(0.022),
//	        "C": corecad.Nominal(0.015), "D": corecad.Nominal(0.0164),
//	        "E": corecad.Nominal(0.0325), "F": corecad.Nominal(0.0152),
//	    },
//	}
//	backend := kernel.Get(kernel.BackendAnalytic)
//	builder := assembly.New(backend)
//	defer builder.Close()
//	solid, err := builder.BuildShape(ctx, spec)
//
// # Units and Coordinates
//
// All consumed dimensions are meters and all angles are radians. Internally
// pieces are built in millimeters (scale 1000) to match manufacturer
// datasheets; kernel exports scale back as needed. The winding axis is Z for
// concentric cores and Y for toroids.
//
// # Concurrency
//
// All operations are pure functions of their inputs. The only process-wide
// state is the default tessellation [Quality] and the package logger, both
// stored atomically and intended to change only between requests.
package corecad
