// Package pipeline contains the level-3 AMI pipeline controller.
//
// The controller owns the orchestration only: it partitions association
// members by role, runs fringe analysis once per member, aggregates the
// persisted results per role, and normalizes the science aggregate by the
// PSF reference aggregate when one exists. The numerical stages, the
// product store, and the metadata blender are collaborators behind
// interfaces, so the control flow is testable against stubs.
//
// A run moves through an explicit phase sequence:
//
//	load -> validate -> analyze -> [aggregate_psf ->] aggregate_science
//	     -> [normalize ->] done
//
// Validation can also end the run early: an association with no science
// members is a soft abort (logged, no error), and an association with no
// PSF members degrades the run by skipping normalization.
package pipeline
