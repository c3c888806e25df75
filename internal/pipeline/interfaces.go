package pipeline

import (
	"context"

	"github.com/ssmith-git/jwst/internal/datamodel"
)

// Analyzer performs fringe analysis on one calibrated exposure.
type Analyzer interface {
	Analyze(ctx context.Context, expName string) (*datamodel.AmiResult, error)
}

// Averager combines same-role persisted analysis results into one
// averaged result. The input order is the order the artifacts were
// accumulated in and must be respected.
type Averager interface {
	Average(ctx context.Context, refs []datamodel.ArtifactRef) (*datamodel.AmiResult, error)
}

// Normalizer corrects an averaged science result by an averaged PSF
// reference result.
type Normalizer interface {
	Normalize(ctx context.Context, science, reference *datamodel.AmiResult) (*datamodel.AmiResult, error)
}

// Blender merges provenance metadata from the ordered list of inputs
// into the target result, mutating it in place.
type Blender interface {
	Blend(target *datamodel.AmiResult, inputs []datamodel.BlendInput) error
}

// Persister writes a result as <base>_<suffix> and returns a stable
// reference to the written artifact.
type Persister interface {
	Save(result *datamodel.AmiResult, baseName, suffix, asnID string) (datamodel.ArtifactRef, error)
}

// Stages bundles the collaborators a Controller orchestrates.
type Stages struct {
	Analyzer   Analyzer
	Averager   Averager
	Normalizer Normalizer
	Blender    Blender
	Persister  Persister
}
