package pipeline

import (
	"time"

	"github.com/ssmith-git/jwst/internal/datamodel"
)

// Options configures a Controller.
type Options struct {
	// SaveAverages writes the per-role averaged products to the store in
	// addition to holding them in memory for normalization.
	SaveAverages bool

	// AnalyzeConcurrency bounds how many members are analyzed at once.
	// Values below 1 mean sequential. Accumulator order is always the
	// member order regardless of this setting.
	AnalyzeConcurrency int

	// OutputBase names aggregate and normalized products when the
	// association product carries no name of its own. Falls back to the
	// association ID when empty.
	OutputBase string
}

// DefaultOptions returns the default controller configuration.
func DefaultOptions() Options {
	return Options{
		SaveAverages:       false,
		AnalyzeConcurrency: 1,
	}
}

// Outcome reports how a run ended.
type Outcome struct {
	RunID         string        `json:"run_id"`
	AssociationID string        `json:"association_id"`
	Status        RunStatus     `json:"status"`
	Phase         Phase         `json:"phase"`
	Duration      time.Duration `json:"duration"`

	// Degraded is set when the association carried no PSF members and
	// normalization was skipped.
	Degraded bool `json:"degraded"`
	// Normalized is set when the normalize phase ran.
	Normalized bool `json:"normalized"`

	MemberArtifacts    []datamodel.ArtifactRef `json:"member_artifacts,omitempty"`
	AverageArtifacts   []datamodel.ArtifactRef `json:"average_artifacts,omitempty"`
	NormalizedArtifact datamodel.ArtifactRef   `json:"normalized_artifact,omitempty"`
}

// runState is the controller-internal accumulator state for one run.
// It is created empty at run start and discarded at run end.
type runState struct {
	phase      Phase
	outputBase string

	// Per-role artifact accumulators, in member order. A member whose
	// role matches neither tracked role is analyzed but lands in
	// neither list.
	scienceArtifacts []datamodel.ArtifactRef
	psfArtifacts     []datamodel.ArtifactRef

	scienceAggregate *datamodel.AmiResult
	psfAggregate     *datamodel.AmiResult
}

func newRunState(outputBase string) *runState {
	return &runState{
		phase:      PhaseLoad,
		outputBase: outputBase,
	}
}
