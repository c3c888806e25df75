package pipeline

// Phase identifies one step of the run state machine.
type Phase string

const (
	PhaseLoad             Phase = "load"
	PhaseValidate         Phase = "validate"
	PhaseAnalyze          Phase = "analyze"
	PhaseAggregatePSF     Phase = "aggregate_psf"
	PhaseAggregateScience Phase = "aggregate_science"
	PhaseNormalize        Phase = "normalize"
	PhaseDone             Phase = "done"
)

// RunStatus is the terminal status of a run.
type RunStatus string

const (
	// StatusCompleted means every phase the run entered finished.
	StatusCompleted RunStatus = "completed"
	// StatusAborted means validation found no science members and the
	// run ended cleanly without invoking any stage.
	StatusAborted RunStatus = "aborted"
	// StatusFailed means a stage, blend, or persist call failed.
	StatusFailed RunStatus = "failed"
)
