package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ssmith-git/jwst/internal/association"
	"github.com/ssmith-git/jwst/internal/datamodel"
)

// Controller runs the level-3 AMI pipeline over one association at a
// time. Runs share no mutable state; a single Controller may be reused
// for consecutive runs.
type Controller struct {
	stages Stages
	opts   Options
	logger *slog.Logger
	tracer *Tracer
}

// NewController creates a Controller. The logger is scoped to the
// controller rather than taken from process-wide state, so concurrent
// controllers never interleave configuration. A nil tracer disables
// instrumentation.
func NewController(stages Stages, opts Options, logger *slog.Logger, tracer *Tracer) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.AnalyzeConcurrency < 1 {
		opts.AnalyzeConcurrency = 1
	}
	return &Controller{
		stages: stages,
		opts:   opts,
		logger: logger.With(slog.String("component", "ami3_pipeline")),
		tracer: tracer,
	}
}

// Run executes the pipeline for one association.
//
// The returned Outcome always describes the terminal state. A soft abort
// (no science members) returns a nil error with StatusAborted; every
// other shortfall is a *RunError and StatusFailed.
func (c *Controller) Run(ctx context.Context, asn *association.Association) (*Outcome, error) {
	runID := uuid.NewString()
	logger := c.logger.With(
		slog.String("run_id", runID),
		slog.String("association_id", asn.ID),
	)
	start := time.Now()

	ctx, span := c.tracer.StartRun(ctx, runID, asn.ID)
	defer span.End()

	outcome := &Outcome{
		RunID:         runID,
		AssociationID: asn.ID,
		Status:        StatusFailed,
		Phase:         PhaseLoad,
	}
	finish := func(err error) (*Outcome, error) {
		outcome.Duration = time.Since(start)
		c.tracer.RecordOutcome(ctx, span, outcome, outcome.Duration, err)
		return outcome, err
	}

	logger.InfoContext(ctx, "run_started",
		slog.String("pool", asn.Pool),
		slog.String("table", asn.TableName))

	// Load: the pipeline processes the association's first product.
	if len(asn.Products) == 0 {
		err := NewRunError(KindValidation, PhaseLoad, asn.ID,
			"association defines no products", nil)
		logger.ErrorContext(ctx, "run_failed", slog.String("error", err.Error()))
		return finish(err)
	}
	product := asn.Products[0]
	state := newRunState(c.outputBase(asn, product))

	// Validate: role counts come from the original member list, before
	// any analysis populates the accumulators.
	c.transition(ctx, logger, state, outcome, PhaseValidate)
	scienceCount, psfCount := product.CountRoles()
	if scienceCount == 0 {
		logger.ErrorContext(ctx, "no_science_members",
			slog.Int("member_count", len(product.Members)))
		logger.ErrorContext(ctx, "run_aborted",
			slog.String("reason", "no science target members in association"))
		outcome.Status = StatusAborted
		return finish(nil)
	}
	if psfCount == 0 {
		logger.InfoContext(ctx, "no_psf_members")
		logger.InfoContext(ctx, "normalize_will_be_skipped")
		outcome.Degraded = true
	}

	// Analyze every member in order, persisting each result and
	// partitioning the artifacts by role.
	c.transition(ctx, logger, state, outcome, PhaseAnalyze)
	memberRefs, err := c.analyzeMembers(ctx, logger, asn, product)
	if err != nil {
		logger.ErrorContext(ctx, "run_failed", slog.String("error", err.Error()))
		return finish(err)
	}
	outcome.MemberArtifacts = memberRefs
	c.tracer.RecordMembersAnalyzed(ctx, len(memberRefs))
	for i, member := range product.Members {
		switch member.Role() {
		case association.RoleScience:
			state.scienceArtifacts = append(state.scienceArtifacts, memberRefs[i])
		case association.RolePSF:
			state.psfArtifacts = append(state.psfArtifacts, memberRefs[i])
		default:
			logger.DebugContext(ctx, "member_not_aggregated",
				slog.String("exposure", member.ExpName),
				slog.String("exptype", member.ExpType))
		}
	}

	// Average the PSF reference results, when any exist.
	if len(state.psfArtifacts) > 0 {
		c.transition(ctx, logger, state, outcome, PhaseAggregatePSF)
		state.psfAggregate, err = c.aggregate(ctx, logger, asn, state,
			PhaseAggregatePSF, state.psfArtifacts, datamodel.SuffixPSFAvg, outcome)
		if err != nil {
			logger.ErrorContext(ctx, "run_failed", slog.String("error", err.Error()))
			return finish(err)
		}
	}

	// Average the science target results. The validate gate guarantees
	// at least one science artifact here.
	c.transition(ctx, logger, state, outcome, PhaseAggregateScience)
	state.scienceAggregate, err = c.aggregate(ctx, logger, asn, state,
		PhaseAggregateScience, state.scienceArtifacts, datamodel.SuffixAmiAvg, outcome)
	if err != nil {
		logger.ErrorContext(ctx, "run_failed", slog.String("error", err.Error()))
		return finish(err)
	}

	// Normalize by the reference aggregate when one was produced. This
	// consumes the in-memory aggregates regardless of SaveAverages.
	if state.psfAggregate != nil {
		c.transition(ctx, logger, state, outcome, PhaseNormalize)
		if err := c.normalize(ctx, logger, asn, state, outcome); err != nil {
			logger.ErrorContext(ctx, "run_failed", slog.String("error", err.Error()))
			return finish(err)
		}
		outcome.Normalized = true
	} else {
		logger.InfoContext(ctx, "normalize_skipped_no_reference")
	}

	c.transition(ctx, logger, state, outcome, PhaseDone)
	outcome.Status = StatusCompleted
	logger.InfoContext(ctx, "run_completed",
		slog.Int("member_count", len(memberRefs)),
		slog.Bool("normalized", outcome.Normalized),
		slog.Bool("degraded", outcome.Degraded))
	return finish(nil)
}

// outputBase picks the base name for aggregate and normalized products:
// the product's own name when set, then the configured base, then the
// association ID.
func (c *Controller) outputBase(asn *association.Association, product association.Product) string {
	if product.Name != "" {
		return product.Name
	}
	if c.opts.OutputBase != "" {
		return c.opts.OutputBase
	}
	return asn.ID
}

func (c *Controller) transition(ctx context.Context, logger *slog.Logger, state *runState, outcome *Outcome, phase Phase) {
	state.phase = phase
	outcome.Phase = phase
	c.tracer.PhaseEvent(ctx, phase)
	logger.DebugContext(ctx, "phase_entered", slog.String("phase", string(phase)))
}

// analyzeMembers runs fringe analysis for every member, persists each
// result, and returns the artifact references indexed by member position.
// Analysis may run with bounded parallelism; results are placed by index
// so downstream ordering never depends on completion order.
func (c *Controller) analyzeMembers(ctx context.Context, logger *slog.Logger, asn *association.Association, product association.Product) ([]datamodel.ArtifactRef, error) {
	refs := make([]datamodel.ArtifactRef, len(product.Members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.AnalyzeConcurrency)

	for i, member := range product.Members {
		i, member := i, member
		g.Go(func() error {
			logger.DebugContext(gctx, "analyzing_member",
				slog.String("exposure", member.ExpName),
				slog.String("exptype", member.ExpType))

			result, err := c.stages.Analyzer.Analyze(gctx, member.ExpName)
			if err != nil {
				return NewRunError(KindStage, PhaseAnalyze, member.ExpName,
					"fringe analysis failed", err)
			}

			result.StampProvenance(asn.Pool, asn.TableName, asn.ID)

			ref, err := c.stages.Persister.Save(result, member.ExpName, datamodel.SuffixAmi, asn.ID)
			if err != nil {
				return NewRunError(KindPersist, PhaseAnalyze, member.ExpName,
					"saving analysis result failed", err)
			}
			refs[i] = ref

			logger.InfoContext(gctx, "analysis_saved",
				slog.String("exposure", member.ExpName),
				slog.String("artifact", string(ref)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// aggregate averages one role's artifacts. When SaveAverages is set the
// aggregate is stamped, blended against its ordered inputs, and persisted;
// otherwise it is held in memory only.
func (c *Controller) aggregate(ctx context.Context, logger *slog.Logger, asn *association.Association, state *runState, phase Phase, refs []datamodel.ArtifactRef, suffix string, outcome *Outcome) (*datamodel.AmiResult, error) {
	logger.DebugContext(ctx, "averaging_results",
		slog.String("suffix", suffix),
		slog.Int("input_count", len(refs)))

	aggregate, err := c.stages.Averager.Average(ctx, refs)
	if err != nil {
		return nil, NewRunError(KindStage, phase, suffix, "averaging failed", err)
	}
	aggregate.Name = state.outputBase + "_" + suffix

	if !c.opts.SaveAverages {
		return aggregate, nil
	}

	aggregate.StampProvenance(asn.Pool, asn.TableName, asn.ID)

	inputs := make([]datamodel.BlendInput, len(refs))
	for i, ref := range refs {
		inputs[i] = datamodel.FromRef(ref)
	}
	logger.InfoContext(ctx, "blending_average_metadata",
		slog.String("target", aggregate.Name))
	if err := c.stages.Blender.Blend(aggregate, inputs); err != nil {
		return nil, NewRunError(KindBlend, phase, aggregate.Name,
			"metadata blend failed", err)
	}

	ref, err := c.stages.Persister.Save(aggregate, state.outputBase, suffix, asn.ID)
	if err != nil {
		return nil, NewRunError(KindPersist, phase, aggregate.Name,
			"saving averaged result failed", err)
	}
	outcome.AverageArtifacts = append(outcome.AverageArtifacts, ref)

	logger.InfoContext(ctx, "average_saved", slog.String("artifact", string(ref)))
	return aggregate, nil
}

// normalize corrects the science aggregate by the PSF aggregate and
// persists the result. The blended lineage is exactly the science
// aggregate followed by the reference aggregate.
func (c *Controller) normalize(ctx context.Context, logger *slog.Logger, asn *association.Association, state *runState, outcome *Outcome) error {
	normalized, err := c.stages.Normalizer.Normalize(ctx, state.scienceAggregate, state.psfAggregate)
	if err != nil {
		return NewRunError(KindStage, PhaseNormalize, state.outputBase,
			"normalization failed", err)
	}
	normalized.Name = state.outputBase + "_" + datamodel.SuffixAmiNorm
	normalized.StampProvenance(asn.Pool, asn.TableName, asn.ID)

	logger.InfoContext(ctx, "blending_normalized_metadata",
		slog.String("target", normalized.Name))
	inputs := []datamodel.BlendInput{
		datamodel.FromResult(state.scienceAggregate),
		datamodel.FromResult(state.psfAggregate),
	}
	if err := c.stages.Blender.Blend(normalized, inputs); err != nil {
		return NewRunError(KindBlend, PhaseNormalize, normalized.Name,
			"metadata blend failed", err)
	}

	ref, err := c.stages.Persister.Save(normalized, state.outputBase, datamodel.SuffixAmiNorm, asn.ID)
	if err != nil {
		return NewRunError(KindPersist, PhaseNormalize, normalized.Name,
			"saving normalized result failed", err)
	}
	outcome.NormalizedArtifact = ref

	logger.InfoContext(ctx, "normalized_saved", slog.String("artifact", string(ref)))
	normalized.Close()
	return nil
}
