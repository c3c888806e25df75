package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "jwst.ami3"

// Tracer provides OpenTelemetry instrumentation for pipeline runs. A nil
// *Tracer is valid and records nothing.
type Tracer struct {
	tracer trace.Tracer

	runsTotal       metric.Int64Counter
	membersAnalyzed metric.Int64Counter
	runDuration     metric.Float64Histogram
}

// NewTracer creates a Tracer against the global otel providers. Without a
// configured provider the instruments are no-ops.
func NewTracer() (*Tracer, error) {
	meter := otel.Meter(tracerName)

	runsTotal, err := meter.Int64Counter("ami3.runs.total",
		metric.WithDescription("Completed pipeline runs by status"))
	if err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}
	membersAnalyzed, err := meter.Int64Counter("ami3.members.analyzed",
		metric.WithDescription("Association members analyzed"))
	if err != nil {
		return nil, fmt.Errorf("create members counter: %w", err)
	}
	runDuration, err := meter.Float64Histogram("ami3.run.duration_seconds",
		metric.WithDescription("Pipeline run duration"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return &Tracer{
		tracer:          otel.Tracer(tracerName),
		runsTotal:       runsTotal,
		membersAnalyzed: membersAnalyzed,
		runDuration:     runDuration,
	}, nil
}

// StartRun starts the span covering an entire run.
func (t *Tracer) StartRun(ctx context.Context, runID, asnID string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "ami3.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("association.id", asnID),
		),
	)
}

// PhaseEvent records a phase transition on the run span.
func (t *Tracer) PhaseEvent(ctx context.Context, phase Phase) {
	if t == nil {
		return
	}
	trace.SpanFromContext(ctx).AddEvent("phase",
		trace.WithAttributes(attribute.String("phase", string(phase))))
}

// RecordMembersAnalyzed counts analyzed members.
func (t *Tracer) RecordMembersAnalyzed(ctx context.Context, n int) {
	if t == nil {
		return
	}
	t.membersAnalyzed.Add(ctx, int64(n))
}

// RecordOutcome finishes span and metric recording for a run.
func (t *Tracer) RecordOutcome(ctx context.Context, span trace.Span, outcome *Outcome, duration time.Duration, err error) {
	if t == nil {
		return
	}

	span.SetAttributes(
		attribute.String("run.status", string(outcome.Status)),
		attribute.String("run.phase", string(outcome.Phase)),
		attribute.Bool("run.degraded", outcome.Degraded),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	attrs := metric.WithAttributes(attribute.String("status", string(outcome.Status)))
	t.runsTotal.Add(ctx, 1, attrs)
	t.runDuration.Record(ctx, duration.Seconds(), attrs)
}
