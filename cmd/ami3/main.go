// Command ami3 runs the level-3 AMI calibration pipeline over one
// association table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ssmith-git/jwst/internal/ami"
	"github.com/ssmith-git/jwst/internal/association"
	"github.com/ssmith-git/jwst/internal/config"
	"github.com/ssmith-git/jwst/internal/datamodel"
	"github.com/ssmith-git/jwst/internal/infrastructure"
	"github.com/ssmith-git/jwst/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	asnPath := flag.String("asn", "", "path to the association table (required)")
	configPath := flag.String("config", "", "path to a YAML config file")
	inputDir := flag.String("in", "", "directory holding calibrated exposures (overrides config)")
	outputDir := flag.String("out", "", "directory for pipeline products (overrides config)")
	saveAverages := flag.Bool("save-averages", false, "also persist the per-role averaged products")
	traces := flag.Bool("traces", false, "print OpenTelemetry spans to stderr")
	flag.Parse()

	if *asnPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ami3 -asn <association.json> [-config file] [-in dir] [-out dir]")
		return 2
	}

	// A local .env may carry AMI3_* overrides; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	if *inputDir != "" {
		cfg.Paths.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}
	if *saveAverages {
		cfg.Pipeline.SaveAverages = true
	}

	logger, logCloser, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	traceOut := io.Writer(io.Discard)
	if *traces {
		traceOut = os.Stderr
	}
	providers, err := infrastructure.InitializeOTel(ctx, logger, traceOut)
	if err != nil {
		logger.ErrorContext(ctx, "otel_init_failed", slog.String("error", err.Error()))
		return 1
	}
	defer providers.Shutdown(context.Background())

	tracer, err := pipeline.NewTracer()
	if err != nil {
		logger.ErrorContext(ctx, "tracer_init_failed", slog.String("error", err.Error()))
		return 1
	}

	asn, err := association.NewLoader().LoadFile(*asnPath)
	if err != nil {
		logger.ErrorContext(ctx, "association_load_failed",
			slog.String("path", *asnPath),
			slog.String("error", err.Error()))
		return 1
	}

	store, err := datamodel.NewFileStore(cfg.Paths.OutputDir, logger)
	if err != nil {
		logger.ErrorContext(ctx, "store_init_failed", slog.String("error", err.Error()))
		return 1
	}

	stages := pipeline.Stages{
		Analyzer:   ami.NewAnalyzeStage(cfg.Paths.InputDir, logger),
		Averager:   ami.NewAverageStage(store, logger),
		Normalizer: ami.NewNormalizeStage(logger),
		Blender:    datamodel.NewBlender(store, logger),
		Persister:  store,
	}
	opts := pipeline.Options{
		SaveAverages:       cfg.Pipeline.SaveAverages,
		AnalyzeConcurrency: cfg.Pipeline.AnalyzeConcurrency,
		OutputBase:         cfg.Pipeline.OutputBase,
	}

	controller := pipeline.NewController(stages, opts, logger, tracer)
	outcome, err := controller.Run(ctx, asn)
	if err != nil {
		var runErr *pipeline.RunError
		if errors.As(err, &runErr) {
			logger.ErrorContext(ctx, "pipeline_failed",
				slog.String("kind", string(runErr.Kind)),
				slog.String("phase", string(runErr.Phase)))
		}
		return 1
	}

	logger.InfoContext(ctx, "pipeline_finished",
		slog.String("run_id", outcome.RunID),
		slog.String("status", string(outcome.Status)),
		slog.Bool("normalized", outcome.Normalized),
		slog.Duration("duration", outcome.Duration))
	return 0
}
