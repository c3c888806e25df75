package ami

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/ssmith-git/jwst/internal/datamodel"
)

// A 7-hole non-redundant mask gives 21 distinct baselines; closure phases
// are formed over consecutive baseline triples.
const (
	numBaselines = 21
	numTriangles = numBaselines - 2
)

// Exposure is a calibrated input image as read from disk.
type Exposure struct {
	Name   string    `json:"name"`
	Pixels []float64 `json:"pixels"`
}

// AnalyzeStage performs fringe analysis on a single calibrated exposure.
type AnalyzeStage struct {
	inputDir string
	logger   *slog.Logger
}

// NewAnalyzeStage creates an AnalyzeStage reading exposures from inputDir.
func NewAnalyzeStage(inputDir string, logger *slog.Logger) *AnalyzeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeStage{
		inputDir: inputDir,
		logger:   logger.With(slog.String("component", "ami_analyze")),
	}
}

// Analyze extracts fringe quantities from the named exposure. The
// exposure name may carry an extension; without one, ".json" is assumed.
func (s *AnalyzeStage) Analyze(ctx context.Context, expName string) (*datamodel.AmiResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exp, err := s.readExposure(expName)
	if err != nil {
		return nil, err
	}
	if len(exp.Pixels) == 0 {
		return nil, fmt.Errorf("exposure %s has no pixel data", expName)
	}

	s.logger.Debug("fringe_analysis_start",
		slog.String("exposure", expName),
		slog.Int("pixel_count", len(exp.Pixels)))

	// Fringe phase and amplitude per baseline from the image's Fourier
	// components at each baseline's spatial frequency.
	phases := make([]float64, numBaselines)
	amplitudes := make([]float64, numBaselines)
	n := float64(len(exp.Pixels))
	for k := 0; k < numBaselines; k++ {
		var re, im float64
		for i, p := range exp.Pixels {
			angle := 2 * math.Pi * float64(k+1) * float64(i) / n
			re += p * math.Cos(angle)
			im -= p * math.Sin(angle)
		}
		phases[k] = math.Atan2(im, re)
		amplitudes[k] = math.Hypot(re, im) / n
	}

	closure := make([]float64, numTriangles)
	for t := 0; t < numTriangles; t++ {
		closure[t] = wrapPhase(phases[t] + phases[t+1] - phases[t+2])
	}

	return &datamodel.AmiResult{
		Name:             exp.Name,
		ClosurePhases:    closure,
		FringeAmplitudes: amplitudes,
	}, nil
}

func (s *AnalyzeStage) readExposure(expName string) (*Exposure, error) {
	name := expName
	if filepath.Ext(name) == "" {
		name += ".json"
	}
	path := filepath.Join(s.inputDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exposure %s: %w", expName, err)
	}

	var exp Exposure
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("decode exposure %s: %w", expName, err)
	}
	if exp.Name == "" {
		exp.Name = expName
	}
	return &exp, nil
}

// wrapPhase maps a phase onto (-pi, pi].
func wrapPhase(p float64) float64 {
	for p > math.Pi {
		p -= 2 * math.Pi
	}
	for p <= -math.Pi {
		p += 2 * math.Pi
	}
	return p
}
