package ami

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ssmith-git/jwst/internal/datamodel"
)

// NormalizeStage corrects an averaged science result using the averaged
// PSF reference: closure phases are differenced, fringe amplitudes are
// ratioed.
type NormalizeStage struct {
	logger *slog.Logger
}

// NewNormalizeStage creates a NormalizeStage.
func NewNormalizeStage(logger *slog.Logger) *NormalizeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &NormalizeStage{
		logger: logger.With(slog.String("component", "ami_normalize")),
	}
}

// Normalize produces a new result from the science and reference
// averages. Both inputs must share the same vector lengths, and the
// reference amplitudes must be non-zero.
func (s *NormalizeStage) Normalize(ctx context.Context, science, reference *datamodel.AmiResult) (*datamodel.AmiResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if science == nil || reference == nil {
		return nil, fmt.Errorf("normalize requires both science and reference results")
	}
	if len(science.ClosurePhases) != len(reference.ClosurePhases) ||
		len(science.FringeAmplitudes) != len(reference.FringeAmplitudes) {
		return nil, fmt.Errorf("science and reference results have incompatible shapes")
	}

	closure := make([]float64, len(science.ClosurePhases))
	for i := range closure {
		closure[i] = science.ClosurePhases[i] - reference.ClosurePhases[i]
	}

	amplitudes := make([]float64, len(science.FringeAmplitudes))
	for i := range amplitudes {
		if reference.FringeAmplitudes[i] == 0 {
			return nil, fmt.Errorf("reference fringe amplitude %d is zero", i)
		}
		amplitudes[i] = science.FringeAmplitudes[i] / reference.FringeAmplitudes[i]
	}

	s.logger.Debug("normalization_computed",
		slog.Int("closure_phase_count", len(closure)),
		slog.Int("amplitude_count", len(amplitudes)))

	return &datamodel.AmiResult{
		ClosurePhases:    closure,
		FringeAmplitudes: amplitudes,
	}, nil
}
