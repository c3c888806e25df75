package ami

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ssmith-git/jwst/internal/datamodel"
)

// AverageStage combines same-role fringe analysis results into one
// averaged product.
type AverageStage struct {
	store  *datamodel.FileStore
	logger *slog.Logger
}

// NewAverageStage creates an AverageStage reading artifacts from store.
func NewAverageStage(store *datamodel.FileStore, logger *slog.Logger) *AverageStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AverageStage{
		store:  store,
		logger: logger.With(slog.String("component", "ami_average")),
	}
}

// Average computes the element-wise mean of the given artifacts'
// closure phases and fringe amplitudes. All inputs must share the same
// vector lengths.
func (s *AverageStage) Average(ctx context.Context, refs []datamodel.ArtifactRef) (*datamodel.AmiResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("nothing to average")
	}

	var sumClosure, sumAmp []float64
	for _, ref := range refs {
		result, err := s.store.Load(ref)
		if err != nil {
			return nil, fmt.Errorf("load %s for averaging: %w", ref.Base(), err)
		}

		if sumClosure == nil {
			sumClosure = make([]float64, len(result.ClosurePhases))
			sumAmp = make([]float64, len(result.FringeAmplitudes))
		}
		if len(result.ClosurePhases) != len(sumClosure) ||
			len(result.FringeAmplitudes) != len(sumAmp) {
			return nil, fmt.Errorf("artifact %s has incompatible shape (%d/%d phases, %d/%d amplitudes)",
				ref.Base(),
				len(result.ClosurePhases), len(sumClosure),
				len(result.FringeAmplitudes), len(sumAmp))
		}

		for i, v := range result.ClosurePhases {
			sumClosure[i] += v
		}
		for i, v := range result.FringeAmplitudes {
			sumAmp[i] += v
		}
	}

	n := float64(len(refs))
	for i := range sumClosure {
		sumClosure[i] /= n
	}
	for i := range sumAmp {
		sumAmp[i] /= n
	}

	s.logger.Debug("average_computed", slog.Int("input_count", len(refs)))

	return &datamodel.AmiResult{
		ClosurePhases:    sumClosure,
		FringeAmplitudes: sumAmp,
	}, nil
}
