// Package modal runs the complete modal identification pipeline over an
// acceleration record: displacement by integration, averaged spectrum,
// candidate peaks, damping estimates and the final result table.
package modal

import (
	"context"
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/damping"
	"github.com/RyanBlaney/sonido-modal/algorithms/integration"
	"github.com/RyanBlaney/sonido-modal/algorithms/peaks"
	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
	"github.com/RyanBlaney/sonido-modal/logging"
	"github.com/RyanBlaney/sonido-modal/modal/config"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

// NoModesHint is the guidance returned with an analysis that found no peaks
const NoModesHint = "no modal peaks reached the prominence threshold; reduce threshold and retry"

// PeakDisplacement is the sample of largest absolute displacement
type PeakDisplacement struct {
	Time  float64 `json:"time"`  // s
	Value float64 `json:"value"` // cm, signed
}

// Analysis is the outcome of one pipeline run
type Analysis struct {
	Displacement     *timeseries.TimeSeries `json:"displacement"`
	PeakDisplacement PeakDisplacement       `json:"peak_displacement"`
	Spectrum         *spectral.Spectrum     `json:"spectrum"`
	Peaks            peaks.ModalPeakSet     `json:"peaks"`
	Estimates        []damping.Estimate     `json:"estimates"`
	Table            ResultTable            `json:"table"`
	NoModes          bool                   `json:"no_modes"`
	Hint             string                 `json:"hint,omitempty"`
}

// Analyzer runs the pipeline with a fixed configuration. It holds no state
// between calls and is safe for concurrent use.
type Analyzer struct {
	config *config.AnalysisConfig
	logger logging.Logger
}

// NewAnalyzer creates an analyzer. A nil config selects the defaults.
func NewAnalyzer(cfg *config.AnalysisConfig) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	return &Analyzer{
		config: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "modal_analyzer",
		}),
	}
}

// Analyze identifies the modes of series, an acceleration record in g.
// Configuration and computation failures abort the run without a partial
// result; modes whose damping could not be estimated keep nil ratios.
func (a *Analyzer) Analyze(ctx context.Context, series *timeseries.TimeSeries) (*Analysis, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	averagerConfig, err := a.config.AveragerConfig()
	if err != nil {
		return nil, err
	}
	estimatorConfig := a.config.EstimatorConfig()

	logger := a.logger.WithContext(ctx)
	logger.Debug("Starting modal analysis", logging.Fields{
		"samples":     series.Len(),
		"sample_rate": series.SampleRate,
		"windowing":   averagerConfig.WindowSize,
		"overlap":     averagerConfig.Overlap,
		"threshold":   a.config.Threshold,
	})

	displacement, err := integration.NewIntegrator().Displacement(series)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spectrum, err := spectral.NewAverager(averagerConfig).Average(series.Values, series.SampleRate)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := peaks.NewDetector(a.config.Threshold).Detect(spectrum)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Displacement:     displacement,
		PeakDisplacement: peakOf(displacement),
		Spectrum:         spectrum,
		Peaks:            set,
	}

	if set.Empty() {
		logger.Warn("No modal peaks found", logging.Fields{"threshold": a.config.Threshold})
		analysis.NoModes = true
		analysis.Hint = NoModesHint
		analysis.Estimates = []damping.Estimate{}
		analysis.Table = ResultTable{}
		return analysis, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis.Estimates, err = damping.NewEstimator(estimatorConfig).Estimate(series, set.Frequencies())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis.Table, err = Aggregate(set, analysis.Estimates)
	if err != nil {
		return nil, err
	}

	logger.Info("Modal analysis complete", logging.Fields{
		"modes":             len(analysis.Table),
		"peak_displacement": analysis.PeakDisplacement.Value,
		"spectrum_segments": spectrum.Segments,
		"frequency_spacing": spectrum.Resolution,
	})
	return analysis, nil
}

func peakOf(series *timeseries.TimeSeries) PeakDisplacement {
	best := -1
	for i, v := range series.Values {
		if best < 0 || math.Abs(v) > math.Abs(series.Values[best]) {
			best = i
		}
	}
	if best < 0 {
		return PeakDisplacement{}
	}
	return PeakDisplacement{Time: series.Times[best], Value: series.Values[best]}
}
