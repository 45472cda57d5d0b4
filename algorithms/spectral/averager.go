package spectral

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/windowing"
	"github.com/RyanBlaney/sonido-modal/logging"
)

// AveragerConfig holds the segmenting parameters of the spectral averager
type AveragerConfig struct {
	WindowSize int            `json:"window_size"` // samples per segment (M)
	Overlap    float64        `json:"overlap"`     // fraction of M shared by consecutive segments, [0,1)
	Window     windowing.Type `json:"-"`
	Scaling    Scaling        `json:"-"`

	// FFTSize is the transform length. Zero selects WindowSize; a larger
	// value zero-pads every segment for a finer bin spacing.
	FFTSize int `json:"fft_size,omitempty"`
}

// Averager computes a segment-averaged spectrum: the signal is cut into
// overlapping segments, each segment is mean-removed, tapered and
// transformed, and the scaled spectra are averaged bin-wise.
type Averager struct {
	config AveragerConfig
	fft    *FFT
	logger logging.Logger
}

// NewAverager creates a spectral averager
func NewAverager(config AveragerConfig) *Averager {
	return &Averager{
		config: config,
		fft:    NewFFT(),
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_averager",
		}),
	}
}

// HopSize returns the segment advance in samples: M - round(M*overlap)
func (c AveragerConfig) HopSize() int {
	return c.WindowSize - int(math.Round(float64(c.WindowSize)*c.Overlap))
}

// TransformSize returns the FFT length used per segment
func (c AveragerConfig) TransformSize() int {
	if c.FFTSize == 0 {
		return c.WindowSize
	}
	return c.FFTSize
}

// Validate checks the segmenting parameters independently of any signal
func (c AveragerConfig) Validate() error {
	if c.WindowSize <= 0 {
		return common.NewConfigurationError("windowing", c.WindowSize, "window length must be positive")
	}
	if math.IsNaN(c.Overlap) || c.Overlap < 0 || c.Overlap >= 1 {
		return common.NewConfigurationError("overlap", c.Overlap, "overlap must be in [0, 1)")
	}
	if c.HopSize() < 1 {
		return common.NewConfigurationError("overlap", c.Overlap, "overlap leaves no hop between segments for this window length")
	}
	if c.FFTSize < 0 || (c.FFTSize > 0 && c.FFTSize < c.WindowSize) {
		return common.NewConfigurationError("fft_size", c.FFTSize, "transform length must not be shorter than the window")
	}
	return nil
}

// Average computes the averaged spectrum of signal sampled at sampleRate
func (a *Averager) Average(signal []float64, sampleRate float64) (*Spectrum, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, common.NewConfigurationError("sample_rate", sampleRate, "sample rate must be positive")
	}

	windowSize := a.config.WindowSize
	if windowSize > len(signal) {
		return nil, common.NewConfigurationError("windowing", windowSize,
			fmt.Sprintf("window length exceeds signal length (%d samples)", len(signal)))
	}
	if !common.AllFinite(signal) {
		return nil, common.NewComputationError("spectral averaging", "signal contains non-finite values")
	}

	window, err := windowing.New(a.config.Window, windowSize)
	if err != nil {
		return nil, common.NewConfigurationError("window_type", a.config.Window.String(), err.Error())
	}
	fftSize := a.config.TransformSize()
	scaler := NewPowerSpectrum(a.config.Scaling, fftSize, sampleRate, windowing.Sum(window), windowing.SumSquares(window))

	hopSize := a.config.HopSize()
	numFrames := (len(signal)-windowSize)/hopSize + 1
	freqBins := OneSidedBins(fftSize)

	frames := make([][]float64, numFrames)
	for i := range frames {
		frames[i] = make([]float64, freqBins)
	}

	numWorkers := getOptimalWorkerCount(numFrames)
	jobs := make(chan int, numFrames)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		frameErr error
	)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Reuse frame buffer for this worker; the padding tail stays zero
			frameBuffer := make([]float64, fftSize)
			segment := frameBuffer[:windowSize]

			for frameIdx := range jobs {
				start := frameIdx * hopSize
				copy(segment, signal[start:start+windowSize])

				// detrend: constant
				floats.AddConst(-common.Mean(segment), segment)

				if err := window.ApplyInPlace(segment); err != nil {
					errOnce.Do(func() { frameErr = err })
					continue
				}

				scaler.ComputeInto(frames[frameIdx], a.fft.Compute(frameBuffer))
			}
		}()
	}

	for frameIdx := range numFrames {
		jobs <- frameIdx
	}
	close(jobs)
	wg.Wait()

	if frameErr != nil {
		return nil, &common.ComputationError{Op: "spectral averaging", Reason: "windowing segment", Err: frameErr}
	}

	// Reduce in frame order so the result does not depend on scheduling
	magnitudes := make([]float64, freqBins)
	for _, frame := range frames {
		floats.Add(magnitudes, frame)
	}
	floats.Scale(1.0/float64(numFrames), magnitudes)

	resolution := sampleRate / float64(fftSize)
	frequencies := make([]float64, freqBins)
	for k := range frequencies {
		frequencies[k] = float64(k) * resolution
	}

	a.logger.Debug("Averaged spectrum", logging.Fields{
		"segments":    numFrames,
		"window_size": windowSize,
		"fft_size":    fftSize,
		"hop_size":    hopSize,
		"workers":     numWorkers,
		"scaling":     a.config.Scaling.String(),
	})

	return &Spectrum{
		Frequencies: frequencies,
		Magnitudes:  magnitudes,
		SampleRate:  sampleRate,
		WindowSize:  windowSize,
		FFTSize:     fftSize,
		HopSize:     hopSize,
		Segments:    numFrames,
		Resolution:  resolution,
		Scaling:     a.config.Scaling,
	}, nil
}

// getOptimalWorkerCount determines the number of workers based on workload
func getOptimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	// For medium workloads, use most CPUs
	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
