package server

import (
	"time"

	"github.com/RyanBlaney/sonido-modal/modal"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateSessionRequest uploads a record and opens a session on it
type CreateSessionRequest struct {
	Body struct {
		FileName   string  `json:"file_name" minLength:"1" maxLength:"255" doc:"Original file name; its extension selects the format when format is empty"`
		Format     string  `json:"format,omitempty" enum:"text,txt,csv,dat,miniseed,mseed,ms" required:"false" doc:"Input format"`
		SampleRate float64 `json:"sample_rate,omitempty" minimum:"0" required:"false" doc:"Sample rate in Hz for single-column text"`
		Count      float64 `json:"count,omitempty" minimum:"0" required:"false" doc:"Calibration count divisor for miniSEED"`
		SkipRows   *int    `json:"skip_rows,omitempty" minimum:"0" required:"false" doc:"Header lines of text files"`
		Data       []byte  `json:"data" doc:"Base64 encoded file contents"`
	}
}

// GetSessionRequest addresses one session
type GetSessionRequest struct {
	ID string `path:"id" doc:"Session ID"`
}

// SessionSummaryBody describes an open session
type SessionSummaryBody struct {
	ID         string    `json:"id" doc:"Session unique identifier"`
	FileName   string    `json:"file_name" doc:"Uploaded file name"`
	Format     string    `json:"format" doc:"Detected input format"`
	Samples    int       `json:"samples" doc:"Number of samples"`
	SampleRate float64   `json:"sample_rate" doc:"Sample rate in Hz"`
	Duration   float64   `json:"duration" doc:"Record length in seconds"`
	Analyzed   bool      `json:"analyzed" doc:"Whether an analysis has been run"`
	CreatedAt  time.Time `json:"created_at" doc:"Session creation timestamp"`
}

// SessionSummaryResponse wraps a session summary
type SessionSummaryResponse struct {
	Body SessionSummaryBody
}

// AnalyzeRequest runs the modal analysis on a session
type AnalyzeRequest struct {
	ID   string `path:"id" doc:"Session ID"`
	Body struct {
		Windowing     *int     `json:"windowing,omitempty" required:"false" doc:"Spectral window length in samples"`
		Overlap       *float64 `json:"overlap,omitempty" required:"false" doc:"Segment overlap fraction in [0, 1)"`
		Threshold     *float64 `json:"threshold,omitempty" required:"false" doc:"Peak prominence as a fraction of the spectrum maximum"`
		WindowType    string   `json:"window_type,omitempty" required:"false" doc:"hamming, hann or rectangular"`
		Scaling       string   `json:"scaling,omitempty" required:"false" doc:"density or magnitude"`
		IncludeSeries bool     `json:"include_series,omitempty" required:"false" doc:"Return the spectrum and displacement series for charting"`
	}
}

// SeriesPayload is a pair of aligned arrays
type SeriesPayload struct {
	X []float64 `json:"x" doc:"Abscissa (Hz or s)"`
	Y []float64 `json:"y" doc:"Ordinate"`
}

// AnalysisBody is the result of one analysis
type AnalysisBody struct {
	SessionID        string                 `json:"session_id" doc:"Session ID"`
	Modes            modal.ResultTable      `json:"modes" doc:"Identified modes with damping ratios in percent"`
	Frequencies      []float64              `json:"frequencies" doc:"Modal frequencies in Hz"`
	PeakDisplacement modal.PeakDisplacement `json:"peak_displacement" doc:"Largest absolute displacement in cm"`
	Resolution       float64                `json:"resolution" doc:"Spectral bin spacing in Hz"`
	Segments         int                    `json:"segments" doc:"Number of averaged segments"`
	NoModes          bool                   `json:"no_modes" doc:"True when no peak reached the threshold"`
	Hint             string                 `json:"hint,omitempty" doc:"Guidance when no modes were found"`
	Spectrum         *SeriesPayload         `json:"spectrum,omitempty" doc:"Averaged spectrum"`
	Displacement     *SeriesPayload         `json:"displacement,omitempty" doc:"Displacement series in cm"`
}

// AnalysisResponse wraps an analysis result
type AnalysisResponse struct {
	Body AnalysisBody
}

// ExportResponse is an XLSX workbook download
type ExportResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// DeleteSessionResponse confirms a deletion
type DeleteSessionResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}
