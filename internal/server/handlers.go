package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/ingest"
	"github.com/RyanBlaney/sonido-modal/internal/outwriter"
	"github.com/RyanBlaney/sonido-modal/logging"
	"github.com/RyanBlaney/sonido-modal/modal"
	"github.com/RyanBlaney/sonido-modal/modal/config"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the session API
type Handler struct {
	store    SessionStore
	defaults config.AnalysisConfig
	ingest   ingest.Options
	version  string
	logger   logging.Logger
}

// NewHandler creates a handler. Analysis requests start from defaults and
// override only the parameters they carry.
func NewHandler(store SessionStore, defaults *config.AnalysisConfig, opts ingest.Options, version string) *Handler {
	if defaults == nil {
		defaults = config.DefaultAnalysisConfig()
	}
	return &Handler{
		store:    store,
		defaults: *defaults,
		ingest:   opts,
		version:  version,
		logger: logging.WithFields(logging.Fields{
			"component": "http_handler",
		}),
	}
}

// Health reports service liveness
func (h *Handler) Health(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
	resp := &HealthResponse{}
	resp.Body.Status = "healthy"
	resp.Body.Version = h.version
	resp.Body.Time = time.Now()
	return resp, nil
}

// CreateSession ingests an uploaded record and opens a session on it
func (h *Handler) CreateSession(ctx context.Context, req *CreateSessionRequest) (*SessionSummaryResponse, error) {
	logger := h.logger.WithContext(ctx)

	var (
		kind ingest.Kind
		err  error
	)
	if req.Body.Format != "" {
		kind, err = ingest.ParseKind(req.Body.Format)
	} else {
		kind, err = ingest.KindFromPath(req.Body.FileName)
	}
	if err != nil {
		return nil, huma.Error400BadRequest("Unsupported format. Supported formats: text (.txt, .dat, .csv) and miniSEED (.mseed)", err)
	}

	opts := h.ingest
	if req.Body.SampleRate > 0 {
		opts.SampleRate = req.Body.SampleRate
	}
	if req.Body.Count > 0 {
		opts.Count = req.Body.Count
	}
	if req.Body.SkipRows != nil {
		opts.SkipRows = *req.Body.SkipRows
	}

	series, err := ingest.Read(bytes.NewReader(req.Body.Data), kind, opts)
	if err != nil {
		logger.Warn("Rejected upload", logging.Fields{
			"file_name": req.Body.FileName,
			"format":    kind.String(),
			"error":     err.Error(),
		})
		return nil, toHTTPError("Failed to read upload", err)
	}

	session := NewSession(filepath.Base(req.Body.FileName), kind, series)
	if err := h.store.Create(session); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create session", err)
	}

	logger.Info("Created session", logging.Fields{
		"session_id":  session.ID.String(),
		"format":      kind.String(),
		"samples":     series.Len(),
		"sample_rate": series.SampleRate,
	})
	return &SessionSummaryResponse{Body: summarize(session)}, nil
}

// GetSession returns the summary of a session
func (h *Handler) GetSession(ctx context.Context, req *GetSessionRequest) (*SessionSummaryResponse, error) {
	session, err := h.lookup(req.ID)
	if err != nil {
		return nil, err
	}
	return &SessionSummaryResponse{Body: summarize(session)}, nil
}

// Analyze runs the modal pipeline on the session's record
func (h *Handler) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalysisResponse, error) {
	session, err := h.lookup(req.ID)
	if err != nil {
		return nil, err
	}

	// absent fields keep the defaults; explicit values, zero included, are validated
	cfg := h.defaults
	if req.Body.Windowing != nil {
		cfg.Windowing = *req.Body.Windowing
	}
	if req.Body.Overlap != nil {
		cfg.Overlap = *req.Body.Overlap
	}
	if req.Body.Threshold != nil {
		cfg.Threshold = *req.Body.Threshold
	}
	if req.Body.WindowType != "" {
		cfg.WindowType = req.Body.WindowType
	}
	if req.Body.Scaling != "" {
		cfg.Scaling = req.Body.Scaling
	}

	ctx = logging.ContextWithFields(ctx, logging.Fields{"session_id": session.ID.String()})
	analysis, err := modal.NewAnalyzer(&cfg).Analyze(ctx, session.Series)
	if err != nil {
		return nil, toHTTPError("Analysis failed", err)
	}
	session.SetLastAnalysis(analysis)

	body := AnalysisBody{
		SessionID:        session.ID.String(),
		Modes:            analysis.Table,
		Frequencies:      analysis.Table.Frequencies(),
		PeakDisplacement: analysis.PeakDisplacement,
		Resolution:       analysis.Spectrum.Resolution,
		Segments:         analysis.Spectrum.Segments,
		NoModes:          analysis.NoModes,
		Hint:             analysis.Hint,
	}
	if req.Body.IncludeSeries {
		body.Spectrum = &SeriesPayload{X: analysis.Spectrum.Frequencies, Y: analysis.Spectrum.Magnitudes}
		body.Displacement = &SeriesPayload{X: analysis.Displacement.Times, Y: analysis.Displacement.Values}
	}
	return &AnalysisResponse{Body: body}, nil
}

// Export returns the last analysis of the session as an XLSX workbook
func (h *Handler) Export(ctx context.Context, req *GetSessionRequest) (*ExportResponse, error) {
	session, err := h.lookup(req.ID)
	if err != nil {
		return nil, err
	}

	analysis := session.LastAnalysis()
	if analysis == nil {
		return nil, huma.Error409Conflict("No analysis to export. Run an analysis first.")
	}

	var buf bytes.Buffer
	if err := outwriter.WriteWorkbook(&buf, analysis); err != nil {
		return nil, huma.Error500InternalServerError("Failed to build workbook", err)
	}

	name := strings.TrimSuffix(session.FileName, filepath.Ext(session.FileName)) + "_modal.xlsx"
	return &ExportResponse{
		ContentType:        xlsxContentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", name),
		Body:               buf.Bytes(),
	}, nil
}

// DeleteSession discards a session and its results
func (h *Handler) DeleteSession(ctx context.Context, req *GetSessionRequest) (*DeleteSessionResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid session ID", err)
	}
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, huma.Error404NotFound("Session not found", err)
		}
		return nil, huma.Error500InternalServerError("Failed to delete session", err)
	}

	h.logger.WithContext(ctx).Info("Deleted session", logging.Fields{"session_id": id.String()})
	resp := &DeleteSessionResponse{}
	resp.Body.Message = "Session deleted"
	return resp, nil
}

func (h *Handler) lookup(rawID string) (*Session, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid session ID", err)
	}
	session, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, huma.Error404NotFound("Session not found", err)
		}
		return nil, huma.Error500InternalServerError("Failed to load session", err)
	}
	return session, nil
}

// toHTTPError maps pipeline and ingestion errors to status codes:
// configuration and unreadable input are client errors, numerical
// failures are unprocessable.
func toHTTPError(msg string, err error) error {
	var cfgErr *common.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return huma.Error400BadRequest(fmt.Sprintf("%s: invalid %s", msg, cfgErr.Param), err)
	case errors.Is(err, ingest.ErrUnsupportedFormat), errors.Is(err, ingest.ErrMalformedInput):
		return huma.Error400BadRequest(msg, err)
	case errors.Is(err, common.ErrComputation):
		return huma.Error422UnprocessableEntity(msg, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable(msg, err)
	default:
		return huma.Error500InternalServerError(msg, err)
	}
}

func summarize(s *Session) SessionSummaryBody {
	return SessionSummaryBody{
		ID:         s.ID.String(),
		FileName:   s.FileName,
		Format:     s.Format.String(),
		Samples:    s.Series.Len(),
		SampleRate: s.Series.SampleRate,
		Duration:   s.Series.Duration(),
		Analyzed:   s.LastAnalysis() != nil,
		CreatedAt:  s.CreatedAt,
	}
}
