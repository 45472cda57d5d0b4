// Package server exposes the modal analysis over HTTP. Clients upload a
// record into a session, run analyses with per-request parameters and
// download the last result as a workbook.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/RyanBlaney/sonido-modal/logging"
)

// maxUploadBytes bounds a create request, base64 overhead included
const maxUploadBytes = 64 << 20

// Config holds the listener settings
type Config struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DefaultConfig returns the listener defaults
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		AllowedOrigins:  []string{"*"},
		ShutdownTimeout: 30 * time.Second,
	}
}

// NewRouter builds the chi router with the API mounted under /api
func NewRouter(h *Handler, cfg Config) (chi.Router, huma.API) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger())
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	config := huma.DefaultConfig("Sonido Modal API", h.version)
	config.DocsPath = "/api/docs"
	api := humachi.New(router, config)

	Register(api, h)
	return router, api
}

// Register adds every operation of h to api
func Register(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, h.Health)

	huma.Register(api, huma.Operation{
		OperationID:  "create-session",
		Method:       http.MethodPost,
		Path:         "/api/sessions",
		Summary:      "Upload a record",
		Description:  "Reads a text or miniSEED acceleration record and opens an analysis session on it",
		Tags:         []string{"Sessions"},
		MaxBodyBytes: maxUploadBytes,
	}, h.CreateSession)

	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/sessions/{id}",
		Summary:     "Get session",
		Description: "Returns the summary of an uploaded record",
		Tags:        []string{"Sessions"},
	}, h.GetSession)

	huma.Register(api, huma.Operation{
		OperationID: "delete-session",
		Method:      http.MethodDelete,
		Path:        "/api/sessions/{id}",
		Summary:     "Delete session",
		Description: "Discards the record and its results",
		Tags:        []string{"Sessions"},
	}, h.DeleteSession)

	huma.Register(api, huma.Operation{
		OperationID: "analyze-session",
		Method:      http.MethodPost,
		Path:        "/api/sessions/{id}/analysis",
		Summary:     "Run modal analysis",
		Description: "Identifies modal frequencies and damping ratios of the session record",
		Tags:        []string{"Analysis"},
	}, h.Analyze)

	huma.Register(api, huma.Operation{
		OperationID: "export-analysis",
		Method:      http.MethodGet,
		Path:        "/api/sessions/{id}/export",
		Summary:     "Export analysis",
		Description: "Downloads the last analysis of the session as an XLSX workbook",
		Tags:        []string{"Analysis"},
	}, h.Export)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func Serve(ctx context.Context, handler http.Handler, cfg Config) error {
	logger := logging.WithFields(logging.Fields{"component": "http_server"})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", logging.Fields{"addr": cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server exited")
	return nil
}

// requestLogger logs one line per HTTP request
func requestLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logging.Info("HTTP request", logging.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"remote_ip":  r.RemoteAddr,
					"status":     ww.Status(),
					"latency_ms": time.Since(start).Milliseconds(),
					"request_id": middleware.GetReqID(r.Context()),
				})
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
