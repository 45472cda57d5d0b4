package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-modal/internal/server"
)

// serveCmd exposes the analysis as an HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API.",
	Long: `Serve the session API: upload a record, run analyses with per-request
parameters and download the last result as an XLSX workbook. The analysis
flags set the defaults each request starts from. OpenAPI docs are served
at /api/docs.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := analysisConfigFromViper()
		if err := cfg.Validate(); err != nil {
			return err
		}

		serverCfg := server.DefaultConfig()
		serverCfg.Addr = viper.GetString("addr")
		serverCfg.AllowedOrigins = viper.GetStringSlice("allowed-origins")
		if timeout := viper.GetDuration("shutdown-timeout"); timeout > 0 {
			serverCfg.ShutdownTimeout = timeout
		}

		handler := server.NewHandler(server.NewMemoryStore(), cfg, ingestOptionsFromViper(), version)
		router, _ := server.NewRouter(handler, serverCfg)

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Serve(ctx, router, serverCfg)
	},
}
