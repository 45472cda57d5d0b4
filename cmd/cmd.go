// Package cmd defines the command-line interface for sonido-modal.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-modal/ingest"
	"github.com/RyanBlaney/sonido-modal/internal/outwriter"
	"github.com/RyanBlaney/sonido-modal/modal/config"
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	defaults := config.DefaultAnalysisConfig()
	ingestDefaults := ingest.DefaultOptions()

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON lines")
	rootCmd.PersistentFlags().Int("windowing", defaults.Windowing, "Spectral window length in samples")
	rootCmd.PersistentFlags().Float64("overlap", defaults.Overlap, "Segment overlap fraction in [0, 1)")
	rootCmd.PersistentFlags().Float64("threshold", defaults.Threshold, "Peak prominence as a fraction of the spectrum maximum, in (0, 1]")
	rootCmd.PersistentFlags().String("window", defaults.WindowType, "Taper window: hamming, hann or rectangular")
	rootCmd.PersistentFlags().String("scaling", defaults.Scaling, "Spectrum scaling: density or magnitude")
	rootCmd.PersistentFlags().Float64("sample-rate", ingestDefaults.SampleRate, "Sample rate in Hz for single-column text input")
	rootCmd.PersistentFlags().Float64("count", ingestDefaults.Count, "Calibration count divisor for miniSEED input")
	rootCmd.PersistentFlags().Int("skip-rows", ingestDefaults.SkipRows, "Header lines of text input")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		logFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().String("format", "", "Input format: text or miniseed (default: from the file extension)")
	analyzeCmd.Flags().StringP("output", "o", string(outwriter.TableOut), "Output format: table or csv or json")
	analyzeCmd.Flags().Int("precision", 2, "Decimal precision for numeric columns")
	analyzeCmd.Flags().String("export", "", "Also write results to a .xlsx, .parquet, .csv or .json file")
	analyzeCmd.Flags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		logFatal("Error binding analyze flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().StringSlice("allowed-origins", []string{"*"}, "CORS allowed origins")
	serveCmd.Flags().Duration("shutdown-timeout", 0, "Graceful shutdown timeout (default 30s)")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		logFatal("Error binding serve flags", err)
	}
}

// logFatal logs an error and exits the program.
func logFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}
