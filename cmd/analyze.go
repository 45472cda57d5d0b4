package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-modal/ingest"
	"github.com/RyanBlaney/sonido-modal/internal/outwriter"
	"github.com/RyanBlaney/sonido-modal/logging"
	"github.com/RyanBlaney/sonido-modal/modal"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

// analyzeCmd runs the modal pipeline on one record file.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Identify the modes of an acceleration record.",
	Long: `Read a text (.txt, .dat, .csv) or miniSEED (.mseed) acceleration record
and print the modal frequencies with their damping ratios in percent.

Text records hold accelerations in m/s², either as "time acc" rows or as a
single column sampled at --sample-rate. MiniSEED counts are divided by
--count and by standard gravity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outwriter.ParseFormat(viper.GetString("output"))
		if err != nil {
			return err
		}
		color.NoColor = !parseBool(viper.GetString("color"), true)

		series, err := readRecord(args[0], viper.GetString("format"), ingestOptionsFromViper())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.ContextWithFields(ctx, logging.Fields{"file": args[0]})

		analysis, err := modal.NewAnalyzer(analysisConfigFromViper()).Analyze(ctx, series)
		if err != nil {
			return err
		}

		if err := outwriter.PrintAnalysis(cmd.OutOrStdout(), analysis, format, viper.GetInt("precision")); err != nil {
			return err
		}

		if path := viper.GetString("export"); path != "" {
			if err := outwriter.ExportFile(path, analysis); err != nil {
				return err
			}
			logging.Info("Exported results", logging.Fields{"path": path})
		}
		return nil
	},
}

// readRecord loads path with the named format, or the one its extension implies
func readRecord(path, formatName string, opts ingest.Options) (*timeseries.TimeSeries, error) {
	if formatName == "" {
		return ingest.ReadFile(path, opts)
	}

	kind, err := ingest.ParseKind(formatName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ingest.Read(f, kind, opts)
}

// parseBool accepts yes/no in addition to strconv booleans
func parseBool(s string, fallback bool) bool {
	switch s {
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}
