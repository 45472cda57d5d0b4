package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-modal/algorithms/damping"
	"github.com/RyanBlaney/sonido-modal/ingest"
	"github.com/RyanBlaney/sonido-modal/logging"
	"github.com/RyanBlaney/sonido-modal/modal/config"
)

// All linker flags will be set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "sonido-modal",
	Short: "Identify modal frequencies and damping ratios from acceleration records.",
	Long: `Sonido-modal integrates an acceleration record to displacement, averages
its spectrum, picks the prominent peaks and estimates the damping of each
mode with the half-power bandwidth and the logarithmic decrement.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE:  setupLogging,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".sonido-modal")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("SONIDO_MODAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	dampingDefaults := damping.DefaultConfig()
	viper.SetDefault("damping.band_fraction", dampingDefaults.BandFraction)
	viper.SetDefault("damping.settle_time_constants", dampingDefaults.SettleTimeConstants)
	viper.SetDefault("damping.decay_floor", dampingDefaults.DecayFloor)
	viper.SetDefault("damping.max_cycles", dampingDefaults.MaxCycles)
}

// loadConfigFile merges the config file, if any, into Viper.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// setupLogging installs the global logger before any command runs.
func setupLogging(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	var logger *logging.DefaultLogger
	if viper.GetBool("log-json") {
		logger = logging.NewJSONLogger(os.Stderr)
	} else {
		logger = logging.NewConsoleLogger(os.Stderr)
	}
	logger.SetLevel(logging.ParseLevel(viper.GetString("log-level")))
	logging.SetGlobalLogger(logger)
	return nil
}

// analysisConfigFromViper resolves the analysis parameters from defaults,
// config file, environment and flags.
func analysisConfigFromViper() *config.AnalysisConfig {
	cfg := config.DefaultAnalysisConfig()
	cfg.SampleRate = viper.GetFloat64("sample-rate")
	cfg.Windowing = viper.GetInt("windowing")
	cfg.Overlap = viper.GetFloat64("overlap")
	cfg.Threshold = viper.GetFloat64("threshold")
	cfg.WindowType = viper.GetString("window")
	cfg.Scaling = viper.GetString("scaling")
	cfg.Damping = config.DampingConfig{
		BandFraction:        viper.GetFloat64("damping.band_fraction"),
		SettleTimeConstants: viper.GetFloat64("damping.settle_time_constants"),
		DecayFloor:          viper.GetFloat64("damping.decay_floor"),
		MaxCycles:           viper.GetInt("damping.max_cycles"),
	}
	return cfg
}

// ingestOptionsFromViper resolves the reader calibration.
func ingestOptionsFromViper() ingest.Options {
	return ingest.Options{
		SampleRate: viper.GetFloat64("sample-rate"),
		Count:      viper.GetFloat64("count"),
		SkipRows:   viper.GetInt("skip-rows"),
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
