// Package root contains the root command for the application
package root

import (
	"fjacquet/scope-forecast/internal/aggregator"
	"fjacquet/scope-forecast/internal/config"
	"fjacquet/scope-forecast/internal/exporter"
	"fjacquet/scope-forecast/internal/features"
	"fjacquet/scope-forecast/internal/fileutils"
	"fjacquet/scope-forecast/internal/forecaster"
	"fjacquet/scope-forecast/internal/loader"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/pipeline"
	"fjacquet/scope-forecast/internal/schema"
	"fjacquet/scope-forecast/internal/store"
	"fjacquet/scope-forecast/internal/table"
	"fjacquet/scope-forecast/internal/trainer"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	DataDir   string
	ModelsDir string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// Cfg is the loaded application configuration
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "scope-forecast",
		Short: "A CLI tool to reconcile retail sales data and forecast per-category demand.",
		Long: `scope-forecast ingests retail transaction exports, product metadata, and
daily external-factor series, reconciles them into a dense per-day,
per-category time series, trains one regression model per category, and
emits a fixed-horizon forecast table.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to scope-forecast!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize and configure logging
			config.LoadEnv()
			Log = config.ConfigureLogging()

			var err error
			Cfg, err = config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Failed to initialize configuration: %v", err)
			}

			// Flags override the configured directories
			if SharedFlags.DataDir != "" {
				Cfg.Data.Directory = SharedFlags.DataDir
			}
			if SharedFlags.ModelsDir != "" {
				Cfg.Models.Directory = SharedFlags.ModelsDir
			}

			// Set the configured logger for all pipeline stages. The
			// resolver, file lookup, and aggregator log through the Logger
			// abstraction and get the adapter-wrapped instance.
			stageLog := logging.NewLogrusAdapterFromLogger(Log)
			fileutils.SetLogger(stageLog)
			schema.SetLogger(stageLog)
			aggregator.SetLogger(stageLog)
			table.SetLogger(Log)
			loader.SetLogger(Log)
			features.SetLogger(Log)
			pipeline.SetLogger(Log)
			trainer.SetLogger(Log)
			forecaster.SetLogger(Log)
			store.SetLogger(Log)
			exporter.SetLogger(Log)
		},
	}

	// SharedFlags holds common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Horizon is the forecast horizon in days; 0 means use the configured value
	Horizon int
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.DataDir, "data-dir", "d", "", "Directory containing the input CSV files")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ModelsDir, "models-dir", "m", "", "Directory for persisted model artifacts")
}
