// Package forecast implements the forecast-from-persisted-models command
package forecast

import (
	"path/filepath"

	"fjacquet/scope-forecast/cmd/root"
	"fjacquet/scope-forecast/internal/forecaster"
	"fjacquet/scope-forecast/internal/pipeline"
	"fjacquet/scope-forecast/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the forecast command
var Cmd = &cobra.Command{
	Use:   "forecast",
	Short: "Generate the forecast table from persisted models",
	Long: `Forecast rebuilds the feature table from the input datasets, loads the
persisted per-category model artifacts, and writes the forecast table for
the configured horizon without retraining.`,
	Run: forecastFunc,
}

func init() {
	Cmd.Flags().IntVar(&root.Horizon, "horizon", 0, "Forecast horizon in days (defaults to the configured value)")
}

func forecastFunc(cmd *cobra.Command, args []string) {
	cfg := root.Cfg

	prepared, err := pipeline.Prepare(cfg.Data.Directory)
	if err != nil {
		root.Log.Fatalf("Failed to prepare data: %v", err)
	}

	modelStore := store.NewModelStore(cfg.Models.Directory)
	artifacts, err := modelStore.LoadAll(prepared.Grid.Categories)
	if err != nil {
		root.Log.Fatalf("Failed to load model artifacts: %v", err)
	}
	pipeline.CheckCompleteness(cfg.Categories, artifacts)

	horizon := cfg.Forecast.HorizonDays
	if root.Horizon > 0 {
		horizon = root.Horizon
	}

	forecast, failures := forecaster.Forecast(artifacts, prepared.Features, horizon)
	for category, err := range failures {
		root.Log.Errorf("Forecast for category %s failed: %v", category, err)
	}
	if len(forecast.Categories) == 0 {
		root.Log.Fatal("No category produced a forecast")
	}

	outputPath := filepath.Join(cfg.Data.Directory, forecaster.FileName(horizon))
	if err := forecast.WriteCSV(outputPath); err != nil {
		root.Log.Fatalf("Failed to write forecast table: %v", err)
	}

	root.Log.Infof("Forecast saved to: %s", outputPath)
}
