// Package train implements the model training command
package train

import (
	"context"
	"path/filepath"

	"fjacquet/scope-forecast/cmd/root"
	"fjacquet/scope-forecast/internal/exporter"
	"fjacquet/scope-forecast/internal/fileutils"
	"fjacquet/scope-forecast/internal/forecaster"
	"fjacquet/scope-forecast/internal/forest"
	"fjacquet/scope-forecast/internal/pipeline"
	"fjacquet/scope-forecast/internal/store"
	"fjacquet/scope-forecast/internal/trainer"

	"github.com/spf13/cobra"
)

// Cmd represents the train command
var Cmd = &cobra.Command{
	Use:   "train",
	Short: "Train per-category sales models and generate the forecast",
	Long: `Train reconciles the input datasets into the dense feature table, trains
one regression model per observed category, persists each model artifact,
and writes the forecast table for the configured horizon.`,
	Run: trainFunc,
}

var skipForecast bool

func init() {
	Cmd.Flags().BoolVar(&skipForecast, "skip-forecast", false, "Train and persist models without generating the forecast table")
	Cmd.Flags().IntVar(&root.Horizon, "horizon", 0, "Forecast horizon in days (defaults to the configured value)")
}

func trainFunc(cmd *cobra.Command, args []string) {
	cfg := root.Cfg
	root.Log.Info("Starting sales prediction model training")

	prepared, err := pipeline.Prepare(cfg.Data.Directory)
	if err != nil {
		root.Log.Fatalf("Failed to prepare data: %v", err)
	}
	root.Log.Infof("Prepared %s", prepared.Describe())

	if err := exporter.WriteDailySales(prepared.DailySales, filepath.Join(cfg.Data.Directory, "daily_sales.csv")); err != nil {
		root.Log.Warnf("Failed to export daily sales: %v", err)
	}
	if err := exporter.WritePivot(prepared.Grid, filepath.Join(cfg.Data.Directory, "sales_pivot.csv")); err != nil {
		root.Log.Warnf("Failed to export sales pivot: %v", err)
	}

	weightsPath := filepath.Join(cfg.Models.Directory, "factor_weights.yaml")
	weights := store.FactorWeights(cfg.FactorWeights)
	if fileutils.FileExists(weightsPath) {
		loaded, err := store.LoadFactorWeights(weightsPath)
		if err != nil {
			root.Log.Warnf("Ignoring invalid factor weights file %s: %v", weightsPath, err)
		} else {
			weights = loaded
		}
	} else if err := store.SaveFactorWeights(weightsPath, weights); err != nil {
		root.Log.Warnf("Failed to write factor weights file: %v", err)
	}
	// Weights are a declared extension point; modeling does not consult them.
	root.Log.Debugf("External factor weights: %v", weights)

	params := forest.Params{
		TreeCount:       cfg.Model.TreeCount,
		MaxDepth:        cfg.Model.MaxDepth,
		MinSamplesSplit: cfg.Model.MinSamplesSplit,
		MinSamplesLeaf:  cfg.Model.MinSamplesLeaf,
		RandomSeed:      cfg.Model.RandomSeed,
	}
	modelStore := store.NewModelStore(cfg.Models.Directory)
	t := trainer.New(params, modelStore)

	artifacts, failures := t.TrainAll(context.Background(), prepared.Grid.Categories, prepared.Features)
	for category, err := range failures {
		root.Log.Errorf("Category %s failed: %v", category, err)
	}
	if len(artifacts) == 0 {
		root.Log.Fatal("No category produced a trained model")
	}

	pipeline.CheckCompleteness(cfg.Categories, artifacts)

	if err := exporter.WriteMetrics(artifacts, filepath.Join(cfg.Models.Directory, "model_metrics.csv")); err != nil {
		root.Log.Warnf("Failed to export model metrics: %v", err)
	}

	if skipForecast {
		root.Log.Info("Model training complete!")
		return
	}

	horizon := cfg.Forecast.HorizonDays
	if root.Horizon > 0 {
		horizon = root.Horizon
	}
	forecast, forecastFailures := forecaster.Forecast(artifacts, prepared.Features, horizon)
	for category, err := range forecastFailures {
		root.Log.Errorf("Forecast for category %s failed: %v", category, err)
	}

	outputPath := filepath.Join(cfg.Data.Directory, forecaster.FileName(horizon))
	if err := forecast.WriteCSV(outputPath); err != nil {
		root.Log.Fatalf("Failed to write forecast table: %v", err)
	}

	root.Log.Info("Model training and forecast generation complete!")
}
