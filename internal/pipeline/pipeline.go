// Package pipeline assembles the sequential data-preparation stages shared
// by the train and forecast commands: load, resolve, aggregate, complete,
// build features. Each stage produces a new immutable table; no stage
// mutates another stage's output.
package pipeline

import (
	"fmt"

	"fjacquet/scope-forecast/internal/aggregator"
	"fjacquet/scope-forecast/internal/features"
	"fjacquet/scope-forecast/internal/grid"
	"fjacquet/scope-forecast/internal/loader"
	"fjacquet/scope-forecast/internal/logging"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	logging.Register(log)
}

// SetLogger sets a custom logger for this package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Prepared bundles the outputs of the data-preparation stages.
type Prepared struct {
	Datasets   *loader.Datasets
	DailySales []aggregator.SalesRecord
	JoinStats  aggregator.JoinStats
	Grid       *grid.DenseGrid
	Features   *features.Table
}

// Prepare runs the pipeline up to the trained-model boundary.
func Prepare(dataDir string) (*Prepared, error) {
	datasets, err := loader.Load(dataDir)
	if err != nil {
		return nil, err
	}

	dailySales, stats := aggregator.Aggregate(datasets)

	denseGrid, err := grid.Complete(dailySales)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"dates":      len(denseGrid.Dates),
		"categories": len(denseGrid.Categories),
	}).Info("Completed dense sales grid")

	featureTable := features.Build(denseGrid, datasets.ExternalFactors, datasets.Keys.ExternalFactorsDate)

	return &Prepared{
		Datasets:   datasets,
		DailySales: dailySales,
		JoinStats:  stats,
		Grid:       denseGrid,
		Features:   featureTable,
	}, nil
}

// CheckCompleteness warns for every configured category that produced no
// trained model. The configured list is never an authoritative category
// source; missing categories are reported, not synthesized.
func CheckCompleteness[T any](configured []string, trained map[string]T) {
	for _, category := range configured {
		if _, ok := trained[category]; !ok {
			log.WithField(logging.FieldCategory, category).
				Warn("Configured category has no trained model")
		}
	}
}

// Describe returns a short human-readable summary of a prepared pipeline.
func (p *Prepared) Describe() string {
	return fmt.Sprintf("%d sales records over %d dates and %d categories",
		len(p.DailySales), len(p.Grid.Dates), len(p.Grid.Categories))
}
