// Package forecaster builds the future feature grid and applies each trained
// category model to it, producing the multi-category forecast table.
package forecaster

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"fjacquet/scope-forecast/internal/features"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/pipelineerror"
	"fjacquet/scope-forecast/internal/store"

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

// Calendar feature names, matching the training feature schema prefix.
var calendarFeatures = []string{"dayofweek", "month", "day", "year", "quarter", "is_weekend"}

// Table is the forecast output: one row per future date, one predicted
// column per category. Immutable once written.
type Table struct {
	Dates       []time.Time
	Categories  []string
	Predictions map[string][]float64
}

// Forecast projects horizonDays past the last observed date. Calendar
// features are derived per future date; every external factor is held
// constant at its single most recent known value across the whole horizon
// (a deliberate simplifying assumption, no extrapolation). A feature-schema
// mismatch between a model and the forecast rows is fatal for that category
// only; the returned error map carries per-category failures.
func Forecast(artifacts map[string]*store.Artifact, ft *features.Table, horizonDays int) (*Table, map[string]error) {
	lastDate := ft.LastDate()
	dates := make([]time.Time, horizonDays)
	for i := range dates {
		dates[i] = lastDate.AddDate(0, 0, i+1)
	}

	lastFactors := ft.LastKnownFactors()
	expected := append(append([]string(nil), calendarFeatures...), ft.FactorColumns...)

	categories := make([]string, 0, len(artifacts))
	for category := range artifacts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	log.WithFields(logrus.Fields{
		logging.FieldHorizon: horizonDays,
		logging.FieldCount:   len(categories),
	}).Info("Generating forecast")

	table := &Table{
		Dates:       dates,
		Predictions: make(map[string][]float64, len(categories)),
	}
	failures := make(map[string]error)

	for _, category := range categories {
		artifact := artifacts[category]

		if !equalSchemas(artifact.Model.FeatureNames, expected) {
			failures[category] = &pipelineerror.SchemaMismatchError{
				Category: category,
				Expected: artifact.Model.FeatureNames,
				Actual:   expected,
			}
			continue
		}

		rows, err := futureRows(dates, ft.FactorColumns, lastFactors, artifact, category)
		if err != nil {
			failures[category] = err
			continue
		}

		predictions, err := artifact.Model.PredictBatch(rows)
		if err != nil {
			failures[category] = fmt.Errorf("category %q: %w", category, err)
			continue
		}

		table.Categories = append(table.Categories, category)
		table.Predictions[category] = predictions
	}

	for category, err := range failures {
		log.WithError(err).WithField(logging.FieldCategory, category).
			Error("Forecast failed for category")
	}

	return table, failures
}

// futureRows builds the identical feature rows every model is applied to,
// encoded per-category since label encodings are a training-time artifact.
func futureRows(dates []time.Time, factorColumns []string, lastFactors map[string]string, artifact *store.Artifact, category string) ([][]float64, error) {
	factorValues := make([]float64, len(factorColumns))
	for i, col := range factorColumns {
		raw := lastFactors[col]
		if raw == "" {
			return nil, fmt.Errorf("category %q: factor %q has no known value to project", category, col)
		}

		if encoding, ok := artifact.Encodings[col]; ok {
			code, ok := encoding[raw]
			if !ok {
				return nil, fmt.Errorf("category %q: factor %q value %q not seen during training", category, col, raw)
			}
			factorValues[i] = code
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("category %q: factor %q value %q is not numeric: %w", category, col, raw, err)
		}
		factorValues[i] = value
	}

	rows := make([][]float64, len(dates))
	for i, date := range dates {
		c := features.CalendarFor(date)
		row := make([]float64, 0, len(calendarFeatures)+len(factorColumns))
		row = append(row,
			float64(c.DayOfWeek),
			float64(c.Month),
			float64(c.Day),
			float64(c.Year),
			float64(c.Quarter),
			float64(c.IsWeekend),
		)
		row = append(row, factorValues...)
		rows[i] = row
	}
	return rows, nil
}

func equalSchemas(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
