package forecaster_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/scope-forecast/internal/features"
	"fjacquet/scope-forecast/internal/forecaster"
	"fjacquet/scope-forecast/internal/forest"
	"fjacquet/scope-forecast/internal/pipelineerror"
	"fjacquet/scope-forecast/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trainedArtifact fits a small model on a synthetic table so forecast-time
// feature schemas line up with training exactly.
func trainedArtifact(t *testing.T, ft *features.Table, category string) *store.Artifact {
	t.Helper()

	rows := ft.CategorySlice(category)
	require.NotEmpty(t, rows)

	featureRows := make([][]float64, len(rows))
	targets := make([]float64, len(rows))
	for i, row := range rows {
		c := row.Calendar
		featureRows[i] = []float64{
			float64(c.DayOfWeek), float64(c.Month), float64(c.Day),
			float64(c.Year), float64(c.Quarter), float64(c.IsWeekend),
			2.5,
		}
		targets[i] = row.QuantitySold
	}

	names := []string{"dayofweek", "month", "day", "year", "quarter", "is_weekend", "economic_indicators"}
	params := forest.DefaultParams()
	params.TreeCount = 5
	model, err := forest.Train(featureRows, targets, names, params)
	require.NoError(t, err)

	return &store.Artifact{Category: category, Model: model}
}

func syntheticTable(category string, n int) *features.Table {
	rows := make([]features.Row, 0, n)
	for i := 0; i < n; i++ {
		date := time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)
		rows = append(rows, features.Row{
			Date:         date,
			Category:     category,
			QuantitySold: float64(i%5 + 1),
			Calendar:     features.CalendarFor(date),
			Factors:      map[string]string{"economic_indicators": "2.5"},
		})
	}
	return &features.Table{
		Categories:    []string{category},
		FactorColumns: []string{"economic_indicators"},
		Rows:          rows,
	}
}

func TestForecast_Horizon(t *testing.T) {
	ft := syntheticTable("rifle", 20)
	artifacts := map[string]*store.Artifact{
		"rifle": trainedArtifact(t, ft, "rifle"),
	}

	table, failures := forecaster.Forecast(artifacts, ft, 5)
	assert.Empty(t, failures)

	require.Len(t, table.Dates, 5)
	// Horizon starts the day after the last observed date.
	assert.True(t, table.Dates[0].Equal(time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)))
	assert.True(t, table.Dates[4].Equal(time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)))

	require.Contains(t, table.Predictions, "rifle")
	assert.Len(t, table.Predictions["rifle"], 5)
	for _, p := range table.Predictions["rifle"] {
		// Predictions average observed quantities, all between 1 and 5.
		assert.GreaterOrEqual(t, p, 1.0)
		assert.LessOrEqual(t, p, 5.0)
	}
}

func TestForecast_SchemaMismatchIsPerCategory(t *testing.T) {
	ft := syntheticTable("rifle", 20)

	stale := trainedArtifactWithNames(t, []string{"dayofweek", "month"})
	artifacts := map[string]*store.Artifact{
		"rifle":   trainedArtifact(t, ft, "rifle"),
		"shotgun": stale,
	}

	table, failures := forecaster.Forecast(artifacts, ft, 3)

	require.Contains(t, failures, "shotgun")
	var mismatch *pipelineerror.SchemaMismatchError
	require.ErrorAs(t, failures["shotgun"], &mismatch)
	assert.Equal(t, "shotgun", mismatch.Category)

	// The healthy category still forecasts.
	assert.Equal(t, []string{"rifle"}, table.Categories)
	assert.Contains(t, table.Predictions, "rifle")
	assert.NotContains(t, table.Predictions, "shotgun")
}

func trainedArtifactWithNames(t *testing.T, names []string) *store.Artifact {
	t.Helper()
	featureRows := [][]float64{{0, 1}, {1, 2}, {2, 3}}
	targets := []float64{1, 2, 3}
	params := forest.DefaultParams()
	params.TreeCount = 2
	model, err := forest.Train(featureRows, targets, names, params)
	require.NoError(t, err)
	return &store.Artifact{Category: "shotgun", Model: model}
}

func TestForecast_UnknownFactorLabelFailsCategory(t *testing.T) {
	ft := syntheticTable("rifle", 10)
	artifact := trainedArtifact(t, ft, "rifle")
	// Treat the factor as categorical with an encoding missing "2.5".
	artifact.Encodings = map[string]map[string]float64{
		"economic_indicators": {"low": 0, "high": 1},
	}

	_, failures := forecaster.Forecast(map[string]*store.Artifact{"rifle": artifact}, ft, 3)
	require.Contains(t, failures, "rifle")
	assert.Contains(t, failures["rifle"].Error(), "not seen during training")
}

func TestForecast_UnresolvedFactorFailsCategory(t *testing.T) {
	ft := syntheticTable("rifle", 10)
	for i := range ft.Rows {
		ft.Rows[i].Factors = map[string]string{"economic_indicators": ""}
	}

	artifact := trainedArtifact(t, syntheticTable("rifle", 10), "rifle")
	_, failures := forecaster.Forecast(map[string]*store.Artifact{"rifle": artifact}, ft, 3)
	require.Contains(t, failures, "rifle")
	assert.Contains(t, failures["rifle"].Error(), "no known value")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "sales_forecast_next_90_days.csv", forecaster.FileName(90))
}

func TestWriteCSV(t *testing.T) {
	table := &forecaster.Table{
		Dates: []time.Time{
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		},
		Categories: []string{"handgun", "rifle"},
		Predictions: map[string][]float64{
			"handgun": {1.5, 2},
			"rifle":   {3, 4.25},
		},
	}

	path := filepath.Join(t.TempDir(), forecaster.FileName(2))
	require.NoError(t, table.WriteCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,handgun,rifle", lines[0])
	assert.Equal(t, "2024-02-01,1.5,3", lines[1])
	assert.Equal(t, "2024-02-02,2,4.25", lines[2])
}
