// Package exporter writes the fixed-schema CSV outputs consumed by the
// dashboard: the aggregated daily sales, the quantity pivot, and the
// per-category model metrics.
package exporter

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"fjacquet/scope-forecast/internal/aggregator"
	"fjacquet/scope-forecast/internal/dateutils"
	"fjacquet/scope-forecast/internal/fileutils"
	"fjacquet/scope-forecast/internal/grid"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/store"

	"github.com/gocarina/gocsv"
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

// WriteDailySales writes the aggregated (date, category) sales records.
func WriteDailySales(records []aggregator.SalesRecord, filePath string) error {
	return writeStructs(records, filePath, "daily sales")
}

// MetricsRow is one category's evaluation summary in the metrics export.
type MetricsRow struct {
	Category   string  `csv:"category"`
	RMSE       float64 `csv:"rmse"`
	MAE        float64 `csv:"mae"`
	R2         float64 `csv:"r2"`
	CVR2       float64 `csv:"cv_r2"`
	TopFeature string  `csv:"top_feature"`
}

// WriteMetrics writes one row per trained category, sorted by category.
func WriteMetrics(artifacts map[string]*store.Artifact, filePath string) error {
	categories := make([]string, 0, len(artifacts))
	for category := range artifacts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rows := make([]MetricsRow, 0, len(categories))
	for _, category := range categories {
		artifact := artifacts[category]
		row := MetricsRow{
			Category: category,
			RMSE:     artifact.Metrics.RMSE,
			MAE:      artifact.Metrics.MAE,
			R2:       artifact.Metrics.R2,
			CVR2:     artifact.Metrics.CVR2,
		}
		if len(artifact.Importance) > 0 {
			row.TopFeature = artifact.Importance[0].Feature
		}
		rows = append(rows, row)
	}

	return writeStructs(rows, filePath, "model metrics")
}

// WritePivot writes the date-by-category quantity pivot of the dense grid.
// The category columns are dynamic, so this one bypasses struct tags.
func WritePivot(g *grid.DenseGrid, filePath string) error {
	file, err := fileutils.CreateFile(filePath)
	if err != nil {
		return fmt.Errorf("creating pivot file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	pivot := g.Pivot()
	writer := csv.NewWriter(file)
	if err := writer.Write(append([]string{"date"}, g.Categories...)); err != nil {
		return fmt.Errorf("writing pivot header: %w", err)
	}
	for i, date := range g.Dates {
		record := make([]string, 0, len(g.Categories)+1)
		record = append(record, dateutils.ToISODate(date))
		for _, v := range pivot[i] {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing pivot row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing pivot file: %w", err)
	}
	return nil
}

func writeStructs[T any](rows []T, filePath, what string) error {
	log.WithFields(logrus.Fields{
		logging.FieldOutputFile: filePath,
		logging.FieldCount:      len(rows),
	}).Info("Writing " + what)

	file, err := fileutils.CreateFile(filePath)
	if err != nil {
		return fmt.Errorf("creating %s file: %w", what, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	return nil
}
