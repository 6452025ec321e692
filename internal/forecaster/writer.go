package forecaster

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"fjacquet/scope-forecast/internal/dateutils"
	"fjacquet/scope-forecast/internal/fileutils"
	"fjacquet/scope-forecast/internal/logging"

	"github.com/sirupsen/logrus"
)

// FileName returns the forecast output file name for a horizon.
func FileName(horizonDays int) string {
	return fmt.Sprintf("sales_forecast_next_%d_days.csv", horizonDays)
}

// WriteCSV writes the forecast table: one row per future date, a date
// column followed by one prediction column per category. The table has one
// column per category, so the schema is dynamic and written directly.
func (t *Table) WriteCSV(filePath string) error {
	file, err := fileutils.CreateFile(filePath)
	if err != nil {
		return fmt.Errorf("creating forecast file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close forecast file")
		}
	}()

	writer := csv.NewWriter(file)

	header := append([]string{"date"}, t.Categories...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing forecast header: %w", err)
	}

	for i, date := range t.Dates {
		record := make([]string, 0, len(header))
		record = append(record, dateutils.ToISODate(date))
		for _, category := range t.Categories {
			record = append(record, strconv.FormatFloat(t.Predictions[category][i], 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing forecast row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing forecast file: %w", err)
	}

	log.WithFields(logrus.Fields{
		logging.FieldOutputFile: filePath,
		logging.FieldRows:       len(t.Dates),
	}).Info("Forecast saved")
	return nil
}
