// Package table defines RawTable, the loosely-schemed tabular representation
// input CSV files are parsed into. No schema is assumed; column names are
// carried exactly as found in the source and resolved later by role.
package table

import (
	"encoding/csv"
	"fmt"
	"os"

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

// RawTable is an ordered sequence of rows keyed by source column name.
// Columns preserves the source header order; resolution fallbacks depend
// on it.
type RawTable struct {
	Name    string
	Columns []string
	Rows    []map[string]string
}

// Cell returns the value at the given row for the given column.
func (t *RawTable) Cell(row int, column string) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][column]
}

// Len returns the number of data rows in the table.
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t *RawTable) Empty() bool {
	return len(t.Rows) == 0
}

// ReadCSV parses a CSV file into a RawTable. The first record is the header;
// short records are padded with empty cells.
func ReadCSV(filePath, name string) (*RawTable, error) {
	log.WithFields(logrus.Fields{
		logging.FieldFile:  filePath,
		logging.FieldTable: name,
	}).Info("Reading CSV file")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	if len(records) == 0 {
		return &RawTable{Name: name}, nil
	}

	columns := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	log.WithFields(logrus.Fields{
		logging.FieldTable: name,
		logging.FieldCount: len(rows),
	}).Info("Successfully read CSV data")

	return &RawTable{Name: name, Columns: columns, Rows: rows}, nil
}
