// Package features derives calendar features for every dense-grid cell and
// merges the forward-filled external-factor series onto it.
package features

import (
	"time"

	"fjacquet/scope-forecast/internal/dateutils"
	"fjacquet/scope-forecast/internal/grid"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/table"

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

// Calendar holds the six calendar-derived features of a date.
type Calendar struct {
	DayOfWeek int // 0-6, Monday basis
	Month     int // 1-12
	Day       int // day of month
	Year      int
	Quarter   int // 1-4
	IsWeekend int // 1 when DayOfWeek is 5 or 6
}

// CalendarFor derives the calendar features of a date.
func CalendarFor(date time.Time) Calendar {
	weekend := 0
	if dateutils.IsWeekend(date) {
		weekend = 1
	}
	return Calendar{
		DayOfWeek: dateutils.DayOfWeek(date),
		Month:     int(date.Month()),
		Day:       date.Day(),
		Year:      date.Year(),
		Quarter:   dateutils.Quarter(date),
		IsWeekend: weekend,
	}
}

// Row is one dense-grid cell extended with calendar features and the
// external-factor values of its date. An empty string in Factors marks a
// value that stayed unresolved after forward fill (a leading gap); it is
// never zero-filled here and must be imputed downstream.
type Row struct {
	Date         time.Time
	Category     string
	QuantitySold float64
	Calendar     Calendar
	Factors      map[string]string
}

// Table is the full feature table, ordered date ascending, category
// ascending within a date. FactorColumns carries the external-factor column
// names in source order.
type Table struct {
	Categories    []string
	FactorColumns []string
	Rows          []Row
}

// LastDate returns the most recent date covered by the table.
func (t *Table) LastDate() time.Time {
	if len(t.Rows) == 0 {
		return time.Time{}
	}
	return t.Rows[len(t.Rows)-1].Date
}

// CategorySlice returns the rows belonging to one category, in date order.
func (t *Table) CategorySlice(category string) []Row {
	var rows []Row
	for _, row := range t.Rows {
		if row.Category == category {
			rows = append(rows, row)
		}
	}
	return rows
}

// LastKnownFactors returns the most recent resolved value of each factor
// column, ordered by date. Columns with no resolved value anywhere map to
// the empty string.
func (t *Table) LastKnownFactors() map[string]string {
	last := make(map[string]string, len(t.FactorColumns))
	for _, col := range t.FactorColumns {
		last[col] = ""
	}
	for _, row := range t.Rows {
		for _, col := range t.FactorColumns {
			if v := row.Factors[col]; v != "" {
				last[col] = v
			}
		}
	}
	return last
}

// Build extends the dense grid with calendar features and left-joins the
// external-factor table on date. Factor gaps are forward-filled in date
// order; every category sees identical factor values for a given date.
// Dates before the first known value of a column stay unresolved.
func Build(g *grid.DenseGrid, factors *table.RawTable, dateRole string) *Table {
	factorColumns := make([]string, 0, len(factors.Columns))
	for _, col := range factors.Columns {
		if col != dateRole {
			factorColumns = append(factorColumns, col)
		}
	}

	// Index factor rows by calendar date. At most one row exists per date;
	// when the source violates that, the last row wins.
	byDate := make(map[time.Time]map[string]string, factors.Len())
	for _, row := range factors.Rows {
		parsed, _, err := dateutils.ParseDate(row[dateRole])
		if err != nil {
			log.WithFields(logrus.Fields{
				logging.FieldColumn: dateRole,
				logging.FieldDate:   row[dateRole],
			}).Warn("Skipping external-factor row with unparseable date")
			continue
		}
		byDate[dateutils.Truncate(parsed)] = row
	}

	// Forward-fill per date so all categories of a date share one value set.
	filledByDate := make(map[time.Time]map[string]string, len(g.Dates))
	carried := make(map[string]string, len(factorColumns))
	for _, date := range g.Dates {
		if row, ok := byDate[date]; ok {
			for _, col := range factorColumns {
				if v := row[col]; v != "" {
					carried[col] = v
				}
			}
		}
		values := make(map[string]string, len(factorColumns))
		for _, col := range factorColumns {
			values[col] = carried[col]
		}
		filledByDate[date] = values
	}

	rows := make([]Row, 0, len(g.Cells))
	for _, cell := range g.Cells {
		rows = append(rows, Row{
			Date:         cell.Date,
			Category:     cell.Category,
			QuantitySold: cell.QuantitySold,
			Calendar:     CalendarFor(cell.Date),
			Factors:      filledByDate[cell.Date],
		})
	}

	log.WithFields(logrus.Fields{
		logging.FieldRows: len(rows),
		"factor_columns":  len(factorColumns),
	}).Info("Built feature table")

	return &Table{
		Categories:    g.Categories,
		FactorColumns: factorColumns,
		Rows:          rows,
	}
}

// ForwardFill carries each non-empty value forward into subsequent empty
// positions. Values before the first non-empty entry are left as-is.
// Applying it to an already-filled series is a no-op.
func ForwardFill(values []string) []string {
	filled := make([]string, len(values))
	last := ""
	for i, v := range values {
		if v != "" {
			last = v
		}
		filled[i] = last
	}
	return filled
}
