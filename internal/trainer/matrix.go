package trainer

import (
	"sort"
	"strconv"

	"fjacquet/scope-forecast/internal/features"
	"fjacquet/scope-forecast/internal/pipelineerror"
)

// Calendar feature names, in the order they appear in the feature schema.
var calendarFeatures = []string{"dayofweek", "month", "day", "year", "quarter", "is_weekend"}

// Matrix is a category's feature slice as an ordered numeric matrix, with
// the label encodings applied to its non-numeric factor columns.
type Matrix struct {
	FeatureNames []string
	Rows         [][]float64
	Targets      []float64
	Encodings    map[string]map[string]float64
}

// buildMatrix turns a category slice into a numeric matrix. Identifier
// columns (date, category) are dropped; the feature schema is the six
// calendar features followed by the factor columns in source order.
//
// Residual gaps are imputed over this slice only: numeric columns with the
// column mean, non-numeric columns with the column mode. A column with no
// resolved value anywhere in the slice cannot be imputed and is fatal.
// Non-numeric columns are label-encoded with a deterministic lexicographic
// code table.
func buildMatrix(category string, rows []features.Row, factorColumns []string) (*Matrix, error) {
	names := append(append([]string(nil), calendarFeatures...), factorColumns...)

	// Resolve each factor column to numeric values, imputing as needed.
	factorValues := make(map[string][]float64, len(factorColumns))
	encodings := make(map[string]map[string]float64)
	for _, col := range factorColumns {
		raw := make([]string, len(rows))
		missing := 0
		for i, row := range rows {
			raw[i] = row.Factors[col]
			if raw[i] == "" {
				missing++
			}
		}
		if missing == len(rows) {
			return nil, &pipelineerror.MissingValueError{Category: category, Column: col, Rows: missing}
		}

		if numeric, ok := parseNumericColumn(raw); ok {
			factorValues[col] = imputeMean(numeric)
			continue
		}

		imputed := imputeMode(raw)
		encoded, table := labelEncode(imputed)
		factorValues[col] = encoded
		encodings[col] = table
	}

	matrix := &Matrix{
		FeatureNames: names,
		Rows:         make([][]float64, len(rows)),
		Targets:      make([]float64, len(rows)),
		Encodings:    encodings,
	}
	for i, row := range rows {
		vector := make([]float64, 0, len(names))
		c := row.Calendar
		vector = append(vector,
			float64(c.DayOfWeek),
			float64(c.Month),
			float64(c.Day),
			float64(c.Year),
			float64(c.Quarter),
			float64(c.IsWeekend),
		)
		for _, col := range factorColumns {
			vector = append(vector, factorValues[col][i])
		}
		matrix.Rows[i] = vector
		matrix.Targets[i] = row.QuantitySold
	}

	return matrix, nil
}

// parseNumericColumn parses every resolved value as a float. Returns false
// when any resolved value is non-numeric, marking the column categorical.
// Unresolved entries stay marked for imputeMean.
func parseNumericColumn(raw []string) ([]columnValue, bool) {
	values := make([]columnValue, len(raw))
	for i, v := range raw {
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		values[i] = columnValue{value: f, resolved: true}
	}
	return values, true
}

type columnValue struct {
	value    float64
	resolved bool
}

// imputeMean replaces unresolved entries with the mean of the resolved ones.
func imputeMean(values []columnValue) []float64 {
	var sum float64
	var count int
	for _, v := range values {
		if v.resolved {
			sum += v.value
			count++
		}
	}
	mean := sum / float64(count)

	out := make([]float64, len(values))
	for i, v := range values {
		if v.resolved {
			out[i] = v.value
		} else {
			out[i] = mean
		}
	}
	return out
}

// imputeMode replaces unresolved entries with the most frequent resolved
// value; ties break lexicographically for determinism.
func imputeMode(raw []string) []string {
	counts := make(map[string]int)
	for _, v := range raw {
		if v != "" {
			counts[v]++
		}
	}

	mode := ""
	for v, n := range counts {
		if mode == "" || n > counts[mode] || (n == counts[mode] && v < mode) {
			mode = v
		}
	}

	out := make([]string, len(raw))
	for i, v := range raw {
		if v == "" {
			out[i] = mode
		} else {
			out[i] = v
		}
	}
	return out
}

// labelEncode maps distinct values to codes by lexicographic order.
func labelEncode(values []string) ([]float64, map[string]float64) {
	distinct := make(map[string]struct{})
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	ordered := make([]string, 0, len(distinct))
	for v := range distinct {
		ordered = append(ordered, v)
	}
	sort.Strings(ordered)

	table := make(map[string]float64, len(ordered))
	for i, v := range ordered {
		table[v] = float64(i)
	}

	encoded := make([]float64, len(values))
	for i, v := range values {
		encoded[i] = table[v]
	}
	return encoded, table
}
