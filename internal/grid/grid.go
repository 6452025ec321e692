// Package grid expands aggregated sales into a dense date-by-category grid
// with no missing cells, the canonical representation the feature stages
// build on.
package grid

import (
	"sort"
	"time"

	"fjacquet/scope-forecast/internal/aggregator"
	"fjacquet/scope-forecast/internal/dateutils"
	"fjacquet/scope-forecast/internal/pipelineerror"

	"github.com/shopspring/decimal"
)

// Cell is one (date, category) entry of the dense grid. Cells with no
// observed sales carry zero quantity and amount.
type Cell struct {
	Date         time.Time
	Category     string
	QuantitySold float64
	SalesAmount  decimal.Decimal
}

// DenseGrid is the complete cross product of every date in the observed
// range with every category observed in the data. Rows are ordered by date
// ascending, category ascending within a date.
type DenseGrid struct {
	Dates      []time.Time
	Categories []string
	Cells      []Cell
}

// Complete builds the dense grid from aggregated sales. The date range is
// [min observed date, max observed date] at a daily step; the category set
// is the distinct set observed in the records, never an external list.
// Returns EmptyInputError when sales is empty, since the date range would
// be undefined.
func Complete(sales []aggregator.SalesRecord) (*DenseGrid, error) {
	if len(sales) == 0 {
		return nil, &pipelineerror.EmptyInputError{Table: "daily_sales"}
	}

	minDate := sales[0].Date
	maxDate := sales[0].Date
	categorySet := make(map[string]struct{})
	for _, record := range sales {
		if record.Date.Before(minDate) {
			minDate = record.Date
		}
		if record.Date.After(maxDate) {
			maxDate = record.Date
		}
		categorySet[record.Category] = struct{}{}
	}

	categories := make([]string, 0, len(categorySet))
	for category := range categorySet {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	dates := dateutils.DailyRange(minDate, maxDate)

	type key struct {
		date     time.Time
		category string
	}
	observed := make(map[key]aggregator.SalesRecord, len(sales))
	for _, record := range sales {
		observed[key{record.Date, record.Category}] = record
	}

	cells := make([]Cell, 0, len(dates)*len(categories))
	for _, date := range dates {
		for _, category := range categories {
			cell := Cell{
				Date:        date,
				Category:    category,
				SalesAmount: decimal.Zero,
			}
			if record, ok := observed[key{date, category}]; ok {
				cell.QuantitySold = record.QuantitySold
				cell.SalesAmount = record.SalesAmount
			}
			cells = append(cells, cell)
		}
	}

	return &DenseGrid{Dates: dates, Categories: categories, Cells: cells}, nil
}

// Pivot returns the quantity-sold pivot of the grid: one row per date, one
// value per category, zero-filled. Row order follows Dates, column order
// follows Categories.
func (g *DenseGrid) Pivot() [][]float64 {
	index := make(map[string]int, len(g.Categories))
	for i, category := range g.Categories {
		index[category] = i
	}

	rows := make([][]float64, len(g.Dates))
	for i := range rows {
		rows[i] = make([]float64, len(g.Categories))
	}

	dateIndex := make(map[time.Time]int, len(g.Dates))
	for i, date := range g.Dates {
		dateIndex[date] = i
	}

	for _, cell := range g.Cells {
		rows[dateIndex[cell.Date]][index[cell.Category]] = cell.QuantitySold
	}
	return rows
}
