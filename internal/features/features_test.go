package features_test

import (
	"testing"
	"time"

	"fjacquet/scope-forecast/internal/aggregator"
	"fjacquet/scope-forecast/internal/features"
	"fjacquet/scope-forecast/internal/grid"
	"fjacquet/scope-forecast/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func buildGrid(t *testing.T, sales []aggregator.SalesRecord) *grid.DenseGrid {
	t.Helper()
	g, err := grid.Complete(sales)
	require.NoError(t, err)
	return g
}

func factorTable(rows ...map[string]string) *table.RawTable {
	return &table.RawTable{
		Name:    "external_factors",
		Columns: []string{"date", "political_climate", "economic_indicators"},
		Rows:    rows,
	}
}

func TestCalendarFor(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want features.Calendar
	}{
		{
			name: "monday in q1",
			date: day(1), // 2024-01-01 is a Monday
			want: features.Calendar{DayOfWeek: 0, Month: 1, Day: 1, Year: 2024, Quarter: 1, IsWeekend: 0},
		},
		{
			name: "saturday is weekend",
			date: day(6),
			want: features.Calendar{DayOfWeek: 5, Month: 1, Day: 6, Year: 2024, Quarter: 1, IsWeekend: 1},
		},
		{
			name: "sunday is weekend",
			date: day(7),
			want: features.Calendar{DayOfWeek: 6, Month: 1, Day: 7, Year: 2024, Quarter: 1, IsWeekend: 1},
		},
		{
			name: "q4 date",
			date: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
			want: features.Calendar{DayOfWeek: 4, Month: 11, Day: 15, Year: 2024, Quarter: 4, IsWeekend: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, features.CalendarFor(tt.date))
		})
	}
}

func TestBuild_ForwardFillsFactorGaps(t *testing.T) {
	g := buildGrid(t, []aggregator.SalesRecord{
		{Date: day(1), Category: "rifle", QuantitySold: 1},
		{Date: day(4), Category: "rifle", QuantitySold: 2},
	})

	factors := factorTable(
		map[string]string{"date": "2024-01-01", "political_climate": "stable", "economic_indicators": "2.1"},
		map[string]string{"date": "2024-01-03", "political_climate": "tense", "economic_indicators": ""},
	)

	ft := features.Build(g, factors, "date")

	require.Equal(t, []string{"political_climate", "economic_indicators"}, ft.FactorColumns)
	require.Len(t, ft.Rows, 4)

	// Jan 2 has no factor row: both values carry forward from Jan 1.
	assert.Equal(t, "stable", ft.Rows[1].Factors["political_climate"])
	assert.Equal(t, "2.1", ft.Rows[1].Factors["economic_indicators"])

	// Jan 3 updates political_climate but its empty economic value carries.
	assert.Equal(t, "tense", ft.Rows[2].Factors["political_climate"])
	assert.Equal(t, "2.1", ft.Rows[2].Factors["economic_indicators"])

	// Jan 4 still carries the Jan 3 state.
	assert.Equal(t, "tense", ft.Rows[3].Factors["political_climate"])
}

func TestBuild_LeadingGapStaysUnresolved(t *testing.T) {
	g := buildGrid(t, []aggregator.SalesRecord{
		{Date: day(1), Category: "rifle", QuantitySold: 1},
		{Date: day(3), Category: "rifle", QuantitySold: 1},
	})

	factors := factorTable(
		map[string]string{"date": "2024-01-02", "political_climate": "stable", "economic_indicators": "2.1"},
	)

	ft := features.Build(g, factors, "date")

	// Nothing known before Jan 2: the Jan 1 row stays unresolved.
	assert.Equal(t, "", ft.Rows[0].Factors["political_climate"])
	assert.Equal(t, "stable", ft.Rows[1].Factors["political_climate"])
	assert.Equal(t, "stable", ft.Rows[2].Factors["political_climate"])
}

func TestBuild_FactorsIdenticalAcrossCategories(t *testing.T) {
	g := buildGrid(t, []aggregator.SalesRecord{
		{Date: day(1), Category: "rifle", QuantitySold: 1},
		{Date: day(2), Category: "handgun", QuantitySold: 1},
	})

	factors := factorTable(
		map[string]string{"date": "2024-01-01", "political_climate": "stable", "economic_indicators": "2.1"},
	)

	ft := features.Build(g, factors, "date")

	byDate := make(map[time.Time][]features.Row)
	for _, row := range ft.Rows {
		byDate[row.Date] = append(byDate[row.Date], row)
	}
	for _, rows := range byDate {
		require.Len(t, rows, 2)
		assert.Equal(t, rows[0].Factors, rows[1].Factors)
	}
}

func TestBuild_SkipsUnparseableFactorDates(t *testing.T) {
	g := buildGrid(t, []aggregator.SalesRecord{
		{Date: day(1), Category: "rifle", QuantitySold: 1},
	})

	factors := factorTable(
		map[string]string{"date": "not-a-date", "political_climate": "stable", "economic_indicators": "2.1"},
	)

	ft := features.Build(g, factors, "date")
	assert.Equal(t, "", ft.Rows[0].Factors["political_climate"])
}

func TestTable_CategorySliceAndLastDate(t *testing.T) {
	g := buildGrid(t, []aggregator.SalesRecord{
		{Date: day(1), Category: "rifle", QuantitySold: 1},
		{Date: day(3), Category: "handgun", QuantitySold: 2},
	})

	ft := features.Build(g, factorTable(), "date")

	assert.True(t, ft.LastDate().Equal(day(3)))

	rifles := ft.CategorySlice("rifle")
	require.Len(t, rifles, 3)
	for _, row := range rifles {
		assert.Equal(t, "rifle", row.Category)
	}
	assert.True(t, rifles[0].Date.Before(rifles[1].Date))
}

func TestTable_LastKnownFactors(t *testing.T) {
	g := buildGrid(t, []aggregator.SalesRecord{
		{Date: day(1), Category: "rifle", QuantitySold: 1},
		{Date: day(3), Category: "rifle", QuantitySold: 1},
	})

	factors := factorTable(
		map[string]string{"date": "2024-01-01", "political_climate": "stable", "economic_indicators": "2.1"},
		map[string]string{"date": "2024-01-02", "political_climate": "tense", "economic_indicators": ""},
	)

	ft := features.Build(g, factors, "date")
	last := ft.LastKnownFactors()
	assert.Equal(t, "tense", last["political_climate"])
	assert.Equal(t, "2.1", last["economic_indicators"])
}

func TestForwardFill(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"fills gaps", []string{"a", "", "", "b", ""}, []string{"a", "a", "a", "b", "b"}},
		{"leading gap untouched", []string{"", "", "a", ""}, []string{"", "", "a", "a"}},
		{"already filled is a no-op", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"all empty", []string{"", ""}, []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, features.ForwardFill(tt.values))
		})
	}
}
