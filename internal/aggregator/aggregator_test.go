package aggregator_test

import (
	"testing"
	"time"

	"fjacquet/scope-forecast/internal/aggregator"
	"fjacquet/scope-forecast/internal/loader"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/table"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDatasets() *loader.Datasets {
	return &loader.Datasets{
		Transactions: &table.RawTable{
			Name:    "transactions",
			Columns: []string{"transaction_id", "transaction_date"},
		},
		TransactionItems: &table.RawTable{
			Name:    "transaction_items",
			Columns: []string{"item_id", "transaction_id", "product_id", "quantity", "line_total"},
		},
		Products: &table.RawTable{
			Name:    "products",
			Columns: []string{"product_id", "product_name", "category"},
		},
		Keys: loader.KeyColumns{
			TransactionsDate: "transaction_date",
			Category:         "category",
			ProductID:        "product_id",
			TransactionID:    "transaction_id",
			Quantity:         "quantity",
			LineTotal:        "line_total",
		},
	}
}

func row(pairs ...string) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return m
}

func TestAggregate_SingleSale(t *testing.T) {
	ds := newDatasets()
	ds.Transactions.Rows = []map[string]string{
		row("transaction_id", "T1", "transaction_date", "2024-01-01 14:22:05"),
	}
	ds.TransactionItems.Rows = []map[string]string{
		row("item_id", "I1", "transaction_id", "T1", "product_id", "P1", "quantity", "2", "line_total", "99.90"),
	}
	ds.Products.Rows = []map[string]string{
		row("product_id", "P1", "product_name", "AR-15", "category", "rifle"),
	}

	records, stats := aggregator.Aggregate(ds)
	require.Len(t, records, 1)

	// Time-of-day is truncated before grouping
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, "rifle", records[0].Category)
	assert.Equal(t, 2.0, records[0].QuantitySold)
	assert.True(t, records[0].SalesAmount.Equal(decimal.RequireFromString("99.90")))

	assert.Equal(t, aggregator.JoinStats{ItemsIn: 1, RowsOut: 1}, stats)
}

func TestAggregate_SumsByDateAndCategory(t *testing.T) {
	ds := newDatasets()
	ds.Transactions.Rows = []map[string]string{
		row("transaction_id", "T1", "transaction_date", "2024-01-01 09:00:00"),
		row("transaction_id", "T2", "transaction_date", "2024-01-01 18:30:00"),
		row("transaction_id", "T3", "transaction_date", "2024-01-02 12:00:00"),
	}
	ds.TransactionItems.Rows = []map[string]string{
		row("item_id", "I1", "transaction_id", "T1", "product_id", "P1", "quantity", "1", "line_total", "10.00"),
		row("item_id", "I2", "transaction_id", "T2", "product_id", "P1", "quantity", "3", "line_total", "30.00"),
		row("item_id", "I3", "transaction_id", "T2", "product_id", "P2", "quantity", "5", "line_total", "12.50"),
		row("item_id", "I4", "transaction_id", "T3", "product_id", "P1", "quantity", "2", "line_total", "20.00"),
	}
	ds.Products.Rows = []map[string]string{
		row("product_id", "P1", "category", "rifle"),
		row("product_id", "P2", "category", "ammunition"),
	}

	records, stats := aggregator.Aggregate(ds)
	require.Len(t, records, 3)
	assert.Equal(t, 4, stats.ItemsIn)
	assert.Equal(t, 3, stats.RowsOut)

	// Records are sorted by date then category
	assert.Equal(t, "ammunition", records[0].Category)
	assert.Equal(t, 5.0, records[0].QuantitySold)

	assert.Equal(t, "rifle", records[1].Category)
	assert.Equal(t, 4.0, records[1].QuantitySold) // T1 + T2 on the same day
	assert.True(t, records[1].SalesAmount.Equal(decimal.RequireFromString("40.00")))

	assert.Equal(t, "rifle", records[2].Category)
	assert.Equal(t, 2.0, records[2].QuantitySold)
}

func TestAggregate_JoinLossIsCountedNotFatal(t *testing.T) {
	ds := newDatasets()
	ds.Transactions.Rows = []map[string]string{
		row("transaction_id", "T1", "transaction_date", "2024-01-01"),
	}
	ds.TransactionItems.Rows = []map[string]string{
		row("item_id", "I1", "transaction_id", "T1", "product_id", "P1", "quantity", "2", "line_total", "5.00"),
		// No matching transaction
		row("item_id", "I2", "transaction_id", "T9", "product_id", "P1", "quantity", "1", "line_total", "2.50"),
		// No matching product
		row("item_id", "I3", "transaction_id", "T1", "product_id", "P9", "quantity", "4", "line_total", "9.00"),
	}
	ds.Products.Rows = []map[string]string{
		row("product_id", "P1", "category", "handgun"),
	}

	records, stats := aggregator.Aggregate(ds)
	require.Len(t, records, 1)
	assert.Equal(t, 2.0, records[0].QuantitySold)

	assert.Equal(t, 3, stats.ItemsIn)
	assert.Equal(t, 1, stats.DroppedNoTransaction)
	assert.Equal(t, 1, stats.DroppedNoProduct)
	assert.Equal(t, 1, stats.RowsOut)
}

// Join loss is silent per item but the aggregate counters are logged so the
// loss stays auditable.
func TestAggregate_LogsJoinStats(t *testing.T) {
	mock := &logging.MockLogger{}
	aggregator.SetLogger(mock)
	t.Cleanup(func() {
		aggregator.SetLogger(logging.NewLogrusAdapter("info", "text"))
	})

	ds := newDatasets()
	ds.Transactions.Rows = []map[string]string{
		row("transaction_id", "T1", "transaction_date", "2024-01-01"),
	}
	ds.TransactionItems.Rows = []map[string]string{
		row("item_id", "I1", "transaction_id", "T1", "product_id", "P1", "quantity", "2", "line_total", "5.00"),
		row("item_id", "I2", "transaction_id", "T9", "product_id", "P1", "quantity", "1", "line_total", "2.50"),
	}
	ds.Products.Rows = []map[string]string{
		row("product_id", "P1", "category", "handgun"),
	}

	aggregator.Aggregate(ds)

	require.True(t, mock.HasMessage("Aggregated sales by date and category"))
	for _, entry := range mock.Entries {
		if entry.Message != "Aggregated sales by date and category" {
			continue
		}
		assert.Equal(t, "INFO", entry.Level)
		assert.Contains(t, entry.Fields, logging.Field{Key: "items_in", Value: 2})
		assert.Contains(t, entry.Fields, logging.Field{Key: "dropped_no_transaction", Value: 1})
		assert.Contains(t, entry.Fields, logging.Field{Key: "rows_out", Value: 1})
	}
}

func TestAggregate_EmptyItems(t *testing.T) {
	ds := newDatasets()

	records, stats := aggregator.Aggregate(ds)
	assert.Empty(t, records)
	assert.Equal(t, aggregator.JoinStats{}, stats)
}

func TestAggregate_UnparseableQuantityAndAmount(t *testing.T) {
	ds := newDatasets()
	ds.Transactions.Rows = []map[string]string{
		row("transaction_id", "T1", "transaction_date", "2024-01-01"),
	}
	ds.TransactionItems.Rows = []map[string]string{
		row("item_id", "I1", "transaction_id", "T1", "product_id", "P1", "quantity", "oops", "line_total", ""),
	}
	ds.Products.Rows = []map[string]string{
		row("product_id", "P1", "category", "shotgun"),
	}

	records, _ := aggregator.Aggregate(ds)
	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].QuantitySold)
	assert.True(t, records[0].SalesAmount.IsZero())
}
