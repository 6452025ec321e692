// Package aggregator joins transaction line items with their transaction
// headers and product metadata and reduces them to one sales record per
// (date, category) pair.
package aggregator

import (
	"sort"
	"strconv"
	"time"

	"fjacquet/scope-forecast/internal/dateutils"
	"fjacquet/scope-forecast/internal/loader"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/schema"

	"github.com/shopspring/decimal"
)

var log = logging.NewLogrusAdapter("info", "text")

// SetLogger sets a custom logger for this package
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// SalesRecord is the aggregated sales for one (date, category) pair.
// At most one record exists per pair after aggregation.
type SalesRecord struct {
	Date         time.Time       `csv:"-"`
	DateISO      string          `csv:"date"`
	Category     string          `csv:"category"`
	QuantitySold float64         `csv:"quantity_sold"`
	SalesAmount  decimal.Decimal `csv:"sales_amount"`
}

// JoinStats counts rows through the inner joins. Row loss is silent by
// design; these counters exist so it stays auditable.
type JoinStats struct {
	ItemsIn              int
	DroppedNoTransaction int
	DroppedNoProduct     int
	RowsOut              int
}

// Aggregate pairs every item row with its transaction (inner join on the
// transaction-id role) and its product (inner join on the product-id role),
// truncates the transaction timestamp to a calendar date, and sums quantity
// and line total by (date, category). Items with no matching transaction or
// product are dropped silently and counted in JoinStats.
func Aggregate(ds *loader.Datasets) ([]SalesRecord, JoinStats) {
	keys := ds.Keys
	stats := JoinStats{ItemsIn: ds.TransactionItems.Len()}

	// Index transactions by id -> calendar date of the resolved date column.
	// The id column is resolved against the transaction table itself; the
	// items-side resolution only governs the items side of the join.
	txIDCol := schema.ResolveRole(ds.Transactions, schema.RoleTransactionID.Patterns())
	txDates := make(map[string]time.Time, ds.Transactions.Len())
	for _, row := range ds.Transactions.Rows {
		parsed, _, err := dateutils.ParseDate(row[keys.TransactionsDate])
		if err != nil {
			continue
		}
		txDates[row[txIDCol]] = dateutils.Truncate(parsed)
	}

	// Index products by id -> category.
	productIDCol := schema.ResolveRole(ds.Products, schema.RoleProductID.Patterns())
	productCategories := make(map[string]string, ds.Products.Len())
	for _, row := range ds.Products.Rows {
		productCategories[row[productIDCol]] = row[keys.Category]
	}

	type key struct {
		date     time.Time
		category string
	}
	totals := make(map[key]*SalesRecord)

	for _, item := range ds.TransactionItems.Rows {
		date, ok := txDates[item[keys.TransactionID]]
		if !ok {
			stats.DroppedNoTransaction++
			continue
		}
		category, ok := productCategories[item[keys.ProductID]]
		if !ok {
			stats.DroppedNoProduct++
			continue
		}

		quantity, err := strconv.ParseFloat(item[keys.Quantity], 64)
		if err != nil {
			quantity = 0
		}
		amount, err := decimal.NewFromString(item[keys.LineTotal])
		if err != nil {
			amount = decimal.Zero
		}

		k := key{date: date, category: category}
		record, ok := totals[k]
		if !ok {
			record = &SalesRecord{
				Date:     date,
				DateISO:  dateutils.ToISODate(date),
				Category: category,
			}
			totals[k] = record
		}
		record.QuantitySold += quantity
		record.SalesAmount = record.SalesAmount.Add(amount)
	}

	records := make([]SalesRecord, 0, len(totals))
	for _, record := range totals {
		records = append(records, *record)
	}
	// Output order carries no meaning; sort for stable logs and exports.
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].Category < records[j].Category
	})

	stats.RowsOut = len(records)
	log.Info("Aggregated sales by date and category",
		logging.Field{Key: "items_in", Value: stats.ItemsIn},
		logging.Field{Key: "dropped_no_transaction", Value: stats.DroppedNoTransaction},
		logging.Field{Key: "dropped_no_product", Value: stats.DroppedNoProduct},
		logging.Field{Key: "rows_out", Value: stats.RowsOut},
	)

	return records, stats
}
