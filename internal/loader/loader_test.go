package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/scope-forecast/internal/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func seedDir(t *testing.T) string {
	dir := t.TempDir()
	writeCSV(t, dir, loader.TransactionsFile, "transaction_id,transaction_date\nt1,2024-01-01\n")
	writeCSV(t, dir, loader.TransactionItemsFile, "transaction_id,product_id,quantity,line_total\nt1,p1,2,99.90\n")
	writeCSV(t, dir, loader.ProductsFile, "product_id,category\np1,ammunition\n")
	writeCSV(t, dir, loader.ExternalFactorsFile, "date,political_climate\n2024-01-01,stable\n")
	return dir
}

func TestLoad_ResolvesKeyColumns(t *testing.T) {
	ds, err := loader.Load(seedDir(t))
	require.NoError(t, err)

	assert.Equal(t, "transaction_date", ds.Keys.TransactionsDate)
	assert.Equal(t, "date", ds.Keys.ExternalFactorsDate)
	assert.Equal(t, "category", ds.Keys.Category)
	assert.Equal(t, "product_id", ds.Keys.ProductID)
	assert.Equal(t, "transaction_id", ds.Keys.TransactionID)
	assert.Equal(t, "quantity", ds.Keys.Quantity)
	assert.Equal(t, "line_total", ds.Keys.LineTotal)

	assert.Equal(t, 1, ds.Transactions.Len())
	assert.Equal(t, 1, ds.TransactionItems.Len())
	assert.Equal(t, 1, ds.Products.Len())
	assert.Equal(t, 1, ds.ExternalFactors.Len())
}

func TestLoad_ToleratesNamingVariants(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "lowercase_"+loader.TransactionsFile, "transaction_id,transaction_date\nt1,2024-01-01\n")
	writeCSV(t, dir, "Gun_retail_transaction_items.csv", "transaction_id,product_id,quantity,line_total\n")
	writeCSV(t, dir, loader.ProductsFile, "product_id,category\n")
	writeCSV(t, dir, loader.ExternalFactorsFile, "date,political_climate\n")

	ds, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Transactions.Len())
	assert.Equal(t, 0, ds.TransactionItems.Len())
}

func TestLoad_MissingFileFails(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, loader.TransactionsFile, "transaction_id,transaction_date\n")

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction items")
}

func TestLoad_AmbiguousHeadersStillResolve(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, loader.TransactionsFile, "created_time,txn\n2024-01-01,t1\n")
	writeCSV(t, dir, loader.TransactionItemsFile, "ref,sku,quantity_ordered,unit_price\nt1,p1,1,10\n")
	writeCSV(t, dir, loader.ProductsFile, "sku,type\np1,ammunition\n")
	writeCSV(t, dir, loader.ExternalFactorsFile, "date,political_climate\n")

	ds, err := loader.Load(dir)
	require.NoError(t, err)

	// Pattern matching is substring based: "created_time" matches the date
	// role, "quantity_ordered" the quantity role, "unit_price" the line total.
	assert.Equal(t, "created_time", ds.Keys.TransactionsDate)
	assert.Equal(t, "quantity_ordered", ds.Keys.Quantity)
	assert.Equal(t, "unit_price", ds.Keys.LineTotal)
	// No header matches the product-id patterns: the first column stands in.
	assert.Equal(t, "ref", ds.Keys.ProductID)
}
