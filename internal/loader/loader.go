// Package loader locates and loads the four input datasets and resolves the
// key columns each downstream stage depends on.
package loader

import (
	"fmt"

	"fjacquet/scope-forecast/internal/fileutils"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/schema"
	"fjacquet/scope-forecast/internal/table"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	logging.Register(log)
}

// SetLogger sets a custom logger for this package and its collaborators
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Input file names as delivered by the upstream export; Locate tolerates
// their naming variants.
const (
	TransactionsFile     = "gun_retail_transactions.csv"
	TransactionItemsFile = "gun_retail_transaction_items.csv"
	ProductsFile         = "gun_retail_products.csv"
	ExternalFactorsFile  = "gun_retail_external_factors.csv"
)

// KeyColumns holds the resolved column name for every role the pipeline
// needs, per source table.
type KeyColumns struct {
	TransactionsDate    string
	ExternalFactorsDate string
	Category            string
	ProductID           string
	TransactionID       string
	Quantity            string
	LineTotal           string
}

// Datasets bundles the four loaded tables with their resolved key columns.
type Datasets struct {
	Transactions     *table.RawTable
	TransactionItems *table.RawTable
	Products         *table.RawTable
	ExternalFactors  *table.RawTable
	Keys             KeyColumns
}

// Load locates the four dataset files under dataDir, parses them, and
// resolves key columns. Role resolution is applied independently per table
// per role; fallbacks degrade gracefully with warnings.
func Load(dataDir string) (*Datasets, error) {
	transactionsFile := fileutils.Locate(TransactionsFile, dataDir)
	itemsFile := fileutils.Locate(TransactionItemsFile, dataDir)
	productsFile := fileutils.Locate(ProductsFile, dataDir)
	factorsFile := fileutils.Locate(ExternalFactorsFile, dataDir)

	log.WithField(logging.FieldDirectory, dataDir).Info("Loading data")

	transactions, err := table.ReadCSV(transactionsFile, "transactions")
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	items, err := table.ReadCSV(itemsFile, "transaction_items")
	if err != nil {
		return nil, fmt.Errorf("loading transaction items: %w", err)
	}
	products, err := table.ReadCSV(productsFile, "products")
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	factors, err := table.ReadCSV(factorsFile, "external_factors")
	if err != nil {
		return nil, fmt.Errorf("loading external factors: %w", err)
	}

	txRoles := schema.Resolve(transactions, schema.RoleDate)
	productRoles := schema.Resolve(products, schema.RoleCategory)
	itemRoles := schema.Resolve(items,
		schema.RoleProductID, schema.RoleTransactionID, schema.RoleQuantity, schema.RoleAmount)

	keys := KeyColumns{
		TransactionsDate: txRoles[schema.RoleDate],
		// The factor table's date column is matched on "date" alone; "time"
		// would misfire on intraday factor names.
		ExternalFactorsDate: schema.ResolveRole(factors, []string{"date"}),
		Category:            productRoles[schema.RoleCategory],
		ProductID:           itemRoles[schema.RoleProductID],
		TransactionID:       itemRoles[schema.RoleTransactionID],
		Quantity:            itemRoles[schema.RoleQuantity],
		LineTotal:           itemRoles[schema.RoleAmount],
	}

	log.WithFields(logrus.Fields{
		"transactions_date_col":     keys.TransactionsDate,
		"external_factors_date_col": keys.ExternalFactorsDate,
		"category_col":              keys.Category,
		"product_id_col":            keys.ProductID,
		"transaction_id_col":        keys.TransactionID,
		"quantity_col":              keys.Quantity,
		"line_total_col":            keys.LineTotal,
	}).Debug("Resolved key columns")

	return &Datasets{
		Transactions:     transactions,
		TransactionItems: items,
		Products:         products,
		ExternalFactors:  factors,
		Keys:             keys,
	}, nil
}
