// Package schema resolves loosely-named source columns to canonical roles
// via ordered substring-pattern matching.
package schema

import (
	"strings"

	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/table"
)

var log = logging.NewLogrusAdapter("info", "text")

// SetLogger sets a custom logger for this package
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// ColumnRole identifies the semantic field a resolved column plays.
type ColumnRole string

// Roles a table column can resolve to.
const (
	RoleDate          ColumnRole = "date"
	RoleCategory      ColumnRole = "category"
	RoleProductID     ColumnRole = "product_id"
	RoleTransactionID ColumnRole = "transaction_id"
	RoleQuantity      ColumnRole = "quantity"
	RoleAmount        ColumnRole = "amount"
)

// Patterns returns the candidate substring patterns for a role, in match
// priority order. Resolution is applied independently per table per role.
func (r ColumnRole) Patterns() []string {
	switch r {
	case RoleDate:
		return []string{"date", "time"}
	case RoleCategory:
		return []string{"categ"}
	case RoleProductID:
		return []string{"product", "id"}
	case RoleTransactionID:
		return []string{"transaction", "id"}
	case RoleQuantity:
		return []string{"quant"}
	case RoleAmount:
		return []string{"total", "price", "amount"}
	default:
		return nil
	}
}

// ResolveRole finds the column of t that plays the given role. Patterns are
// tried in order; the first column (in source order) containing the first
// matching pattern as a case-insensitive substring wins. When no pattern
// matches any column, the table's first column is returned as a best-effort
// fallback with a warning; this may silently produce a wrong mapping, which
// is accepted.
func ResolveRole(t *table.RawTable, patterns []string) string {
	for _, pattern := range patterns {
		needle := strings.ToLower(pattern)
		for _, col := range t.Columns {
			if strings.Contains(strings.ToLower(col), needle) {
				return col
			}
		}
	}

	if len(t.Columns) == 0 {
		return ""
	}

	log.Warn("Could not find column matching patterns, using first column",
		logging.Field{Key: logging.FieldTable, Value: t.Name},
		logging.Field{Key: logging.FieldPatterns, Value: patterns},
		logging.Field{Key: logging.FieldColumn, Value: t.Columns[0]},
	)
	return t.Columns[0]
}

// Resolve maps each requested role onto a column of t.
func Resolve(t *table.RawTable, roles ...ColumnRole) map[ColumnRole]string {
	resolved := make(map[ColumnRole]string, len(roles))
	for _, role := range roles {
		column := ResolveRole(t, role.Patterns())
		log.Debug("Resolved column role",
			logging.Field{Key: logging.FieldTable, Value: t.Name},
			logging.Field{Key: logging.FieldRole, Value: string(role)},
			logging.Field{Key: logging.FieldColumn, Value: column},
		)
		resolved[role] = column
	}
	return resolved
}
