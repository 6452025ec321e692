// Package pipelineerror defines the typed errors raised by the forecasting
// pipeline. Resolution and file-location fallbacks are warnings, not errors;
// everything here is fatal for at least the affected category.
package pipelineerror

import "fmt"

// EmptyInputError is raised when a required table is empty before grid
// construction, leaving the date range undefined.
type EmptyInputError struct {
	Table string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: %s has no rows, date range is undefined", e.Table)
}

// MissingValueError reports an unresolved value that reached the model
// training boundary without imputation.
type MissingValueError struct {
	Category string
	Column   string
	Rows     int
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("category %q: column %q still has %d unresolved values at the training boundary",
		e.Category, e.Column, e.Rows)
}

// SchemaMismatchError reports a feature-schema mismatch between a trained
// model and the rows handed to it for prediction.
type SchemaMismatchError struct {
	Category string
	Expected []string
	Actual   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("category %q: feature schema mismatch: model trained on %v, got %v",
		e.Category, e.Expected, e.Actual)
}

// PersistenceError reports a failure to write a model or forecast artifact.
type PersistenceError struct {
	Category string
	Path     string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("category %q: failed to persist artifact to %s: %v", e.Category, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
