// Package fileutils provides common file operations used throughout the
// pipeline, including the tolerant dataset-file lookup.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/scope-forecast/internal/logging"
)

var log = logging.NewLogrusAdapter("info", "text")

// SetLogger sets a custom logger for this package
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false
	}
	return info != nil && !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		return false
	}
	return info != nil && info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// Locate finds a dataset file in directory, tolerating the naming variants
// seen in upstream data drops. Resolution order:
//  1. exact filename
//  2. filename prefixed with "lowercase_"
//  3. filename title-cased (first letter upper, rest lower)
//
// When no variant exists the exact-match path is returned anyway with a
// warning; callers must treat the subsequent read failure as their own.
func Locate(filename, directory string) string {
	exactPath := filepath.Join(directory, filename)
	if FileExists(exactPath) {
		return exactPath
	}

	lowercasePath := filepath.Join(directory, "lowercase_"+filename)
	if FileExists(lowercasePath) {
		return lowercasePath
	}

	capitalizedPath := filepath.Join(directory, capitalize(filename))
	if FileExists(capitalizedPath) {
		return capitalizedPath
	}

	log.Warn("Could not find file in directory, defaulting to the standard path",
		logging.Field{Key: logging.FieldFile, Value: filename},
		logging.Field{Key: logging.FieldDirectory, Value: directory},
	)
	return exactPath
}

// capitalize uppercases the first letter and lowercases the rest, so the
// tier-3 lookup matches title-cased data drops regardless of source casing.
func capitalize(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

// CreateFile creates or truncates a file for writing, creating parent
// directories as needed.
func CreateFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := EnsureDirectoryExists(dir); err != nil {
		return nil, err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return file, nil
}
