// Package store persists and retrieves pipeline artifacts: trained model
// files keyed by category and the external-factor weighting configuration.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/scope-forecast/internal/fileutils"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/pipelineerror"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	logging.Register(log)
}

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// ModelStore manages the per-category model artifacts under one directory.
type ModelStore struct {
	Directory string
}

// NewModelStore creates a store rooted at the given directory.
func NewModelStore(directory string) *ModelStore {
	return &ModelStore{Directory: directory}
}

// Path returns the artifact path for a category.
func (s *ModelStore) Path(category string) string {
	name := fmt.Sprintf("sales_forecast_%s.json", sanitizeCategory(category))
	return filepath.Join(s.Directory, name)
}

// Save writes the training artifact for a category. The destination handle
// is scoped to this call and flushed and closed on every exit path; a
// failure is reported as a PersistenceError for the category.
func (s *ModelStore) Save(category string, artifact *Artifact) error {
	path := s.Path(category)

	file, err := fileutils.CreateFile(path)
	if err != nil {
		return &pipelineerror.PersistenceError{Category: category, Path: path, Err: err}
	}

	encoder := json.NewEncoder(file)
	encodeErr := encoder.Encode(artifact)
	syncErr := file.Sync()
	closeErr := file.Close()

	for _, err := range []error{encodeErr, syncErr, closeErr} {
		if err != nil {
			return &pipelineerror.PersistenceError{Category: category, Path: path, Err: err}
		}
	}

	log.WithFields(logrus.Fields{
		logging.FieldCategory: category,
		logging.FieldFile:     path,
	}).Info("Model saved")
	return nil
}

// Load reads the training artifact for a category.
func (s *ModelStore) Load(category string) (*Artifact, error) {
	path := s.Path(category)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading model for category %q: %w", category, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decoding model for category %q: %w", category, err)
	}
	if artifact.Model == nil {
		return nil, fmt.Errorf("artifact for category %q has no model", category)
	}
	return &artifact, nil
}

// LoadAll reads the artifact for every given category, skipping categories
// with no artifact (each skip is logged).
func (s *ModelStore) LoadAll(categories []string) (map[string]*Artifact, error) {
	models := make(map[string]*Artifact, len(categories))
	for _, category := range categories {
		model, err := s.Load(category)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.WithField(logging.FieldCategory, category).Warn("No model artifact for category")
				continue
			}
			return nil, err
		}
		models[category] = model
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no model artifacts found under %s", s.Directory)
	}
	return models, nil
}

func sanitizeCategory(category string) string {
	category = strings.TrimSpace(strings.ToLower(category))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, category)
}
