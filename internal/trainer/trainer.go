// Package trainer fits one regression model per product category, evaluates
// it, and persists the resulting artifact. Categories are mutually
// independent; training fans out across workers and one category's failure
// never aborts the others.
package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"fjacquet/scope-forecast/internal/features"
	"fjacquet/scope-forecast/internal/forest"
	"fjacquet/scope-forecast/internal/logging"
	"fjacquet/scope-forecast/internal/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var log = logrus.New()

func init() {
	logging.Register(log)
}

// SetLogger sets a custom logger for this package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

const cvFolds = 5

// Trainer trains and persists category models with a fixed parameter set.
type Trainer struct {
	Params forest.Params
	Store  *store.ModelStore
}

// New creates a Trainer persisting into the given store.
func New(params forest.Params, modelStore *store.ModelStore) *Trainer {
	return &Trainer{Params: params, Store: modelStore}
}

// Train fits, evaluates, and persists the model for one category. The
// held-out evaluation uses a seeded 80/20 split; the cross-validated R²
// uses 5 contiguous folds over the full category slice.
func (t *Trainer) Train(category string, ft *features.Table) (*store.Artifact, error) {
	rows := ft.CategorySlice(category)
	if len(rows) == 0 {
		return nil, fmt.Errorf("category %q: no rows in feature table", category)
	}

	log.WithFields(logrus.Fields{
		logging.FieldCategory: category,
		logging.FieldRows:     len(rows),
	}).Info("Training model for category")

	matrix, err := buildMatrix(category, rows, ft.FactorColumns)
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx := splitIndices(len(matrix.Rows), 0.2, t.Params.RandomSeed)

	model, err := forest.Train(
		selectRows(matrix.Rows, trainIdx),
		selectValues(matrix.Targets, trainIdx),
		matrix.FeatureNames,
		t.Params,
	)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", category, err)
	}

	// Degenerate slices too small to hold out get evaluated on the
	// training rows; with a daily dense grid this only happens in tests.
	evalIdx := testIdx
	if len(evalIdx) == 0 {
		evalIdx = trainIdx
	}
	predicted, err := model.PredictBatch(selectRows(matrix.Rows, evalIdx))
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", category, err)
	}
	actual := selectValues(matrix.Targets, evalIdx)

	metrics := store.Metrics{
		RMSE: rmse(actual, predicted),
		MAE:  mae(actual, predicted),
		R2:   r2(actual, predicted),
	}
	metrics.CVR2, err = t.crossValidate(matrix)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", category, err)
	}

	artifact := &store.Artifact{
		Category:   category,
		Model:      model,
		Encodings:  matrix.Encodings,
		Metrics:    metrics,
		Importance: rankImportance(model),
	}

	log.WithFields(logrus.Fields{
		logging.FieldCategory: category,
		"rmse":                metrics.RMSE,
		"mae":                 metrics.MAE,
		"r2":                  metrics.R2,
		"cv_r2":               metrics.CVR2,
	}).Info("Model evaluation complete")

	if err := t.Store.Save(category, artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

// TrainAll trains every category concurrently. The returned maps hold one
// entry per category: a persisted artifact on success, an error otherwise.
func (t *Trainer) TrainAll(ctx context.Context, categories []string, ft *features.Table) (map[string]*store.Artifact, map[string]error) {
	var mu sync.Mutex
	artifacts := make(map[string]*store.Artifact, len(categories))
	failures := make(map[string]error)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, category := range categories {
		category := category
		g.Go(func() error {
			artifact, err := t.Train(category, ft)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Fatal for this category only.
				log.WithError(err).WithField(logging.FieldCategory, category).
					Error("Training failed for category")
				failures[category] = err
				return nil
			}
			artifacts[category] = artifact
			return nil
		})
	}
	_ = g.Wait()

	return artifacts, failures
}

// crossValidate computes the mean R² across contiguous folds, refitting the
// model on the complement of each fold.
func (t *Trainer) crossValidate(matrix *Matrix) (float64, error) {
	n := len(matrix.Rows)
	folds := cvFolds
	if n < folds {
		folds = n
	}
	if folds < 2 {
		return 0, nil
	}

	var total float64
	for fold := 0; fold < folds; fold++ {
		start := fold * n / folds
		end := (fold + 1) * n / folds

		var trainIdx, testIdx []int
		for i := 0; i < n; i++ {
			if i >= start && i < end {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}

		model, err := forest.Train(
			selectRows(matrix.Rows, trainIdx),
			selectValues(matrix.Targets, trainIdx),
			matrix.FeatureNames,
			t.Params,
		)
		if err != nil {
			return 0, err
		}
		predicted, err := model.PredictBatch(selectRows(matrix.Rows, testIdx))
		if err != nil {
			return 0, err
		}
		total += r2(selectValues(matrix.Targets, testIdx), predicted)
	}
	return total / float64(folds), nil
}

// splitIndices shuffles 0..n-1 with the given seed and carves off the test
// share from the tail, mirroring a seeded train/test split.
func splitIndices(n int, testShare float64, seed int64) (train, test []int) {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	testCount := int(float64(n) * testShare)
	if testCount == 0 && n > 1 {
		testCount = 1
	}
	return indices[:n-testCount], indices[n-testCount:]
}

func selectRows(rows [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = rows[idx]
	}
	return out
}

func selectValues(values []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = values[idx]
	}
	return out
}

// rankImportance pairs feature names with importances, descending; ties
// break by schema order for stability.
func rankImportance(model *forest.Forest) []store.ImportanceEntry {
	entries := make([]store.ImportanceEntry, len(model.FeatureNames))
	for i, name := range model.FeatureNames {
		entries[i] = store.ImportanceEntry{Feature: name, Importance: model.Importances[i]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Importance > entries[j].Importance
	})
	return entries
}
