// Package forest implements a bagged ensemble of CART regression trees with
// impurity-based feature importances. Training is deterministic for a fixed
// random seed.
package forest

import (
	"fmt"
	"math/rand"
)

// Params are the model hyperparameters. MaxDepth of 0 means unbounded.
type Params struct {
	TreeCount       int   `json:"tree_count"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	RandomSeed      int64 `json:"random_seed"`
}

// DefaultParams mirror the reference model configuration.
func DefaultParams() Params {
	return Params{
		TreeCount:       100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		RandomSeed:      42,
	}
}

// Forest is a trained ensemble bound to the ordered feature schema it was
// trained on. Immutable once trained.
type Forest struct {
	Params       Params    `json:"params"`
	FeatureNames []string  `json:"feature_names"`
	Trees        []*Tree   `json:"trees"`
	Importances  []float64 `json:"importances"`
}

// Train fits the ensemble on row-major feature vectors and their targets.
// Each tree is grown on a bootstrap sample drawn from a generator seeded
// with Params.RandomSeed, so identical inputs yield identical models.
func Train(features [][]float64, targets []float64, featureNames []string, params Params) (*Forest, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("cannot train on zero samples")
	}
	if len(features) != len(targets) {
		return nil, fmt.Errorf("feature/target length mismatch: %d vs %d", len(features), len(targets))
	}
	if len(featureNames) != len(features[0]) {
		return nil, fmt.Errorf("feature name/width mismatch: %d names for %d columns", len(featureNames), len(features[0]))
	}
	if params.TreeCount <= 0 {
		return nil, fmt.Errorf("tree count must be positive, got %d", params.TreeCount)
	}

	rng := rand.New(rand.NewSource(params.RandomSeed))
	n := len(features)

	trees := make([]*Tree, 0, params.TreeCount)
	importances := make([]float64, len(featureNames))

	for t := 0; t < params.TreeCount; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}

		builder := &treeBuilder{
			params:      params,
			features:    features,
			targets:     targets,
			total:       n,
			importances: make([]float64, len(featureNames)),
		}
		trees = append(trees, &Tree{Root: builder.build(sample, 0)})

		for i, imp := range builder.importances {
			importances[i] += imp
		}
	}

	// Mean importance across trees, normalized to sum to one.
	var total float64
	for i := range importances {
		importances[i] /= float64(params.TreeCount)
		total += importances[i]
	}
	if total > 0 {
		for i := range importances {
			importances[i] /= total
		}
	}

	return &Forest{
		Params:       params,
		FeatureNames: append([]string(nil), featureNames...),
		Trees:        trees,
		Importances:  importances,
	}, nil
}

// Predict averages the per-tree predictions for one feature vector.
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != len(f.FeatureNames) {
		return 0, fmt.Errorf("expected %d features, got %d", len(f.FeatureNames), len(x))
	}
	var sum float64
	for _, tree := range f.Trees {
		sum += tree.Predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// PredictBatch predicts every row of a feature matrix.
func (f *Forest) PredictBatch(features [][]float64) ([]float64, error) {
	predictions := make([]float64, len(features))
	for i, x := range features {
		p, err := f.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		predictions[i] = p
	}
	return predictions, nil
}
