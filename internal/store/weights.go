package store

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FactorWeights is the declared external-factor influence weighting. It is
// an extension point: the trainer and forecaster never consult it, but it is
// loaded, validated, and persisted so the configuration surface stays
// round-trippable.
type FactorWeights map[string]float64

// DefaultFactorWeights mirror the reference configuration.
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{
		"political_climate":   0.3,
		"legislation_risk":    0.25,
		"economic_indicators": 0.15,
		"seasonal_factors":    0.2,
		"promotional_events":  0.1,
	}
}

// Validate checks that the weights sum to one within tolerance.
func (w FactorWeights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("factor weights are empty")
	}
	var sum float64
	for factor, weight := range w {
		if weight < 0 {
			return fmt.Errorf("factor %q has negative weight %f", factor, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("factor weights sum to %f, expected 1.0", sum)
	}
	return nil
}

// LoadFactorWeights reads a YAML weights file.
func LoadFactorWeights(path string) (FactorWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading factor weights: %w", err)
	}

	var weights FactorWeights
	if err := yaml.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("parsing factor weights: %w", err)
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}

// SaveFactorWeights writes the weights as YAML.
func SaveFactorWeights(path string, weights FactorWeights) error {
	if err := weights.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(weights)
	if err != nil {
		return fmt.Errorf("marshaling factor weights: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating weights directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing factor weights: %w", err)
	}
	return nil
}
