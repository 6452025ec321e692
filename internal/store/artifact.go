package store

import "fjacquet/scope-forecast/internal/forest"

// Metrics are the evaluation results for one category model.
type Metrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
	CVR2 float64 `json:"cv_r2"`
}

// ImportanceEntry is one feature with its importance score.
type ImportanceEntry struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Artifact is the persisted training output for one category: the trained
// model, the label encodings its non-numeric features were trained with,
// its evaluation metrics, and the importance ranking (descending).
// Immutable once persisted.
type Artifact struct {
	Category   string                        `json:"category"`
	Model      *forest.Forest                `json:"model"`
	Encodings  map[string]map[string]float64 `json:"encodings,omitempty"`
	Metrics    Metrics                       `json:"metrics"`
	Importance []ImportanceEntry             `json:"importance"`
}
