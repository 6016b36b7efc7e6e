package model

import (
	"encoding/json"
	"fmt"
)

// Capability describes what a loaded classifier can report for one input
type Capability int

const (
	// Probabilistic classifiers return a probability per class
	Probabilistic Capability = iota
	// Scoring classifiers return an uncalibrated decision score per class
	Scoring
	// LabelOnly classifiers return only the winning class
	LabelOnly
)

func (c Capability) String() string {
	switch c {
	case Probabilistic:
		return "probabilistic"
	case Scoring:
		return "scoring"
	case LabelOnly:
		return "label_only"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// Classifier is the minimum every classifier kind supports: picking a class index
// for a scaled feature vector
type Classifier interface {
	Predict(x []float64) int
	NumClasses() int
	NumFeatures() int
	// Name is the estimator's class name as reported by /health
	Name() string
}

// ProbabilityEstimator is implemented by classifiers that emit per-class probabilities
type ProbabilityEstimator interface {
	PredictProba(x []float64) []float64
}

// DecisionScorer is implemented by classifiers that emit per-class decision scores
type DecisionScorer interface {
	DecisionFunction(x []float64) []float64
}

// ResolveCapability inspects clf once; probabilities win over scores
func ResolveCapability(clf Classifier) Capability {
	if _, ok := clf.(ProbabilityEstimator); ok {
		return Probabilistic
	}
	if _, ok := clf.(DecisionScorer); ok {
		return Scoring
	}
	return LabelOnly
}

// Classifier kinds accepted in the "type" field of the classifier artifact
const (
	KindLogisticRegression = "logistic_regression"
	KindKNN                = "knn"
	KindLinearSVC          = "linear_svc"
	KindNearestCentroid    = "nearest_centroid"
	KindSVC                = "svc"
)

// classifierFile is the on-disk shape of every classifier kind. Unused fields stay empty.
type classifierFile struct {
	Type      string      `json:"type"`
	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty"`
	Samples   [][]float64 `json:"samples,omitempty"`
	Labels    []int       `json:"labels,omitempty"`
	K         int         `json:"k,omitempty"`
	Classes   int         `json:"n_classes,omitempty"`
	Centroids [][]float64 `json:"centroids,omitempty"`

	Kernel         string      `json:"kernel,omitempty"`
	Gamma          float64     `json:"gamma,omitempty"`
	Coef0          float64     `json:"coef0,omitempty"`
	Degree         int         `json:"degree,omitempty"`
	SupportVectors [][]float64 `json:"support_vectors,omitempty"`
	NSupport       []int       `json:"n_support,omitempty"`
	DualCoef       [][]float64 `json:"dual_coef,omitempty"`
	ProbA          []float64   `json:"prob_a,omitempty"`
	ProbB          []float64   `json:"prob_b,omitempty"`
}

// ParseClassifier decodes a classifier artifact and validates its shapes
func ParseClassifier(data []byte) (Classifier, error) {
	var f classifierFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid classifier json: %w", err)
	}

	switch f.Type {
	case KindLogisticRegression:
		return newLogisticRegression(f.Coef, f.Intercept)
	case KindLinearSVC:
		return newLinearSVC(f.Coef, f.Intercept)
	case KindKNN:
		return newKNN(f.Samples, f.Labels, f.K, f.Classes)
	case KindNearestCentroid:
		return newNearestCentroid(f.Centroids)
	case KindSVC:
		return newSVCClassifier(f)
	case "":
		return nil, fmt.Errorf("classifier type is missing")
	default:
		return nil, fmt.Errorf("unsupported classifier type %q", f.Type)
	}
}

// checkMatrix verifies m is non-empty and rectangular and returns its width
func checkMatrix(name string, m [][]float64) (int, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0, fmt.Errorf("%s is empty", name)
	}
	width := len(m[0])
	for i, row := range m {
		if len(row) != width {
			return 0, fmt.Errorf("%s row %d has %d values, expected %d", name, i, len(row), width)
		}
	}
	return width, nil
}

// argmax returns the first index holding the largest value
func argmax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return best
}
