package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// linearModel computes coef·x + intercept for every class row
type linearModel struct {
	coef      [][]float64
	intercept []float64
	features  int
}

func newLinearModel(coef [][]float64, intercept []float64) (linearModel, error) {
	width, err := checkMatrix("coef", coef)
	if err != nil {
		return linearModel{}, err
	}
	if len(intercept) != len(coef) {
		return linearModel{}, fmt.Errorf("intercept has %d values, coef has %d rows", len(intercept), len(coef))
	}
	return linearModel{coef: coef, intercept: intercept, features: width}, nil
}

func (m linearModel) scores(x []float64) []float64 {
	out := make([]float64, len(m.coef))
	for i, row := range m.coef {
		out[i] = floats.Dot(row, x) + m.intercept[i]
	}
	return out
}

// LogisticRegression is a multinomial logistic regression. A single coefficient row
// is the binary form, scoring the second class against the first.
type LogisticRegression struct {
	linearModel
}

func newLogisticRegression(coef [][]float64, intercept []float64) (*LogisticRegression, error) {
	lm, err := newLinearModel(coef, intercept)
	if err != nil {
		return nil, err
	}
	return &LogisticRegression{linearModel: lm}, nil
}

func (lr *LogisticRegression) Name() string     { return "LogisticRegression" }
func (lr *LogisticRegression) NumFeatures() int { return lr.features }

func (lr *LogisticRegression) NumClasses() int {
	if len(lr.coef) == 1 {
		return 2
	}
	return len(lr.coef)
}

// PredictProba returns class probabilities that sum to 1
func (lr *LogisticRegression) PredictProba(x []float64) []float64 {
	s := lr.scores(x)
	if len(s) == 1 {
		p := 1 / (1 + math.Exp(-s[0]))
		return []float64{1 - p, p}
	}
	return Softmax(s)
}

func (lr *LogisticRegression) Predict(x []float64) int {
	return argmax(lr.PredictProba(x))
}

// LinearSVC is a one-vs-rest linear support vector classifier. It has no
// probability model, only decision scores.
type LinearSVC struct {
	linearModel
}

func newLinearSVC(coef [][]float64, intercept []float64) (*LinearSVC, error) {
	lm, err := newLinearModel(coef, intercept)
	if err != nil {
		return nil, err
	}
	if len(coef) < 2 {
		return nil, fmt.Errorf("linear_svc needs one coef row per class, got %d", len(coef))
	}
	return &LinearSVC{linearModel: lm}, nil
}

func (svc *LinearSVC) Name() string     { return "LinearSVC" }
func (svc *LinearSVC) NumFeatures() int { return svc.features }
func (svc *LinearSVC) NumClasses() int  { return len(svc.coef) }

func (svc *LinearSVC) DecisionFunction(x []float64) []float64 {
	return svc.scores(x)
}

func (svc *LinearSVC) Predict(x []float64) int {
	return argmax(svc.scores(x))
}

// Softmax maps scores to a distribution. The maximum is subtracted first so large
// scores cannot overflow.
func Softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	peak := floats.Max(scores)
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - peak)
		sum += out[i]
	}
	floats.Scale(1/sum, out)
	return out
}
