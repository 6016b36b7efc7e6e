package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kernel names accepted in the "kernel" field of an svc artifact
const (
	KernelRBF     = "rbf"
	KernelLinear  = "linear"
	KernelPoly    = "poly"
	KernelSigmoid = "sigmoid"
)

type kernelFunc func(a, b []float64) float64

func newKernel(name string, gamma, coef0 float64, degree int) (kernelFunc, error) {
	switch name {
	case KernelLinear:
		return func(a, b []float64) float64 { return floats.Dot(a, b) }, nil
	case KernelRBF, KernelPoly, KernelSigmoid:
		if gamma <= 0 {
			return nil, fmt.Errorf("%s kernel needs a positive gamma, got %g", name, gamma)
		}
	case "":
		return nil, fmt.Errorf("svc kernel is missing")
	default:
		return nil, fmt.Errorf("unsupported svc kernel %q", name)
	}

	switch name {
	case KernelRBF:
		return func(a, b []float64) float64 {
			d := floats.Distance(a, b, 2)
			return math.Exp(-gamma * d * d)
		}, nil
	case KernelPoly:
		if degree <= 0 {
			return nil, fmt.Errorf("poly kernel needs a positive degree, got %d", degree)
		}
		return func(a, b []float64) float64 {
			return math.Pow(gamma*floats.Dot(a, b)+coef0, float64(degree))
		}, nil
	default:
		return func(a, b []float64) float64 {
			return math.Tanh(gamma*floats.Dot(a, b) + coef0)
		}, nil
	}
}

// SVC is a kernel support vector classifier trained one-vs-one. Class i's support
// vectors are the n_support[i] rows that follow those of class i-1, and
// dual_coef holds one row per opposing class.
type SVC struct {
	kernel    kernelFunc
	vectors   [][]float64
	start     []int
	nSupport  []int
	dualCoef  [][]float64
	intercept []float64
	features  int
}

func newSVC(f classifierFile) (*SVC, error) {
	classes := len(f.NSupport)
	if classes < 2 {
		return nil, fmt.Errorf("n_support must list at least 2 classes, got %d", classes)
	}

	width, err := checkMatrix("support_vectors", f.SupportVectors)
	if err != nil {
		return nil, err
	}

	start := make([]int, classes)
	total := 0
	for i, n := range f.NSupport {
		if n <= 0 {
			return nil, fmt.Errorf("class %d has %d support vectors", i, n)
		}
		start[i] = total
		total += n
	}
	if total != len(f.SupportVectors) {
		return nil, fmt.Errorf("n_support sums to %d, support_vectors has %d rows", total, len(f.SupportVectors))
	}

	if len(f.DualCoef) != classes-1 {
		return nil, fmt.Errorf("dual_coef has %d rows, expected %d", len(f.DualCoef), classes-1)
	}
	for i, row := range f.DualCoef {
		if len(row) != total {
			return nil, fmt.Errorf("dual_coef row %d has %d values, expected %d", i, len(row), total)
		}
	}

	pairs := classes * (classes - 1) / 2
	if len(f.Intercept) != pairs {
		return nil, fmt.Errorf("intercept has %d values, expected %d class pairs", len(f.Intercept), pairs)
	}

	kernel, err := newKernel(f.Kernel, f.Gamma, f.Coef0, f.Degree)
	if err != nil {
		return nil, err
	}

	return &SVC{
		kernel:    kernel,
		vectors:   f.SupportVectors,
		start:     start,
		nSupport:  f.NSupport,
		dualCoef:  f.DualCoef,
		intercept: f.Intercept,
		features:  width,
	}, nil
}

func (svc *SVC) Name() string     { return "SVC" }
func (svc *SVC) NumFeatures() int { return svc.features }
func (svc *SVC) NumClasses() int  { return len(svc.nSupport) }

// pairwise returns one decision value per class pair (i, j), i < j, in row-major
// order. Positive values favor i.
func (svc *SVC) pairwise(x []float64) []float64 {
	k := make([]float64, len(svc.vectors))
	for i, v := range svc.vectors {
		k[i] = svc.kernel(v, x)
	}

	classes := svc.NumClasses()
	dec := make([]float64, 0, len(svc.intercept))
	p := 0
	for i := 0; i < classes; i++ {
		for j := i + 1; j < classes; j++ {
			si, sj := svc.start[i], svc.start[j]
			coefI, coefJ := svc.dualCoef[j-1], svc.dualCoef[i]

			sum := 0.0
			for n := 0; n < svc.nSupport[i]; n++ {
				sum += coefI[si+n] * k[si+n]
			}
			for n := 0; n < svc.nSupport[j]; n++ {
				sum += coefJ[sj+n] * k[sj+n]
			}
			dec = append(dec, sum+svc.intercept[p])
			p++
		}
	}
	return dec
}

// DecisionFunction folds the pairwise decisions into one score per class: its vote
// count plus a confidence term bounded by 1/3, so votes always dominate
func (svc *SVC) DecisionFunction(x []float64) []float64 {
	classes := svc.NumClasses()
	votes := make([]float64, classes)
	confidence := make([]float64, classes)

	dec := svc.pairwise(x)
	p := 0
	for i := 0; i < classes; i++ {
		for j := i + 1; j < classes; j++ {
			if dec[p] > 0 {
				votes[i]++
			} else {
				votes[j]++
			}
			confidence[i] += dec[p]
			confidence[j] -= dec[p]
			p++
		}
	}

	for i := range votes {
		votes[i] += confidence[i] / (3 * (math.Abs(confidence[i]) + 1))
	}
	return votes
}

// Predict picks the class with the most pairwise wins; ties go to the lower index
func (svc *SVC) Predict(x []float64) int {
	classes := svc.NumClasses()
	votes := make([]float64, classes)

	dec := svc.pairwise(x)
	p := 0
	for i := 0; i < classes; i++ {
		for j := i + 1; j < classes; j++ {
			if dec[p] > 0 {
				votes[i]++
			} else {
				votes[j]++
			}
			p++
		}
	}
	return argmax(votes)
}

// ProbabilisticSVC is an SVC trained with Platt scaling. Each pairwise decision is
// mapped through a fitted sigmoid and the pairwise estimates are coupled into
// one distribution.
type ProbabilisticSVC struct {
	*SVC
	probA []float64
	probB []float64
}

const (
	minPairwiseProb = 1e-7
	maxPairwiseProb = 1 - 1e-7
)

// PredictProba returns class probabilities that sum to 1
func (ps *ProbabilisticSVC) PredictProba(x []float64) []float64 {
	classes := ps.NumClasses()
	r := make([][]float64, classes)
	for i := range r {
		r[i] = make([]float64, classes)
	}

	dec := ps.pairwise(x)
	p := 0
	for i := 0; i < classes; i++ {
		for j := i + 1; j < classes; j++ {
			prob := math.Min(math.Max(plattSigmoid(dec[p], ps.probA[p], ps.probB[p]), minPairwiseProb), maxPairwiseProb)
			r[i][j] = prob
			r[j][i] = 1 - prob
			p++
		}
	}
	return coupleProbabilities(r)
}

// plattSigmoid is 1 / (1 + exp(dec*A + B)), evaluated without overflow
func plattSigmoid(dec, a, b float64) float64 {
	fApB := dec*a + b
	if fApB >= 0 {
		return math.Exp(-fApB) / (1 + math.Exp(-fApB))
	}
	return 1 / (1 + math.Exp(fApB))
}

// coupleProbabilities solves for the class distribution most consistent with the
// pairwise estimates r[i][j] = P(i | i or j), using Wu, Lin and Weng's second method
func coupleProbabilities(r [][]float64) []float64 {
	k := len(r)
	q := make([][]float64, k)
	for t := range q {
		q[t] = make([]float64, k)
		for j := 0; j < k; j++ {
			if j == t {
				continue
			}
			q[t][t] += r[j][t] * r[j][t]
			q[t][j] = -r[j][t] * r[t][j]
		}
	}

	p := make([]float64, k)
	for t := range p {
		p[t] = 1 / float64(k)
	}

	qp := make([]float64, k)
	maxIter := max(100, k)
	eps := 0.005 / float64(k)
	for iter := 0; iter < maxIter; iter++ {
		pQp := 0.0
		for t := 0; t < k; t++ {
			qp[t] = floats.Dot(q[t], p)
			pQp += p[t] * qp[t]
		}

		maxErr := 0.0
		for t := 0; t < k; t++ {
			maxErr = math.Max(maxErr, math.Abs(qp[t]-pQp))
		}
		if maxErr < eps {
			break
		}

		for t := 0; t < k; t++ {
			diff := (-qp[t] + pQp) / q[t][t]
			p[t] += diff
			pQp = (pQp + diff*(diff*q[t][t]+2*qp[t])) / ((1 + diff) * (1 + diff))
			for j := 0; j < k; j++ {
				qp[j] = (qp[j] + diff*q[t][j]) / (1 + diff)
				p[j] /= 1 + diff
			}
		}
	}
	return p
}

func newSVCClassifier(f classifierFile) (Classifier, error) {
	svc, err := newSVC(f)
	if err != nil {
		return nil, err
	}
	if len(f.ProbA) == 0 && len(f.ProbB) == 0 {
		return svc, nil
	}

	pairs := len(svc.intercept)
	if len(f.ProbA) != pairs || len(f.ProbB) != pairs {
		return nil, fmt.Errorf("prob_a and prob_b need %d values each, got %d and %d", pairs, len(f.ProbA), len(f.ProbB))
	}
	return &ProbabilisticSVC{SVC: svc, probA: f.ProbA, probB: f.ProbB}, nil
}
