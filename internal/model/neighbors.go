package model

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KNN is a k-nearest-neighbors classifier with uniform weights and Euclidean distance
type KNN struct {
	samples  [][]float64
	labels   []int
	k        int
	classes  int
	features int
}

func newKNN(samples [][]float64, labels []int, k, classes int) (*KNN, error) {
	width, err := checkMatrix("samples", samples)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(samples) {
		return nil, fmt.Errorf("labels has %d values, samples has %d rows", len(labels), len(samples))
	}
	if k <= 0 {
		k = 5
	}
	if k > len(samples) {
		return nil, fmt.Errorf("k=%d exceeds %d training samples", k, len(samples))
	}

	maxLabel := 0
	for _, l := range labels {
		if l < 0 {
			return nil, fmt.Errorf("negative label %d", l)
		}
		maxLabel = max(maxLabel, l)
	}
	if classes == 0 {
		classes = maxLabel + 1
	}
	if maxLabel >= classes {
		return nil, fmt.Errorf("label %d out of range for %d classes", maxLabel, classes)
	}

	return &KNN{samples: samples, labels: labels, k: k, classes: classes, features: width}, nil
}

func (knn *KNN) Name() string     { return "KNeighborsClassifier" }
func (knn *KNN) NumFeatures() int { return knn.features }
func (knn *KNN) NumClasses() int  { return knn.classes }

// PredictProba returns the fraction of the k nearest samples voting for each class.
// Equal distances keep training order.
func (knn *KNN) PredictProba(x []float64) []float64 {
	order := make([]int, len(knn.samples))
	dist := make([]float64, len(knn.samples))
	for i, s := range knn.samples {
		order[i] = i
		dist[i] = floats.Distance(s, x, 2)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dist[order[a]] < dist[order[b]]
	})

	proba := make([]float64, knn.classes)
	for _, i := range order[:knn.k] {
		proba[knn.labels[i]] += 1.0 / float64(knn.k)
	}
	return proba
}

func (knn *KNN) Predict(x []float64) int {
	return argmax(knn.PredictProba(x))
}

// NearestCentroid assigns the class whose centroid is closest. It reports only a label.
type NearestCentroid struct {
	centroids [][]float64
	features  int
}

func newNearestCentroid(centroids [][]float64) (*NearestCentroid, error) {
	width, err := checkMatrix("centroids", centroids)
	if err != nil {
		return nil, err
	}
	return &NearestCentroid{centroids: centroids, features: width}, nil
}

func (nc *NearestCentroid) Name() string     { return "NearestCentroid" }
func (nc *NearestCentroid) NumFeatures() int { return nc.features }
func (nc *NearestCentroid) NumClasses() int  { return len(nc.centroids) }

func (nc *NearestCentroid) Predict(x []float64) int {
	best, bestDist := 0, floats.Distance(nc.centroids[0], x, 2)
	for i := 1; i < len(nc.centroids); i++ {
		if d := floats.Distance(nc.centroids[i], x, 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
