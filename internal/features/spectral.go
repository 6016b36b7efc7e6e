package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	rolloffPercent = 0.85
	zcrThreshold   = 1e-10
)

// rmsFrames computes root-mean-square energy of zero-padded, unwindowed frames
func rmsFrames(y []float64) []float64 {
	padded := padConstant(y, nFFT/2)
	frames := numFrames(len(y))
	out := make([]float64, frames)
	for t := 0; t < frames; t++ {
		frame := padded[t*hopLength : t*hopLength+nFFT]
		out[t] = math.Sqrt(floats.Dot(frame, frame) / nFFT)
	}
	return out
}

// zeroCrossingRate counts sign changes per frame over edge-padded frames.
// Values within zcrThreshold of zero count as positive.
func zeroCrossingRate(y []float64) []float64 {
	padded := padEdge(y, nFFT/2)
	negative := make([]bool, len(padded))
	for i, v := range padded {
		if math.Abs(v) <= zcrThreshold {
			v = 0
		}
		negative[i] = math.Signbit(v)
	}

	frames := numFrames(len(y))
	out := make([]float64, frames)
	for t := 0; t < frames; t++ {
		start := t * hopLength
		crossings := 0
		for i := start + 1; i < start+nFFT; i++ {
			if negative[i] != negative[i-1] {
				crossings++
			}
		}
		out[t] = float64(crossings) / nFFT
	}
	return out
}

// spectralShape holds the per-frame centroid, bandwidth and rolloff of a magnitude spectrogram
type spectralShape struct {
	centroid  []float64
	bandwidth []float64
	rolloff   []float64
}

// spectralShapes computes centroid, second-order bandwidth and rolloff frequency per frame.
// A silent frame yields zero for all three.
func spectralShapes(mag [][]float64) spectralShape {
	freqs := fftFrequencies()
	shape := spectralShape{
		centroid:  make([]float64, len(mag)),
		bandwidth: make([]float64, len(mag)),
		rolloff:   make([]float64, len(mag)),
	}

	cumulative := make([]float64, nBins)
	for t, row := range mag {
		total := floats.Sum(row)
		norm := total
		if norm < tiny {
			norm = 1
		}

		centroid := 0.0
		for k, s := range row {
			centroid += freqs[k] * s / norm
		}

		spread := 0.0
		for k, s := range row {
			d := freqs[k] - centroid
			spread += s / norm * d * d
		}

		floats.CumSum(cumulative, row)
		threshold := rolloffPercent * cumulative[nBins-1]
		rolloff := 0.0
		for k, c := range cumulative {
			if c >= threshold {
				rolloff = freqs[k]
				break
			}
		}

		shape.centroid[t] = centroid
		shape.bandwidth[t] = math.Sqrt(spread)
		shape.rolloff[t] = rolloff
	}
	return shape
}
