package features

import (
	"math"
	"sync"
)

const (
	nMels = 128
	amin  = 1e-10
	topDB = 80.0
)

// Slaney mel scale: linear below 1 kHz, logarithmic above
const (
	melFSp      = 200.0 / 3
	melMinLogHz = 1000.0
	melMinLog   = melMinLogHz / melFSp
)

var melLogStep = math.Log(6.4) / 27.0

var (
	melOnce   sync.Once
	melBasis  [][]float64
	dctOnce   sync.Once
	dctMatrix [][]float64
)

func hzToMel(f float64) float64 {
	if f >= melMinLogHz {
		return melMinLog + math.Log(f/melMinLogHz)/melLogStep
	}
	return f / melFSp
}

func melToHz(m float64) float64 {
	if m >= melMinLog {
		return melMinLogHz * math.Exp(melLogStep*(m-melMinLog))
	}
	return melFSp * m
}

// melFilters returns the [nMels][nBins] triangular, area-normalized mel filter bank spanning 0 Hz to Nyquist
func melFilters() [][]float64 {
	melOnce.Do(func() {
		fftFreqs := fftFrequencies()
		melPoints := linspace(hzToMel(0), hzToMel(sampleRate/2.0), nMels+2)
		melF := make([]float64, len(melPoints))
		for i, m := range melPoints {
			melF[i] = melToHz(m)
		}

		melBasis = make([][]float64, nMels)
		for i := 0; i < nMels; i++ {
			lowerWidth := melF[i+1] - melF[i]
			upperWidth := melF[i+2] - melF[i+1]
			enorm := 2.0 / (melF[i+2] - melF[i])
			row := make([]float64, nBins)
			for k, f := range fftFreqs {
				lower := (f - melF[i]) / lowerWidth
				upper := (melF[i+2] - f) / upperWidth
				row[k] = math.Max(0, math.Min(lower, upper)) * enorm
			}
			melBasis[i] = row
		}
	})
	return melBasis
}

// melSpectrogramDB maps a power spectrogram onto the mel bands and converts to decibels,
// clipped to topDB below the loudest cell. Rows are frames.
func melSpectrogramDB(pow [][]float64) [][]float64 {
	basis := melFilters()

	out := make([][]float64, len(pow))
	peak := math.Inf(-1)
	for t, row := range pow {
		db := make([]float64, nMels)
		for m := 0; m < nMels; m++ {
			sum := 0.0
			for k, w := range basis[m] {
				if w != 0 {
					sum += w * row[k]
				}
			}
			db[m] = 10 * math.Log10(math.Max(amin, sum))
			peak = math.Max(peak, db[m])
		}
		out[t] = db
	}

	floor := peak - topDB
	for _, row := range out {
		for m, v := range row {
			if v < floor {
				row[m] = floor
			}
		}
	}
	return out
}

// dctBasis returns the first NumMFCC rows of the orthonormal DCT-II over nMels points
func dctBasis() [][]float64 {
	dctOnce.Do(func() {
		dctMatrix = make([][]float64, NumMFCC)
		for k := 0; k < NumMFCC; k++ {
			scale := math.Sqrt(2.0 / nMels)
			if k == 0 {
				scale = math.Sqrt(1.0 / nMels)
			}
			row := make([]float64, nMels)
			for n := 0; n < nMels; n++ {
				row[n] = scale * math.Cos(math.Pi*float64(k)*float64(2*n+1)/(2*nMels))
			}
			dctMatrix[k] = row
		}
	})
	return dctMatrix
}

// mfcc computes NumMFCC cepstral coefficients per frame from a mel dB spectrogram
func mfcc(melDB [][]float64) [][]float64 {
	basis := dctBasis()
	out := make([][]float64, len(melDB))
	for t, row := range melDB {
		coeffs := make([]float64, NumMFCC)
		for k := range coeffs {
			sum := 0.0
			for n, v := range row {
				sum += basis[k][n] * v
			}
			coeffs[k] = sum
		}
		out[t] = coeffs
	}
	return out
}
