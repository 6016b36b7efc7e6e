package features

import "sort"

const (
	hpssKernel = 31
	hpssPower  = 2.0
)

// hpss separates a complex spectrogram into harmonic and percussive parts with median-filter
// soft masks and returns both as time-domain signals of the given length
func hpss(spec [][]complex128, length int) ([]float64, []float64) {
	mag := magnitude(spec)
	harmonic := medianAlongTime(mag, hpssKernel)
	percussive := medianAlongFreq(mag, hpssKernel)

	harmSpec := make([][]complex128, len(spec))
	percSpec := make([][]complex128, len(spec))
	for t, row := range spec {
		harmSpec[t] = make([]complex128, len(row))
		percSpec[t] = make([]complex128, len(row))
		for k, c := range row {
			mh, mp := softMasks(harmonic[t][k], percussive[t][k])
			harmSpec[t][k] = c * complex(mh, 0)
			percSpec[t][k] = c * complex(mp, 0)
		}
	}

	return istft(harmSpec, length), istft(percSpec, length)
}

// softMasks returns Wiener-style masks h^p/(h^p+q^p) and q^p/(h^p+q^p).
// When both inputs are zero the energy is split evenly.
func softMasks(h, p float64) (float64, float64) {
	z := h
	if p > z {
		z = p
	}
	if z < tiny {
		return 0.5, 0.5
	}
	hn, pn := h/z, p/z
	hp, pp := hn*hn, pn*pn
	return hp / (hp + pp), pp / (hp + pp)
}

// medianAlongTime filters each frequency bin across frames
func medianAlongTime(mag [][]float64, size int) [][]float64 {
	frames := len(mag)
	out := make([][]float64, frames)
	for t := range out {
		out[t] = make([]float64, len(mag[t]))
	}
	if frames == 0 {
		return out
	}

	half := size / 2
	window := make([]float64, size)
	for k := range mag[0] {
		for t := 0; t < frames; t++ {
			for j := -half; j <= half; j++ {
				window[j+half] = mag[reflectIndex(t+j, frames)][k]
			}
			out[t][k] = windowMedian(window)
		}
	}
	return out
}

// medianAlongFreq filters each frame across frequency bins
func medianAlongFreq(mag [][]float64, size int) [][]float64 {
	out := make([][]float64, len(mag))
	half := size / 2
	window := make([]float64, size)
	for t, row := range mag {
		n := len(row)
		out[t] = make([]float64, n)
		for k := 0; k < n; k++ {
			for j := -half; j <= half; j++ {
				window[j+half] = row[reflectIndex(k+j, n)]
			}
			out[t][k] = windowMedian(window)
		}
	}
	return out
}

// reflectIndex maps i into [0, n) by half-sample symmetric reflection (d c b a | a b c d | d c b a)
func reflectIndex(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// windowMedian sorts w in place and returns its middle element; len(w) is odd
func windowMedian(w []float64) float64 {
	sort.Float64s(w)
	return w[len(w)/2]
}
