package features

import (
	"math"
	"sort"
)

const (
	nChroma          = 12
	pitchFmin        = 150.0
	pitchFmax        = 4000.0
	pitchThreshold   = 0.1
	tuningResolution = 0.01
	chromaCtrOct     = 5.0
	chromaOctWidth   = 2.0
)

// chromagram projects a power spectrogram onto 12 pitch classes, tuned to the spectrum,
// and scales every frame so its strongest class is 1
func chromagram(pow [][]float64) [][]float64 {
	tuning := estimateTuning(pow)
	filters := chromaFilters(tuning)

	out := make([][]float64, len(pow))
	for t, row := range pow {
		c := make([]float64, nChroma)
		peak := 0.0
		for p := 0; p < nChroma; p++ {
			sum := 0.0
			for k, w := range filters[p] {
				sum += w * row[k]
			}
			c[p] = sum
			if math.Abs(sum) > peak {
				peak = math.Abs(sum)
			}
		}
		if peak >= tiny {
			for p := range c {
				c[p] /= peak
			}
		}
		out[t] = c
	}
	return out
}

// estimateTuning returns the deviation from A440, in fractions of a semitone, of the
// spectral peaks between pitchFmin and pitchFmax
func estimateTuning(spec [][]float64) float64 {
	pitches, mags := pitchTrack(spec)

	var voiced []float64
	for i, p := range pitches {
		if p > 0 {
			voiced = append(voiced, mags[i])
		}
	}
	threshold := 0.0
	if len(voiced) > 0 {
		threshold = median(voiced)
	}

	var selected []float64
	for i, p := range pitches {
		if p > 0 && mags[i] >= threshold {
			selected = append(selected, p)
		}
	}
	return pitchTuning(selected)
}

// pitchTrack finds thresholded local maxima along frequency in each frame and refines
// them by parabolic interpolation. It returns the pitch and magnitude of every peak.
func pitchTrack(spec [][]float64) ([]float64, []float64) {
	freqs := fftFrequencies()
	var pitches, mags []float64

	avg := make([]float64, nBins)
	shift := make([]float64, nBins)
	gated := make([]float64, nBins)

	for _, row := range spec {
		for k := range avg {
			avg[k], shift[k] = 0, 0
		}
		for k := 1; k < nBins-1; k++ {
			a := 0.5 * (row[k+1] - row[k-1])
			s := 2*row[k] - row[k+1] - row[k-1]
			if math.Abs(s) < tiny {
				s++
			}
			avg[k] = a
			shift[k] = a / s
		}

		ref := 0.0
		for _, v := range row {
			ref = math.Max(ref, math.Abs(v))
		}
		ref *= pitchThreshold
		for k, v := range row {
			gated[k] = 0
			if v > ref {
				gated[k] = v
			}
		}

		for k := 0; k < nBins; k++ {
			if freqs[k] < pitchFmin || freqs[k] >= pitchFmax {
				continue
			}
			if !isLocalMax(gated, k) {
				continue
			}
			pitches = append(pitches, (float64(k)+shift[k])*float64(sampleRate)/nFFT)
			mags = append(mags, row[k]+0.5*avg[k]*shift[k])
		}
	}
	return pitches, mags
}

// isLocalMax reports x[k] > x[k-1] and x[k] >= x[k+1] with edge-replicated bounds
func isLocalMax(x []float64, k int) bool {
	prev := x[max(k-1, 0)]
	next := x[min(k+1, len(x)-1)]
	return x[k] > prev && x[k] >= next
}

// pitchTuning histograms each frequency's offset from the equal-tempered grid and returns the most common bin
func pitchTuning(frequencies []float64) float64 {
	nBinsHist := int(math.Ceil(1.0 / tuningResolution))
	edges := linspace(-0.5, 0.5, nBinsHist+1)
	counts := make([]int, nBinsHist)

	seen := false
	for _, f := range frequencies {
		if f <= 0 {
			continue
		}
		seen = true
		residual := math.Mod(nChroma*hzToOcts(f, 0), 1.0)
		if residual < 0 {
			residual += 1.0
		}
		if residual >= 0.5 {
			residual -= 1.0
		}
		if idx := histogramBin(residual, edges); idx >= 0 {
			counts[idx]++
		}
	}
	if !seen {
		return 0
	}

	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return edges[best]
}

// histogramBin places v into half-open bins [e_i, e_i+1), closing the last bin on the right
func histogramBin(v float64, edges []float64) int {
	n := len(edges) - 1
	if v < edges[0] || v > edges[n] {
		return -1
	}
	idx := sort.SearchFloat64s(edges, v)
	// SearchFloat64s returns the first edge >= v
	if idx < len(edges) && edges[idx] == v {
		if idx == n {
			return n - 1
		}
		return idx
	}
	return idx - 1
}

// hzToOcts converts frequency to octaves relative to C0 at the given tuning
func hzToOcts(f, tuning float64) float64 {
	a440 := 440.0 * math.Pow(2.0, tuning/nChroma)
	return math.Log2(f / (a440 / 16))
}

// chromaFilters builds the [12][nBins] chroma filter bank, rows starting at C
func chromaFilters(tuning float64) [][]float64 {
	// Bin center positions in chroma units; bin 0 is made up 1.5 octaves below bin 1
	frqbins := make([]float64, nFFT)
	for k := 1; k < nFFT; k++ {
		f := float64(k) * float64(sampleRate) / nFFT
		frqbins[k] = nChroma * hzToOcts(f, tuning)
	}
	frqbins[0] = frqbins[1] - 1.5*nChroma

	binWidth := make([]float64, nFFT)
	for k := 0; k < nFFT-1; k++ {
		binWidth[k] = math.Max(frqbins[k+1]-frqbins[k], 1.0)
	}
	binWidth[nFFT-1] = 1

	half := math.Round(nChroma / 2.0)
	wts := make([][]float64, nChroma)
	for c := range wts {
		wts[c] = make([]float64, nFFT)
	}
	for k := 0; k < nFFT; k++ {
		norm := 0.0
		for c := 0; c < nChroma; c++ {
			d := floorMod(frqbins[k]-float64(c)+half+10*nChroma, nChroma) - half
			v := math.Exp(-0.5 * math.Pow(2*d/binWidth[k], 2))
			wts[c][k] = v
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm < tiny {
			norm = 1
		}
		octWeight := math.Exp(-0.5 * math.Pow((frqbins[k]/nChroma-chromaCtrOct)/chromaOctWidth, 2))
		for c := 0; c < nChroma; c++ {
			wts[c][k] = wts[c][k] / norm * octWeight
		}
	}

	// Rotate so row 0 is C rather than A, and drop the aliased upper half
	out := make([][]float64, nChroma)
	for c := 0; c < nChroma; c++ {
		out[c] = wts[(c+3)%nChroma][:nBins]
	}
	return out
}

func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// linspace returns n evenly spaced values from start to stop inclusive
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// median returns the middle value of x, averaging the two central values for even lengths
func median(x []float64) float64 {
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return 0.5 * (s[n/2-1] + s[n/2])
}
