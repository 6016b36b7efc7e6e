package features

import (
	"math"

	"github.com/argusdusty/gofft"
)

const (
	onsetLag      = 1
	startBPM      = 120.0
	stdBPM        = 1.0
	acSizeSeconds = 8.0
	maxTempo      = 320.0
	// autocorrFFTSize is the power of two that fits a full linear autocorrelation of one tempogram window
	autocorrFFTSize = 1024
)

// onsetEnvelope is the per-frame median across mel bands of the positive dB increase since
// the previous frame, shifted to line up with the centered frames
func onsetEnvelope(melDB [][]float64) []float64 {
	frames := len(melDB)
	env := make([]float64, frames)
	shift := onsetLag + nFFT/(2*hopLength)

	diffs := make([]float64, nMels)
	for t := onsetLag; t < frames; t++ {
		dst := t - onsetLag + shift
		if dst >= frames {
			break
		}
		for m := 0; m < nMels; m++ {
			diffs[m] = math.Max(0, melDB[t][m]-melDB[t-onsetLag][m])
		}
		env[dst] = median(diffs)
	}
	return env
}

// tempoWindow is the autocorrelation window length in frames
func tempoWindow() int {
	return int(acSizeSeconds*sampleRate) / hopLength
}

// tempoFrequencies gives the BPM for each autocorrelation lag; lag 0 is infinite
func tempoFrequencies(n int) []float64 {
	bpms := make([]float64, n)
	bpms[0] = math.Inf(1)
	for lag := 1; lag < n; lag++ {
		bpms[lag] = 60.0 * sampleRate / (hopLength * float64(lag))
	}
	return bpms
}

// estimateTempo picks the global tempo in BPM from the mean autocorrelation tempogram,
// weighted by a log-normal prior around startBPM. A flat envelope yields 0.
func estimateTempo(env []float64) (float64, error) {
	hasOnset := false
	for _, v := range env {
		if v != 0 {
			hasOnset = true
			break
		}
	}
	if !hasOnset {
		return 0, nil
	}

	win := tempoWindow()
	tg, err := meanTempogram(env, win)
	if err != nil {
		return 0, err
	}

	bpms := tempoFrequencies(win)
	maxIdx := 0
	for i, b := range bpms {
		if b < maxTempo {
			maxIdx = i
			break
		}
	}

	best, bestScore := 0, math.Inf(-1)
	for lag := 0; lag < win; lag++ {
		prior := math.Inf(-1)
		if lag >= maxIdx {
			z := (math.Log2(bpms[lag]) - math.Log2(startBPM)) / stdBPM
			prior = -0.5 * z * z
		}
		score := math.Log1p(1e6*tg[lag]) + prior
		if score > bestScore {
			best, bestScore = lag, score
		}
	}
	return bpms[best], nil
}

// meanTempogram averages the max-normalized windowed autocorrelation of the onset envelope over all frames
func meanTempogram(env []float64, win int) ([]float64, error) {
	n := len(env)
	half := win / 2
	padded := make([]float64, n+2*half)
	copy(padded[half:], env)
	// Linear ramps from zero at the outer ends to the edge values
	for i := 0; i < half; i++ {
		padded[i] = env[0] * float64(i) / float64(half)
		padded[half+n+i] = env[n-1] * float64(half-1-i) / float64(half)
	}

	window := hann(win)
	mean := make([]float64, win)
	buf := make([]complex128, autocorrFFTSize)

	for t := 0; t < n; t++ {
		for i := range buf {
			buf[i] = 0
		}
		for i := 0; i < win; i++ {
			buf[i] = complex(padded[t+i]*window[i], 0)
		}

		ac, err := autocorrelate(buf, win)
		if err != nil {
			return nil, err
		}

		peak := 0.0
		for _, v := range ac {
			peak = math.Max(peak, math.Abs(v))
		}
		if peak < tiny {
			continue
		}
		for lag, v := range ac {
			mean[lag] += v / peak
		}
	}

	for lag := range mean {
		mean[lag] /= float64(n)
	}
	return mean, nil
}

// autocorrelate returns the first maxLag lags of the linear autocorrelation of buf.
// buf is zero padded to autocorrFFTSize and is overwritten.
func autocorrelate(buf []complex128, maxLag int) ([]float64, error) {
	if err := gofft.FFT(buf); err != nil {
		return nil, err
	}
	for i, c := range buf {
		buf[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	// The power spectrum is real and even, so a forward transform equals the inverse up to scale
	if err := gofft.FFT(buf); err != nil {
		return nil, err
	}

	ac := make([]float64, maxLag)
	for lag := range ac {
		ac[lag] = real(buf[lag]) / float64(len(buf))
	}
	return ac, nil
}
