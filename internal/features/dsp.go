package features

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Framing parameters shared by every spectral feature
const (
	nFFT       = 2048
	hopLength  = 512
	nBins      = nFFT/2 + 1
	sampleRate = 22050
)

// tiny mirrors the smallest normal float64, used to guard divisions
const tiny = 2.2250738585072014e-308

// hann returns a periodic Hann window of length n
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// fftFrequencies returns the center frequency of each STFT bin
func fftFrequencies() []float64 {
	freqs := make([]float64, nBins)
	for i := range freqs {
		freqs[i] = float64(i) * float64(sampleRate) / float64(nFFT)
	}
	return freqs
}

// numFrames is the frame count for a centered analysis of n samples
func numFrames(n int) int {
	return 1 + n/hopLength
}

// padConstant zero pads both ends of y
func padConstant(y []float64, width int) []float64 {
	out := make([]float64, len(y)+2*width)
	copy(out[width:], y)
	return out
}

// padEdge pads both ends of y by repeating the edge samples
func padEdge(y []float64, width int) []float64 {
	out := make([]float64, len(y)+2*width)
	copy(out[width:], y)
	if len(y) == 0 {
		return out
	}
	for i := 0; i < width; i++ {
		out[i] = y[0]
		out[width+len(y)+i] = y[len(y)-1]
	}
	return out
}

// stft computes the centered short-time Fourier transform, one row of nBins coefficients per frame
func stft(y []float64) [][]complex128 {
	padded := padConstant(y, nFFT/2)
	window := hann(nFFT)
	fft := fourier.NewFFT(nFFT)

	frames := numFrames(len(y))
	out := make([][]complex128, frames)
	buf := make([]float64, nFFT)
	for t := 0; t < frames; t++ {
		start := t * hopLength
		for i := 0; i < nFFT; i++ {
			buf[i] = padded[start+i] * window[i]
		}
		out[t] = fft.Coefficients(nil, buf)
	}
	return out
}

// istft inverts a centered STFT by windowed overlap-add and returns exactly length samples
func istft(spec [][]complex128, length int) []float64 {
	window := hann(nFFT)
	fft := fourier.NewFFT(nFFT)

	frames := len(spec)
	total := nFFT + hopLength*(frames-1)
	signal := make([]float64, total)
	windowSum := make([]float64, total)

	frame := make([]float64, nFFT)
	for t, coeffs := range spec {
		fft.Sequence(frame, coeffs)
		start := t * hopLength
		for i := 0; i < nFFT; i++ {
			// gonum leaves the inverse unnormalized
			signal[start+i] += window[i] * frame[i] / nFFT
			windowSum[start+i] += window[i] * window[i]
		}
	}

	out := make([]float64, length)
	offset := nFFT / 2
	for i := range out {
		j := offset + i
		if j >= total {
			break
		}
		if windowSum[j] > tiny {
			out[i] = signal[j] / windowSum[j]
		} else {
			out[i] = signal[j]
		}
	}
	return out
}

// magnitude returns |X| per frame and bin
func magnitude(spec [][]complex128) [][]float64 {
	out := make([][]float64, len(spec))
	for t, row := range spec {
		out[t] = make([]float64, len(row))
		for k, c := range row {
			out[t][k] = math.Hypot(real(c), imag(c))
		}
	}
	return out
}

// power returns |X|^2 per frame and bin
func power(spec [][]complex128) [][]float64 {
	out := make([][]float64, len(spec))
	for t, row := range spec {
		out[t] = make([]float64, len(row))
		for k, c := range row {
			out[t][k] = real(c)*real(c) + imag(c)*imag(c)
		}
	}
	return out
}

// meanVar returns the population mean and variance of x
func meanVar(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return stat.PopMeanVariance(x, nil)
}

// flatten concatenates the rows of m
func flatten(m [][]float64) []float64 {
	n := 0
	for _, row := range m {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

// column extracts row r of a [frame][row] matrix as a series over frames
func column(m [][]float64, r int) []float64 {
	out := make([]float64, len(m))
	for t := range m {
		out[t] = m[t][r]
	}
	return out
}
