package audio

import (
	"errors"
	"fmt"
	"math"
	"time"

	apperrors "github.com/killallgit/genre-api/pkg/errors"
)

// SampleRate is the rate every Waveform is normalized to
const SampleRate = 22050

var (
	ErrEmptyInput          = errors.New("no audio data")
	ErrEmptyAudio          = errors.New("decoded audio is empty")
	ErrTooShort            = errors.New("too little audio captured, is something playing?")
	ErrUnrecognizedFormat  = errors.New("unrecognized container")
	ErrNoFallback          = errors.New("no fallback decoder configured")
	ErrUnsupportedEncoding = errors.New("unsupported sample encoding")
)

// Waveform is mono audio at SampleRate, already bounded to the caller's duration cap
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the playback length of the waveform
func (w *Waveform) Duration() time.Duration {
	if w.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// pcm is decoded audio before normalization, interleaved when channels > 1
type pcm struct {
	samples    []float64
	sampleRate int
	channels   int
}

// FromPCM16 converts raw little-endian signed 16-bit mono capture bytes into a Waveform.
// Less than one second of audio is rejected.
func FromPCM16(raw []byte, rate int, maxDuration time.Duration) (*Waveform, error) {
	if rate <= 0 {
		return nil, apperrors.DecodeError(fmt.Errorf("invalid capture rate %d", rate))
	}
	if len(raw) < rate*2 {
		return nil, apperrors.DecodeError(fmt.Errorf("%w: got %d bytes, need at least %d", ErrTooShort, len(raw), rate*2))
	}

	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float64(v) / 32768.0
	}

	w, err := normalize(&pcm{samples: samples, sampleRate: rate, channels: 1}, maxDuration)
	if err != nil {
		return nil, apperrors.DecodeError(err)
	}
	return w, nil
}

// normalize downmixes, resamples to SampleRate and truncates to maxDuration, in that order
func normalize(p *pcm, maxDuration time.Duration) (*Waveform, error) {
	if p == nil || len(p.samples) == 0 {
		return nil, ErrEmptyAudio
	}
	if p.sampleRate <= 0 || p.channels <= 0 {
		return nil, fmt.Errorf("invalid stream layout: %d Hz, %d channels", p.sampleRate, p.channels)
	}

	mono := downmix(p.samples, p.channels)

	resampled, err := resample(mono, p.sampleRate, SampleRate)
	if err != nil {
		return nil, err
	}

	if limit := framesFor(maxDuration, SampleRate); maxDuration > 0 && len(resampled) > limit {
		resampled = resampled[:limit]
	}
	if len(resampled) == 0 {
		return nil, ErrEmptyAudio
	}

	return &Waveform{Samples: resampled, SampleRate: SampleRate}, nil
}

// downmix averages interleaved channels into one
func downmix(interleaved []float64, channels int) []float64 {
	if channels == 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += interleaved[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// framesFor returns how many frames of the given rate fit into d. A non-positive d means unbounded.
func framesFor(d time.Duration, rate int) int {
	if d <= 0 {
		return math.MaxInt
	}
	return int(math.Round(d.Seconds() * float64(rate)))
}
