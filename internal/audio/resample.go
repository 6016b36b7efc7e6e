package audio

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// resample converts mono samples between rates with the high quality preset.
// The output always holds ceil(len*to/from) samples.
func resample(samples []float64, from, to int) ([]float64, error) {
	if from == to || len(samples) == 0 {
		return samples, nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	want := int(math.Ceil(float64(len(samples)) * float64(to) / float64(from)))

	// Trailing silence pushes the filter tail out of the resampler
	input := make([]float64, len(samples)+from/4)
	copy(input, samples)

	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	out := make([]float64, want)
	copy(out, output)
	return out, nil
}
