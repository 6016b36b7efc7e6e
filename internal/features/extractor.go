package features

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/killallgit/genre-api/internal/audio"
	apperrors "github.com/killallgit/genre-api/pkg/errors"
)

// Extractor computes the 57-value feature vector of a waveform.
// It holds no state and is safe for concurrent use.
type Extractor struct{}

// NewExtractor creates an Extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract computes every feature group of w. Groups run concurrently but each writes
// only its own slots, so the result does not depend on scheduling.
func (e *Extractor) Extract(ctx context.Context, w *audio.Waveform) (Vector, error) {
	var vec Vector

	if w == nil || len(w.Samples) == 0 {
		return vec, apperrors.InferenceError("cannot extract features from an empty waveform")
	}
	if w.SampleRate != sampleRate {
		return vec, apperrors.InferenceError("waveform sample rate is %d Hz, expected %d", w.SampleRate, sampleRate)
	}
	if err := ctx.Err(); err != nil {
		return vec, err
	}

	y := w.Samples
	spec := stft(y)
	pow := power(spec)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		vec[idxChroma], vec[idxChroma+1] = meanVar(flatten(chromagram(pow)))
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		vec[idxRMS], vec[idxRMS+1] = meanVar(rmsFrames(y))
		vec[idxZCR], vec[idxZCR+1] = meanVar(zeroCrossingRate(y))
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		shape := spectralShapes(magnitude(spec))
		vec[idxCentroid], vec[idxCentroid+1] = meanVar(shape.centroid)
		vec[idxBandwidth], vec[idxBandwidth+1] = meanVar(shape.bandwidth)
		vec[idxRolloff], vec[idxRolloff+1] = meanVar(shape.rolloff)
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		harmonic, percussive := hpss(spec, len(y))
		vec[idxHarmony], vec[idxHarmony+1] = meanVar(harmonic)
		vec[idxPercussive], vec[idxPercussive+1] = meanVar(percussive)
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		melDB := melSpectrogramDB(pow)

		tempo, err := estimateTempo(onsetEnvelope(melDB))
		if err != nil {
			return fmt.Errorf("tempo estimation failed: %w", err)
		}
		vec[idxTempo] = tempo

		coeffs := mfcc(melDB)
		for k := 0; k < NumMFCC; k++ {
			vec[idxMFCC+2*k], vec[idxMFCC+2*k+1] = meanVar(column(coeffs, k))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return Vector{}, ctx.Err()
		}
		return Vector{}, apperrors.InferenceError("feature extraction failed: %v", err)
	}

	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Vector{}, apperrors.InferenceError("feature %s is not finite", Names[i])
		}
	}

	return vec, nil
}
