package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/mewkiz/flac"
)

// decodeFLAC reads a FLAC stream frame by frame up to maxDuration
func decodeFLAC(r io.Reader, maxDuration time.Duration) (*pcm, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}
	defer stream.Close()

	rate := int(stream.Info.SampleRate)
	channels := int(stream.Info.NChannels)
	if rate == 0 || channels == 0 {
		return nil, fmt.Errorf("invalid FLAC stream info: %d Hz, %d channels", rate, channels)
	}

	limit := framesFor(maxDuration, rate)
	samples := make([]float64, 0, 4096*channels)
	frames := 0

	for frames < limit {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}
		if len(frame.Subframes) != channels {
			return nil, fmt.Errorf("FLAC frame has %d subframes, stream declares %d channels", len(frame.Subframes), channels)
		}

		// Normalize to [-1.0, 1.0] based on bits per sample
		scale := float64(int64(1) << (frame.BitsPerSample - 1))
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n && frames < limit; i++ {
			for _, subframe := range frame.Subframes {
				samples = append(samples, float64(subframe.Samples[i])/scale)
			}
			frames++
		}
	}

	return &pcm{samples: samples, sampleRate: rate, channels: channels}, nil
}
