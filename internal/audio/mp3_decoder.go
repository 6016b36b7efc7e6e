package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// decodeMP3 reads an MP3 stream up to maxDuration. go-mp3 always outputs interleaved 16-bit stereo.
func decodeMP3(r io.Reader, maxDuration time.Duration) (*pcm, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	rate := decoder.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("invalid MP3 sample rate %d", rate)
	}

	var src io.Reader = decoder
	if maxDuration > 0 {
		src = io.LimitReader(decoder, int64(framesFor(maxDuration, rate))*4)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read MP3 data: %w", err)
	}

	// 4 bytes per stereo frame
	frames := len(data) / 4
	samples := make([]float64, frames*2)
	for i := range samples {
		v := int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
		samples[i] = float64(v) / 32768.0
	}

	return &pcm{samples: samples, sampleRate: rate, channels: 2}, nil
}
