package classifier

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/genre-api/internal/audio"
	"github.com/killallgit/genre-api/internal/features"
	"github.com/killallgit/genre-api/internal/models"
	"github.com/killallgit/genre-api/pkg/ffmpeg"
)

// toneFallback stands in for ffmpeg: it returns a stereo 44.1 kHz chord for any
// input file and remembers whether that file existed while it ran
type toneFallback struct {
	seconds float64
	err     error

	path    string
	existed bool
}

func (f *toneFallback) DecodePCM(ctx context.Context, inputFile string, options ffmpeg.DecodeOptions) (*ffmpeg.PCMData, error) {
	f.path = inputFile
	_, statErr := os.Stat(inputFile)
	f.existed = statErr == nil
	if f.err != nil {
		return nil, f.err
	}

	const rate = 44100
	frames := int(f.seconds * rate)
	if options.MaxDuration > 0 {
		frames = min(frames, int(options.MaxDuration.Seconds()*rate))
	}

	samples := make([]float64, 0, 2*frames)
	for i := 0; i < frames; i++ {
		ts := float64(i) / rate
		// A major chord with a 2 Hz amplitude pulse
		v := 0.3 * (math.Sin(2*math.Pi*220*ts) + 0.5*math.Sin(2*math.Pi*277.18*ts) + 0.5*math.Sin(2*math.Pi*329.63*ts)) *
			(0.6 + 0.4*math.Sin(2*math.Pi*2*ts))
		samples = append(samples, v, v)
	}
	return &ffmpeg.PCMData{Samples: samples, SampleRate: rate, Channels: 2}, nil
}

// oggBytes has an Ogg page signature, which no in-process decoder handles
func oggBytes() []byte {
	data := make([]byte, 4096)
	copy(data, "OggS")
	return data
}

func TestFallbackPipeline_FeaturesAndTempCleanup(t *testing.T) {
	tempDir := t.TempDir()
	fallback := &toneFallback{seconds: 3}
	decoder := audio.NewDecoder(fallback, tempDir)
	extractor := features.NewExtractor()

	w, err := decoder.DecodeBytes(context.Background(), oggBytes(), "clip.ogg", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate, w.SampleRate)
	assert.InDelta(t, 3*audio.SampleRate, len(w.Samples), 64)

	assert.True(t, fallback.existed, "fallback should see the temp file")
	assert.Equal(t, ".ogg", filepath.Ext(fallback.path))
	assert.Equal(t, tempDir, filepath.Dir(fallback.path))

	vec, err := extractor.Extract(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, vec, features.NumFeatures)
	for i, v := range vec {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "feature %s is %v", features.Names[i], v)
	}

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files should be removed after decoding")
}

func TestFallbackPipeline_ClassifyBytes(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		err     error
		wantErr bool
	}{
		{name: "tone classified", seconds: 3},
		{name: "capped long input", seconds: 40},
		{name: "fallback failure", seconds: 3, err: errors.New("ffmpeg exited with status 1"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			fallback := &toneFallback{seconds: tt.seconds, err: tt.err}
			svc := NewService(audio.NewDecoder(fallback, tempDir), features.NewExtractor(), testArtifacts(t))

			result, err := svc.ClassifyBytes(context.Background(), oggBytes(), "clip.ogg", models.SourceUpload)

			entries, readErr := os.ReadDir(tempDir)
			require.NoError(t, readErr)
			assert.Empty(t, entries, "temp files should be removed on every path")
			assert.True(t, fallback.existed)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, []string{"blues", "jazz", "metal"}, result.Genre)
			assert.Equal(t, 1.0, result.Confidence)
		})
	}
}
