package ffmpeg

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ffmpeg := New("ffmpeg", "ffprobe", 30*time.Second)
	assert.Equal(t, "ffmpeg", ffmpeg.ffmpegPath)
	assert.Equal(t, "ffprobe", ffmpeg.ffprobePath)
	assert.Equal(t, 30*time.Second, ffmpeg.timeout)
}

func TestBytesToFloat32(t *testing.T) {
	tests := []float32{0, 1, -1, 0.5, -0.25}

	for _, want := range tests {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(want))
		assert.Equal(t, want, bytesToFloat32(b))
	}
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name       string
		rate       string
		channels   int
		duration   string
		wantErr    bool
		wantRate   int
		wantLength float64
	}{
		{name: "complete", rate: "48000", channels: 2, duration: "3.5", wantRate: 48000, wantLength: 3.5},
		{name: "webm without duration", rate: "48000", channels: 1, wantRate: 48000},
		{name: "missing sample rate", rate: "", channels: 2, wantErr: true},
		{name: "no channels", rate: "44100", channels: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out ffprobeOutput
			out.Format.FormatName = "matroska,webm"
			out.Format.Duration = tt.duration
			out.Streams = append(out.Streams, struct {
				CodecType  string `json:"codec_type"`
				CodecName  string `json:"codec_name"`
				SampleRate string `json:"sample_rate"`
				Channels   int    `json:"channels"`
				Duration   string `json:"duration"`
			}{CodecType: "audio", CodecName: "opus", SampleRate: tt.rate, Channels: tt.channels})

			metadata, err := parseMetadata(&out, "clip.webm")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidAudioFile))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRate, metadata.SampleRate)
			assert.Equal(t, tt.channels, metadata.Channels)
			assert.Equal(t, tt.wantLength, metadata.Duration)
		})
	}
}

// Integration test - only runs if ffmpeg/ffprobe are available
func TestValidateBinaries(t *testing.T) {
	ffmpeg := New("ffmpeg", "ffprobe", 30*time.Second)

	if err := ffmpeg.ValidateBinaries(); err != nil {
		t.Skipf("FFmpeg binaries not available: %v", err)
	}
}

// writeTone renders a sine tone with ffmpeg's lavfi source
func writeTone(t *testing.T, path string, rate, channels int, seconds float64) {
	t.Helper()
	src := "sine=frequency=440:sample_rate=" + strconv.Itoa(rate) + ":duration=" + strconv.FormatFloat(seconds, 'f', -1, 64)
	cmd := exec.Command("ffmpeg", "-v", "error", "-f", "lavfi", "-i", src, "-ac", strconv.Itoa(channels), "-y", path)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestDecodePCM(t *testing.T) {
	ffmpeg := New("ffmpeg", "ffprobe", 30*time.Second)
	if err := ffmpeg.ValidateBinaries(); err != nil {
		t.Skipf("FFmpeg binaries not available: %v", err)
	}

	dir := t.TempDir()
	stereo := filepath.Join(dir, "tone.au")
	writeTone(t, stereo, 22050, 2, 1)

	tests := []struct {
		name        string
		maxDuration time.Duration
		wantFrames  int
	}{
		{"full clip", 0, 22050},
		{"truncated", 500 * time.Millisecond, 11025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm, err := ffmpeg.DecodePCM(context.Background(), stereo, DecodeOptions{MaxDuration: tt.maxDuration})
			require.NoError(t, err)

			assert.Equal(t, 22050, pcm.SampleRate)
			assert.Equal(t, 2, pcm.Channels)
			assert.InDelta(t, tt.wantFrames, len(pcm.Samples)/pcm.Channels, 256)
		})
	}
}

func TestDecodePCMFileNotFound(t *testing.T) {
	ffmpeg := New("ffmpeg", "ffprobe", 30*time.Second)
	if err := ffmpeg.ValidateBinaries(); err != nil {
		t.Skipf("FFmpeg binaries not available: %v", err)
	}

	_, err := ffmpeg.DecodePCM(context.Background(), "/nonexistent/file.webm", DecodeOptions{})
	require.Error(t, err)

	var procErr *ProcessingError
	assert.True(t, errors.As(err, &procErr), "expected ProcessingError, got %T", err)
}
