package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}

	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}

	return nil
}

// DecodePCM decodes the first audio stream of a media file into interleaved float samples
// at the stream's native rate and channel layout. Resampling and downmixing are left to the caller.
func (f *FFmpeg) DecodePCM(ctx context.Context, inputFile string, options DecodeOptions) (*PCMData, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	metadata, err := f.GetMetadata(ctx, inputFile)
	if err != nil {
		return nil, err
	}

	args := []string{"-v", "error", "-nostdin", "-i", inputFile, "-map", "0:a:0"}
	if options.MaxDuration > 0 {
		args = append(args, "-t", strconv.FormatFloat(options.MaxDuration.Seconds(), 'f', 3, 64))
	}
	args = append(args,
		"-f", "f32le", // 32-bit float little-endian
		"-acodec", "pcm_f32le",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, NewProcessingError("pcm_decode", inputFile, ErrProcessingTimeout, stderr.String())
		}
		return nil, NewProcessingError("pcm_decode", inputFile, err, stderr.String())
	}

	samples, err := readFloat32LE(&stdout)
	if err != nil {
		return nil, NewProcessingError("pcm_read", inputFile, err, "")
	}
	if len(samples) == 0 {
		return nil, NewProcessingError("pcm_decode", inputFile, ErrNoAudio, stderr.String())
	}

	return &PCMData{
		Samples:    samples,
		SampleRate: metadata.SampleRate,
		Channels:   metadata.Channels,
	}, nil
}

// readFloat32LE converts a stream of little-endian float32 values to float64 samples
func readFloat32LE(r io.Reader) ([]float64, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, len(raw)/4)
	for i := range samples {
		samples[i] = float64(bytesToFloat32(raw[i*4 : i*4+4]))
	}
	return samples, nil
}

// bytesToFloat32 converts 4 bytes to a float32 in little-endian format
func bytesToFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
