package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/killallgit/genre-api/pkg/errors"
	"github.com/killallgit/genre-api/pkg/ffmpeg"
)

// TempFilePrefix names the scratch files written for the fallback decoder
const TempFilePrefix = "genre_decode_"

// defaultTempSuffix is used for byte input without a usable hint. Browser recordings are webm.
const defaultTempSuffix = ".webm"

// PCMDecoder decodes any container a media toolkit understands. *ffmpeg.FFmpeg satisfies it.
type PCMDecoder interface {
	DecodePCM(ctx context.Context, inputFile string, options ffmpeg.DecodeOptions) (*ffmpeg.PCMData, error)
}

// Decoder turns files and byte buffers into normalized Waveforms.
// WAV, FLAC and MP3 decode in-process; everything else goes through the fallback.
type Decoder struct {
	fallback PCMDecoder
	tempDir  string
}

// NewDecoder creates a Decoder. fallback may be nil, in which case only the in-process formats work.
func NewDecoder(fallback PCMDecoder, tempDir string) *Decoder {
	return &Decoder{
		fallback: fallback,
		tempDir:  tempDir,
	}
}

// DecodeFile decodes the audio file at path, keeping at most maxDuration of audio
func (d *Decoder) DecodeFile(ctx context.Context, path string, maxDuration time.Duration) (*Waveform, error) {
	p, err := d.decodeFile(ctx, path, maxDuration)
	if err != nil {
		return nil, apperrors.DecodeError(err)
	}
	return d.finish(ctx, p, maxDuration)
}

// DecodeBytes decodes an in-memory recording. hint is a filename or extension used
// to name the fallback temp file so the external decoder can probe the container.
func (d *Decoder) DecodeBytes(ctx context.Context, data []byte, hint string, maxDuration time.Duration) (*Waveform, error) {
	if len(data) == 0 {
		return nil, apperrors.DecodeError(ErrEmptyInput)
	}

	p, err := d.decodeBytes(ctx, data, hint, maxDuration)
	if err != nil {
		return nil, apperrors.DecodeError(err)
	}
	return d.finish(ctx, p, maxDuration)
}

func (d *Decoder) finish(ctx context.Context, p *pcm, maxDuration time.Duration) (*Waveform, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := normalize(p, maxDuration)
	if err != nil {
		return nil, apperrors.DecodeError(err)
	}
	return w, nil
}

func (d *Decoder) decodeFile(ctx context.Context, path string, maxDuration time.Duration) (*pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return nil, ErrEmptyInput
		}
		return nil, err
	}

	var directErr error
	if kind := sniff(header[:n]); kind != containerUnknown {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		p, err := decodeDirect(kind, f, maxDuration)
		if err == nil && len(p.samples) > 0 {
			return p, nil
		}
		directErr = directFailure(kind, err)
		log.Printf("[DEBUG] In-process %s decode of %s failed, falling back: %v", kind, filepath.Base(path), directErr)
	}

	return d.runFallback(ctx, path, maxDuration, directErr)
}

func (d *Decoder) decodeBytes(ctx context.Context, data []byte, hint string, maxDuration time.Duration) (*pcm, error) {
	var directErr error
	if kind := sniff(data[:min(len(data), headerSize)]); kind != containerUnknown {
		p, err := decodeDirect(kind, bytes.NewReader(data), maxDuration)
		if err == nil && len(p.samples) > 0 {
			return p, nil
		}
		directErr = directFailure(kind, err)
		log.Printf("[DEBUG] In-process %s decode of %d bytes failed, falling back: %v", kind, len(data), directErr)
	}

	if d.fallback == nil {
		return nil, joinCauses(directErr, ErrNoFallback)
	}

	tmp, err := os.CreateTemp(d.tempDir, TempFilePrefix+"*"+tempSuffix(hint))
	if err != nil {
		return nil, joinCauses(directErr, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to remove temp file %s: %v", tmpPath, err)
		}
	}()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		return nil, joinCauses(directErr, fmt.Errorf("failed to write temp file: %w", errors.Join(writeErr, closeErr)))
	}

	return d.runFallback(ctx, tmpPath, maxDuration, directErr)
}

func (d *Decoder) runFallback(ctx context.Context, path string, maxDuration time.Duration, directErr error) (*pcm, error) {
	if d.fallback == nil {
		if directErr == nil {
			directErr = ErrUnrecognizedFormat
		}
		return nil, joinCauses(directErr, ErrNoFallback)
	}

	data, err := d.fallback.DecodePCM(ctx, path, ffmpeg.DecodeOptions{MaxDuration: maxDuration})
	if err != nil {
		return nil, joinCauses(directErr, err)
	}

	return &pcm{samples: data.Samples, sampleRate: data.SampleRate, channels: data.Channels}, nil
}

func decodeDirect(kind container, r io.ReadSeeker, maxDuration time.Duration) (*pcm, error) {
	switch kind {
	case containerWAV:
		return decodeWAV(r, maxDuration)
	case containerFLAC:
		return decodeFLAC(r, maxDuration)
	case containerMP3:
		return decodeMP3(r, maxDuration)
	default:
		return nil, ErrUnrecognizedFormat
	}
}

func directFailure(kind container, err error) error {
	if err != nil {
		return fmt.Errorf("%s decoder: %w", kind, err)
	}
	return fmt.Errorf("%s decoder: %w", kind, ErrEmptyAudio)
}

// joinCauses keeps every decoder's failure in the returned error
func joinCauses(first, second error) error {
	if first == nil {
		return second
	}
	return errors.Join(first, second)
}

// tempSuffix derives a file extension from a filename or extension hint
func tempSuffix(hint string) string {
	ext := strings.ToLower(filepath.Ext(hint))
	if ext == "" && hint != "" && !strings.ContainsAny(hint, `/\.`) {
		ext = "." + strings.ToLower(hint)
	}
	if ext == "" || len(ext) > 8 || strings.ContainsAny(ext, `/\*`) {
		return defaultTempSuffix
	}
	return ext
}
