package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	// WAVE_FORMAT_EXTENSIBLE fmt chunks carry the real encoding as a GUID at this offset
	wavSubFormatOffset = 24
	wavSubFormatSize   = 16
)

// subFormatPCM is KSDATAFORMAT_SUBTYPE_PCM
var subFormatPCM = []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// decodeWAV reads integer PCM WAV data up to maxDuration. Float and 8-bit files are left to ffmpeg.
func decodeWAV(r io.ReadSeeker, maxDuration time.Duration) (*pcm, error) {
	if err := checkSubFormat(r); err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV format tag %d", ErrUnsupportedEncoding, decoder.WavAudioFormat)
	}

	rate := int(decoder.SampleRate)
	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedEncoding, bitDepth)
	}
	if channels == 0 || rate == 0 {
		return nil, fmt.Errorf("invalid WAV header: %d Hz, %d channels", rate, channels)
	}

	limit := math.MaxInt
	if maxDuration > 0 {
		limit = framesFor(maxDuration, rate) * channels
	}

	buf := &goaudio.IntBuffer{
		Data: make([]int, 4096*channels),
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  rate,
		},
	}
	scale := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, 0, 4096*channels)
	for len(samples) < limit {
		n, err := decoder.PCMBuffer(buf)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
		}
		if n == 0 {
			break
		}
		for _, v := range buf.Data[:n] {
			samples = append(samples, float64(v)/scale)
		}
	}

	if len(samples) > limit {
		samples = samples[:limit]
	}
	samples = samples[:len(samples)-len(samples)%channels]

	return &pcm{samples: samples, sampleRate: rate, channels: channels}, nil
}

// checkSubFormat rejects extensible WAV files whose sub-format is not integer PCM.
// go-audio/wav skips the extension block, so an extensible float file would otherwise
// be read as integer samples.
func checkSubFormat(r io.Reader) error {
	parser := riff.New(r)
	if err := parser.ParseHeaders(); err != nil {
		return fmt.Errorf("invalid WAV file: %w", err)
	}

	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			return fmt.Errorf("invalid WAV file: no fmt chunk")
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}

		body := make([]byte, chunk.Size)
		if _, err := io.ReadFull(chunk, body); err != nil {
			return fmt.Errorf("invalid WAV fmt chunk: %w", err)
		}
		if len(body) < 2 || binary.LittleEndian.Uint16(body) != wavFormatExtensible {
			return nil
		}
		if len(body) < wavSubFormatOffset+wavSubFormatSize {
			return fmt.Errorf("%w: truncated extensible fmt chunk", ErrUnsupportedEncoding)
		}
		subFormat := body[wavSubFormatOffset : wavSubFormatOffset+wavSubFormatSize]
		if !bytes.Equal(subFormat, subFormatPCM) {
			return fmt.Errorf("%w: extensible WAV sub-format %x", ErrUnsupportedEncoding, subFormat[:2])
		}
		return nil
	}
}
