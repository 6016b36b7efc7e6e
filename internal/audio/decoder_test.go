package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/killallgit/genre-api/pkg/errors"
	"github.com/killallgit/genre-api/pkg/ffmpeg"
)

// writeSineWAV writes a 16-bit PCM sine tone with the same signal on every channel
func writeSineWAV(t *testing.T, path string, rate, channels int, seconds float64) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	frames := int(float64(rate) * seconds)
	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		v := int(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		for ch := 0; ch < channels; ch++ {
			data[i*channels+ch] = v
		}
	}

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
}

// fakeFallback records the temp file it was handed and whether it existed during the call
type fakeFallback struct {
	path       string
	existed    bool
	suffix     string
	err        error
	sampleRate int
	channels   int
	frames     int
}

func (f *fakeFallback) DecodePCM(ctx context.Context, inputFile string, options ffmpeg.DecodeOptions) (*ffmpeg.PCMData, error) {
	f.path = inputFile
	f.suffix = filepath.Ext(inputFile)
	_, statErr := os.Stat(inputFile)
	f.existed = statErr == nil
	if f.err != nil {
		return nil, f.err
	}
	return &ffmpeg.PCMData{
		Samples:    make([]float64, f.frames*f.channels),
		SampleRate: f.sampleRate,
		Channels:   f.channels,
	}, nil
}

func TestDecoder_DecodeFile_WAV(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		rate        int
		channels    int
		seconds     float64
		maxDuration time.Duration
		wantLen     int
		tolerance   float64
	}{
		{name: "mono at target rate", rate: 22050, channels: 1, seconds: 1, maxDuration: 30 * time.Second, wantLen: 22050},
		{name: "stereo downmixed", rate: 22050, channels: 2, seconds: 1, maxDuration: 30 * time.Second, wantLen: 22050},
		{name: "truncated to cap", rate: 22050, channels: 1, seconds: 3, maxDuration: time.Second, wantLen: 22050},
		{name: "resampled from 44.1k", rate: 44100, channels: 2, seconds: 2, maxDuration: 30 * time.Second, wantLen: 44100, tolerance: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".wav")
			writeSineWAV(t, path, tt.rate, tt.channels, tt.seconds)

			decoder := NewDecoder(nil, dir)
			w, err := decoder.DecodeFile(context.Background(), path, tt.maxDuration)
			require.NoError(t, err)

			assert.Equal(t, SampleRate, w.SampleRate)
			assert.InDelta(t, tt.wantLen, len(w.Samples), tt.tolerance)
			for _, s := range w.Samples {
				require.False(t, math.IsNaN(s))
			}
		})
	}
}

func TestDecoder_DecodeFile_StereoMatchesMono(t *testing.T) {
	dir := t.TempDir()
	monoPath := filepath.Join(dir, "mono.wav")
	stereoPath := filepath.Join(dir, "stereo.wav")
	writeSineWAV(t, monoPath, 22050, 1, 0.5)
	writeSineWAV(t, stereoPath, 22050, 2, 0.5)

	decoder := NewDecoder(nil, dir)
	mono, err := decoder.DecodeFile(context.Background(), monoPath, 30*time.Second)
	require.NoError(t, err)
	stereo, err := decoder.DecodeFile(context.Background(), stereoPath, 30*time.Second)
	require.NoError(t, err)

	require.Equal(t, len(mono.Samples), len(stereo.Samples))
	assert.InDeltaSlice(t, mono.Samples, stereo.Samples, 1e-9)
}

func TestDecoder_DecodeBytes_Empty(t *testing.T) {
	decoder := NewDecoder(&fakeFallback{}, t.TempDir())

	_, err := decoder.DecodeBytes(context.Background(), nil, "recording.webm", 30*time.Second)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeDecode))
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestDecoder_DecodeBytes_Fallback(t *testing.T) {
	dir := t.TempDir()
	fallback := &fakeFallback{sampleRate: 48000, channels: 2, frames: 48000}
	decoder := NewDecoder(fallback, dir)

	// Ogg pages are not decoded in-process
	data := append([]byte("OggS"), make([]byte, 256)...)
	w, err := decoder.DecodeBytes(context.Background(), data, "clip.ogg", 30*time.Second)
	require.NoError(t, err)

	assert.True(t, fallback.existed, "temp file should exist while the fallback runs")
	assert.Equal(t, ".ogg", fallback.suffix)
	assert.Contains(t, filepath.Base(fallback.path), TempFilePrefix)
	assert.InDelta(t, 22050, len(w.Samples), 64)

	_, statErr := os.Stat(fallback.path)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed after decoding")
}

func TestDecoder_DecodeBytes_AllDecodersFail(t *testing.T) {
	dir := t.TempDir()
	fallback := &fakeFallback{err: errors.New("invalid data found when processing input")}
	decoder := NewDecoder(fallback, dir)

	// Looks like a WAV header but carries no valid chunks
	data := append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 32)...)
	_, err := decoder.DecodeBytes(context.Background(), data, "", 30*time.Second)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeDecode))
	assert.Contains(t, err.Error(), "invalid data found")
	assert.Equal(t, defaultTempSuffix, fallback.suffix)

	_, statErr := os.Stat(fallback.path)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed on failure")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecoder_DecodeBytes_NoFallback(t *testing.T) {
	decoder := NewDecoder(nil, t.TempDir())

	_, err := decoder.DecodeBytes(context.Background(), []byte("not audio at all"), "x.webm", 30*time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFallback))
}

func TestDecoder_DecodeBytes_FFmpeg(t *testing.T) {
	ff := ffmpeg.New("ffmpeg", "ffprobe", 30*time.Second)
	if err := ff.ValidateBinaries(); err != nil {
		t.Skipf("FFmpeg binaries not available: %v", err)
	}

	// Sun .au is not decoded in-process, so this exercises the temp file path end to end
	dir := t.TempDir()
	src := filepath.Join(dir, "tone.au")
	out, err := exec.Command("ffmpeg", "-v", "error", "-f", "lavfi",
		"-i", "sine=frequency=440:sample_rate=44100:duration=1", "-ac", "2", "-y", src).CombinedOutput()
	require.NoError(t, err, string(out))

	data, err := os.ReadFile(src)
	require.NoError(t, err)

	decoder := NewDecoder(ff, dir)
	w, err := decoder.DecodeBytes(context.Background(), data, "tone.au", 30*time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 22050, len(w.Samples), 256)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the source fixture should remain")
}

func TestFromPCM16(t *testing.T) {
	tests := []struct {
		name    string
		frames  int
		value   int16
		wantErr bool
		wantLen int
	}{
		{name: "too short", frames: 22049, wantErr: true},
		{name: "one second", frames: 22050, value: 16384, wantLen: 22050},
		{name: "capped at ten seconds", frames: 22050 * 12, value: -16384, wantLen: 22050 * 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]byte, tt.frames*2)
			for i := 0; i < tt.frames; i++ {
				raw[2*i] = byte(uint16(tt.value))
				raw[2*i+1] = byte(uint16(tt.value) >> 8)
			}

			w, err := FromPCM16(raw, 22050, 10*time.Second)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrCodeDecode))
				assert.True(t, errors.Is(err, ErrTooShort))
				return
			}
			require.NoError(t, err)
			assert.Len(t, w.Samples, tt.wantLen)
			assert.InDelta(t, float64(tt.value)/32768.0, w.Samples[0], 1e-12)
		})
	}
}

func TestDownmix(t *testing.T) {
	mono := downmix([]float64{1, 0, 0.5, 0.5, -1, 1}, 2)
	assert.Equal(t, []float64{0.5, 0.5, 0}, mono)

	same := []float64{0.1, 0.2}
	assert.Equal(t, same, downmix(same, 1))
}

func TestResample_Length(t *testing.T) {
	tests := []struct {
		from, to, n, want int
	}{
		{44100, 22050, 88200, 44100},
		{48000, 22050, 48000, 22050},
		{16000, 22050, 16000, 22050},
		{22050, 22050, 1000, 1000},
	}

	for _, tt := range tests {
		out, err := resample(make([]float64, tt.n), tt.from, tt.to)
		require.NoError(t, err)
		assert.Len(t, out, tt.want, "%d -> %d", tt.from, tt.to)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   container
	}{
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), containerWAV},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), containerFLAC},
		{"mp3 with id3", []byte("ID3\x04\x00"), containerMP3},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x64}, containerMP3},
		{"mpeg layer ii", []byte{0xFF, 0xFD, 0x90, 0x64}, containerUnknown},
		{"aac adts", []byte{0xFF, 0xF1, 0x50, 0x80}, containerUnknown},
		{"ogg", []byte("OggS\x00\x02"), containerUnknown},
		{"webm", []byte{0x1A, 0x45, 0xDF, 0xA3}, containerUnknown},
		{"short", []byte("R"), containerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniff(tt.header))
		})
	}
}

func TestTempSuffix(t *testing.T) {
	assert.Equal(t, ".mp4", tempSuffix("video.MP4"))
	assert.Equal(t, ".ogg", tempSuffix("ogg"))
	assert.Equal(t, ".webm", tempSuffix(""))
	assert.Equal(t, ".webm", tempSuffix("../../etc/passwd"))
}

// sineFrames returns frames of a 440 Hz tone at the given amplitude
func sineFrames(rate, frames int, amplitude float64) []float64 {
	out := make([]float64, frames)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*440*float64(i)/float64(rate))
	}
	return out
}

func peak(samples []float64) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(s))
	}
	return p
}

var subFormatFloat = append([]byte{0x03}, subFormatPCM[1:]...)

// extensibleWAV builds a mono 22050 Hz WAVE_FORMAT_EXTENSIBLE file. A float sub-format
// stores 32-bit IEEE samples, PCM stores 16-bit integers.
func extensibleWAV(t *testing.T, subFormat []byte, samples []float64) []byte {
	t.Helper()

	bits := 16
	if bytes.Equal(subFormat, subFormatFloat) {
		bits = 32
	}
	blockAlign := bits / 8

	var data bytes.Buffer
	for _, v := range samples {
		if bits == 32 {
			require.NoError(t, binary.Write(&data, binary.LittleEndian, float32(v)))
		} else {
			require.NoError(t, binary.Write(&data, binary.LittleEndian, int16(v*32767)))
		}
	}

	var out bytes.Buffer
	le := func(v interface{}) { require.NoError(t, binary.Write(&out, binary.LittleEndian, v)) }

	out.WriteString("RIFF")
	le(uint32(4 + 8 + 40 + 8 + data.Len()))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	le(uint32(40))
	le(uint16(wavFormatExtensible))
	le(uint16(1))
	le(uint32(SampleRate))
	le(uint32(SampleRate * blockAlign))
	le(uint16(blockAlign))
	le(uint16(bits))
	le(uint16(22)) // extension size
	le(uint16(bits))
	le(uint32(4)) // front center
	out.Write(subFormat)

	out.WriteString("data")
	le(uint32(data.Len()))
	out.Write(data.Bytes())
	return out.Bytes()
}

func TestDecoder_DecodeBytes_ExtensibleWAV(t *testing.T) {
	tone := sineFrames(SampleRate, SampleRate, 0.01)

	t.Run("integer pcm decodes in-process", func(t *testing.T) {
		fallback := &fakeFallback{sampleRate: SampleRate, channels: 1, frames: SampleRate}
		decoder := NewDecoder(fallback, t.TempDir())

		w, err := decoder.DecodeBytes(context.Background(), extensibleWAV(t, subFormatPCM, tone), "tone.wav", 30*time.Second)
		require.NoError(t, err)
		assert.Empty(t, fallback.path, "fallback should not run")
		assert.Len(t, w.Samples, SampleRate)
		assert.InDelta(t, 0.01, peak(w.Samples), 2e-4)
	})

	t.Run("float goes to the fallback", func(t *testing.T) {
		fallback := &fakeFallback{sampleRate: SampleRate, channels: 1, frames: SampleRate}
		decoder := NewDecoder(fallback, t.TempDir())

		w, err := decoder.DecodeBytes(context.Background(), extensibleWAV(t, subFormatFloat, tone), "tone.wav", 30*time.Second)
		require.NoError(t, err)
		assert.NotEmpty(t, fallback.path, "fallback should run")
		assert.Equal(t, ".wav", fallback.suffix)
		assert.Len(t, w.Samples, SampleRate)
	})

	t.Run("float without a fallback is rejected", func(t *testing.T) {
		decoder := NewDecoder(nil, t.TempDir())

		_, err := decoder.DecodeBytes(context.Background(), extensibleWAV(t, subFormatFloat, tone), "tone.wav", 30*time.Second)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
		assert.True(t, errors.Is(err, ErrNoFallback))
	})
}

// writeSineFLAC encodes a 16-bit 440 Hz tone with the same signal on every channel
func writeSineFLAC(t *testing.T, path string, rate, channels int, seconds float64) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	frames := int(float64(rate) * seconds)
	info := &meta.StreamInfo{
		BlockSizeMin:  4096,
		BlockSizeMax:  4096,
		SampleRate:    uint32(rate),
		NChannels:     uint8(channels),
		BitsPerSample: 16,
		NSamples:      uint64(frames),
	}
	enc, err := flac.NewEncoder(f, info)
	require.NoError(t, err)

	layout := frame.ChannelsMono
	if channels == 2 {
		layout = frame.ChannelsLR
	}

	tone := sineFrames(rate, frames, 0.5)
	for offset := 0; offset < frames; offset += 4096 {
		n := min(4096, frames-offset)
		block := make([]int32, n)
		for i := range block {
			block[i] = int32(tone[offset+i] * 32767)
		}

		fr := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(rate),
				Channels:          layout,
				BitsPerSample:     16,
			},
			Subframes: make([]*frame.Subframe, channels),
		}
		for ch := range fr.Subframes {
			fr.Subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   append([]int32(nil), block...),
				NSamples:  n,
			}
		}
		require.NoError(t, enc.WriteFrame(fr))
	}
	require.NoError(t, enc.Close())
}

func TestDecoder_DecodeFile_FLAC(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		rate        int
		channels    int
		seconds     float64
		maxDuration time.Duration
		wantLen     int
		tolerance   float64
	}{
		{name: "mono at target rate", rate: 22050, channels: 1, seconds: 1, maxDuration: 30 * time.Second, wantLen: 22050},
		{name: "stereo downmixed", rate: 22050, channels: 2, seconds: 1, maxDuration: 30 * time.Second, wantLen: 22050},
		{name: "truncated to cap", rate: 22050, channels: 1, seconds: 3, maxDuration: time.Second, wantLen: 22050},
		{name: "resampled from 44.1k", rate: 44100, channels: 2, seconds: 1, maxDuration: 30 * time.Second, wantLen: 22050, tolerance: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".flac")
			writeSineFLAC(t, path, tt.rate, tt.channels, tt.seconds)

			decoder := NewDecoder(nil, dir)
			w, err := decoder.DecodeFile(context.Background(), path, tt.maxDuration)
			require.NoError(t, err)

			assert.Equal(t, SampleRate, w.SampleRate)
			assert.InDelta(t, tt.wantLen, len(w.Samples), tt.tolerance)
			assert.InDelta(t, 0.5, peak(w.Samples), 0.02)
		})
	}
}

// mp3Frames builds silent MPEG-1 Layer III frames at 44.1 kHz and 128 kbps.
// Zeroed side info and main data decode to 1152 frames of silence each.
func mp3Frames(count int, mono bool) []byte {
	const frameSize = 417 // 144 * 128000 / 44100
	mode := byte(0x00)
	if mono {
		mode = 0xC0
	}

	out := make([]byte, 0, count*frameSize)
	for i := 0; i < count; i++ {
		fr := make([]byte, frameSize)
		copy(fr, []byte{0xFF, 0xFB, 0x90, mode})
		out = append(out, fr...)
	}
	return out
}

func TestDecoder_DecodeBytes_MP3(t *testing.T) {
	tests := []struct {
		name        string
		frames      int
		mono        bool
		maxDuration time.Duration
		wantLen     int
	}{
		// 40 * 1152 frames at 44.1 kHz is 23040 frames at 22.05 kHz
		{name: "stereo resampled and downmixed", frames: 40, maxDuration: 30 * time.Second, wantLen: 23040},
		{name: "mono stream", frames: 40, mono: true, maxDuration: 30 * time.Second, wantLen: 23040},
		{name: "truncated to cap", frames: 100, maxDuration: time.Second, wantLen: 22050},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &fakeFallback{}
			decoder := NewDecoder(fallback, t.TempDir())

			data := mp3Frames(tt.frames, tt.mono)
			require.Equal(t, containerMP3, sniff(data[:headerSize]))

			w, err := decoder.DecodeBytes(context.Background(), data, "clip.mp3", tt.maxDuration)
			require.NoError(t, err)
			assert.Empty(t, fallback.path, "fallback should not run")

			assert.Equal(t, SampleRate, w.SampleRate)
			assert.InDelta(t, tt.wantLen, len(w.Samples), 64)
			assert.InDelta(t, 0, peak(w.Samples), 1e-6)
		})
	}
}
