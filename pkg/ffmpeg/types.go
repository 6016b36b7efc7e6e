package ffmpeg

import "time"

// AudioMetadata represents metadata extracted from an audio file
type AudioMetadata struct {
	Duration   float64 `json:"duration"`    // Duration in seconds, 0 when the container does not say
	SampleRate int     `json:"sample_rate"` // Sample rate in Hz
	Channels   int     `json:"channels"`    // Number of audio channels
	Format     string  `json:"format"`      // Container format (webm, ogg, mov, ...)
	Codec      string  `json:"codec"`       // Audio codec
}

// PCMData is decoded audio, interleaved when Channels > 1
type PCMData struct {
	Samples    []float64
	SampleRate int
	Channels   int
}

// DecodeOptions controls PCM decoding
type DecodeOptions struct {
	MaxDuration time.Duration // Stop decoding after this much audio; 0 decodes everything
}
