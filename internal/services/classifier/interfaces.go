package classifier

import (
	"context"
	"time"

	"github.com/killallgit/genre-api/internal/audio"
	"github.com/killallgit/genre-api/internal/features"
	"github.com/killallgit/genre-api/internal/models"
)

// Decoder turns files or byte buffers into normalized waveforms
type Decoder interface {
	DecodeFile(ctx context.Context, path string, maxDuration time.Duration) (*audio.Waveform, error)
	DecodeBytes(ctx context.Context, data []byte, hint string, maxDuration time.Duration) (*audio.Waveform, error)
}

// Extractor computes the feature vector of a waveform
type Extractor interface {
	Extract(ctx context.Context, w *audio.Waveform) (features.Vector, error)
}

// Recorder persists successful predictions
type Recorder interface {
	Record(ctx context.Context, p *models.Prediction) error
}
