package types

import (
	"time"

	"github.com/killallgit/genre-api/internal/models"
	"github.com/killallgit/genre-api/internal/prediction"
	"github.com/killallgit/genre-api/internal/services/cache"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error" example:"Failed to process audio: could not decode audio"`
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	Status   string                 `json:"status" example:"ok"`
	Model    string                 `json:"model" example:"LogisticRegression"`
	Genres   []string               `json:"genres"`
	Database map[string]interface{} `json:"database,omitempty"`
	Cache    *cache.CacheStats      `json:"cache,omitempty"`
}

// VersionResponse for the version endpoint
type VersionResponse struct {
	Name string `json:"name" example:"Genre Classification API"`
	BuildInfo
	Model string `json:"model,omitempty" example:"LogisticRegression"`
}

// GenresResponse lists the genres the model can predict
type GenresResponse struct {
	Genres []string `json:"genres"`
}

// PredictionRecord is a stored prediction in API responses
type PredictionRecord struct {
	ID           uint                    `json:"id" example:"12"`
	Source       string                  `json:"source" enums:"upload,record,capture,file" example:"upload"`
	Filename     string                  `json:"filename,omitempty" example:"clip.mp3"`
	Genre        string                  `json:"genre" example:"rock"`
	Confidence   float64                 `json:"confidence" example:"0.8123"`
	TopGenres    []prediction.GenreScore `json:"top_genres"`
	Model        string                  `json:"model" example:"LogisticRegression"`
	AudioSeconds float64                 `json:"audio_seconds" example:"30"`
	ProcessingMs int64                   `json:"processing_ms" example:"850"`
	CreatedAt    string                  `json:"created_at" example:"2025-10-02T13:00:00Z"`
}

// PredictionsResponse for prediction history lists
type PredictionsResponse struct {
	Status      string             `json:"status" example:"ok"`
	Predictions []PredictionRecord `json:"predictions"`
	Count       int                `json:"count" example:"1"`
}

// ToPredictionRecord converts a stored prediction for output
func ToPredictionRecord(p *models.Prediction) (PredictionRecord, error) {
	ranking, err := p.Ranking()
	if err != nil {
		return PredictionRecord{}, err
	}
	return PredictionRecord{
		ID:           p.ID,
		Source:       p.Source,
		Filename:     p.Filename,
		Genre:        p.Genre,
		Confidence:   p.Confidence,
		TopGenres:    ranking,
		Model:        p.ModelName,
		AudioSeconds: p.AudioSeconds,
		ProcessingMs: p.ProcessingMillis,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}
