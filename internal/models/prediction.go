package models

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/killallgit/genre-api/internal/prediction"
)

// Prediction sources
const (
	SourceUpload  = "upload"
	SourceRecord  = "record"
	SourceCapture = "capture"
	SourceFile    = "file"
)

// Prediction is a stored classification result
type Prediction struct {
	gorm.Model
	Source           string  `json:"source" gorm:"not null;index"`
	Filename         string  `json:"filename,omitempty"`
	Genre            string  `json:"genre" gorm:"not null;index"`
	Confidence       float64 `json:"confidence" gorm:"not null"`
	RankingData      []byte  `json:"-" gorm:"type:blob;not null"` // JSON-encoded []prediction.GenreScore
	AudioSHA256      string  `json:"audio_sha256" gorm:"index"`
	AudioSeconds     float64 `json:"audio_seconds"`
	ProcessingMillis int64   `json:"processing_ms"`
	ModelName        string  `json:"model"`
}

// Ranking returns the decoded genre ranking
func (p *Prediction) Ranking() ([]prediction.GenreScore, error) {
	var ranking []prediction.GenreScore
	if err := json.Unmarshal(p.RankingData, &ranking); err != nil {
		return nil, err
	}
	return ranking, nil
}

// SetResult copies the top genre and encodes the full ranking
func (p *Prediction) SetResult(result *prediction.GenrePrediction) error {
	data, err := json.Marshal(result.TopGenres)
	if err != nil {
		return err
	}
	p.Genre = result.Genre
	p.Confidence = result.Confidence
	p.RankingData = data
	return nil
}
