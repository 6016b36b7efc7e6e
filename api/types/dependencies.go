package types

import (
	"context"

	"github.com/killallgit/genre-api/internal/database"
	"github.com/killallgit/genre-api/internal/model"
	"github.com/killallgit/genre-api/internal/prediction"
	"github.com/killallgit/genre-api/internal/services/cache"
	"github.com/killallgit/genre-api/internal/services/history"
)

// GenreClassifier runs the audio to genre pipeline
type GenreClassifier interface {
	ClassifyBytes(ctx context.Context, data []byte, filename, source string) (*prediction.GenrePrediction, error)
	Artifacts() *model.Artifacts
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB             *database.DB
	Classifier     GenreClassifier
	HistoryService history.Service
	CacheStats     cache.StatsProvider
	Build          BuildInfo
}

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string `json:"version" example:"1.0.0"`
	GitCommit string `json:"git_commit" example:"a1b2c3d"`
	BuildTime string `json:"build_time" example:"2025-10-02T13:00:00Z"`
}
