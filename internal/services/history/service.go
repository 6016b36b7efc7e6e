package history

import (
	"context"
	"log"

	"github.com/killallgit/genre-api/internal/models"
	apperrors "github.com/killallgit/genre-api/pkg/errors"
)

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// service implements Service
type service struct {
	repo Repository
}

// NewService creates a new history service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Record stores a prediction
func (s *service) Record(ctx context.Context, p *models.Prediction) error {
	if p == nil || p.Genre == "" || len(p.RankingData) == 0 {
		return ErrInvalidPrediction
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return apperrors.DatabaseError("insert prediction", err)
	}

	log.Printf("[DEBUG] Recorded prediction %d: %s (%.4f) from %s", p.ID, p.Genre, p.Confidence, p.Source)
	return nil
}

// Recent returns up to limit predictions, newest first. Out of range limits fall back to
// DefaultLimit or are capped at MaxLimit.
func (s *service) Recent(ctx context.Context, limit int) ([]models.Prediction, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	predictions, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperrors.DatabaseError("list predictions", err)
	}
	return predictions, nil
}

// Get retrieves one prediction
func (s *service) Get(ctx context.Context, id uint) (*models.Prediction, error) {
	if id == 0 {
		return nil, ErrPredictionNotFound
	}
	return s.repo.GetByID(ctx, id)
}
