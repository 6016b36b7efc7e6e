package history

import (
	"context"

	"github.com/killallgit/genre-api/internal/models"
)

// Service records and lists classification results
type Service interface {
	// Record stores a prediction
	Record(ctx context.Context, p *models.Prediction) error

	// Recent returns up to limit predictions, newest first
	Recent(ctx context.Context, limit int) ([]models.Prediction, error)

	// Get retrieves one prediction by ID
	Get(ctx context.Context, id uint) (*models.Prediction, error)
}

// Repository defines prediction data access
type Repository interface {
	Create(ctx context.Context, p *models.Prediction) error
	List(ctx context.Context, limit int) ([]models.Prediction, error)
	GetByID(ctx context.Context, id uint) (*models.Prediction, error)
	Count(ctx context.Context) (int64, error)
}
