package history

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/killallgit/genre-api/internal/models"
)

// repository implements Repository
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new prediction repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create saves a new prediction
func (r *repository) Create(ctx context.Context, p *models.Prediction) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// List returns the newest predictions first
func (r *repository) List(ctx context.Context, limit int) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// GetByID retrieves a prediction by ID
func (r *repository) GetByID(ctx context.Context, id uint) (*models.Prediction, error) {
	var p models.Prediction
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Count returns the number of stored predictions
func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Prediction{}).Count(&count).Error
	return count, err
}
