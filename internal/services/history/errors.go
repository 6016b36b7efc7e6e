package history

import "errors"

var (
	// ErrPredictionNotFound is returned when a prediction does not exist
	ErrPredictionNotFound = errors.New("prediction not found")

	// ErrInvalidPrediction is returned when a prediction is missing its genre or ranking
	ErrInvalidPrediction = errors.New("invalid prediction")
)
