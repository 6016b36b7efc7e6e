package predictions

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/genre-api/api/types"
	"github.com/killallgit/genre-api/internal/services/history"
)

const msgHistoryDisabled = "Prediction history is disabled."

// List returns recent predictions, newest first
// @Summary      Recent predictions
// @Tags         predictions
// @Produce      json
// @Param        limit  query     int  false  "Maximum records to return (default 20, max 200)"
// @Success      200    {object}  types.PredictionsResponse
// @Failure      400    {object}  types.ErrorResponse
// @Failure      500    {object}  types.ErrorResponse
// @Failure      503    {object}  types.ErrorResponse
// @Router       /api/v1/predictions [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps == nil || deps.HistoryService == nil {
			types.SendServiceUnavailable(c, msgHistoryDisabled)
			return
		}

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				types.SendBadRequest(c, "limit must be a positive integer")
				return
			}
			limit = n
		}

		records, err := deps.HistoryService.Recent(c.Request.Context(), limit)
		if err != nil {
			log.Printf("[ERROR] Failed to list predictions: %v", err)
			types.SendInternalError(c, "Failed to list predictions")
			return
		}

		response := types.PredictionsResponse{
			Status:      types.StatusOK,
			Predictions: make([]types.PredictionRecord, 0, len(records)),
		}
		for i := range records {
			rec, err := types.ToPredictionRecord(&records[i])
			if err != nil {
				log.Printf("[WARN] Skipping prediction %d with unreadable ranking: %v", records[i].ID, err)
				continue
			}
			response.Predictions = append(response.Predictions, rec)
		}
		response.Count = len(response.Predictions)

		types.SendSuccess(c, response)
	}
}

// Get returns one stored prediction
// @Summary      Get a prediction
// @Tags         predictions
// @Produce      json
// @Param        id   path      int  true  "Prediction ID"
// @Success      200  {object}  types.PredictionRecord
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /api/v1/predictions/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps == nil || deps.HistoryService == nil {
			types.SendServiceUnavailable(c, msgHistoryDisabled)
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil || id == 0 {
			types.SendBadRequest(c, "Invalid prediction ID")
			return
		}

		p, err := deps.HistoryService.Get(c.Request.Context(), uint(id))
		if err != nil {
			if errors.Is(err, history.ErrPredictionNotFound) {
				types.SendNotFound(c, "Prediction not found")
				return
			}
			log.Printf("[ERROR] Failed to get prediction %d: %v", id, err)
			types.SendInternalError(c, "Failed to get prediction")
			return
		}

		rec, err := types.ToPredictionRecord(p)
		if err != nil {
			log.Printf("[ERROR] Prediction %d has an unreadable ranking: %v", id, err)
			types.SendInternalError(c, "Failed to get prediction")
			return
		}

		types.SendSuccess(c, rec)
	}
}
