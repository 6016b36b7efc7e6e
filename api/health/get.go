package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/genre-api/api/types"
)

// Get handles health check requests
// @Summary      Service health
// @Description  Reports the loaded model, the genres it predicts and database status
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps == nil || deps.Classifier == nil || deps.Classifier.Artifacts() == nil {
			types.SendServiceUnavailable(c, "model not loaded")
			return
		}

		artifacts := deps.Classifier.Artifacts()
		response := types.HealthResponse{
			Status:   types.StatusOK,
			Model:    artifacts.ModelName(),
			Genres:   artifacts.Genres(),
			Database: getDatabaseStatus(deps),
		}

		if deps.CacheStats != nil {
			stats := deps.CacheStats.Stats()
			response.Cache = &stats
		}

		c.JSON(http.StatusOK, response)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) map[string]interface{} {
	if deps.DB == nil || deps.DB.DB == nil {
		return map[string]interface{}{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return map[string]interface{}{"status": "unhealthy", "error": err.Error()}
	}

	return map[string]interface{}{"status": "healthy"}
}
