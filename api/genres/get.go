package genres

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/genre-api/api/types"
)

// Get lists the genres the model can predict, in class-index order
// @Summary      List genres
// @Tags         genres
// @Produce      json
// @Success      200  {object}  types.GenresResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /genres [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps == nil || deps.Classifier == nil || deps.Classifier.Artifacts() == nil {
			types.SendServiceUnavailable(c, "model not loaded")
			return
		}
		c.JSON(http.StatusOK, types.GenresResponse{Genres: deps.Classifier.Artifacts().Genres()})
	}
}
