package version

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/genre-api/api/types"
)

// Name is reported by the version endpoint
const Name = "Genre Classification API"

// Get handles version requests
// @Summary      Build information
// @Tags         version
// @Produce      json
// @Success      200  {object}  types.VersionResponse
// @Router       /version [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := types.VersionResponse{Name: Name}
		if deps != nil {
			response.BuildInfo = deps.Build
			if deps.Classifier != nil && deps.Classifier.Artifacts() != nil {
				response.Model = deps.Classifier.Artifacts().ModelName()
			}
		}
		c.JSON(http.StatusOK, response)
	}
}
