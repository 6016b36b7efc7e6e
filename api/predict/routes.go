package predict

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/genre-api/api/types"
)

// RegisterRoutes registers the prediction routes on a group that already carries
// the rate limit middleware
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("", Upload(deps))
	router.POST("/record", Record(deps))
}
