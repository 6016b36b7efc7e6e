package predictions

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/genre-api/api/types"
)

// RegisterRoutes registers prediction history routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.GET("/:id", Get(deps))
}
