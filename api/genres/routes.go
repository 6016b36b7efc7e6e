package genres

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/genre-api/api/types"
)

// RegisterRoutes registers the genre listing route
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies) {
	engine.GET("/genres", Get(deps))
}
