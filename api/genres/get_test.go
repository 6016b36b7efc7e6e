package genres

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/genre-api/api/apitest"
	"github.com/killallgit/genre-api/api/types"
)

func TestGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("lists genres in class order", func(t *testing.T) {
		router := gin.New()
		RegisterRoutes(router, &types.Dependencies{Classifier: &apitest.Classifier{Model: apitest.Artifacts(t)}})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/genres", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp types.GenresResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, apitest.Genres, resp.Genres)
	})

	t.Run("model not loaded", func(t *testing.T) {
		router := gin.New()
		RegisterRoutes(router, &types.Dependencies{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/genres", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
