package version

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

	tests := []struct {
		name         string
		deps         func(t *testing.T) *types.Dependencies
		expectedBody map[string]interface{}
	}{
		{
			name: "build info and model",
			deps: func(t *testing.T) *types.Dependencies {
				return &types.Dependencies{
					Build:      types.BuildInfo{Version: "1.2.3", GitCommit: "abc123", BuildTime: "today"},
					Classifier: &apitest.Classifier{Model: apitest.Artifacts(t)},
				}
			},
			expectedBody: map[string]interface{}{
				"name":       "Genre Classification API",
				"version":    "1.2.3",
				"git_commit": "abc123",
				"build_time": "today",
				"model":      "NearestCentroid",
			},
		},
		{
			name: "no dependencies",
			deps: func(t *testing.T) *types.Dependencies { return nil },
			expectedBody: map[string]interface{}{
				"name":    "Genre Classification API",
				"version": "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Get(tt.deps(t))(c)

			assert.Equal(t, http.StatusOK, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			for key, expectedValue := range tt.expectedBody {
				assert.Equal(t, expectedValue, response[key], "Key: %s", key)
			}
		})
	}
}
