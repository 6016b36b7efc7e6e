package types

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/killallgit/genre-api/pkg/errors"
)

// SendBadRequest sends a standardized bad request response
func SendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// SendNotFound sends a standardized not found response
func SendNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// SendInternalError sends a standardized internal server error response
func SendInternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

// SendServiceUnavailable sends a standardized service unavailable response
func SendServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: message})
}

// SendProcessingError reports a failed classification. Client errors keep their own
// message; pipeline failures are prefixed the same way for every cause.
func SendProcessingError(c *gin.Context, err error) {
	status := apperrors.GetHTTPCode(err)
	if status < http.StatusInternalServerError {
		c.JSON(status, ErrorResponse{Error: reason(err)})
		return
	}

	log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(status, ErrorResponse{Error: "Failed to process audio: " + reason(err)})
}

func reason(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Reason()
	}
	return err.Error()
}

// SendSuccess sends a standardized success response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
