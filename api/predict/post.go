package predict

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/genre-api/api/types"
	"github.com/killallgit/genre-api/internal/models"
)

// FileField is the multipart field carrying the upload
const FileField = "file"

// AllowedExtensions are the upload types accepted by /predict, sorted
var AllowedExtensions = []string{"aac", "flac", "m4a", "mp3", "mp4", "ogg", "wav", "webm"}

// recordingTypes maps recorder MIME types to a container extension for the decoder
var recordingTypes = map[string]string{
	"audio/webm":   "webm",
	"video/webm":   "webm",
	"audio/ogg":    "ogg",
	"audio/wav":    "wav",
	"audio/wave":   "wav",
	"audio/x-wav":  "wav",
	"audio/mpeg":   "mp3",
	"audio/mp4":    "m4a",
	"audio/x-m4a":  "m4a",
	"audio/aac":    "aac",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
}

var (
	msgNoFile      = `No file provided. Send a file with key "file".`
	msgEmptyName   = "Empty filename."
	msgUnsupported = "Unsupported file type. Allowed: " + strings.Join(AllowedExtensions, ", ")
	msgNoAudio     = "No audio data received."
	msgTooLarge    = "Upload exceeds the maximum allowed size."
)

// Upload classifies an uploaded audio file
// @Summary      Classify an audio file
// @Description  Decodes the uploaded clip, extracts its 57 features and returns the genre ranking
// @Tags         predict
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Audio file (wav, mp3, ogg, flac, webm, mp4, m4a, aac)"
// @Success      200  {object}  prediction.GenrePrediction
// @Failure      400  {object}  types.ErrorResponse
// @Failure      413  {object}  types.ErrorResponse
// @Failure      429  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /predict [post]
func Upload(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile(FileField)
		if err != nil {
			if isTooLarge(err) {
				sendTooLarge(c)
				return
			}
			// Parts sent with an empty filename are parsed as plain values
			if form := c.Request.MultipartForm; form != nil && len(form.Value[FileField]) > 0 {
				types.SendBadRequest(c, msgEmptyName)
				return
			}
			types.SendBadRequest(c, msgNoFile)
			return
		}

		if header.Filename == "" {
			types.SendBadRequest(c, msgEmptyName)
			return
		}
		if !Allowed(header.Filename) {
			types.SendBadRequest(c, msgUnsupported)
			return
		}

		f, err := header.Open()
		if err != nil {
			types.SendProcessingError(c, err)
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			types.SendProcessingError(c, err)
			return
		}

		result, err := deps.Classifier.ClassifyBytes(c.Request.Context(), data, header.Filename, models.SourceUpload)
		if err != nil {
			types.SendProcessingError(c, err)
			return
		}

		types.SendSuccess(c, result)
	}
}

// Record classifies a raw browser recording sent as the request body
// @Summary      Classify a recording
// @Description  Accepts raw audio bytes, typically a MediaRecorder webm blob
// @Tags         predict
// @Accept       application/octet-stream
// @Produce      json
// @Param        audio  body  string  true  "Raw audio bytes"
// @Success      200  {object}  prediction.GenrePrediction
// @Failure      400  {object}  types.ErrorResponse
// @Failure      413  {object}  types.ErrorResponse
// @Failure      429  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /predict/record [post]
func Record(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			if isTooLarge(err) {
				sendTooLarge(c)
				return
			}
			types.SendBadRequest(c, msgNoAudio)
			return
		}
		if len(data) == 0 {
			types.SendBadRequest(c, msgNoAudio)
			return
		}

		result, err := deps.Classifier.ClassifyBytes(c.Request.Context(), data, RecordingHint(c.GetHeader("Content-Type")), models.SourceRecord)
		if err != nil {
			types.SendProcessingError(c, err)
			return
		}

		types.SendSuccess(c, result)
	}
}

// Allowed reports whether filename has an accepted extension
func Allowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, a := range AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}

// RecordingHint turns a Content-Type into a decoder hint. Unknown types return ""
// and the decoder falls back to webm.
func RecordingHint(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return recordingTypes[strings.ToLower(mediaType)]
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func sendTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: msgTooLarge})
}
