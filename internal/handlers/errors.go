package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/makeup-recommender/internal/ingest"
	"github.com/example/makeup-recommender/internal/tone"
	"github.com/example/makeup-recommender/internal/usecase"
)

const (
	noFaceMessage       = "We couldn't find a face in that photo. Please upload a clearer, well-lit selfie."
	unavailableMessage  = "Skin tone analysis is temporarily unavailable. Please try again."
	emptyResultMessage  = "No products match your filter criteria. Try changing your filters."
	invalidImageMessage = "The uploaded file could not be read as an image. Please try a different photo."
)

// errorStatus maps flow errors to an HTTP status and a user-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tone.ErrNoFaceDetected):
		return http.StatusUnprocessableEntity, noFaceMessage
	case errors.Is(err, tone.ErrAnalysisUnavailable):
		return http.StatusServiceUnavailable, unavailableMessage
	case errors.Is(err, ingest.ErrEmptyImage):
		return http.StatusBadRequest, "The uploaded file appears to be empty. Please try uploading a different image."
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "Please upload a JPEG or PNG photo."
	case errors.Is(err, ingest.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "That photo is too large. Please upload an image under 40 megapixels."
	case errors.Is(err, ingest.ErrInvalidImage):
		return http.StatusBadRequest, invalidImageMessage
	case errors.Is(err, usecase.ErrResultNotFound):
		return http.StatusNotFound, "That result has expired. Please upload your photo again."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

func uploadStatus(err error) (int, string) {
	if errors.Is(err, errUploadTooLarge) {
		return http.StatusRequestEntityTooLarge, "image must be 10 MiB or smaller"
	}
	var uploadErr *uploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.status, uploadErr.message
	}
	return http.StatusBadRequest, err.Error()
}

func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "index.html", pageData{Message: message, MessageKind: "error"})
}
