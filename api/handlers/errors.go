package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"news-quiz/dto"
	"news-quiz/passlock"
	"news-quiz/processor"
	"news-quiz/repositories"
	"news-quiz/services"
	"news-quiz/taxonomy"
)

// statusFor maps domain errors to HTTP statuses. Anything else, including
// *processor.UpstreamError, is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, processor.ErrInvalidTask),
		errors.Is(err, processor.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, taxonomy.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrDuplicateURI),
		errors.Is(err, repositories.ErrAlreadyExists),
		errors.Is(err, passlock.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, services.ErrIngestionUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), dto.ErrorResponseDTO{Error: err.Error()})
}

func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
