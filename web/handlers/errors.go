package handlers

import (
	"errors"
	"net/http"

	apperrors "evidence-agent/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps application errors to HTTP status codes and writes a
// JSON error body.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsInvalidInput(err):
		status = http.StatusBadRequest
	case apperrors.IsReportFormat(err):
		// The model ignored the response format; the run failed, nothing
		// was saved, and the user should retry.
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrLLMCommunication):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
	} else {
		logger.Warn("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
