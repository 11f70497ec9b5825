package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-backend/checkin"
	"attendance-backend/store"
)

// respondError maps domain errors to HTTP statuses. Internal errors are
// logged and returned with a generic body; everything else is safe to show
// the caller as-is.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, checkin.ErrSessionNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, checkin.ErrAlreadyCheckedIn),
		errors.Is(err, store.ErrDuplicateSession),
		errors.Is(err, store.ErrDuplicateAttendance):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, checkin.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, checkin.ErrSessionNotActive),
		errors.Is(err, checkin.ErrSessionWindowClosed),
		errors.Is(err, store.ErrInvalidField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, checkin.ErrConfigMissing):
		log.Error("check-in attempted without mint configuration", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

	case errors.Is(err, checkin.ErrMintFailed):
		log.Error("mint failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	default:
		log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
