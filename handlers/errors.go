package handlers

import (
	"errors"
	"net/http"

	"tillpoint/services/login"
	"tillpoint/services/poserr"
	"tillpoint/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError maps the typed service errors onto HTTP statuses. The
// orchestrator forwards the most specific error reached, so this is the only
// place status decisions live.
func writeServiceError(c *gin.Context, err error) {
	var (
		validation poserr.ValidationError
		expired    poserr.ExpiredOrUsedCodeError
		denied     poserr.DeviceDeniedError
		noTerminal poserr.NoTerminalAvailableError
		conflict   poserr.ConcurrentSessionConflictError
		badState   poserr.InvalidSessionStateError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.Is(err, login.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &expired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, gin.H{"error": denied.Reason})
	case errors.As(err, &noTerminal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":           err.Error(),
			"existingSession": conflict.Existing,
		})
	case errors.As(err, &badState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		utils.GetLogger().Error("unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
	}
}
