package handlers

import (
	"net/http"

	"tillpoint/models"
	"tillpoint/services/session"

	"github.com/gin-gonic/gin"
)

// SessionHandler exposes register session operations to authenticated staff.
type SessionHandler struct {
	Ledger session.Ledger
}

// NewSessionHandler creates a SessionHandler backed by the given ledger.
func NewSessionHandler(ledger session.Ledger) *SessionHandler {
	return &SessionHandler{Ledger: ledger}
}

// GetOpenSessionHandler returns the caller's open session, if any.
func (h *SessionHandler) GetOpenSessionHandler(c *gin.Context) {
	accountID := c.GetString("accountID")

	sess, err := h.Ledger.GetOpenSession(accountID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// CloseSessionHandler ends a shift.
func (h *SessionHandler) CloseSessionHandler(c *gin.Context) {
	var req struct {
		EndingCash *float64 `json:"endingCash"`
		Notes      string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.Param("id")
	closedBy := c.GetString("accountID")

	sess, err := h.Ledger.CloseSession(sessionID, closedBy, req.EndingCash, req.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// UpdateTotalsHandler applies a sales delta to an open session.
func (h *SessionHandler) UpdateTotalsHandler(c *gin.Context) {
	var req models.TotalsDelta
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.Param("id")
	if err := h.Ledger.UpdateTotals(sessionID, req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "totals updated"})
}
