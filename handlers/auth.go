package handlers

import (
	"net/http"

	"tillpoint/middleware"
	"tillpoint/services/login"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the login flow over HTTP.
type AuthHandler struct {
	Service login.Service
}

// NewAuthHandler creates an AuthHandler backed by the given login service.
func NewAuthHandler(service login.Service) *AuthHandler {
	return &AuthHandler{Service: service}
}

// LoginHandler starts a login. The response status field tells the client
// which step, if any, comes next.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.Authenticate(req.Username, req.Password, middleware.CurrentDevice(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// VerifyOTPHandler submits the second-factor code for a pending login.
func (h *AuthHandler) VerifyOTPHandler(c *gin.Context) {
	var req struct {
		LoginID string `json:"loginId" binding:"required"`
		Code    string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.VerifyLoginOTP(req.LoginID, req.Code, middleware.CurrentDevice(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResendOTPHandler re-issues the code for a pending login.
func (h *AuthHandler) ResendOTPHandler(c *gin.Context) {
	var req struct {
		LoginID string `json:"loginId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.ResendLoginOTP(req.LoginID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// OpeningCashHandler captures the opening balance and completes the login.
func (h *AuthHandler) OpeningCashHandler(c *gin.Context) {
	var req struct {
		LoginID      string  `json:"loginId" binding:"required"`
		StartingCash float64 `json:"startingCash" binding:"required"`
		Notes        string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.SubmitOpeningCash(req.LoginID, req.StartingCash, req.Notes, middleware.CurrentDevice(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelLoginHandler abandons a pending login.
func (h *AuthHandler) CancelLoginHandler(c *gin.Context) {
	var req struct {
		LoginID string `json:"loginId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.Cancel(req.LoginID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login cancelled"})
}
