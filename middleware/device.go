package middleware

import (
	"net/http"

	"tillpoint/models"

	"github.com/gin-gonic/gin"
)

const deviceContextKey = "currentDevice"

// DeviceDetailsMiddleware extracts the client device details every login and
// session endpoint needs. The fingerprint is an opaque value the client
// derives from its own signals; the server only ever compares it.
func DeviceDetailsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		fingerprint := c.GetHeader("X-Device-Fingerprint")
		if fingerprint == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing required device details: X-Device-Fingerprint",
			})
			return
		}

		device := models.Device{
			Fingerprint: fingerprint,
			DeviceName:  c.GetHeader("X-Device-Name"),
			IP:          getClientIP(c),
		}
		c.Set(deviceContextKey, device)
		c.Next()
	}
}

// CurrentDevice returns the device extracted by DeviceDetailsMiddleware.
func CurrentDevice(c *gin.Context) models.Device {
	if v, ok := c.Get(deviceContextKey); ok {
		if device, ok := v.(models.Device); ok {
			return device
		}
	}
	return models.Device{}
}
