package routes

import (
	"net/http"
	"time"

	"tillpoint/handlers"
	"tillpoint/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAuthRoutes registers the login flow endpoints. Every step carries
// device details; the rate limiter sits on this group only.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	api.Use(middleware.RateLimitMiddleware())
	api.Use(middleware.DeviceDetailsMiddleware())
	{
		api.POST("/login", hb.Auth.LoginHandler)
		api.POST("/login/otp/verify", hb.Auth.VerifyOTPHandler)
		api.POST("/login/otp/resend", hb.Auth.ResendOTPHandler)
		api.POST("/login/opening-cash", hb.Auth.OpeningCashHandler)
		api.POST("/login/cancel", hb.Auth.CancelLoginHandler)
	}
}

// RegisterSessionRoutes registers register session endpoints. All require a
// valid token whose hash is still live on the account.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/pos/sessions")
	api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo))
	{
		api.GET("/open", hb.Session.GetOpenSessionHandler)
		api.POST("/:id/close", hb.Session.CloseSessionHandler)
		api.POST("/:id/totals", hb.Session.UpdateTotalsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Tillpoint"})
	})
}

// RegisterMetricsRoute exposes Prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes wires CORS and all route groups.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Device-Fingerprint", "X-Device-Name"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
}
