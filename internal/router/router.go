package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tweeter/backend/internal/auth"
	"tweeter/backend/internal/handlers"
	"tweeter/backend/internal/middleware"
)

// Setup assembles the Gin engine: global middleware, operational
// endpoints, and the credential routes.
func Setup(log *zap.Logger, db *gorm.DB, h *handlers.Handler, issuer *auth.SessionIssuer) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.Metrics())
	engine.Use(middleware.GinZap(log, time.RFC3339, true))
	engine.Use(middleware.GinRecovery(log))
	engine.Use(auth.SessionMiddleware(issuer))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/health", healthCheckHandler(log, db))

	authRoutes := engine.Group("/api/auth")
	{
		authRoutes.POST("/signup", h.SignupHandler)
		authRoutes.POST("/signin", h.SigninHandler)
		authRoutes.POST("/signout", h.SignoutHandler)
		authRoutes.GET("/me", h.MeHandler)
		authRoutes.POST("/forgot-password", h.ForgotPasswordHandler)
		authRoutes.GET("/verify-reset-token/:token", h.VerifyResetTokenHandler)
		authRoutes.POST("/reset-password", h.ResetPasswordHandler)
	}

	return engine
}

func healthCheckHandler(log *zap.Logger, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			log.Error("Failed to get DB instance for health check", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database instance error"})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			log.Error("Database ping failed during health check", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database ping failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"database": "connected",
		})
	}
}
