package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tweeter/backend/internal/accounts"
	"tweeter/backend/internal/auth"
	"tweeter/backend/internal/credentials"
	"tweeter/backend/internal/database"
	"tweeter/backend/internal/handlers"
	"tweeter/backend/internal/notifications"
	"tweeter/backend/internal/router"
	"tweeter/backend/pkg/config"
	applog "tweeter/backend/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applog.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DSN(), cfg.Environment)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connection established")

	if err := database.Migrate(db, cfg.Migrations, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	issuer, err := auth.NewSessionIssuer(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Failed to initialize session issuer", zap.Error(err))
	}

	var mailer credentials.Mailer
	if cfg.AWSRegion != "" && cfg.SESEmailSender != "" {
		sesMailer, err := notifications.NewSESMailer(context.Background(), cfg.AWSRegion, cfg.SESEmailSender, logger)
		if err != nil {
			logger.Fatal("Failed to initialize SES mailer", zap.Error(err))
		}
		mailer = sesMailer
		logger.Info("SES email delivery enabled", zap.String("sender", cfg.SESEmailSender))
	} else {
		mailer = notifications.NewLogMailer(logger)
		logger.Warn("SES not configured (AWS_REGION, SES_EMAIL_SENDER); emails will be logged, not sent")
	}

	svc := credentials.NewService(
		accounts.NewStore(db),
		credentials.NewResetTokenStore(db),
		credentials.NewRequestRateLimiter(db),
		auth.NewPasswordHasher(),
		issuer,
		mailer,
		cfg.AppBaseURL,
		logger,
	)

	h := handlers.New(svc, auth.CookieSettings{
		Domain:     cfg.CookieDomain,
		Production: cfg.IsProduction(),
	}, logger)

	engine := router.Setup(logger, db, h, issuer)

	logger.Info("Starting server", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
	if err := engine.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
