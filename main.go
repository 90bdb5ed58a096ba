package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tillpoint/config"
	"tillpoint/cron"
	"tillpoint/database"
	accountRepoPkg "tillpoint/database/repository/account"
	branchRepoPkg "tillpoint/database/repository/branch"
	deviceRepoPkg "tillpoint/database/repository/device"
	otpRepoPkg "tillpoint/database/repository/otp"
	sessionRepoPkg "tillpoint/database/repository/session"
	terminalRepoPkg "tillpoint/database/repository/terminal"
	"tillpoint/handlers"
	"tillpoint/middleware"
	"tillpoint/routes"
	"tillpoint/services/branch"
	"tillpoint/services/devicetrust"
	"tillpoint/services/login"
	"tillpoint/services/notification"
	"tillpoint/services/otp"
	"tillpoint/services/session"
	"tillpoint/services/terminal"
	"tillpoint/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	middleware.InitMetrics()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.PrometheusMiddleware())

	// repositories.
	accountRepo := accountRepoPkg.NewMongoAccountRepo()
	otpRepo := otpRepoPkg.NewMongoOTPRepo()
	deviceRepo := deviceRepoPkg.NewMongoDeviceRepo()
	terminalRepo := terminalRepoPkg.NewMongoTerminalRepo()
	sessionRepo := sessionRepoPkg.NewMongoSessionRepo()
	branchRepo := branchRepoPkg.NewMongoBranchRepo()

	// services.
	settingsReader := branch.NewDefaultSettingsReader(branchRepo, utils.GetCacheClient(), logger)

	trustStore := &devicetrust.DefaultTrustStore{Repo: deviceRepo}
	accessGate := &devicetrust.AccessGate{
		Trust:            trustStore,
		Settings:         settingsReader,
		RegistryEnforced: config.AppConfig.PosTerminalRegistryEnforced,
	}

	otpEngine := &otp.DefaultEngine{
		Repo:   otpRepo,
		Trust:  trustStore,
		Sender: notification.NewDefaultSender(),
		Cooldown: &otp.RedisCooldownGuard{
			Client: utils.GetOTPCacheClient(),
			Window: config.OTPResendCooldown(),
		},
		TTL: config.OTPTTL(),
	}

	allocator := &terminal.DefaultAllocator{Repo: terminalRepo}
	ledger := &session.DefaultLedger{
		Repo:      sessionRepo,
		Allocator: allocator,
		Branches:  settingsReader,
	}

	loginService := &login.DefaultLoginService{
		Credentials: &login.DefaultCredentialVerifier{Repo: accountRepo},
		Accounts:    accountRepo,
		OTP:         otpEngine,
		Trust:       trustStore,
		Gate:        accessGate,
		Ledger:      ledger,
		Branches:    settingsReader,
		Store:       utils.NewLoginSessionStore(utils.GetAuthCacheClient()),
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		AccountRepo: accountRepo,
		Auth:        handlers.NewAuthHandler(loginService),
		Session:     handlers.NewSessionHandler(ledger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background maintenance: expired code purge, overdue session sweep.
	cron.InitMaintenanceWorker(otpRepo, sessionRepo)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
