package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/RandilG/Construction-Management/internal/api/http"
	"github.com/RandilG/Construction-Management/internal/cache"
	"github.com/RandilG/Construction-Management/internal/config"
	"github.com/RandilG/Construction-Management/internal/db"
	"github.com/RandilG/Construction-Management/internal/queue/asynqserver"
	queueClient "github.com/RandilG/Construction-Management/internal/queue/client"
	"github.com/RandilG/Construction-Management/internal/repository"
	"github.com/RandilG/Construction-Management/internal/server"
	"github.com/RandilG/Construction-Management/internal/service"
	"github.com/RandilG/Construction-Management/internal/worker"
	"github.com/RandilG/Construction-Management/pkg/auth"
	"github.com/RandilG/Construction-Management/pkg/email/smtp"
	"github.com/RandilG/Construction-Management/pkg/hash"
	"github.com/RandilG/Construction-Management/pkg/logger"
	"github.com/RandilG/Construction-Management/pkg/otp"
	"github.com/RandilG/Construction-Management/pkg/pdf"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	appLogger := logger.SetupLogger(cfg.Env)

	appLogger.Info("starting backend api", zap.String("env", cfg.Env))
	appLogger.Debug("debug messages are enabled")

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		appLogger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			appLogger.Error("error when closing mysql", zap.Error(err))
		}
	}()
	appLogger.Info("mysql connection done")

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		appLogger.Error("redis connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("error when closing redis", zap.Error(err))
		}
	}()
	appLogger.Info("redis connection done")

	hasher := hash.NewBcryptHasher(cfg.Auth.PasswordCost)

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		appLogger.Error("smtp sender creation failed", zap.Error(err))
		return
	}

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		appLogger.Error("auth manager creation err", zap.Error(err))
		return
	}

	otpGenerator := otp.NewGOTPGenerator()

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL, redisClient, cfg.Auth.OTP.Retention)
	services := service.NewServices(service.Deps{
		Config:       cfg,
		Hasher:       hasher,
		TokenManager: tokenManager,
		OtpGenerator: otpGenerator,
		EmailSender:  emailSender,
		Repos:        repos,
	})
	handlers := apiHttp.NewHandlers(services, tokenManager, cfg, pdf.NewGenerator())

	// Task queue
	asyncClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer func() {
		if err := asyncClient.Close(); err != nil {
			appLogger.Error("error when closing asynq client", zap.Error(err))
		}
	}()
	queueClient.SetClient(asyncClient)

	workers := worker.NewWorkers(worker.Deps{
		EmailProvider: emailSender,
		Config:        cfg,
	})

	asyncServer, asyncMux := asynqserver.New(cfg.Cache, workers)
	go func() {
		if err := asyncServer.Run(asyncMux); err != nil {
			appLogger.Error("error occurred while running asynq server", zap.Error(err))
		}
	}()

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	appLogger.Info("server started")

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	asyncServer.Shutdown()

	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("failed to stop server", zap.Error(err))
	}

	appLogger.Info("app stopped")
}
