package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/paresh-enterprises/backend/api/handler"
	"github.com/paresh-enterprises/backend/internal/config"
	"github.com/paresh-enterprises/backend/internal/infrastructure/monitor"
	"github.com/paresh-enterprises/backend/internal/infrastructure/outbox"
	pgInfra "github.com/paresh-enterprises/backend/internal/infrastructure/postgres"
	"github.com/paresh-enterprises/backend/internal/middleware"
	"github.com/paresh-enterprises/backend/internal/router"
	"github.com/paresh-enterprises/backend/internal/security"
	"github.com/paresh-enterprises/backend/internal/services"
	"github.com/paresh-enterprises/backend/internal/services/lifecycle"
	"github.com/paresh-enterprises/backend/pkg/httpcontext"
	"github.com/paresh-enterprises/backend/pkg/logger"
	"github.com/paresh-enterprises/backend/repository/postgres"
	authUC "github.com/paresh-enterprises/backend/usecase/auth"
	contactUC "github.com/paresh-enterprises/backend/usecase/contact"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mailer := services.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)

	mon := monitor.New(pool, mailer, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	outboxProcessor := services.NewOutboxProcessor(
		outboxStore,
		mailer,
		cfg.SMTP.OwnerEmail,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Outbox.SyncInterval,
			BatchSize:  cfg.Outbox.BatchSize,
			MaxRetries: cfg.Outbox.MaxRetry,
		},
	)
	outboxProcessor.Start()
	manager.Register("outbox_processor", func(ctx context.Context) error {
		outboxProcessor.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)

	hasher := security.NewPasswordHasher(cfg.JWT.BcryptCost)
	codec := security.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	authUseCase := authUC.New(userRepo, hasher, codec, zapLogger)
	contactUseCase := contactUC.New(contactRepo, outboxProcessor, zapLogger)

	if err := authUseCase.EnsureAdmin(appCtx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
		zapLogger.Error("admin seeding failed", zap.Error(err))
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Contact: apiHandler.NewContactHandler(contactUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	guard := middleware.NewGuard(codec, userRepo, zapLogger)
	r := router.New(handlers, guard.RequireUser)

	cors := middleware.CORS(cfg.CORS.AllowedOrigins)

	server := &fasthttp.Server{
		Handler:      cors(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
