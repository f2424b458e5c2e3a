package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/habits/api/handler"
	"github.com/fastygo/habits/internal/config"
	"github.com/fastygo/habits/internal/events"
	"github.com/fastygo/habits/internal/infrastructure/buffer"
	"github.com/fastygo/habits/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/habits/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/habits/internal/infrastructure/redis"
	"github.com/fastygo/habits/internal/middleware"
	"github.com/fastygo/habits/internal/router"
	"github.com/fastygo/habits/internal/services"
	"github.com/fastygo/habits/internal/services/lifecycle"
	"github.com/fastygo/habits/pkg/httpcontext"
	"github.com/fastygo/habits/pkg/logger"
	"github.com/fastygo/habits/repository"
	"github.com/fastygo/habits/repository/postgres"
	redisRepo "github.com/fastygo/habits/repository/redis"
	activityUC "github.com/fastygo/habits/usecase/activity"
	dashboardUC "github.com/fastygo/habits/usecase/dashboard"
	planUC "github.com/fastygo/habits/usecase/plan"
	profileUC "github.com/fastygo/habits/usecase/profile"
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

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	var dashboardCache repository.DashboardCache
	if redisClient != nil {
		dashboardCache = redisRepo.NewDashboardCache(redisClient, cfg.Redis.DashboardTTL)
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	} else {
		zapLogger.Info("redis disabled, dashboards are computed on every request")
	}

	var publisher events.Publisher = events.NewNop()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		zapLogger.Info("publishing domain events", zap.Strings("brokers", cfg.Kafka.Brokers))
	}
	manager.Register("events", func(ctx context.Context) error {
		return publisher.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	logRepo := postgres.NewActivityLogRepository(pool)
	selectionRepo := postgres.NewMonthlySelectionRepository(pool)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		userRepo,
		logRepo,
		dashboardCache,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	maxActive := cfg.Habits.MaxActiveActivities
	dashboardUseCase := dashboardUC.New(activityRepo, logRepo, bufferBridge, zapLogger,
		dashboardUC.WithCache(dashboardCache),
		dashboardUC.WithPublisher(publisher),
	)
	planUseCase := planUC.New(activityRepo, selectionRepo, maxActive, zapLogger,
		planUC.WithPublisher(publisher),
	)
	activityUseCase := activityUC.New(activityRepo, maxActive, zapLogger,
		activityUC.WithCache(dashboardCache),
		activityUC.WithPublisher(publisher),
	)
	profileUseCase := profileUC.New(userRepo, bufferBridge, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Dashboard: apiHandler.NewDashboardHandler(dashboardUseCase, ctxAdapter, zapLogger),
		Plan:      apiHandler.NewPlanHandler(planUseCase, ctxAdapter, zapLogger),
		Activity:  apiHandler.NewActivityHandler(activityUseCase, ctxAdapter, zapLogger),
		Profile:   apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	chain := []router.Middleware{middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		chain = append(chain, limiter.Middleware)
		manager.Register("rate_limiter", func(ctx context.Context) error {
			limiter.Stop()
			return nil
		})
	}

	r := router.New(handlers, router.Options{
		EnableMetrics: cfg.HTTP.EnableMetrics,
		EnablePprof:   cfg.HTTP.EnablePprof,
	}, chain...)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.Int("max_active_activities", maxActive))
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
