package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/instructor_scheduler/internal/app"
	"github.com/Freeeeeet/instructor_scheduler/internal/cache"
	"github.com/Freeeeeet/instructor_scheduler/internal/config"
	"github.com/Freeeeeet/instructor_scheduler/internal/controller/rest"
	"github.com/Freeeeeet/instructor_scheduler/internal/events"
	"github.com/Freeeeeet/instructor_scheduler/internal/notify"
	"github.com/Freeeeeet/instructor_scheduler/internal/repository"
	"github.com/Freeeeeet/instructor_scheduler/internal/repository/base"
	"github.com/Freeeeeet/instructor_scheduler/internal/service"
	"github.com/Freeeeeet/instructor_scheduler/internal/telemetry"
	"github.com/Freeeeeet/instructor_scheduler/migrations"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting instructor scheduler",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr))

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	// База данных
	poolCfg, err := pgxpool.ParseConfig(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("parse db dsn: %w", err)
	}
	poolCfg.MaxConns = cfg.DBMaxConns
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := migrator.Run(ctx); err != nil {
		return err
	}

	// Репозитории
	tx := base.NewTransactor(pool)
	instructorRepo := repository.NewInstructorRepository(pool)
	workingHoursRepo := repository.NewWorkingHoursRepository(pool, logger)
	bookingRepo := repository.NewBookingRepository(pool)
	vacationRepo := repository.NewVacationRepository(pool)
	reasonRepo := repository.NewCancellationReasonRepository(pool)

	// Кэш и лимитер: Redis если настроен, иначе in-process
	var (
		availabilityCache cache.Availability = cache.Nop{}
		limiter           rest.RateLimiter   = rest.NewLocalRateLimiter(cfg.RateLimitPerMin)
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, availability cache disabled", zap.Error(err))
		} else {
			availabilityCache = cache.NewRedisAvailability(rdb, cfg.CacheTTL)
			limiter = rest.NewRedisRateLimiter(rdb, cfg.RateLimitPerMin)
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken, bot.WithSkipGetMe())
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		notifier = notify.NewTelegramNotifier(b, logger)
	}

	// Сервисы
	effects := service.NewEffects(availabilityCache, publisher, notifier, logger)
	instructorService := service.NewInstructorService(instructorRepo, logger)
	workingHoursService := service.NewWorkingHoursService(tx, instructorRepo, workingHoursRepo, effects, logger)
	availabilityService := service.NewAvailabilityService(instructorRepo, workingHoursRepo, bookingRepo, vacationRepo,
		availabilityCache, cfg.MaxRangeDays, logger)
	bookingService := service.NewBookingService(tx, bookingRepo, instructorRepo, reasonRepo, availabilityService, effects, logger)
	vacationService := service.NewVacationService(tx, vacationRepo, bookingRepo, instructorRepo, effects, logger)

	handler := rest.NewHandler(workingHoursService, availabilityService, bookingService, vacationService, instructorService, logger)
	router := rest.NewRouter(handler, rest.RouterConfig{
		Production:  cfg.IsProduction(),
		CORSOrigins: cfg.CORSOrigins,
		RateLimiter: limiter,
	}, logger)

	return app.NewServer(cfg.HTTPAddr, router, cfg.ShutdownTimeout, logger).Run(ctx)
}
