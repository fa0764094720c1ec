// Package main - точка входа фонового процесса (Worker) Momentum Tracker.
//
// Worker отвечает за периодические задачи:
// - Ежедневное закрытие дня: финализация записей и обработка пропусков
// - Еженедельная выдача жетонов заморозки стрика
// - Пересчёт лидерборда, снапшоты и прогрев Redis-кеша
//
// Вся запись состояния идёт через command-обработчики: Worker не трогает
// хранилище напрямую, поэтому инварианты домена соблюдаются и здесь.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentum-hub/momentum-tracker/config"
	"github.com/momentum-hub/momentum-tracker/internal/application/command"
	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
	"github.com/momentum-hub/momentum-tracker/internal/infrastructure/messaging"
	"github.com/momentum-hub/momentum-tracker/internal/infrastructure/persistence/postgres"
	rediscache "github.com/momentum-hub/momentum-tracker/internal/infrastructure/persistence/redis"
	"github.com/momentum-hub/momentum-tracker/internal/infrastructure/scheduler"
	"github.com/momentum-hub/momentum-tracker/internal/infrastructure/scheduler/jobs"
	"github.com/momentum-hub/momentum-tracker/pkg/logger"
	"github.com/momentum-hub/momentum-tracker/pkg/retry"
	"github.com/momentum-hub/momentum-tracker/pkg/userlock"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log := setupLogger(cfg)
	log.Info("starting Momentum Tracker worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	// Битая таблица уровней - ошибка сборки, а не данных: падаем сразу.
	levels := xp.DefaultTable()
	if err := levels.Validate(); err != nil {
		return fmt.Errorf("level table is invalid: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL + МИГРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	var dbConn *postgres.Connection
	connectCfg := retry.Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     15 * time.Second,
		RetryIf:      func(error) bool { return true },
		OnRetry: func(attempt int, err error, delay time.Duration) {
			log.Warn("database connection failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		},
	}
	err = retry.Do(ctx, connectCfg, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var cache *rediscache.Cache
	var lbCache leaderboard.Cache

	if !cfg.Redis.Disabled {
		rcfg := rediscache.DefaultConfig()
		rcfg.Host = cfg.Redis.Host
		rcfg.Port = cfg.Redis.Port
		rcfg.Password = cfg.Redis.Password
		rcfg.DB = cfg.Redis.DB
		rcfg.PoolSize = cfg.Redis.PoolSize
		rcfg.MinIdleConns = cfg.Redis.MinIdleConns
		rcfg.DialTimeout = cfg.Redis.DialTimeout
		rcfg.ReadTimeout = cfg.Redis.ReadTimeout
		rcfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err = rediscache.NewCache(rcfg)
		if err != nil {
			// Redis только ускоряет чтение лидерборда, без него всё работает.
			log.Warn("redis unavailable, leaderboard cache disabled", logger.Err(err))
			cache = nil
		} else {
			defer cache.Close()
			lbCache = rediscache.NewLeaderboardCache(cache)
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log

	var bus shared.EventBus
	var closeBus func() error

	if cache != nil && cfg.Features.IsEnabled(config.FeatureExperimentalDistributedBus, nil) {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         cache.Client(),
			LocalBusConfig: busCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis event bus: %w", err)
		}
		bus = redisBus
		closeBus = redisBus.Close
		log.Info("distributed event bus enabled")
	} else {
		localBus := messaging.NewInMemoryEventBus(busCfg)
		bus = localBus
		closeBus = localBus.Close
	}

	_ = bus.SubscribeAll(func(event shared.Event) error {
		log.Debug("domain event",
			logger.String("event_type", string(event.EventType())),
			logger.String("aggregate_id", event.AggregateID()),
		)
		return nil
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 5. РЕПОЗИТОРИИ И ОБРАБОТЧИКИ КОМАНД
	// ─────────────────────────────────────────────────────────────────────────
	goalRepo := postgres.NewGoalRepository(dbConn)
	recordRepo := postgres.NewCompletionRepository(dbConn)
	streakRepo := postgres.NewStreakRepository(dbConn)
	xpRepo := postgres.NewXPRepository(dbConn)
	snapshotRepo := postgres.NewSnapshotRepository(dbConn)

	locks := userlock.New()
	loc := cfg.App.Location

	closeDayHandler := command.NewCloseDayHandler(goalRepo, recordRepo, streakRepo, bus, locks, loc)
	replenishHandler := command.NewReplenishFreezesHandler(streakRepo, bus, locks)
	rebuildHandler := command.NewRebuildLeaderboardHandler(
		goalRepo, streakRepo, xpRepo, snapshotRepo, lbCache, levels, bus,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:   log,
		Timezone: loc,
	})

	rolloverSchedule, err := scheduler.ParseCronExpression(cfg.Scheduler.RolloverCron)
	if err != nil {
		return fmt.Errorf("invalid SCHEDULER_ROLLOVER_CRON: %w", err)
	}
	freezeSchedule, err := scheduler.ParseCronExpression(cfg.Scheduler.FreezeGrantCron)
	if err != nil {
		return fmt.Errorf("invalid SCHEDULER_FREEZE_GRANT_CRON: %w", err)
	}

	if err := sched.Register(jobs.NewDayRolloverJob(closeDayHandler, log), rolloverSchedule); err != nil {
		return err
	}
	if err := sched.Register(jobs.NewGrantFreezesJob(replenishHandler, cfg.Gamification.MaxFreezes, log), freezeSchedule); err != nil {
		return err
	}

	rebuildJob := jobs.NewRebuildLeaderboardJob(rebuildHandler, snapshotRepo, jobs.RebuildLeaderboardConfig{
		SignificantThreshold: cfg.Gamification.SignificantRankThreshold,
		SnapshotsToKeep:      cfg.Gamification.SnapshotsToKeep,
	}, log)
	rebuildSchedule := scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildLeaderboardInterval)
	if err := sched.Register(rebuildJob, rebuildSchedule); err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		// Прогреваем лидерборд сразу, не дожидаясь первого интервала.
		if _, err := sched.RunNow(ctx, rebuildJob.Name()); err != nil {
			log.Warn("initial leaderboard rebuild failed", logger.Err(err))
		}
	} else {
		log.Warn("scheduler is disabled, no background jobs will run")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Momentum Tracker worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if sched.IsRunning() {
			_ = sched.Stop()
		}
		if err := closeBus(); err != nil {
			log.Error("failed to close event bus", logger.Err(err))
		}
	}()

	select {
	case <-done:
		log.Info("shutdown completed")
	case <-time.After(cfg.App.ShutdownTimeout):
		log.Warn("shutdown timed out",
			logger.Duration("timeout", cfg.App.ShutdownTimeout),
		)
	}

	return nil
}

// setupLogger настраивает структурированное логирование по конфигурации.
func setupLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
}
