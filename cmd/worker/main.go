// Package main is the entry point for the background worker. It consumes the
// document change feed, runs the daily inactivity reminder and drains the
// email fan-out queue.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/web3camp/cohort-hub/config"
	"github.com/web3camp/cohort-hub/internal/application/dispatch"
	"github.com/web3camp/cohort-hub/internal/application/eventhandler"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/infrastructure/external/discord"
	"github.com/web3camp/cohort-hub/internal/infrastructure/external/email"
	"github.com/web3camp/cohort-hub/internal/infrastructure/external/nft"
	"github.com/web3camp/cohort-hub/internal/infrastructure/messaging"
	"github.com/web3camp/cohort-hub/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/web3camp/cohort-hub/internal/infrastructure/persistence/redis"
	"github.com/web3camp/cohort-hub/internal/infrastructure/scheduler"
	"github.com/web3camp/cohort-hub/internal/infrastructure/scheduler/jobs"
	"github.com/web3camp/cohort-hub/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.LogFormat).With("app", cfg.App.Name, "proc", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage.
	dbCfg := postgres.DefaultConfig(cfg.Database.URL)
	dbCfg.MaxConns = cfg.Database.MaxConns
	dbCfg.MinConns = cfg.Database.MinConns
	conn, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := postgres.Migrate(ctx, conn); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redisinfra.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Repositories.
	store := postgres.NewDocStore(conn)
	users := postgres.NewUserRepository(store)
	ledger := postgres.NewSubmissionLedger(conn)
	cacheCfg := redisinfra.CacheConfig{TTL: cfg.Redis.CacheTTL, Logger: log}
	cohorts := redisinfra.NewCachedCohortRepository(postgres.NewCohortRepository(store), redisClient, cacheCfg)
	courses := redisinfra.NewCachedCourseRepository(postgres.NewCourseRepository(store), redisClient, cacheCfg)

	// Collaborators.
	emailClient := email.NewClient(email.ClientConfig{
		BaseURL: cfg.Email.BaseURL,
		APIKey:  cfg.Email.APIKey,
		From:    cfg.Email.From,
		Logger:  log,
	})
	discordClient := discord.NewClient(discord.ClientConfig{
		BotToken: cfg.Discord.BotToken,
		GuildID:  cfg.Discord.GuildID,
		Logger:   log,
	})
	nftClient := nft.NewClient(nft.ClientConfig{
		BaseURL: cfg.NFT.BaseURL,
		APIKey:  cfg.NFT.APIKey,
		Logger:  log,
	})
	dispatcher := dispatch.NewDispatcher(emailClient, discordClient, nftClient, log)

	// Event bus and handlers.
	bus := messaging.NewInMemoryEventBus(messaging.EventBusConfig{
		Async:          true,
		WorkerPoolSize: 10,
		Logger:         log,
	})
	mustSubscribe(log, bus, shared.EventUserUpdated,
		eventhandler.NewOnCohortSignupHandler(cohorts, courses, dispatcher, log))
	mustSubscribe(log, bus, shared.EventUserUpdated,
		eventhandler.NewOnDiscordConnectHandler(cohorts, dispatcher, log))
	mustSubscribe(log, bus, shared.EventSubmissionCreated,
		eventhandler.NewOnLessonSubmittedHandler(users, cohorts, courses, ledger, dispatcher, log))

	// Change feed.
	feed := messaging.NewRedisChangeFeed(redisClient, bus, log)
	go func() {
		if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("change feed stopped", "error", err)
		}
	}()

	// Email fan-out queue consumer.
	queue := messaging.NewRedisEmailQueue(redisClient, log)
	go func() {
		err := queue.Consume(ctx, func(ctx context.Context, task messaging.EmailTask) error {
			return dispatcher.SendEmail(ctx, task.Template, task.Subject, task.To, task.Params)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("email queue consumer stopped", "error", err)
		}
	}()

	// Scheduler.
	sched := scheduler.New(scheduler.Config{Logger: log, Timezone: cfg.Location()})
	if cfg.Scheduler.Enabled {
		job := jobs.NewInactivityReminderJob(users, cohorts, courses, ledger, dispatcher, log)
		if err := sched.Register(job, scheduler.NewDailySchedule(cfg.Scheduler.ReminderHour, cfg.Scheduler.ReminderMinute)); err != nil {
			log.Error("register job failed", "error", err)
			os.Exit(1)
		}
		if err := sched.Start(ctx); err != nil {
			log.Error("scheduler start failed", "error", err)
			os.Exit(1)
		}
	}

	log.Info("worker started")
	<-ctx.Done()
	log.Info("shutting down")

	sched.Stop()
	if err := bus.Close(); err != nil {
		log.Error("event bus close failed", "error", err)
	}
}

func mustSubscribe(log *slog.Logger, bus *messaging.InMemoryEventBus, t shared.EventType, h shared.EventHandler) {
	if err := bus.Subscribe(t, h); err != nil {
		log.Error("subscribe failed", "event_type", t, "error", err)
		os.Exit(1)
	}
}
