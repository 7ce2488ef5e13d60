// Package main is the entry point for the admin HTTP API: manual email
// sends, bulk cohort fan-out and Discord role backfills.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/web3camp/cohort-hub/config"
	"github.com/web3camp/cohort-hub/internal/application/dispatch"
	"github.com/web3camp/cohort-hub/internal/infrastructure/external/discord"
	"github.com/web3camp/cohort-hub/internal/infrastructure/external/email"
	"github.com/web3camp/cohort-hub/internal/infrastructure/external/nft"
	"github.com/web3camp/cohort-hub/internal/infrastructure/messaging"
	"github.com/web3camp/cohort-hub/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/web3camp/cohort-hub/internal/infrastructure/persistence/redis"
	httpiface "github.com/web3camp/cohort-hub/internal/interface/http"
	"github.com/web3camp/cohort-hub/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.LogFormat).With("app", cfg.App.Name, "proc", "api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := postgres.DefaultConfig(cfg.Database.URL)
	dbCfg.MaxConns = cfg.Database.MaxConns
	dbCfg.MinConns = cfg.Database.MinConns
	conn, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	redisClient, err := redisinfra.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	store := postgres.NewDocStore(conn)
	cacheCfg := redisinfra.CacheConfig{TTL: cfg.Redis.CacheTTL, Logger: log}

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

	serverCfg := httpiface.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port

	server := httpiface.NewServer(
		serverCfg,
		httpiface.Dependencies{
			Users:      postgres.NewUserRepository(store),
			Cohorts:    redisinfra.NewCachedCohortRepository(postgres.NewCohortRepository(store), redisClient, cacheCfg),
			Courses:    redisinfra.NewCachedCourseRepository(postgres.NewCourseRepository(store), redisClient, cacheCfg),
			Dispatcher: dispatch.NewDispatcher(emailClient, discordClient, nftClient, log),
			Queue:      messaging.NewRedisEmailQueue(redisClient, log),
			DB:         conn,
			Logger:     log,
		},
	)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
