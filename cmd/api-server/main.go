package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brewops/brewery-server/internal/api"
	"github.com/brewops/brewery-server/internal/billing"
	"github.com/brewops/brewery-server/internal/cache"
	"github.com/brewops/brewery-server/internal/config"
	"github.com/brewops/brewery-server/internal/oauth"
	"github.com/brewops/brewery-server/internal/storage"
	brewsync "github.com/brewops/brewery-server/internal/sync"
)

func main() {
	// Command line flags
	var configFile string
	flag.StringVar(&configFile, "config", "config/api-server.yml", "Configuration file path")
	flag.Parse()

	// Local development convenience; missing .env is fine
	_ = godotenv.Load()

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Connect to database
	store, err := storage.NewPostgresStore(cfg.Database.DSN,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()

	log.Info().Msg("Connected to database")

	// Cache: Redis when configured, in-process otherwise
	var c cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		c = redisCache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	} else {
		c = cache.NewMemoryCache()
		log.Info().Msg("Redis not configured, using in-process cache")
	}

	// External identity providers
	providers := oauth.NewRegistry()
	for name, pc := range cfg.OAuth.Providers {
		providers.Register(oauth.NewHTTPProvider(name, pc))
	}
	if cfg.OAuth.EnableMock {
		providers.Register(&oauth.MockProvider{})
		log.Warn().Msg("Mock OAuth provider enabled")
	}

	// Payment provider
	payments := billing.NewHTTPProvider(cfg.Payment.APIBase, cfg.Payment.APIKey, cfg.Payment.WebhookSecret)

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start REST API server
	apiServer := api.NewRESTServer(cfg, store, c, providers, payments)

	// WaitGroup for services
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		log.Info().Str("addr", addr).Msg("Starting REST API server")
		if err := apiServer.ListenAndServe(addr); err != nil {
			log.Fatal().Err(err).Msg("REST API server failed")
		}
	}()

	// Optional: accounting sync consumer
	if cfg.NATS.URL != "" {
		log.Info().Str("url", cfg.NATS.URL).Msg("Connecting to NATS...")

		nc, err := nats.Connect(cfg.NATS.URL,
			nats.Name("brewery-api-server"),
			nats.UserInfo(cfg.NATS.Username, cfg.NATS.Password),
			nats.ReconnectWait(cfg.NATS.ReconnectInterval),
			nats.MaxReconnects(cfg.NATS.MaxReconnects),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				log.Warn().Err(err).Msg("Disconnected from NATS")
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info().Msg("Reconnected to NATS")
			}),
			nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
				log.Error().
					Err(err).
					Str("subject", sub.Subject).
					Msg("NATS error")
			}),
		)

		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, continuing without accounting sync")
		} else {
			defer nc.Close()
			log.Info().Msg("Connected to NATS")

			var tokenKey []byte
			if cfg.Payment.TokenKey != "" {
				tokenKey, err = hex.DecodeString(cfg.Payment.TokenKey)
				if err != nil {
					log.Fatal().Err(err).Msg("Invalid token encryption key")
				}
			}

			subscriber := brewsync.NewNATSSubscriber(nc, store, tokenKey)

			wg.Add(1)
			go func() {
				defer wg.Done()
				log.Info().Msg("Starting accounting sync subscriber")
				if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
					log.Error().Err(err).Msg("Accounting sync subscriber stopped")
				}
			}()
		}
	} else {
		log.Info().Msg("NATS not configured, accounting sync disabled")
	}

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	cancel()

	if err := apiServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown API server gracefully")
	}

	wg.Wait()

	log.Info().Msg("API server stopped")
}
