// Command market-proxy exposes the market-data facade over HTTP:
// coin listings, quotes, chart and candle series, plus /metrics and a
// cooldown status endpoint. With REDIS_ADDR set, serialized responses
// are shared across proxy instances through a Redis cache tier.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	"github.com/coinwatch/market-client/pkg/cache"
	"github.com/coinwatch/market-client/pkg/coingecko"
	"github.com/coinwatch/market-client/pkg/coordinator"
	"github.com/coinwatch/market-client/pkg/logging"
	"github.com/coinwatch/market-client/pkg/marketdata"
)

// config is populated from the environment.
type config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	BaseURL   string  `env:"COINGECKO_URL" envDefault:"https://api.coingecko.com/api/v3"`
	UserAgent string  `env:"USER_AGENT" envDefault:"market-proxy/1.0"`
	Rps       float64 `env:"UPSTREAM_RPS" envDefault:"0.5"`

	CooldownWindow  time.Duration `env:"COOLDOWN_WINDOW" envDefault:"60s"`
	CacheMaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"4096"`

	// RedisAddr enables the shared response cache tier when set.
	RedisAddr string `env:"REDIS_ADDR"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger := logging.Setup(logging.DefaultConfig())
		logger.Fatal().Err(err).Msg("Failed to parse environment")
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	fetcherCfg := coingecko.DefaultConfig()
	fetcherCfg.BaseURL = cfg.BaseURL
	fetcherCfg.UserAgent = cfg.UserAgent
	fetcherCfg.RequestsPerSecond = cfg.Rps
	fetcher := coingecko.New(fetcherCfg, logging.NewLogger("coingecko"))

	coordCfg := coordinator.DefaultConfig()
	coordCfg.CooldownWindow = cfg.CooldownWindow
	coord := coordinator.New(coordCfg, logging.NewLogger("coordinator"))

	store := cache.NewStore(cache.WithMaxEntries(cfg.CacheMaxEntries))
	svc := marketdata.NewService(store, coord, fetcher, logging.NewLogger("marketdata"))

	var responseTier *cache.RedisStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		responseTier = cache.NewRedisStore(redisClient)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis response tier enabled")
	}

	srv := newServer(svc, responseTier, logging.NewLogger("http"))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("Starting market proxy")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown incomplete")
	}
}
