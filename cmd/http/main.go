package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kinosync/kinosync/internal/infrastructure/auth"
	"github.com/kinosync/kinosync/internal/infrastructure/cache"
	"github.com/kinosync/kinosync/internal/infrastructure/configs"
	"github.com/kinosync/kinosync/internal/infrastructure/metrics"
	"github.com/kinosync/kinosync/internal/infrastructure/ratelimiter"
	"github.com/kinosync/kinosync/internal/infrastructure/tracing"
	"github.com/kinosync/kinosync/internal/infrastructure/ws"
	"github.com/kinosync/kinosync/internal/persistence/db"
	"github.com/kinosync/kinosync/internal/persistence/repository"
	"github.com/kinosync/kinosync/internal/presentation/api"
	"github.com/kinosync/kinosync/internal/presentation/handler/health"
	"github.com/kinosync/kinosync/internal/presentation/handler/rooms"
	"github.com/kinosync/kinosync/internal/presentation/handler/stream"
	syncHandler "github.com/kinosync/kinosync/internal/presentation/handler/sync"
)

func main() {
	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.Enabled {
		sh, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			log.Fatalf("Failed to initialize the tracer: %v", err)
		}
		defer sh(ctx)
	}

	mongoClient, err := db.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Disconnect(context.Background(), mongoClient)

	database := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureRoomIndexes(ctx, database); err != nil {
		log.Fatal(err)
	}

	roomRegistry := repository.NewRoomRegistry(database)
	movieRegistry := repository.NewMovieRegistry(database)

	// The hub's host lookup on every control event is the hot read path.
	// With Redis configured it goes through the cache; without, straight
	// to Mongo.
	var roomSource ws.RoomSource = roomRegistry
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		roomSource = cache.NewCachedRoomSource(roomRegistry, redisClient, cfg.Redis.TTL, logger)
		logger.Infow("room cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	verifier := auth.NewVerifier(cfg.Auth.Secret)

	hub := ws.NewHub(roomSource, roomRegistry, logger, m)

	roomsHandler := rooms.NewHandler(roomRegistry, logger)
	streamHandler := stream.NewHandler(movieRegistry, logger, m, cfg.Stream)
	wsHandler := syncHandler.NewHandler(hub, verifier, logger, m)
	healthHandler := health.NewHandler()

	rl := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rl.Close()

	app := api.NewApplication(*cfg, roomsHandler, streamHandler, wsHandler, healthHandler, verifier, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
