package main

import (
	"context"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"oxygen-dispatch-service/internal/adapters/cache"
	"oxygen-dispatch-service/internal/adapters/events"
	"oxygen-dispatch-service/internal/adapters/repositories"
	"oxygen-dispatch-service/internal/api"
	"oxygen-dispatch-service/internal/config"
	"oxygen-dispatch-service/internal/platform/db"
	"oxygen-dispatch-service/internal/ports"
	"oxygen-dispatch-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, RabbitMQ) behind ports
// and starts the HTTP server.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(os.Stdout).With().Str("service", "oxygen-dispatch").Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer database.Close()

	// Schema creation is idempotent; running it on startup keeps local
	// and container runs self-contained.
	if err := repositories.InitSchema(database); err != nil {
		log.Fatal().Err(err).Msg("init schema")
	}

	estimator, err := services.NewETAEstimator(
		cfg.Dispatch.AverageSpeedKMH,
		cfg.Dispatch.UrgentMultiplier,
		cfg.Dispatch.HighPriorityMultiplier,
		cfg.Dispatch.BufferMinutes,
		cfg.Dispatch.DispatchDelayMinutes,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build eta estimator")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	etaCache := cache.NewRedisETACache(redisClient, cfg.ETACacheTTL)

	var publisher ports.EventPublisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		rabbit, err := events.NewRabbitPublisher(ctx, cfg.AMQPURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("connect rabbitmq")
		}
		defer rabbit.Close()
		publisher = rabbit
	} else {
		log.Warn().Msg("AMQP_URL not set, events disabled")
	}

	deliveryRepo := repositories.NewPostgresDeliveryRepository(database)
	routeRepo := repositories.NewPostgresRouteRepository(database)
	zoneRepo := repositories.NewPostgresZoneRepository(database)
	driverRepo := repositories.NewPostgresDriverRepository(database)

	dispatcher := services.NewDispatcher(deliveryRepo, routeRepo, driverRepo, estimator, publisher, cfg.Dispatch.MaxStopsPerRoute)

	router := api.NewRouter(deliveryRepo, routeRepo, zoneRepo, driverRepo, dispatcher, estimator, etaCache, publisher, cfg.Dispatch.DriverSearchRadiusKM)

	log.Info().Str("addr", ":"+cfg.Port).Msg("server listening")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}
