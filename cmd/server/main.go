// @title        Lunch Order API
// @version      1.0
// @description  Session lifecycle, once-per-day order admission and role routing for the lunch order service.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	_ "github.com/lunchorder/order-system/docs"
	"github.com/lunchorder/order-system/internal/api"
	"github.com/lunchorder/order-system/internal/api/cookie"
	"github.com/lunchorder/order-system/internal/api/handler"
	"github.com/lunchorder/order-system/internal/api/metrics"
	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/service"
	"github.com/lunchorder/order-system/internal/infrastructure/db/mongo"
	"github.com/lunchorder/order-system/internal/infrastructure/db/redis"
	"github.com/lunchorder/order-system/internal/infrastructure/queue"
	"github.com/lunchorder/order-system/internal/pkg/config"
	"github.com/lunchorder/order-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "lunch-order",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer func() { _ = rdb.Close() }()

	principalRepo := mongo.NewPrincipalRepository(db)
	orderRepo := mongo.NewOrderRepository(db)
	if err := principalRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes")
	}
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure order indexes")
	}

	civil, err := clock.Load(cfg.Session.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}
	calendar, err := clock.NewCalendar(cfg.Orders.Holidays)
	if err != nil {
		log.Fatal().Err(err).Msg("holidays")
	}

	creds := service.NewCredentials(principalRepo, bcrypt.DefaultCost)
	codec := service.NewTokenCodec([]byte(cfg.JWTSecret), civil)
	carrier := service.NewSessionCarrier(civil)
	guard := service.NewAdmissionGuard(orderRepo, redis.NewDayMarkers(rdb), civil, cfg.Session.Timeout, log)

	rehash := queue.NewRehashDispatcher(cfg.Orders.RehashWorkers, creds, metrics.CredentialMigrationsTotal, log)
	rehash.Start(ctx)

	sessions := service.NewSessionService(principalRepo, creds, codec, carrier, guard, rehash, civil, service.SessionConfig{
		TokenTTL:       cfg.Session.TTL,
		StorageTimeout: cfg.Session.Timeout,
	}, log)
	orders := service.NewOrderService(orderRepo, guard, carrier, civil, calendar, cfg.Session.Timeout, log)
	principals := service.NewPrincipalService(principalRepo, creds, civil, log)

	e := api.NewRouter(api.Deps{
		Sessions:   sessions,
		Orders:     orders,
		Principals: principals,
		Health: map[string]handler.Pinger{
			"mongodb": mongo.Pinger{Client: mongoClient},
			"redis":   redis.Pinger{Client: rdb},
		},
		Cookie: cookie.Options{Secure: cfg.Session.CookieSecure},
		Log:    log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", cfg.Session.Timezone).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), api.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
