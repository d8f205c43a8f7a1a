package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/planactions/customfields/docs"
	"github.com/planactions/customfields/internal/api"
	"github.com/planactions/customfields/internal/core/policy"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/core/service"
	"github.com/planactions/customfields/internal/infrastructure/bus"
	"github.com/planactions/customfields/internal/infrastructure/db/mongo"
	"github.com/planactions/customfields/internal/infrastructure/db/redis"
	"github.com/planactions/customfields/internal/infrastructure/http/handlers"
	"github.com/planactions/customfields/internal/infrastructure/queue"
	"github.com/planactions/customfields/internal/pkg/config"
	"github.com/planactions/customfields/internal/pkg/idgen"
	"github.com/planactions/customfields/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Custom Fields API
// @version                     1.0
// @description                 Dynamic custom fields for action records: schema, validation, forms and access policy.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "customfields",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		log.Warn().Msg("JWT_SECRET is empty; tokens are signed with an empty key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "customfields"})
	if err != nil {
		return err
	}
	defer disconnect(client, log)

	fieldRepo := mongo.NewFieldRepository(db)
	recordRepo := mongo.NewRecordRepository(db)
	if err := fieldRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := recordRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("could not ensure act_id index on actions")
	}

	checks := []handlers.Check{{Name: "mongodb", Ping: mongo.Ping(db)}}
	invalidations, closeBus, err := openBus(ctx, cfg, log, &checks)
	if err != nil {
		return err
	}
	defer closeBus()

	rules := policy.Default()
	origin := idgen.Origin()
	store := service.NewSchemaStore(fieldRepo, logger.Component("schema"),
		service.WithTTL(cfg.Schema.CacheTTL),
		service.WithFetchTimeout(cfg.Schema.FetchTimeout),
	)

	compat := service.NewCompatService(recordRepo, logger.Component("compat"))
	dispatcher := queue.NewDispatcher(cfg.Schema.CompatWorkers, compat, logger.Component("compat"))
	dispatcher.Start(ctx)

	fields := service.NewFieldService(fieldRepo, recordRepo, store, invalidations, dispatcher, rules, origin, logger.Component("fields"))
	records := service.NewRecordService(recordRepo, store, rules, logger.Component("records"))
	listener := service.NewInvalidationListener(invalidations, store, origin, logger.Component("invalidation"))

	e := api.NewRouter(api.Deps{
		Log:       log,
		JWTSecret: cfg.JWTSecret,
		Policy:    rules,
		Schema:    store,
		Fields:    fields,
		Records:   records,
		Checks:    checks,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("origin", origin).Str("invalidation", cfg.Invalidation.Backend).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return listener.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openBus connects the configured invalidation backend and appends its
// readiness check.
func openBus(ctx context.Context, cfg *config.Config, log zerolog.Logger, checks *[]handlers.Check) (ports.InvalidationBus, func(), error) {
	switch cfg.Invalidation.Backend {
	case config.BackendRedis:
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		*checks = append(*checks, handlers.Check{Name: "redis", Ping: redis.Ping(rdb)})
		b := redis.NewInvalidationBus(rdb, cfg.Invalidation.Channel, logger.Component("invalidation"))
		return b, func() { closeRedis(b, rdb, log) }, nil
	case config.BackendNATS:
		b, err := bus.NewNATSBus(cfg.Invalidation.NATSURL, cfg.Invalidation.Channel, logger.Component("invalidation"))
		if err != nil {
			return nil, nil, err
		}
		*checks = append(*checks, handlers.Check{Name: "nats", Ping: b.Ping})
		return b, func() { _ = b.Close() }, nil
	default:
		log.Warn().Msg("invalidation bus disabled; other replicas rely on the freshness window")
		return bus.Noop{}, func() {}, nil
	}
}

func closeRedis(b *redis.InvalidationBus, rdb *goredis.Client, log zerolog.Logger) {
	_ = b.Close()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}

func disconnect(client *mongodriver.Client, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect")
	}
}
