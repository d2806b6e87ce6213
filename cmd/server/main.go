package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tenet/internal/audit"
	"tenet/internal/dedupe"
	"tenet/internal/importguard"
	importhandler "tenet/internal/importguard/handler"
	importmetrics "tenet/internal/importguard/metrics"
	"tenet/internal/platform/config"
	"tenet/internal/platform/httpserver"
	"tenet/internal/platform/logger"
	"tenet/internal/platform/postgres"
	platformredis "tenet/internal/platform/redis"
	"tenet/internal/registry/store"
	"tenet/internal/screening"
	screencache "tenet/internal/screening/cache"
	screenhandler "tenet/internal/screening/handler"
	screenmetrics "tenet/internal/screening/metrics"
	"tenet/internal/ticker"
	httptransport "tenet/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal domain packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	registry := buildStore(db)
	if db == nil {
		log.Warn("no postgres URL configured, using in-memory registry")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var verdictCache *screencache.VerdictCache
	if redisClient != nil {
		verdictCache = screencache.New(redisClient.Client, cfg.Screening.CacheTTL, log)
	}

	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		sink = kafkaSink
	}
	publisher := audit.NewPublisher(sink, audit.WithLogger(log))
	defer publisher.Close()

	validator := ticker.New(registry, ticker.DefaultReferenceTable())
	detector := dedupe.New(registry)
	guard := importguard.New(registry, validator, detector, log, importmetrics.New())

	screener := screening.NewService(registry, cfg.Screening,
		screening.WithCache(verdictCache),
		screening.WithAudit(publisher),
		screening.WithMetrics(screenmetrics.NewRecorder()),
		screening.WithLogger(log),
	)

	health := map[string]httptransport.HealthCheck{}
	if db != nil {
		health["postgres"] = db.PingContext
	}
	if redisClient != nil {
		health["redis"] = redisClient.Health
	}

	router := httptransport.NewRouter(log, health,
		screenhandler.New(screener, log),
		importhandler.New(guard, verdictCache, log),
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting tenet", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func buildStore(db *sql.DB) store.Store {
	if db == nil {
		return store.NewInMemory()
	}
	return store.NewPostgres(db)
}
