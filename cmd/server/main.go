package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/config"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/metrics"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/middleware"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/router"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/service"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var breakers []*infra.CircuitBreaker

	// Redis is optional: without it failed stock movements are only reported
	// in the transition response and the reconciliation cron flags the drift.
	var (
		rdb        *redis.Client
		dispatcher *worker.Dispatcher
		reintentos service.MovimientoReintentos
	)
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, movement retries disabled")
		} else {
			redisCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("redis"))
			breakers = append(breakers, redisCB)
			dispatcher = worker.NewDispatcher(rdb, redisCB)
			reintentos = dispatcher
		}
	}

	var eventos infra.EventPublisher = infra.NoopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafkaCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("kafka"))
		breakers = append(breakers, kafkaCB)
		eventos = infra.NewKafkaPublisher(brokers, cfg.KafkaTopicPedidos, kafkaCB)
		log.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopicPedidos).Msg("kafka publisher enabled")
	}

	svcs := router.BuildServices(db, reintentos, eventos, m, cfg.NombreTienda)

	var wg *sync.WaitGroup
	if dispatcher != nil {
		w := worker.NewMovimientoWorker(svcs.Inventario, dispatcher, rdb, cfg.MovimientoMaxReintentos)
		wg = worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.QueueMovimientos, w)
	}
	worker.StartReconciliacionCron(ctx, svcs.Inventario, cfg.ReconciliacionIntervalo)

	limiter := middleware.NewRateLimitStore(cfg.RateLimitPorMinuto, time.Minute)
	limiter.Start(ctx, 5*time.Minute)

	r := router.New(cfg, router.Deps{
		DB:        db,
		Redis:     rdb,
		Services:  svcs,
		Gatherer:  reg,
		RateLimit: limiter,
		Breakers:  breakers,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s backend listening on :%d", cfg.NombreTienda, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if wg != nil {
		wg.Wait()
	}
	if err := eventos.Close(); err != nil {
		log.Error().Err(err).Msg("closing event publisher")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}

// setupLogger picks the console writer outside production and applies LOG_LEVEL.
func setupLogger(cfg *config.Config) {
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
