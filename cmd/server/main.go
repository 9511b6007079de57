package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SugarMill.twin/internal/config"
	"SugarMill.twin/internal/controller"
	"SugarMill.twin/internal/metrics"
	"SugarMill.twin/internal/repository"
	"SugarMill.twin/internal/routes"
	"SugarMill.twin/internal/service"
	"SugarMill.twin/internal/stream"
	"SugarMill.twin/internal/telemetry"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("error loading configuration", "err", err)
		os.Exit(1)
	}
	logger := config.InitLogger(cfg.LogPath)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stations, err := config.LoadStations(cfg.StationsFile)
	if err != nil {
		return err
	}

	var closers []func() error
	defer func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close failed", "err", err)
			}
		}
	}()

	var influx *repository.InfluxDBRepository
	if cfg.Source == config.SourceInflux || cfg.InfluxDBWrite {
		influx = repository.NewInfluxDBRepository(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket, cfg.MillID, logger)
		closers = append(closers, func() error { influx.Close(); return nil })
		if err := influx.Ping(ctx); err != nil {
			return err
		}
		if err := influx.EnsureBucket(ctx); err != nil {
			return err
		}
	}

	var source service.Source
	if cfg.Source == config.SourceInflux {
		source = influx
	} else {
		source = service.NewMockSource(telemetry.NewGenerator(telemetry.NewRand(cfg.Seed)))
	}

	var sinks []service.Sink
	if cfg.InfluxDBWrite {
		sinks = append(sinks, influx)
	}
	if cfg.RedisAddr != "" {
		redisSink, err := repository.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MillID, cfg.RedisChannel, cfg.RedisTTL, logger)
		if err != nil {
			return err
		}
		closers = append(closers, redisSink.Close)
		sinks = append(sinks, redisSink)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := repository.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		closers = append(closers, kafkaSink.Close)
		sinks = append(sinks, kafkaSink)
	}

	m := metrics.NewMetrics()
	twinCfg := service.DefaultConfig()
	twinCfg.MillID = cfg.MillID
	twinCfg.Interval = cfg.TickInterval
	twinCfg.Variation = cfg.VariationRange
	twinCfg.Seed = cfg.Seed
	twinCfg.Stations = stations

	twin, err := service.NewTwinService(twinCfg, source, logger,
		service.WithSinks(sinks...),
		service.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	hub := stream.NewHub(logger, originChecker(cfg.CORSOrigins))
	updates, unsubscribe := twin.Subscribe()
	defer unsubscribe()
	go hub.Run(ctx, updates)

	if err := twin.Start(ctx); err != nil {
		return err
	}
	defer twin.Stop()

	router := routes.NewRouter(controller.NewTwinController(twin, logger), hub, m)
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", "url", fmt.Sprintf("http://localhost:%s", cfg.Port), "source", cfg.Source, "sinks", len(sinks))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// originChecker applies the CORS allow-list to websocket upgrades.
func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
