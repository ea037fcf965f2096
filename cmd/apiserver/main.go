// Command apiserver exposes the conversion pipeline over HTTP: the
// /api/v1/convert endpoint plus health probes and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/MolGraph-Pipeline/internal/application/pipeline"
	"github.com/turtacn/MolGraph-Pipeline/internal/config"
	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/database/redis"
	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/logging"
	monprom "github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/obabel"
	httpiface "github.com/turtacn/MolGraph-Pipeline/internal/interfaces/http"
	"github.com/turtacn/MolGraph-Pipeline/internal/interfaces/http/handlers"
)

// Version is injected via ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file path (default: environment only)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      []string{cfg.Log.Output},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}
	logging.SetDefault(log)

	// Log level follows config file edits without a restart.
	if *configPath != "" {
		if setter, ok := log.(logging.LevelSetter); ok {
			config.Watch(*configPath, func(next *config.Config) {
				setter.SetLevel(next.Log.Level)
				log.Info("log level reloaded", logging.String("level", next.Log.Level))
			})
		}
	}

	runner := obabel.NewRunner(obabel.Config{
		Binary:  cfg.Obabel.Binary,
		Timeout: cfg.Obabel.Timeout,
	}, log)
	if !runner.Available() {
		log.Warn("conversion tool not on PATH; SMILES conversion will fail",
			logging.String("binary", cfg.Obabel.Binary))
	}

	var cache pipeline.ConversionCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(context.Background(), redis.Config{
			Addr:         cfg.Redis.Addr,
			Username:     cfg.Redis.Username,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, log)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		cache = redis.NewConversionCache(redisClient, cfg.Redis.CacheTTL)
	}

	var collector monprom.MetricsCollector
	var metrics *monprom.PipelineMetrics
	if cfg.Metrics.Enabled {
		collector, err = monprom.NewMetricsCollector(monprom.CollectorConfig{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: cfg.Metrics.Subsystem,
		}, log)
		if err != nil {
			return err
		}
		metrics = monprom.NewPipelineMetrics(collector)
	}

	router := httpiface.NewRouter(httpiface.RouterConfig{
		ConvertHandler: handlers.NewConvertHandler(cfg.PipelineOptions(), runner, cache, metrics, log),
		HealthHandler:  handlers.NewHealthHandler(runner, Version),
		Logger:         log,
		Collector:      collector,
		Mode:           cfg.Server.Mode,
	})
	server := httpiface.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Stop(ctx)
}
