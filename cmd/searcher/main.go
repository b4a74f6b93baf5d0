package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/indexstore"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/query"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/cache"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging, os.Stderr)
	slog.Info("starting search service", "port", cfg.Server.Port, "weighting", cfg.Retrieval.Weighting)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, reg)
		defer shutdownMetrics(context.Background())
	}

	idx, err := indexstore.Load(ctx, cfg.Index)
	if err != nil {
		slog.Error("failed to load index", "path", cfg.Index.Path, "format", cfg.Index.Format, "error", err)
		os.Exit(1)
	}
	engine, err := retrieval.NewFromName(idx, cfg.Retrieval.Weighting,
		retrieval.WithWorkers(cfg.Retrieval.Workers),
		retrieval.WithMetrics(m),
		retrieval.WithLogger(logger.WithComponent("retrieval-engine")),
	)
	if err != nil {
		slog.Error("failed to build retrieval engine", "error", err)
		os.Exit(1)
	}

	checker := health.NewChecker()
	checker.Register("retrieval_engine", health.StaticCheck("%d documents, %d terms, %s weighting",
		engine.Stats().NumDocs(), engine.Stats().Vocabulary(), engine.Policy()))

	var resultCache *cache.ResultCache
	if cfg.Redis.Enabled {
		var redisClient *pkgredis.Client
		err := resilience.Retry(ctx, "redis connect", cfg.Retry, func(ctx context.Context) error {
			var err error
			redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			resultCache = cache.New(redisClient, pkgredis.IsNilError, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.OptionalCheck(redisClient))
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RetrievalEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 0)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("retrieval events enabled", "topic", cfg.Kafka.Topics.RetrievalEvents)
	}

	h := handler.New(engine, resultCache, collector, query.Options{
		Stem:            cfg.Queries.Stem,
		RemoveStopwords: cfg.Queries.RemoveStopwords,
	})
	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Chain(mux,
		middleware.RequestID,
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.Metrics(m, handler.Paths()...),
		middleware.Timeout(cfg.Server.WriteTimeout),
	)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}
