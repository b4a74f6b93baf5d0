package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/indexstore"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/query"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/results"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	indexPath := flag.String("index", "", "inverted index file (overrides index.path)")
	indexFormat := flag.String("format", "", "index format: json or sqlite (overrides index.format)")
	queriesPath := flag.String("queries", "", "query file, one '<id> <text>' per line (overrides queries.path)")
	outputPath := flag.String("output", "", "results file (overrides output.path)")
	weightingName := flag.String("weighting", "", "binary, tf or tfidf (overrides retrieval.weighting)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	override(&cfg.Index.Path, *indexPath)
	override(&cfg.Index.Format, *indexFormat)
	override(&cfg.Queries.Path, *queriesPath)
	override(&cfg.Output.Path, *outputPath)
	override(&cfg.Retrieval.Weighting, *weightingName)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("retrieval run failed", "error", err)
		os.Exit(1)
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, root := tracing.Start(ctx, "retrieval_run")
	defer func() {
		root.End()
		root.Log(logger.WithComponent("tracing"))
	}()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, reg)
		defer shutdownMetrics(context.Background())
	}

	_, span := tracing.Start(ctx, "load_index")
	span.SetAttr("format", cfg.Index.Format)
	idx, err := indexstore.Load(ctx, cfg.Index)
	if err != nil {
		span.End()
		return fmt.Errorf("loading index %s: %w", cfg.Index.Path, err)
	}
	span.SetAttr("terms", idx.Len())
	span.SetAttr("postings", idx.PostingCount())
	span.End()
	engine, err := retrieval.NewFromName(idx, cfg.Retrieval.Weighting,
		retrieval.WithWorkers(cfg.Retrieval.Workers),
		retrieval.WithMetrics(m),
		retrieval.WithLogger(logger.WithComponent("retrieval-engine")),
	)
	if err != nil {
		return err
	}

	queries, err := query.Load(cfg.Queries.Path, query.Options{
		Stem:            cfg.Queries.Stem,
		RemoveStopwords: cfg.Queries.RemoveStopwords,
	})
	if err != nil {
		return err
	}
	_, span = tracing.Start(ctx, "evaluate")
	span.SetAttr("queries", len(queries))
	res, err := engine.ForQueries(ctx, queries)
	span.End()
	if err != nil {
		return err
	}
	if err := results.WriteFile(cfg.Output.Path, res); err != nil {
		return err
	}
	slog.Info("results written", "path", cfg.Output.Path, "queries", len(res))

	if cfg.Output.Postgres {
		_, span = tracing.Start(ctx, "store_results")
		err := store(ctx, cfg, engine, res)
		span.End()
		if err != nil {
			return err
		}
	}
	if cfg.Kafka.Enabled {
		publish(ctx, cfg, engine, queries, res)
	}

	slog.Info("retrieval run complete",
		"weighting", engine.Policy().String(),
		"queries", len(queries),
		"elapsed", time.Since(root.Start).Round(time.Millisecond),
	)
	return nil
}

func store(ctx context.Context, cfg *config.Config, engine *retrieval.Engine, res []retrieval.Result) error {
	var db *postgres.Client
	err := resilience.Retry(ctx, "postgres connect", cfg.Retry, func(ctx context.Context) error {
		var err error
		db, err = postgres.New(ctx, cfg.Postgres)
		return err
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	runID := cfg.Output.RunID
	if runID == "" {
		runID = fmt.Sprintf("%s-%d", engine.Policy(), time.Now().Unix())
	}
	pg := results.NewPostgresStore(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := pg.Save(ctx, runID, engine.Policy(), res); err != nil {
		return err
	}
	slog.Info("results stored", "run_id", runID, "queries", len(res))
	return nil
}

// publish emits one retrieval event per query. Broker failures are logged by
// the collector and never fail the run.
func publish(ctx context.Context, cfg *config.Config, engine *retrieval.Engine, queries []query.Query, res []retrieval.Result) {
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RetrievalEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, len(res))
	collector.Start(ctx)
	for i, r := range res {
		collector.Track(analytics.NewRetrievalEvent(r, queries[i].Terms, engine.Policy().String(), false))
	}
	collector.Close()
	if dropped := collector.Dropped(); dropped > 0 {
		slog.Warn("retrieval events dropped", "count", dropped)
	}
}
