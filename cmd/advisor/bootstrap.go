package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stock-advisor/internal/features"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/llm/llmobs"
	"stock-advisor/internal/llm/noop"
	"stock-advisor/internal/llm/ollama"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/marketdata"
	"stock-advisor/internal/marketdata/mdobs"
	"stock-advisor/internal/narrative"
	"stock-advisor/internal/news"
	"stock-advisor/internal/pipeline"
	"stock-advisor/internal/reclog"
	"stock-advisor/internal/retrieval"
	"stock-advisor/internal/rules"
	"stock-advisor/internal/store"
	"stock-advisor/internal/store/sqlite"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old recommendation audit files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("ADVISOR_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := reclog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeProvider builds the snapshot provider with cache and observability
func initializeProvider(ctx context.Context, cfg *store.Config) interfaces.SnapshotProvider {
	var base interfaces.SnapshotProvider
	if cfg.DataSource == "LIVE" {
		logger.Info(ctx, "Using LIVE snapshot data from Alpha Vantage")
		base = marketdata.NewAlphaVantage(os.Getenv("ALPHA_VANTAGE_API_KEY"), 10*time.Second)
	} else {
		logger.Info(ctx, "Using MOCK snapshot data for testing")
		base = marketdata.NewMock(0)
	}

	cached := marketdata.NewCache(base,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		cfg.Cache.Retries)

	// Wrap with observability middleware
	return mdobs.Wrap(cached)
}

// initializeGenerator builds the generative backend with observability
func initializeGenerator(ctx context.Context, cfg *store.Config) interfaces.Generator {
	var gen interfaces.Generator

	switch cfg.LLM.Provider {
	case "OLLAMA":
		gen = ollama.NewGenerator(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)
	default:
		gen = noop.NewGenerator()
		logger.Warn(ctx, "No generative backend configured - narrative scoring disabled")
	}

	// Wrap with observability middleware
	return llmobs.Wrap(gen)
}

// initializeRetrieval seeds the document index and optionally refreshes it
// with scraped headlines
func initializeRetrieval(ctx context.Context, cfg *store.Config) *retrieval.Index {
	index := retrieval.NewIndex()
	index.Add(retrieval.SeedDocuments...)

	if cfg.Retrieval.ScrapeHeadlines {
		scraper := news.NewScraper(30 * time.Second)
		docs := scraper.Headlines(ctx, cfg.Universe, cfg.Retrieval.MaxScrapeSymbols)
		index.Add(docs...)
		logger.Info(ctx, "Headline scrape complete", "documents", len(docs))
	}

	logger.Info(ctx, "Document index ready", "documents", index.Len())
	return index
}

// buildPipeline wires all collaborators into the pipeline
func buildPipeline(ctx context.Context, cfg *store.Config, db *sqlite.Store) *pipeline.Pipeline {
	provider := initializeProvider(ctx, cfg)
	index := initializeRetrieval(ctx, cfg)

	params := features.Params{
		RSIPeriod: cfg.Indicators.RSIPeriod,
		BBWindow:  cfg.Indicators.BBWindow,
		BBStdDev:  cfg.Indicators.BBStdDev,
		MACDFast:  cfg.Indicators.MACDFast,
		MACDSlow:  cfg.Indicators.MACDSlow,
	}
	if len(cfg.Indicators.SMAWindows) > 0 {
		params.SMAFast = cfg.Indicators.SMAWindows[0]
	}
	if len(cfg.Indicators.SMAWindows) > 1 {
		params.SMASlow = cfg.Indicators.SMAWindows[1]
	}
	extractor := features.New(params)

	var narrativeScorer interfaces.ContextScorer
	if cfg.LLM.Provider != "NONE" {
		gen := initializeGenerator(ctx, cfg)
		narrativeScorer = narrative.New(gen, types.GenerateOptions{
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		}, cfg.Retrieval.PromptDocs)
	}

	pcfg := pipeline.Config{
		Symbols:          cfg.Universe,
		Concurrency:      cfg.Pipeline.Concurrency,
		TopN:             cfg.Pipeline.TopN,
		RetrievalTopK:    cfg.Retrieval.TopK,
		CollectTimeout:   time.Duration(cfg.Pipeline.CollectTimeoutSeconds) * time.Second,
		ScoreTimeout:     time.Duration(cfg.Pipeline.ScoreTimeoutSeconds) * time.Second,
		RetrievalTimeout: time.Duration(cfg.Pipeline.RetrievalTimeoutSeconds) * time.Second,
		NarrativeTimeout: time.Duration(cfg.Pipeline.NarrativeTimeoutSeconds) * time.Second,
		CombineTimeout:   time.Duration(cfg.Pipeline.CombineTimeoutSeconds) * time.Second,
		PersistTimeout:   time.Duration(cfg.Pipeline.PersistTimeoutSeconds) * time.Second,
	}

	pipe := pipeline.New(pcfg, provider, extractor, rules.New(), index, narrativeScorer, db)
	pipe.SetAudit(func(runID string, rec types.CombinedRecommendation) {
		if err := reclog.Append(runID, rec); err != nil {
			logger.Warn(ctx, "Audit log append failed", "symbol", rec.Symbol, "error", err)
		}
	})
	return pipe
}
