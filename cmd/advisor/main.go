package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/pipeline"
	"stock-advisor/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single pipeline execution and exit")
	latest := flag.Int("latest", 0, "print the N latest stored recommendations and exit")
	latestSymbol := flag.String("symbol", "", "restrict -latest to one symbol")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		os.Exit(1)
	}

	compressOldLogs(ctx)

	db, err := sqlite.NewStore(cfg.Database.Path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open database", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	defer db.Close()

	if *latest > 0 {
		printLatest(ctx, db, *latestSymbol, *latest)
		return
	}

	pipe := buildPipeline(ctx, cfg, db)

	if *once {
		result, err := pipe.Run(ctx)
		result.Report(ctx)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	sched, err := pipeline.NewScheduler(pipe, cfg.Schedule.DailyTime, cfg.Schedule.Timezone)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build scheduler", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Advisor started",
		"daily_time", cfg.Schedule.DailyTime,
		"timezone", cfg.Schedule.Timezone,
		"universe", len(cfg.Universe))
	if err := sched.Loop(ctx); err != nil && ctx.Err() == nil {
		logger.ErrorWithErr(ctx, "Scheduler stopped", err)
		os.Exit(1)
	}
}

func printLatest(ctx context.Context, db *sqlite.Store, symbol string, limit int) {
	recs, err := db.ListLatest(ctx, symbol, limit)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to list recommendations", err)
		os.Exit(1)
	}
	if len(recs) == 0 {
		fmt.Println("no stored recommendations")
		return
	}
	for _, rec := range recs {
		fmt.Printf("%-6s %-4s conf=%.2f consensus=%.2f risk=%-6s %s target=%.2f stop=%.2f\n",
			rec.Symbol, rec.Action, rec.Confidence, rec.ConsensusScore,
			rec.RiskLevel, rec.Timeframe, rec.PriceTarget, rec.StopLoss)
	}
}
