package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cryptodash/internal/alert"
	"cryptodash/internal/config"
	"cryptodash/internal/gateway"
	"cryptodash/internal/logging"
	"cryptodash/internal/market"
	"cryptodash/internal/model"
	"cryptodash/internal/recorder"
	"cryptodash/internal/render"
	"cryptodash/internal/scheduler"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Optional .env for local runs, before config reads the environment.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("cryptodash starting",
		zap.String("symbol", cfg.Market.Symbol),
		zap.String("interval", cfg.Market.Interval))

	interval, err := model.ParseInterval(cfg.Market.Interval)
	if err != nil {
		logger.Fatal("parse interval", zap.Error(err))
	}

	// Gateway: real Binance REST, or mock for offline runs.
	var gw gateway.Gateway
	if os.Getenv("USE_MOCK_GATEWAY") == "true" {
		gw = &gateway.MockGateway{Price: 60000}
	} else {
		gw = gateway.NewBinanceGateway(cfg.Binance.BaseURL, cfg.Binance.APIKey, cfg.Proxy)
	}
	logger.Info("gateway ready", zap.String("name", gw.Name()))

	builder := market.NewBuilder(gw)
	aggregator := market.NewAggregator(gw, cfg.Reference)

	mailer := alert.NewEmailNotifier(cfg.SMTP)
	evaluator := alert.NewEvaluator(mailer, logger)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := scheduler.NewRunner(scheduler.Options{
		Symbol:       cfg.Market.Symbol,
		Interval:     interval,
		PeriodDays:   cfg.Market.PeriodDays,
		AutoRefresh:  !cfg.Refresh.SingleShot,
		RefreshEvery: cfg.RefreshEvery(),
		Backoff:      cfg.Backoff(),
		Alert:        cfg.Alert,
	}, builder, aggregator, evaluator, &render.Console{Out: os.Stdout}, rec, nil, logger)

	if cfg.Digest.Cron != "" {
		digest := scheduler.NewDigest(runner, mailer, cfg.Digest.Recipient, logger)
		if err := digest.Register(cfg.Digest.Cron); err != nil {
			logger.Fatal("register digest", zap.Error(err))
		}
		digest.Start()
		defer digest.Stop()
	}

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received, stopping")
		cancel()
		<-done
	case <-done:
		// single-shot run finished
	}
	logger.Info("cryptodash stopped")
}
