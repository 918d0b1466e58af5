package main

import (
	"context"
	"errors"
	"log" // Use standard log only for fatal errors before the logger is set up

	"github.com/prometheus/client_golang/prometheus"

	"bybitScalpBot/config"
	"bybitScalpBot/internal/adapters/bybitclient"
	"bybitScalpBot/internal/adapters/logger"
	"bybitScalpBot/internal/adapters/tradelog"
	"bybitScalpBot/internal/app"
	"bybitScalpBot/internal/execution"
	"bybitScalpBot/internal/instrument"
	"bybitScalpBot/internal/risk"
	"bybitScalpBot/internal/server"
	"bybitScalpBot/internal/strategy/strategies"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Exchange Client (Bybit Adapter)
	exchange, err := bybitclient.New(bybitclient.Config{
		APIKey:     cfg.APIKey,
		APISecret:  cfg.APISecret,
		UseTestnet: cfg.UseTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Bybit client")
		log.Fatalf("FATAL: Failed to initialize Bybit client: %v", err)
	}
	appLogger.Info(ctx, "Bybit client initialized", map[string]interface{}{"testnet": cfg.UseTestnet})

	// 4. Initialize Strategy
	strat, err := strategies.New(strategies.Config{
		Name: cfg.StrategyName,
		Momentum: strategies.MomentumConfig{
			FastEMAPeriod:      cfg.FastEMAPeriod,
			SlowEMAPeriod:      cfg.SlowEMAPeriod,
			ImbalanceThreshold: cfg.ImbalanceThreshold,
			MinATR:             cfg.MinATR,
			LongTakeProfit:     strategies.PercentRange{Min: cfg.LongTPMin, Max: cfg.LongTPMax},
			LongStopLoss:       strategies.PercentRange{Min: cfg.LongSLMin, Max: cfg.LongSLMax},
			ShortTakeProfit:    strategies.PercentRange{Min: cfg.ShortTPMin, Max: cfg.ShortTPMax},
			ShortStopLoss:      strategies.PercentRange{Min: cfg.ShortSLMin, Max: cfg.ShortSLMax},
		},
	}, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize signal strategy")
		log.Fatalf("FATAL: Failed to initialize signal strategy: %v", err)
	}
	appLogger.Info(ctx, "signal strategy initialized", map[string]interface{}{"strategy": strat.Name()})

	// 5. Initialize Supporting Components
	instruments, err := instrument.NewCache(exchange, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize instrument cache: %v", err)
	}

	sizer, err := risk.NewSizer(risk.Config{RiskPercent: cfg.RiskPercent}, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize position sizer: %v", err)
	}

	recorder := tradelog.NewMemoryRecorder(cfg.TradeLogCapacity)

	executor, err := execution.NewExecutor(exchange, appLogger, recorder)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize order executor: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := app.NewMetrics(registry)

	// 6. Initialize Application Service
	svc, err := app.NewService(cfg, appLogger, exchange, instruments, strat, sizer, executor, metrics)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trading service")
		log.Fatalf("FATAL: Failed to initialize trading service: %v", err)
	}

	// 7. Start the Operator API alongside the Service
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	api := server.New(server.Config{
		Addr:       cfg.HTTPAddr,
		Symbol:     cfg.Symbol,
		Interval:   cfg.Interval,
		KlineLimit: cfg.KlineLimit,
	}, appLogger, exchange, recorder, registry)
	go func() {
		if err := api.Start(runCtx); err != nil {
			appLogger.Error(runCtx, err, "operator API exited with error")
		}
	}()

	if err := svc.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error(ctx, err, "trading service exited with error")
		log.Fatalf("FATAL: Trading service exited with error: %v", err)
	}
	cancel()

	appLogger.Info(ctx, "application finished gracefully")
}
