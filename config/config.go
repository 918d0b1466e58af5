package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Bybit API
	APIKey     string
	APISecret  string
	UseTestnet bool

	// Trading Parameters
	Symbol          string
	Interval        string // Kline interval in venue notation ("1", "5", "15", ...)
	KlineLimit      int    // Candles fetched per evaluation
	Leverage        int
	RiskPercent     float64 // Percent of balance risked per trade (e.g. 1.0 for 1%)
	Cooldown        time.Duration
	TickInterval    time.Duration // Scheduler evaluation cadence
	MonitorInterval time.Duration // Position monitor polling cadence
	OrderBookDepth  int

	// Strategy Parameters
	StrategyName       string
	FastEMAPeriod      int
	SlowEMAPeriod      int
	ImbalanceThreshold float64
	MinATR             float64 // Below this the market is too quiet to trade (0 disables)

	// Exit perturbation ranges, as fractions of entry price.
	LongTPMin  float64
	LongTPMax  float64
	LongSLMin  float64
	LongSLMax  float64
	ShortTPMin float64
	ShortTPMax float64
	ShortSLMin float64
	ShortSLMax float64

	// Operator API
	HTTPAddr         string
	TradeLogCapacity int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables (.env file).
func Load() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	// Bybit API
	cfg.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.APISecret = getEnv("BYBIT_API_SECRET", "")
	cfg.UseTestnet = getEnvAsBool("USE_TESTNET", true) // Default to testnet for safety

	if cfg.APIKey == "" {
		errs = append(errs, "BYBIT_API_KEY must be set")
	}
	if cfg.APISecret == "" {
		errs = append(errs, "BYBIT_API_SECRET must be set")
	}

	// Trading Parameters
	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.Interval = getEnv("INTERVAL", "1")

	cfg.KlineLimit, err = getEnvAsIntRequired("KLINE_LIMIT", 50)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid KLINE_LIMIT: %v", err))
	} else if cfg.KlineLimit <= 0 {
		errs = append(errs, "KLINE_LIMIT must be positive")
	}

	cfg.Leverage, err = getEnvAsIntRequired("LEVERAGE", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEVERAGE: %v", err))
	} else if cfg.Leverage <= 0 {
		errs = append(errs, "LEVERAGE must be positive")
	}

	cfg.RiskPercent, err = getEnvAsFloatRequired("RISK_PERCENT", 1.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_PERCENT: %v", err))
	} else if cfg.RiskPercent <= 0 || cfg.RiskPercent >= 100.0 {
		errs = append(errs, "RISK_PERCENT must be between 0 and 100 (exclusive)")
	}

	cooldownSeconds, err := getEnvAsIntRequired("COOLDOWN_SECONDS", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid COOLDOWN_SECONDS: %v", err))
	} else if cooldownSeconds < 0 {
		errs = append(errs, "COOLDOWN_SECONDS cannot be negative")
	}
	cfg.Cooldown = time.Duration(cooldownSeconds) * time.Second

	tickSeconds, err := getEnvAsIntRequired("TICK_INTERVAL_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TICK_INTERVAL_SECONDS: %v", err))
	} else if tickSeconds <= 0 {
		errs = append(errs, "TICK_INTERVAL_SECONDS must be positive")
	}
	cfg.TickInterval = time.Duration(tickSeconds) * time.Second

	monitorSeconds, err := getEnvAsIntRequired("MONITOR_INTERVAL_SECONDS", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MONITOR_INTERVAL_SECONDS: %v", err))
	} else if monitorSeconds <= 0 {
		errs = append(errs, "MONITOR_INTERVAL_SECONDS must be positive")
	}
	cfg.MonitorInterval = time.Duration(monitorSeconds) * time.Second

	cfg.OrderBookDepth = getEnvAsInt("ORDERBOOK_DEPTH", 5)
	if cfg.OrderBookDepth <= 0 {
		errs = append(errs, "ORDERBOOK_DEPTH must be positive")
	}

	// Strategy Parameters (using defaults if not set)
	cfg.StrategyName = getEnv("STRATEGY", "momentum")
	cfg.FastEMAPeriod = getEnvAsInt("STRATEGY_FAST_EMA_PERIOD", 9)
	cfg.SlowEMAPeriod = getEnvAsInt("STRATEGY_SLOW_EMA_PERIOD", 21)
	cfg.ImbalanceThreshold = getEnvAsFloat("STRATEGY_IMBALANCE_THRESHOLD", 0.1)
	cfg.MinATR = getEnvAsFloat("STRATEGY_MIN_ATR", 0.0)

	if cfg.FastEMAPeriod <= 0 || cfg.SlowEMAPeriod <= 0 {
		errs = append(errs, "strategy EMA periods must be positive")
	}
	if cfg.FastEMAPeriod >= cfg.SlowEMAPeriod {
		errs = append(errs, "STRATEGY_FAST_EMA_PERIOD must be less than STRATEGY_SLOW_EMA_PERIOD")
	}
	if cfg.ImbalanceThreshold < 0 || cfg.ImbalanceThreshold > 1 {
		errs = append(errs, "STRATEGY_IMBALANCE_THRESHOLD must be between 0 and 1")
	}
	if cfg.MinATR < 0 {
		errs = append(errs, "STRATEGY_MIN_ATR cannot be negative")
	}

	cfg.LongTPMin = getEnvAsFloat("LONG_TP_MIN", 0.008)
	cfg.LongTPMax = getEnvAsFloat("LONG_TP_MAX", 0.015)
	cfg.LongSLMin = getEnvAsFloat("LONG_SL_MIN", 0.004)
	cfg.LongSLMax = getEnvAsFloat("LONG_SL_MAX", 0.005)
	cfg.ShortTPMin = getEnvAsFloat("SHORT_TP_MIN", 0.002)
	cfg.ShortTPMax = getEnvAsFloat("SHORT_TP_MAX", 0.004)
	cfg.ShortSLMin = getEnvAsFloat("SHORT_SL_MIN", 0.001)
	cfg.ShortSLMax = getEnvAsFloat("SHORT_SL_MAX", 0.003)
	for _, r := range [][2]float64{
		{cfg.LongTPMin, cfg.LongTPMax},
		{cfg.LongSLMin, cfg.LongSLMax},
		{cfg.ShortTPMin, cfg.ShortTPMax},
		{cfg.ShortSLMin, cfg.ShortSLMax},
	} {
		if r[0] <= 0 || r[1] < r[0] {
			errs = append(errs, "exit percent ranges must be positive with min <= max")
			break
		}
	}

	// Operator API
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.TradeLogCapacity = getEnvAsInt("TRADE_LOG_CAPACITY", 500)
	if cfg.TradeLogCapacity <= 0 {
		errs = append(errs, "TRADE_LOG_CAPACITY must be positive")
	}

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
