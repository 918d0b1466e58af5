package strategies

import (
	"context"
	"fmt"

	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/ports"
	"bybitScalpBot/internal/strategy/indicators"
)

// MACrossoverConfig holds configuration for the MA Crossover strategy.
type MACrossoverConfig struct {
	ShortMAPeriod int     // e.g. 20
	LongMAPeriod  int     // e.g. 50
	RSIPeriod     int     // e.g. 14
	RSIOverbought float64 // e.g. 70
	RSIOversold   float64 // e.g. 30
	ATRPeriod     int     // e.g. 14
	StopATRMult   float64 // Stop distance in ATR multiples, e.g. 1.0
	TargetATRMult float64 // Target distance in ATR multiples, e.g. 1.8
}

// MACrossover implements a trend-following moving-average crossover strategy
// with an RSI exhaustion filter and ATR-scaled exit levels. Unlike Momentum
// its exits are fully deterministic.
type MACrossover struct {
	cfg    MACrossoverConfig
	logger ports.Logger
}

// NewMACrossover creates a new MA Crossover strategy instance.
func NewMACrossover(cfg MACrossoverConfig, logger ports.Logger) (*MACrossover, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.ShortMAPeriod <= 0 {
		cfg.ShortMAPeriod = 20
	}
	if cfg.LongMAPeriod <= 0 {
		cfg.LongMAPeriod = 50
	}
	if cfg.ShortMAPeriod >= cfg.LongMAPeriod {
		return nil, fmt.Errorf("short MA period must be less than long MA period")
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.RSIOverbought <= 0 {
		cfg.RSIOverbought = 70
	}
	if cfg.RSIOversold <= 0 {
		cfg.RSIOversold = 30
	}
	if cfg.RSIOverbought <= cfg.RSIOversold || cfg.RSIOverbought > 100 {
		return nil, fmt.Errorf("invalid RSI thresholds (overbought must be > oversold, within 0-100)")
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = 14
	}
	if cfg.StopATRMult <= 0 {
		cfg.StopATRMult = 1.0
	}
	if cfg.TargetATRMult <= 0 {
		cfg.TargetATRMult = 1.8
	}
	return &MACrossover{cfg: cfg, logger: logger}, nil
}

// Name returns the identifier for the strategy implementation.
func (s *MACrossover) Name() string { return "macrossover" }

// MinCandles returns the minimum window length needed for an evaluation.
func (s *MACrossover) MinCandles() int {
	min := s.cfg.LongMAPeriod + 1
	if s.cfg.RSIPeriod+1 > min {
		min = s.cfg.RSIPeriod + 1
	}
	if s.cfg.ATRPeriod+1 > min {
		min = s.cfg.ATRPeriod + 1
	}
	if min < 30 {
		min = 30
	}
	return min
}

// Evaluate derives a Buy/Sell/Hold signal from the candle window and the
// live order-book imbalance.
func (s *MACrossover) Evaluate(ctx context.Context, klines []*domain.Kline, imbalance float64) (*domain.Signal, error) {
	if len(klines) < s.MinCandles() {
		return nil, fmt.Errorf("window of %d candles below required %d: %w", len(klines), s.MinCandles(), ports.ErrDataInsufficient)
	}

	closes := domain.Closes(klines)
	lastClose := closes[len(closes)-1]

	shortMA, err := indicators.SMA(closes, s.cfg.ShortMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("short MA: %w", err)
	}
	longMA, err := indicators.SMA(closes, s.cfg.LongMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("long MA: %w", err)
	}
	rsi, err := indicators.RSI(closes, s.cfg.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("RSI: %w", err)
	}
	atr, err := indicators.ATR(klines, s.cfg.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("ATR: %w", err)
	}

	s.logger.Debug(ctx, "ma crossover evaluation", map[string]interface{}{
		"shortMA": shortMA, "longMA": longMA, "rsi": rsi, "atr": atr,
		"lastClose": lastClose, "imbalance": imbalance,
	})

	// Uptrend with room before exhaustion and no sell-side pressure.
	if shortMA > longMA && lastClose > shortMA && rsi < s.cfg.RSIOverbought && imbalance >= 0 {
		return &domain.Signal{
			Action:     domain.ActionBuy,
			EntryPrice: lastClose,
			StopLoss:   lastClose - atr*s.cfg.StopATRMult,
			TakeProfit: lastClose + atr*s.cfg.TargetATRMult,
			Confidence: 1 + imbalance,
		}, nil
	}

	// Downtrend mirror.
	if shortMA < longMA && lastClose < shortMA && rsi > s.cfg.RSIOversold && imbalance <= 0 {
		return &domain.Signal{
			Action:     domain.ActionSell,
			EntryPrice: lastClose,
			StopLoss:   lastClose + atr*s.cfg.StopATRMult,
			TakeProfit: lastClose - atr*s.cfg.TargetATRMult,
			Confidence: 1 - imbalance,
		}, nil
	}

	return &domain.Signal{Action: domain.ActionHold, Reason: "no trend alignment"}, nil
}
