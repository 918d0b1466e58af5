package strategies

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/ports"
	"bybitScalpBot/internal/strategy/indicators"
)

// PercentRange is a bounded random perturbation range for exit levels,
// expressed as fractions of the entry price (0.01 = 1%).
type PercentRange struct {
	Min float64
	Max float64
}

// MomentumConfig holds configuration for the Momentum strategy.
type MomentumConfig struct {
	FastEMAPeriod      int     // e.g. 9
	SlowEMAPeriod      int     // e.g. 21
	ImbalanceThreshold float64 // Order-book imbalance gate, e.g. 0.1
	VolumeLookback     int     // Candles averaged for the spike baseline, e.g. 5
	VolumeSpikeRatio   float64 // Last volume must exceed ratio * average, e.g. 0.8
	ATRPeriod          int     // e.g. 14
	MinATR             float64 // Below this the market is a low-volatility Hold

	// Exit levels are the entry scaled by a random percentage drawn from
	// these ranges. The randomization keeps exits from being deterministic
	// and easily arbitraged; it is the only non-deterministic part of an
	// evaluation.
	LongTakeProfit  PercentRange // e.g. 0.008..0.015
	LongStopLoss    PercentRange // e.g. 0.004..0.005
	ShortTakeProfit PercentRange // e.g. 0.002..0.004
	ShortStopLoss   PercentRange // e.g. 0.001..0.003

	// Rand is the randomness source for exit perturbation. Leave nil in
	// production to seed from the clock; fix the seed under test.
	Rand *rand.Rand
}

// Momentum implements the EMA-cross momentum strategy: an EMA fast/slow cross
// confirmed by VWAP side, order-book imbalance and a volume spike.
type Momentum struct {
	cfg    MomentumConfig
	logger ports.Logger
	rnd    *rand.Rand
}

// NewMomentum creates a new Momentum strategy instance.
func NewMomentum(cfg MomentumConfig, logger ports.Logger) (*Momentum, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.FastEMAPeriod <= 0 {
		cfg.FastEMAPeriod = 9
	}
	if cfg.SlowEMAPeriod <= 0 {
		cfg.SlowEMAPeriod = 21
	}
	if cfg.FastEMAPeriod >= cfg.SlowEMAPeriod {
		return nil, fmt.Errorf("fast EMA period must be less than slow EMA period")
	}
	if cfg.ImbalanceThreshold <= 0 {
		cfg.ImbalanceThreshold = 0.1
	}
	if cfg.VolumeLookback <= 0 {
		cfg.VolumeLookback = 5
	}
	if cfg.VolumeSpikeRatio <= 0 {
		cfg.VolumeSpikeRatio = 0.8
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = 14
	}
	if cfg.LongTakeProfit == (PercentRange{}) {
		cfg.LongTakeProfit = PercentRange{Min: 0.008, Max: 0.015}
	}
	if cfg.LongStopLoss == (PercentRange{}) {
		cfg.LongStopLoss = PercentRange{Min: 0.004, Max: 0.005}
	}
	if cfg.ShortTakeProfit == (PercentRange{}) {
		cfg.ShortTakeProfit = PercentRange{Min: 0.002, Max: 0.004}
	}
	if cfg.ShortStopLoss == (PercentRange{}) {
		cfg.ShortStopLoss = PercentRange{Min: 0.001, Max: 0.003}
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Momentum{cfg: cfg, logger: logger, rnd: rnd}, nil
}

// Name returns the identifier for the strategy implementation.
func (m *Momentum) Name() string { return "momentum" }

// MinCandles returns the minimum window length needed for an evaluation.
func (m *Momentum) MinCandles() int {
	min := 30
	if m.cfg.SlowEMAPeriod+1 > min {
		min = m.cfg.SlowEMAPeriod + 1
	}
	if m.cfg.ATRPeriod+1 > min {
		min = m.cfg.ATRPeriod + 1
	}
	return min
}

// Evaluate derives a Buy/Sell/Hold signal from the candle window and the
// live order-book imbalance.
func (m *Momentum) Evaluate(ctx context.Context, klines []*domain.Kline, imbalance float64) (*domain.Signal, error) {
	if len(klines) < m.MinCandles() {
		return nil, fmt.Errorf("window of %d candles below required %d: %w", len(klines), m.MinCandles(), ports.ErrDataInsufficient)
	}

	closes := domain.Closes(klines)

	fast, err := indicators.EMASeries(closes, m.cfg.FastEMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("fast EMA: %w", err)
	}
	slow, err := indicators.EMASeries(closes, m.cfg.SlowEMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("slow EMA: %w", err)
	}
	fastPrev, fastCurr := fast[len(fast)-2], fast[len(fast)-1]
	slowPrev, slowCurr := slow[len(slow)-2], slow[len(slow)-1]

	vwap, err := indicators.VWAP(klines)
	if err != nil {
		return nil, fmt.Errorf("VWAP: %w", err)
	}
	lastClose := closes[len(closes)-1]

	volumeSpike := m.hasVolumeSpike(klines)

	m.logger.Debug(ctx, "momentum evaluation", map[string]interface{}{
		"fastPrev": fastPrev, "fastCurr": fastCurr,
		"slowPrev": slowPrev, "slowCurr": slowCurr,
		"lastClose": lastClose, "vwap": vwap,
		"imbalance": imbalance, "volumeSpike": volumeSpike,
	})

	// Long: fast EMA crosses above slow this bar, price above VWAP,
	// buy-side imbalance and a volume spike.
	if fastPrev < slowPrev && fastCurr > slowCurr &&
		lastClose > vwap &&
		imbalance > m.cfg.ImbalanceThreshold &&
		volumeSpike {
		slPct := m.randRange(m.cfg.LongStopLoss)
		tpPct := m.randRange(m.cfg.LongTakeProfit)
		return &domain.Signal{
			Action:     domain.ActionBuy,
			EntryPrice: lastClose,
			StopLoss:   lastClose * (1 - slPct),
			TakeProfit: lastClose * (1 + tpPct),
			Confidence: 1 + imbalance,
		}, nil
	}

	// Short: symmetric cross-down.
	if fastPrev > slowPrev && fastCurr < slowCurr &&
		lastClose < vwap &&
		imbalance < -m.cfg.ImbalanceThreshold &&
		volumeSpike {
		slPct := m.randRange(m.cfg.ShortStopLoss)
		tpPct := m.randRange(m.cfg.ShortTakeProfit)
		return &domain.Signal{
			Action:     domain.ActionSell,
			EntryPrice: lastClose,
			StopLoss:   lastClose * (1 + slPct),
			TakeProfit: lastClose * (1 - tpPct),
			Confidence: 1 - imbalance,
		}, nil
	}

	atr, err := indicators.ATR(klines, m.cfg.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("ATR: %w", err)
	}
	if atr < m.cfg.MinATR {
		return &domain.Signal{Action: domain.ActionHold, Reason: "low volatility: ATR below threshold"}, nil
	}
	return &domain.Signal{Action: domain.ActionHold, Reason: "no entry conditions met"}, nil
}

// hasVolumeSpike reports whether the last candle's volume exceeds the spike
// ratio applied to the mean volume of the preceding lookback candles.
func (m *Momentum) hasVolumeSpike(klines []*domain.Kline) bool {
	volumes := domain.Volumes(klines)
	n := len(volumes)
	lookback := m.cfg.VolumeLookback
	if n < lookback+1 {
		return false
	}
	var sum float64
	for _, v := range volumes[n-1-lookback : n-1] {
		sum += v
	}
	avg := sum / float64(lookback)
	return volumes[n-1] > avg*m.cfg.VolumeSpikeRatio
}

func (m *Momentum) randRange(r PercentRange) float64 {
	return r.Min + m.rnd.Float64()*(r.Max-r.Min)
}
