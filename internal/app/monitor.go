package app

import (
	"context"
	"sync"
	"time"

	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/execution"
	"bybitScalpBot/internal/ports"
	"bybitScalpBot/internal/strategy/indicators"
)

const (
	defaultInitialStopPct  = 0.003 // Initial trailing reference offset from entry
	defaultAdvancePct      = 0.002 // Favorable move required before tightening the stop
	defaultTrailOffsetPct  = 0.002 // Distance of a tightened stop from the current price
	defaultMonitorInterval = 60 * time.Second
)

// MonitorConfig holds the parameters for a position monitor.
type MonitorConfig struct {
	Symbol         string
	Interval       string
	KlineLimit     int
	FastEMAPeriod  int
	SlowEMAPeriod  int
	PollInterval   time.Duration
	InitialStopPct float64
	AdvancePct     float64
	TrailOffsetPct float64
}

// Monitor supervises a single open position until exit. It watches closed
// candles for a trend reversal against the position and advances a trailing
// stop that only ever tightens. The venue owns the position; the monitor
// holds no authoritative trade state beyond its own trailing reference.
type Monitor struct {
	cfg      MonitorConfig
	exchange ports.ExchangeClient
	executor *execution.Executor
	logger   ports.Logger
	meta     *domain.InstrumentMeta

	side       domain.Side
	entryPrice float64

	mu           sync.Mutex
	state        domain.MonitorState
	trailingStop float64
}

// NewMonitor arms a monitor for a freshly opened position. The trailing
// reference starts at entry price offset by InitialStopPct in the protective
// direction for the side.
func NewMonitor(cfg MonitorConfig, exchange ports.ExchangeClient, executor *execution.Executor, logger ports.Logger, meta *domain.InstrumentMeta, side domain.Side, entryPrice float64) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultMonitorInterval
	}
	if cfg.InitialStopPct <= 0 {
		cfg.InitialStopPct = defaultInitialStopPct
	}
	if cfg.AdvancePct <= 0 {
		cfg.AdvancePct = defaultAdvancePct
	}
	if cfg.TrailOffsetPct <= 0 {
		cfg.TrailOffsetPct = defaultTrailOffsetPct
	}
	if cfg.FastEMAPeriod <= 0 {
		cfg.FastEMAPeriod = 9
	}
	if cfg.SlowEMAPeriod <= 0 {
		cfg.SlowEMAPeriod = 21
	}
	if cfg.KlineLimit <= 0 {
		cfg.KlineLimit = 50
	}

	initialStop := entryPrice * (1 - cfg.InitialStopPct)
	if side == domain.Sell {
		initialStop = entryPrice * (1 + cfg.InitialStopPct)
	}

	return &Monitor{
		cfg:          cfg,
		exchange:     exchange,
		executor:     executor,
		logger:       logger,
		meta:         meta,
		side:         side,
		entryPrice:   entryPrice,
		state:        domain.MonitorArmed,
		trailingStop: initialStop,
	}
}

// State returns the monitor's current lifecycle state.
func (m *Monitor) State() domain.MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TrailingStop returns the current trailing stop reference.
func (m *Monitor) TrailingStop() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trailingStop
}

func (m *Monitor) setState(s domain.MonitorState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Run drives the monitor loop until the position is closed or ctx is
// canceled. Errors inside one iteration are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context) {
	m.setState(domain.MonitorWatching)
	m.logger.Info(ctx, "position monitor started", map[string]interface{}{
		"symbol": m.cfg.Symbol, "side": m.side, "entryPrice": m.entryPrice,
		"trailingStop": m.TrailingStop(),
	})

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info(ctx, "position monitor canceled", map[string]interface{}{"symbol": m.cfg.Symbol})
			return
		case <-ticker.C:
			m.Tick(ctx)
			if m.State() == domain.MonitorClosed {
				return
			}
		}
	}
}

// Tick performs one supervision pass: refresh the position snapshot, check
// for a reversal on closed candles, and advance the trailing stop if the
// price has moved favorably.
func (m *Monitor) Tick(ctx context.Context) {
	if m.State() == domain.MonitorClosed {
		return
	}

	pos, err := m.exchange.GetPosition(ctx, m.cfg.Symbol)
	if err != nil {
		m.logger.Error(ctx, err, "monitor failed to fetch position", map[string]interface{}{"symbol": m.cfg.Symbol})
		return
	}
	if !pos.IsOpen() {
		// Stop-loss or take-profit filled at the venue.
		m.logger.Info(ctx, "position no longer open, monitor finished", map[string]interface{}{"symbol": m.cfg.Symbol})
		m.setState(domain.MonitorClosed)
		return
	}

	klines, err := m.exchange.GetKlines(ctx, m.cfg.Symbol, m.cfg.Interval, m.cfg.KlineLimit)
	if err != nil {
		m.logger.Error(ctx, err, "monitor failed to fetch candles", map[string]interface{}{"symbol": m.cfg.Symbol})
		return
	}
	// The last candle is still forming; reversal detection uses closed candles only.
	if len(klines) < 2 {
		return
	}
	closed := klines[:len(klines)-1]
	if len(closed) < m.cfg.SlowEMAPeriod+1 {
		m.logger.Warn(ctx, "monitor has too few closed candles for reversal check", map[string]interface{}{
			"symbol": m.cfg.Symbol, "closed": len(closed),
		})
		return
	}

	closes := domain.Closes(closed)
	fast, err := indicators.EMASeries(closes, m.cfg.FastEMAPeriod)
	if err != nil {
		m.logger.Error(ctx, err, "monitor EMA computation failed", map[string]interface{}{"symbol": m.cfg.Symbol})
		return
	}
	slow, err := indicators.EMASeries(closes, m.cfg.SlowEMAPeriod)
	if err != nil {
		m.logger.Error(ctx, err, "monitor EMA computation failed", map[string]interface{}{"symbol": m.cfg.Symbol})
		return
	}

	if m.reversed(fast, slow) {
		m.logger.Info(ctx, "trend reversal detected, closing position", map[string]interface{}{
			"symbol": m.cfg.Symbol, "side": m.side,
		})
		if err := m.executor.ClosePosition(ctx, pos, domain.CloseReasonTrendReversal); err != nil {
			// Keep watching; the close is retried on the next pass.
			m.logger.Error(ctx, err, "monitor failed to close position", map[string]interface{}{"symbol": m.cfg.Symbol})
			return
		}
		m.setState(domain.MonitorClosed)
		return
	}

	price := pos.MarkPrice
	if price <= 0 {
		price = closed[len(closed)-1].Close
	}
	m.advanceTrailingStop(ctx, price)
}

// reversed reports whether the fast EMA sits on the wrong side of the slow
// EMA for the position direction on the most recent closed candle. The level
// comparison still triggers when the crossing bar itself fell between polls.
func (m *Monitor) reversed(fast, slow []float64) bool {
	if len(fast) == 0 || len(slow) == 0 {
		return false
	}
	curFast := fast[len(fast)-1]
	curSlow := slow[len(slow)-1]

	if m.side == domain.Buy {
		return curFast < curSlow
	}
	return curFast > curSlow
}

// advanceTrailingStop tightens the stop when price has moved favorably past
// the advance threshold. The stop is monotone: an update that would loosen
// it is never issued.
func (m *Monitor) advanceTrailingStop(ctx context.Context, price float64) {
	var candidate float64
	switch m.side {
	case domain.Buy:
		if price < m.entryPrice*(1+m.cfg.AdvancePct) {
			return
		}
		candidate = price * (1 - m.cfg.TrailOffsetPct)
		if candidate <= m.TrailingStop() {
			return
		}
	case domain.Sell:
		if price > m.entryPrice*(1-m.cfg.AdvancePct) {
			return
		}
		candidate = price * (1 + m.cfg.TrailOffsetPct)
		if candidate >= m.TrailingStop() {
			return
		}
	default:
		return
	}

	if err := m.executor.UpdateStopLoss(ctx, m.cfg.Symbol, candidate, m.meta); err != nil {
		m.logger.Error(ctx, err, "monitor failed to advance trailing stop", map[string]interface{}{
			"symbol": m.cfg.Symbol, "stopLoss": candidate,
		})
		return
	}

	m.mu.Lock()
	m.trailingStop = candidate
	m.mu.Unlock()

	m.logger.Info(ctx, "trailing stop advanced", map[string]interface{}{
		"symbol": m.cfg.Symbol, "stopLoss": candidate, "price": price,
	})
}
