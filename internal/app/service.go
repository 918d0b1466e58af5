package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"bybitScalpBot/config"
	"bybitScalpBot/internal/execution"
	"bybitScalpBot/internal/instrument"
	"bybitScalpBot/internal/ports"
	"bybitScalpBot/internal/risk"
	"bybitScalpBot/internal/strategy/indicators"
)

// Service orchestrates the trading engine: a fixed-interval scheduler that
// gates on cooldown, evaluates the signal strategy, sizes and executes the
// trade, and spawns a position monitor per filled entry. lastTradeTime is
// written only by the scheduler; monitors never touch it.
type Service struct {
	cfg         *config.Config
	logger      ports.Logger
	exchange    ports.ExchangeClient
	instruments *instrument.Cache
	strategy    ports.SignalStrategy
	sizer       *risk.Sizer
	executor    *execution.Executor
	metrics     *Metrics

	now func() time.Time

	mu            sync.Mutex
	lastTradeTime time.Time

	monitors sync.WaitGroup
}

// NewService creates the application service instance.
func NewService(
	cfg *config.Config,
	logger ports.Logger,
	exchange ports.ExchangeClient,
	instruments *instrument.Cache,
	strat ports.SignalStrategy,
	sizer *risk.Sizer,
	executor *execution.Executor,
	metrics *Metrics,
) (*Service, error) {
	if cfg == nil || logger == nil || exchange == nil || instruments == nil || strat == nil || sizer == nil || executor == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("configuration TickInterval must be positive")
	}
	if cfg.KlineLimit < strat.MinCandles() {
		return nil, fmt.Errorf("configuration KlineLimit %d is below the strategy minimum %d", cfg.KlineLimit, strat.MinCandles())
	}

	return &Service{
		cfg:         cfg,
		logger:      logger,
		exchange:    exchange,
		instruments: instruments,
		strategy:    strat,
		sizer:       sizer,
		executor:    executor,
		metrics:     metrics,
		now:         time.Now,
	}, nil
}

// Start begins the scheduler loop. It blocks until ctx is canceled or a
// shutdown signal arrives, then waits for running position monitors.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "starting trading service", map[string]interface{}{
		"symbol": s.cfg.Symbol, "strategy": s.strategy.Name(), "tickInterval": s.cfg.TickInterval.String(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	// Warm the metadata cache and validate the symbol before trading.
	meta, err := s.instruments.Get(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Error(ctx, err, "failed to fetch instrument metadata", map[string]interface{}{"symbol": s.cfg.Symbol})
		return fmt.Errorf("fetching instrument metadata for %s: %w", s.cfg.Symbol, err)
	}
	s.logger.Info(ctx, "instrument metadata loaded", map[string]interface{}{
		"symbol": s.cfg.Symbol, "tickSize": meta.TickSize,
		"minOrderQty": meta.MinOrderQty, "qtyStep": meta.QtyStep,
	})

	if err := s.exchange.SetLeverage(ctx, s.cfg.Symbol, s.cfg.Leverage); err != nil {
		// Most venues reject a set-leverage call that does not change anything.
		s.logger.Warn(ctx, "failed to set leverage, continuing with current setting", map[string]interface{}{
			"symbol": s.cfg.Symbol, "leverage": s.cfg.Leverage, "error": err.Error(),
		})
	}

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "scheduler stopping, waiting for position monitors")
			s.monitors.Wait()
			s.logger.Info(ctx, "trading service stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scheduler evaluation. Every failure path logs and returns;
// a failed tick never stops the loop.
func (s *Service) Tick(ctx context.Context) {
	if remaining := s.cooldownRemaining(); remaining > 0 {
		s.logger.Debug(ctx, "in cooldown, skipping tick", map[string]interface{}{"remaining": remaining.String()})
		s.skip("cooldown")
		return
	}

	klines, err := s.exchange.GetKlines(ctx, s.cfg.Symbol, s.cfg.Interval, s.cfg.KlineLimit)
	if err != nil {
		s.logger.Error(ctx, err, "failed to fetch candles", map[string]interface{}{"symbol": s.cfg.Symbol})
		s.venueError()
		s.skip("kline_fetch")
		return
	}
	if len(klines) < s.strategy.MinCandles() {
		s.logger.Debug(ctx, "not enough candles for evaluation", map[string]interface{}{
			"have": len(klines), "need": s.strategy.MinCandles(),
		})
		s.skip("data_insufficient")
		return
	}

	book, err := s.exchange.GetOrderBook(ctx, s.cfg.Symbol, s.cfg.OrderBookDepth)
	if err != nil {
		s.logger.Error(ctx, err, "failed to fetch order book", map[string]interface{}{"symbol": s.cfg.Symbol})
		s.venueError()
		s.skip("orderbook_fetch")
		return
	}
	imbalance := indicators.OrderBookImbalance(book.Bids, book.Asks)

	sig, err := s.strategy.Evaluate(ctx, klines, imbalance)
	if err != nil {
		s.logger.Error(ctx, err, "strategy evaluation failed", map[string]interface{}{"strategy": s.strategy.Name()})
		s.skip("strategy_error")
		return
	}
	if sig.IsHold() {
		s.logger.Debug(ctx, "no trade signal", map[string]interface{}{"reason": sig.Reason})
		s.skip("hold")
		return
	}

	pos, err := s.exchange.GetPosition(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Error(ctx, err, "failed to fetch position", map[string]interface{}{"symbol": s.cfg.Symbol})
		s.venueError()
		s.skip("position_fetch")
		return
	}
	if pos.IsOpen() {
		s.logger.Debug(ctx, "position already open, skipping entry", map[string]interface{}{
			"symbol": s.cfg.Symbol, "side": pos.Side, "size": pos.Size,
		})
		s.skip("position_open")
		return
	}

	balance, err := s.exchange.GetWalletBalance(ctx, "USDT")
	if err != nil {
		s.logger.Error(ctx, err, "failed to fetch wallet balance")
		s.venueError()
		s.skip("balance_fetch")
		return
	}
	if balance <= 0 {
		s.logger.Warn(ctx, "non-positive wallet balance, skipping tick", map[string]interface{}{"balance": balance})
		s.skip("no_balance")
		return
	}

	meta, err := s.instruments.Get(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Error(ctx, err, "failed to fetch instrument metadata", map[string]interface{}{"symbol": s.cfg.Symbol})
		s.skip("metadata_fetch")
		return
	}

	qty, err := s.sizer.ComputeQty(ctx, balance, sig.EntryPrice, sig.StopLoss, sig.Confidence, meta)
	if err != nil {
		s.logger.Error(ctx, err, "position sizing failed", map[string]interface{}{"balance": balance})
		s.skip("sizing_error")
		return
	}

	ack, err := s.executor.OpenPosition(ctx, s.cfg.Symbol, sig, qty, meta)
	if err != nil {
		s.logger.Error(ctx, err, "order placement failed", map[string]interface{}{
			"symbol": s.cfg.Symbol, "side": sig.Action, "qty": qty,
		})
		s.venueError()
		s.skip("order_failed")
		return
	}

	s.logger.Info(ctx, "trade entered", map[string]interface{}{
		"symbol": s.cfg.Symbol, "side": sig.Action, "qty": qty,
		"orderId": ack.OrderID, "entryPrice": sig.EntryPrice,
	})
	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}

	monitor := NewMonitor(MonitorConfig{
		Symbol:        s.cfg.Symbol,
		Interval:      s.cfg.Interval,
		KlineLimit:    s.cfg.KlineLimit,
		FastEMAPeriod: s.cfg.FastEMAPeriod,
		SlowEMAPeriod: s.cfg.SlowEMAPeriod,
		PollInterval:  s.cfg.MonitorInterval,
	}, s.exchange, s.executor, s.logger, meta, ack.Side, sig.EntryPrice)

	s.monitors.Add(1)
	go func() {
		defer s.monitors.Done()
		monitor.Run(ctx)
	}()

	s.setLastTradeTime(s.now())
}

func (s *Service) cooldownRemaining() time.Duration {
	s.mu.Lock()
	last := s.lastTradeTime
	s.mu.Unlock()
	if last.IsZero() {
		return 0
	}
	elapsed := s.now().Sub(last)
	if elapsed >= s.cfg.Cooldown {
		return 0
	}
	return s.cfg.Cooldown - elapsed
}

func (s *Service) setLastTradeTime(t time.Time) {
	s.mu.Lock()
	s.lastTradeTime = t
	s.mu.Unlock()
}

func (s *Service) skip(reason string) {
	if s.metrics != nil {
		s.metrics.TicksSkipped.WithLabelValues(reason).Inc()
	}
}

func (s *Service) venueError() {
	if s.metrics != nil {
		s.metrics.VenueErrors.Inc()
	}
}
