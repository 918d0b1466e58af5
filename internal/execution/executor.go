// Package execution builds, quantizes and submits venue orders.
package execution

import (
	"context"
	"fmt"

	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/ports"
	"bybitScalpBot/internal/risk"
)

// Executor turns validated trade decisions into venue orders. It quantizes
// price fields against the instrument's tick size before submission and
// never retries on its own: order placement is not idempotent.
type Executor struct {
	exchange ports.ExchangeClient
	logger   ports.Logger
	recorder ports.TradeRecorder
}

// NewExecutor creates a new order executor.
func NewExecutor(exchange ports.ExchangeClient, logger ports.Logger, recorder ports.TradeRecorder) (*Executor, error) {
	if exchange == nil || logger == nil || recorder == nil {
		return nil, fmt.Errorf("missing required dependencies for executor")
	}
	return &Executor{exchange: exchange, logger: logger, recorder: recorder}, nil
}

// OpenPosition submits a market entry order with attached stop-loss and
// take-profit, both aligned to the instrument tick size. qty must already be
// quantized by the position sizer.
func (e *Executor) OpenPosition(ctx context.Context, symbol string, sig *domain.Signal, qty float64, meta *domain.InstrumentMeta) (*domain.OrderAck, error) {
	if sig == nil || sig.IsHold() {
		return nil, fmt.Errorf("cannot execute a hold signal: %w", ports.ErrInvalidRequest)
	}
	if !meta.IsValid() {
		return nil, fmt.Errorf("instrument metadata missing or invalid: %w", ports.ErrDataInsufficient)
	}

	req := &domain.OrderRequest{
		Symbol:      symbol,
		Side:        domain.Side(sig.Action),
		Qty:         qty,
		OrderType:   "Market",
		TimeInForce: "IOC",
		StopLoss:    risk.QuantizePrice(sig.StopLoss, meta.TickSize),
		TakeProfit:  risk.QuantizePrice(sig.TakeProfit, meta.TickSize),
		ReduceOnly:  false,
	}

	e.logger.Info(ctx, "submitting entry order", map[string]interface{}{
		"symbol": symbol, "side": req.Side, "qty": req.Qty,
		"stopLoss": req.StopLoss, "takeProfit": req.TakeProfit,
	})

	ack, err := e.exchange.PlaceOrder(ctx, req)
	if err != nil {
		e.recorder.Record("entry order failed", map[string]interface{}{
			"symbol": symbol, "side": string(req.Side), "error": err.Error(),
		})
		return nil, err
	}

	e.recorder.Record("entry order placed", map[string]interface{}{
		"symbol": symbol, "side": string(req.Side), "qty": req.Qty,
		"orderId": ack.OrderID, "stopLoss": req.StopLoss, "takeProfit": req.TakeProfit,
	})
	return ack, nil
}

// ClosePosition submits a reduce-only market order for the full position
// size on the opposite side.
func (e *Executor) ClosePosition(ctx context.Context, pos *domain.Position, reason domain.CloseReason) error {
	if !pos.IsOpen() {
		return fmt.Errorf("no open position to close: %w", ports.ErrPositionNotFound)
	}

	req := &domain.OrderRequest{
		Symbol:      pos.Symbol,
		Side:        pos.Side.Opposite(),
		Qty:         pos.Size,
		OrderType:   "Market",
		TimeInForce: "IOC",
		ReduceOnly:  true,
	}

	e.logger.Info(ctx, "submitting close order", map[string]interface{}{
		"symbol": pos.Symbol, "side": req.Side, "qty": req.Qty, "reason": reason,
	})

	ack, err := e.exchange.PlaceOrder(ctx, req)
	if err != nil {
		e.recorder.Record("close order failed", map[string]interface{}{
			"symbol": pos.Symbol, "reason": string(reason), "error": err.Error(),
		})
		return err
	}

	e.recorder.Record("position closed", map[string]interface{}{
		"symbol": pos.Symbol, "side": string(req.Side), "qty": req.Qty,
		"orderId": ack.OrderID, "reason": string(reason),
	})
	return nil
}

// UpdateStopLoss pushes a new stop-loss to the venue, aligned to the tick size.
func (e *Executor) UpdateStopLoss(ctx context.Context, symbol string, stopLoss float64, meta *domain.InstrumentMeta) error {
	quantized := risk.QuantizePrice(stopLoss, meta.TickSize)
	if err := e.exchange.SetTradingStop(ctx, symbol, quantized); err != nil {
		return fmt.Errorf("updating stop loss for %s: %w", symbol, err)
	}
	e.recorder.Record("stop loss updated", map[string]interface{}{
		"symbol": symbol, "stopLoss": quantized,
	})
	return nil
}
