package ports

import (
	"context"

	"bybitScalpBot/internal/domain"
)

// ExchangeClient defines the interface for interacting with the derivatives venue.
// This abstraction decouples the core engine from the concrete REST adapter.
// Every call carries a bounded timeout via its context; on timeout the
// operation is treated as failed, never as pending.
type ExchangeClient interface {
	// GetInstrumentInfo retrieves the listing parameters (lot size filter,
	// price filter) for a symbol.
	GetInstrumentInfo(ctx context.Context, symbol string) (*domain.InstrumentMeta, error)

	// GetKlines retrieves up to limit candles for the symbol and interval,
	// sorted ascending by open time.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error)

	// GetWalletBalance retrieves the wallet balance for the quote coin
	// on the unified account.
	GetWalletBalance(ctx context.Context, coin string) (float64, error)

	// GetOrderBook retrieves a top-N depth snapshot for the symbol.
	GetOrderBook(ctx context.Context, symbol string, depth int) (*domain.OrderBook, error)

	// GetPosition retrieves the current position snapshot for the symbol.
	// Returns nil, nil when no position is open.
	GetPosition(ctx context.Context, symbol string) (*domain.Position, error)

	// PlaceOrder submits an order. Not idempotent: callers must not retry
	// blindly, and must re-check position state after a timeout before
	// deciding whether to resubmit.
	PlaceOrder(ctx context.Context, req *domain.OrderRequest) (*domain.OrderAck, error)

	// SetTradingStop updates the stop-loss on the open position for the symbol.
	SetTradingStop(ctx context.Context, symbol string, stopLoss float64) error

	// SetLeverage sets per-symbol leverage. Called once at startup.
	SetLeverage(ctx context.Context, symbol string, leverage int) error
}
