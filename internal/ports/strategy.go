package ports

import (
	"context"

	"bybitScalpBot/internal/domain"
)

// SignalStrategy defines the interface for trading signal generation.
// Only one strategy is active per symbol/session, selected by configuration.
type SignalStrategy interface {
	// Name returns the identifier for the strategy implementation.
	Name() string

	// MinCandles returns the minimum window length needed for an evaluation.
	MinCandles() int

	// Evaluate derives a signal from a candle window and the live order-book
	// imbalance. It never fetches data itself. Classification is
	// deterministic for identical inputs; only the stop/target perturbation
	// draws from the strategy's injected randomness source.
	Evaluate(ctx context.Context, klines []*domain.Kline, imbalance float64) (*domain.Signal, error)
}
