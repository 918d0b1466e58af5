// Package risk converts the account's risk budget into venue-acceptable
// order quantities.
package risk

import (
	"context"
	"fmt"
	"math"

	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/ports"
)

// Config holds configuration for the position sizer.
type Config struct {
	RiskPercent float64 // Percent of wallet balance risked per trade, e.g. 0.5
}

// Sizer computes order quantities from the risk budget and instrument metadata.
type Sizer struct {
	cfg    Config
	logger ports.Logger
}

// NewSizer creates a new position sizer instance.
func NewSizer(cfg Config, logger ports.Logger) (*Sizer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for sizer")
	}
	if cfg.RiskPercent <= 0 || cfg.RiskPercent >= 100 {
		return nil, fmt.Errorf("risk percent must be in (0, 100), got %v", cfg.RiskPercent)
	}
	return &Sizer{cfg: cfg, logger: logger}, nil
}

// ComputeQty converts (balance, entry, stop) into an order quantity:
// riskAmount/riskPerUnit, raised to the instrument minimum, scaled by
// confidence when above 1, and finally quantized to the quantity step.
// The result is never below meta.MinOrderQty and is an exact multiple of
// meta.QtyStep within floating rounding tolerance.
func (s *Sizer) ComputeQty(ctx context.Context, balance, entryPrice, stopLossPrice, confidence float64, meta *domain.InstrumentMeta) (float64, error) {
	if !meta.IsValid() {
		return 0, fmt.Errorf("instrument metadata missing or invalid: %w", ports.ErrDataInsufficient)
	}
	if balance <= 0 {
		return 0, fmt.Errorf("balance must be positive, got %v", balance)
	}

	riskAmount := balance * s.cfg.RiskPercent / 100
	riskPerUnit := math.Abs(entryPrice - stopLossPrice)

	// Division-by-zero guard: a stop at the entry carries no measurable risk
	// per unit, so fall back to the venue minimum.
	if riskPerUnit == 0 {
		s.logger.Warn(ctx, "risk per unit is zero, defaulting to minimum order quantity", map[string]interface{}{
			"entryPrice": entryPrice,
			"minQty":     meta.MinOrderQty,
		})
		return meta.MinOrderQty, nil
	}

	qty := riskAmount / riskPerUnit
	if qty < meta.MinOrderQty {
		s.logger.Warn(ctx, "quantity below venue minimum, raising to minimum", map[string]interface{}{
			"qty":    qty,
			"minQty": meta.MinOrderQty,
		})
		qty = meta.MinOrderQty
	}

	// Confidence only scales size upward.
	if confidence > 1 {
		qty *= confidence
	}

	qty = RoundStep(qty, meta.QtyStep)

	// Rounding down at the boundary can land below the minimum again.
	if qty < meta.MinOrderQty {
		qty = meta.MinOrderQty
	}
	return qty, nil
}
