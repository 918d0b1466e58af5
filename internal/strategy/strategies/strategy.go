// Package strategies contains the swappable signal strategy implementations.
// Exactly one strategy is active per symbol/session, selected by configuration.
package strategies

import (
	"fmt"
	"strings"

	"bybitScalpBot/internal/ports"
)

// Config selects and parameterizes the active strategy.
type Config struct {
	Name        string // "momentum" (default) or "macrossover"
	Momentum    MomentumConfig
	MACrossover MACrossoverConfig
}

// New creates the configured signal strategy.
func New(cfg Config, logger ports.Logger) (ports.SignalStrategy, error) {
	switch strings.ToLower(cfg.Name) {
	case "", "momentum":
		return NewMomentum(cfg.Momentum, logger)
	case "macrossover", "ma_crossover":
		return NewMACrossover(cfg.MACrossover, logger)
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", cfg.Name, ports.ErrConfigurationError)
	}
}
