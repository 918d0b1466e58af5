// Package instrument caches per-symbol venue listing parameters.
package instrument

import (
	"context"
	"fmt"
	"sync"

	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/ports"
)

// Cache is a read-mostly cache of instrument metadata, fetched once per
// symbol and reused for the process lifetime. Listing parameters change
// rarely, so staleness is acceptable; a failed fetch is never cached, so the
// cache can never serve zeroed metadata. Concurrent readers may race on the
// first population; duplicate identical fetches are harmless.
type Cache struct {
	exchange ports.ExchangeClient
	logger   ports.Logger

	mu      sync.RWMutex
	entries map[string]*domain.InstrumentMeta
}

// NewCache creates an instrument metadata cache backed by the exchange client.
func NewCache(exchange ports.ExchangeClient, logger ports.Logger) (*Cache, error) {
	if exchange == nil {
		return nil, fmt.Errorf("exchange client is required for instrument cache")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for instrument cache")
	}
	return &Cache{
		exchange: exchange,
		logger:   logger,
		entries:  make(map[string]*domain.InstrumentMeta),
	}, nil
}

// Get returns the metadata for symbol, fetching it from the venue on the
// first call. On fetch failure nothing is cached and the error is returned.
func (c *Cache) Get(ctx context.Context, symbol string) (*domain.InstrumentMeta, error) {
	c.mu.RLock()
	meta, ok := c.entries[symbol]
	c.mu.RUnlock()
	if ok {
		return meta, nil
	}

	meta, err := c.exchange.GetInstrumentInfo(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching instrument metadata for %s: %w", symbol, err)
	}
	if !meta.IsValid() {
		return nil, fmt.Errorf("instrument metadata for %s has non-positive filters: %w", symbol, ports.ErrDataInsufficient)
	}

	c.mu.Lock()
	c.entries[symbol] = meta
	c.mu.Unlock()

	c.logger.Info(ctx, "instrument metadata cached", map[string]interface{}{
		"symbol":      symbol,
		"tickSize":    meta.TickSize,
		"minOrderQty": meta.MinOrderQty,
		"qtyStep":     meta.QtyStep,
	})
	return meta, nil
}

// Invalidate drops the cached entry for symbol, forcing a refetch on the
// next Get.
func (c *Cache) Invalidate(symbol string) {
	c.mu.Lock()
	delete(c.entries, symbol)
	c.mu.Unlock()
}
