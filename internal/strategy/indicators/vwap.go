package indicators

import (
	"fmt"

	"bybitScalpBot/internal/domain"
)

// VWAP computes the Volume-Weighted Average Price over the supplied window
// using the typical price (high+low+close)/3. This is a per-window VWAP,
// recomputed from scratch on every call, not a running session VWAP.
func VWAP(klines []*domain.Kline) (float64, error) {
	if len(klines) == 0 {
		return 0, fmt.Errorf("not enough data to calculate VWAP: empty window")
	}

	var pv, vol float64
	for _, k := range klines {
		typicalPrice := (k.High + k.Low + k.Close) / 3
		pv += typicalPrice * k.Volume
		vol += k.Volume
	}
	if vol == 0 {
		return 0, fmt.Errorf("cannot calculate VWAP: total volume is zero")
	}
	return pv / vol, nil
}
