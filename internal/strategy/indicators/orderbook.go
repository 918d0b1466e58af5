package indicators

import "bybitScalpBot/internal/domain"

// OrderBookImbalance computes the normalized bid/ask volume skew
// (bidVolume-askVolume)/(bidVolume+askVolume), clamped to [-1, 1].
// An empty book on both sides yields 0.
func OrderBookImbalance(bids, asks []domain.PriceLevel) float64 {
	var bidVol, askVol float64
	for _, lvl := range bids {
		bidVol += lvl.Size
	}
	for _, lvl := range asks {
		askVol += lvl.Size
	}

	total := bidVol + askVol
	if total == 0 {
		return 0
	}
	return clamp((bidVol-askVol)/total, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
