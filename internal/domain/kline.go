package domain

import "time"

// Kline represents a single candlestick data point.
// Klines are immutable once produced and ordered ascending by OpenTime.
type Kline struct {
	OpenTime time.Time // Start time of the interval
	Open     float64   // Opening price
	High     float64   // Highest price
	Low      float64   // Lowest price
	Close    float64   // Closing price
	Volume   float64   // Trading volume
}

// Closes extracts the close prices from a kline window, preserving order.
func Closes(klines []*Kline) []float64 {
	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}
	return closes
}

// Volumes extracts the volumes from a kline window, preserving order.
func Volumes(klines []*Kline) []float64 {
	volumes := make([]float64, len(klines))
	for i, k := range klines {
		volumes[i] = k.Volume
	}
	return volumes
}
