package indicators

import (
	"math"
	"testing"
	"time"

	"bybitScalpBot/internal/domain"
)

func buildKlines(rows [][3]float64) []*domain.Kline {
	now := time.Now()
	klines := make([]*domain.Kline, len(rows))
	for i, r := range rows {
		klines[i] = &domain.Kline{
			OpenTime: now.Add(time.Duration(i-len(rows)) * time.Minute),
			High:     r[0],
			Low:      r[1],
			Close:    r[2],
		}
	}
	return klines
}

// atrDirect recomputes ATR straight from the Wilder formula as an oracle.
func atrDirect(klines []*domain.Kline, period int) float64 {
	trs := make([]float64, 0, len(klines)-1)
	for i := 1; i < len(klines); i++ {
		h, l, pc := klines[i].High, klines[i].Low, klines[i-1].Close
		trs = append(trs, math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc))))
	}
	var atr float64
	for i := 0; i < period; i++ {
		atr += trs[i]
	}
	atr /= float64(period)
	for i := period; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}

func TestATR(t *testing.T) {
	// Hand-built 16-candle fixture with a gap on candle 9 so that the
	// |high-prevClose| branch of the true range is exercised.
	rows := [][3]float64{
		{101, 99, 100}, {102, 100, 101}, {103, 101, 102}, {103, 100, 101},
		{102, 99, 100}, {101, 98, 99}, {102, 99, 101}, {103, 100, 102},
		{108, 104, 106}, {107, 104, 105}, {106, 103, 104}, {105, 102, 103},
		{104, 101, 102}, {105, 102, 104}, {106, 103, 105}, {107, 104, 106},
	}
	klines := buildKlines(rows)

	got, err := ATR(klines, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := atrDirect(klines, 14)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ATR = %v, want %v (direct formula)", got, want)
	}
	if got < 0 {
		t.Errorf("ATR must be non-negative, got %v", got)
	}
}

func TestATRInsufficientData(t *testing.T) {
	klines := buildKlines([][3]float64{
		{101, 99, 100}, {102, 100, 101}, {103, 101, 102},
	})
	if _, err := ATR(klines, 3); err == nil {
		t.Fatal("expected error for window shorter than period+1")
	}
}

func TestATRNonNegative(t *testing.T) {
	// Flat market: every candle identical, ATR collapses to the range.
	rows := make([][3]float64, 20)
	for i := range rows {
		rows[i] = [3]float64{100.5, 99.5, 100}
	}
	got, err := ATR(buildKlines(rows), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("ATR on constant 1.0-range candles = %v, want 1.0", got)
	}
}
