package indicators

import (
	"math"
	"testing"

	"bybitScalpBot/internal/domain"
)

func TestVWAP(t *testing.T) {
	klines := []*domain.Kline{
		{High: 102, Low: 98, Close: 100, Volume: 10}, // typical 100
		{High: 112, Low: 108, Close: 110, Volume: 30}, // typical 110
	}
	got, err := VWAP(klines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (100*10 + 110*30) / 40
	want := 107.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("VWAP = %v, want %v", got, want)
	}
}

func TestVWAPZeroVolume(t *testing.T) {
	klines := []*domain.Kline{
		{High: 102, Low: 98, Close: 100, Volume: 0},
		{High: 103, Low: 99, Close: 101, Volume: 0},
	}
	if _, err := VWAP(klines); err == nil {
		t.Fatal("expected error for zero total volume")
	}
}

func TestVWAPEmptyWindow(t *testing.T) {
	if _, err := VWAP(nil); err == nil {
		t.Fatal("expected error for empty window")
	}
}

func TestOrderBookImbalance(t *testing.T) {
	tests := []struct {
		name string
		bids []domain.PriceLevel
		asks []domain.PriceLevel
		want float64
	}{
		{
			name: "buy pressure",
			bids: []domain.PriceLevel{{Price: 100, Size: 30}, {Price: 99, Size: 30}},
			asks: []domain.PriceLevel{{Price: 101, Size: 20}},
			want: 0.25, // (60-20)/80
		},
		{
			name: "sell pressure",
			bids: []domain.PriceLevel{{Price: 100, Size: 10}},
			asks: []domain.PriceLevel{{Price: 101, Size: 30}},
			want: -0.5,
		},
		{
			name: "empty book defaults to zero",
			want: 0,
		},
		{
			name: "one-sided book clamps at 1",
			bids: []domain.PriceLevel{{Price: 100, Size: 5}},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderBookImbalance(tt.bids, tt.asks)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("OrderBookImbalance = %v, want %v", got, tt.want)
			}
		})
	}
}
