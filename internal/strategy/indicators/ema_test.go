package indicators

import (
	"math"
	"testing"
)

func TestEMA(t *testing.T) {
	tests := []struct {
		name          string
		values        []float64
		period        int
		expectedValue float64
		expectError   bool
	}{
		{
			name:          "constant series returns the constant",
			values:        []float64{42, 42, 42, 42, 42, 42, 42, 42},
			period:        3,
			expectedValue: 42,
			expectError:   false,
		},
		{
			name:   "seed equals simple average when window length equals period",
			values: []float64{100, 102, 104},
			period: 3,
			// (100 + 102 + 104) / 3
			expectedValue: 102,
			expectError:   false,
		},
		{
			name:   "recurrence applies k = 2/(period+1)",
			values: []float64{100, 102, 104, 110},
			period: 3,
			// seed = 102; e = 110*0.5 + 102*0.5
			expectedValue: 106,
			expectError:   false,
		},
		{
			name:        "insufficient data",
			values:      []float64{100, 102},
			period:      3,
			expectError: true,
		},
		{
			name:        "non-positive period",
			values:      []float64{100, 102, 104},
			period:      0,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EMA(tt.values, tt.period)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got value %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expectedValue) > 1e-9 {
				t.Errorf("EMA = %v, want %v", got, tt.expectedValue)
			}
		})
	}
}

func TestEMASeries(t *testing.T) {
	values := []float64{100, 102, 104, 110, 108}
	series, err := EMASeries(values, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}
	// seed 102, then 106, then 108*0.5 + 106*0.5 = 107
	want := []float64{102, 106, 107}
	for i := range want {
		if math.Abs(series[i]-want[i]) > 1e-9 {
			t.Errorf("series[%d] = %v, want %v", i, series[i], want[i])
		}
	}

	// The last series value must agree with the scalar EMA.
	last, err := EMA(values, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(series[len(series)-1]-last) > 1e-9 {
		t.Errorf("series tail %v disagrees with EMA %v", series[len(series)-1], last)
	}
}

func TestEMAConstantSeriesAllPoints(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 7.5
	}
	series, err := EMASeries(values, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range series {
		if math.Abs(v-7.5) > 1e-9 {
			t.Fatalf("series[%d] = %v, want 7.5", i, v)
		}
	}
}
