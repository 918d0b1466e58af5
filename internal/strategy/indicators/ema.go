// Package indicators provides the technical indicator calculations used by
// the signal strategies. All functions are pure and deterministic for a given
// input window; they never fetch data themselves.
package indicators

import "fmt"

// EMA computes the Exponential Moving Average of values for the given period.
// The seed is the simple average of the first period values, then the
// standard recurrence e = v*k + e*(1-k) with k = 2/(period+1) is applied.
func EMA(values []float64, period int) (float64, error) {
	series, err := EMASeries(values, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// EMASeries returns the full smoothed sequence for the given period, one
// value per input point from index period-1 onward. Used when both the
// current and the previous EMA value are needed for crossover detection.
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("EMA period must be positive, got %d", period)
	}
	if len(values) < period {
		return nil, fmt.Errorf("not enough data (%d) to calculate EMA for period %d", len(values), period)
	}

	k := 2.0 / float64(period+1)

	// Seed with the simple average of the first period values.
	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	seed /= float64(period)

	series := make([]float64, 0, len(values)-period+1)
	series = append(series, seed)

	e := seed
	for i := period; i < len(values); i++ {
		e = values[i]*k + e*(1-k)
		series = append(series, e)
	}
	return series, nil
}
