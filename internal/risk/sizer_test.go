package risk

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bybitScalpBot/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func testMeta() *domain.InstrumentMeta {
	return &domain.InstrumentMeta{TickSize: 0.01, MinOrderQty: 0.01, QtyStep: 0.01}
}

func newTestSizer(t *testing.T, riskPercent float64) *Sizer {
	t.Helper()
	s, err := NewSizer(Config{RiskPercent: riskPercent}, nopLogger{})
	require.NoError(t, err)
	return s
}

func TestRoundStep(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		step  float64
		want  float64
	}{
		{"rounds up past midpoint", 100.237, 0.01, 100.24},
		{"half-even at midpoint", 1.0005, 0.001, 1.0},
		{"already aligned", 2.5, 0.5, 2.5},
		{"integer step", 103, 5, 105},
		{"non-positive step passes through", 1.2345, 0, 1.2345},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RoundStep(tt.value, tt.step), 1e-12)
		})
	}
}

func TestComputeQty(t *testing.T) {
	ctx := context.Background()
	s := newTestSizer(t, 0.5)

	qty, err := s.ComputeQty(ctx, 10000, 2000, 1990, 1, testMeta())
	require.NoError(t, err)
	// riskAmount = 50, riskPerUnit = 10
	assert.InDelta(t, 5.0, qty, 1e-9)
}

func TestComputeQtyZeroRiskPerUnitFallsBackToMin(t *testing.T) {
	ctx := context.Background()
	s := newTestSizer(t, 0.5)

	qty, err := s.ComputeQty(ctx, 10000, 2000, 2000, 1.5, testMeta())
	require.NoError(t, err)
	assert.Equal(t, testMeta().MinOrderQty, qty)
}

func TestComputeQtyNeverBelowMinimum(t *testing.T) {
	ctx := context.Background()
	s := newTestSizer(t, 0.5)

	// Tiny balance against a wide stop produces a dust quantity.
	qty, err := s.ComputeQty(ctx, 1, 2000, 1900, 1, testMeta())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, qty, testMeta().MinOrderQty)
}

func TestComputeQtyConfidenceScalesUpwardOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestSizer(t, 0.5)
	meta := testMeta()

	base, err := s.ComputeQty(ctx, 10000, 2000, 1990, 1, meta)
	require.NoError(t, err)

	boosted, err := s.ComputeQty(ctx, 10000, 2000, 1990, 1.2, meta)
	require.NoError(t, err)
	assert.InDelta(t, base*1.2, boosted, 1e-9)

	// Confidence below 1 must not shrink the position.
	damped, err := s.ComputeQty(ctx, 10000, 2000, 1990, 0.8, meta)
	require.NoError(t, err)
	assert.InDelta(t, base, damped, 1e-9)
}

func TestComputeQtyResultAlignedToStep(t *testing.T) {
	ctx := context.Background()
	s := newTestSizer(t, 0.7)
	meta := &domain.InstrumentMeta{TickSize: 0.01, MinOrderQty: 0.1, QtyStep: 0.1}

	balances := []float64{137.5, 999.99, 12345.67, 3.21}
	for _, balance := range balances {
		qty, err := s.ComputeQty(ctx, balance, 1834.56, 1821.33, 1.13, meta)
		require.NoError(t, err)
		require.GreaterOrEqual(t, qty, meta.MinOrderQty)

		steps := qty / meta.QtyStep
		assert.InDelta(t, math.Round(steps), steps, 1e-6, "qty %v not aligned to step %v", qty, meta.QtyStep)
	}
}

func TestComputeQtyInvalidInputs(t *testing.T) {
	ctx := context.Background()
	s := newTestSizer(t, 0.5)

	_, err := s.ComputeQty(ctx, 0, 2000, 1990, 1, testMeta())
	assert.Error(t, err)

	_, err = s.ComputeQty(ctx, 1000, 2000, 1990, 1, &domain.InstrumentMeta{})
	assert.Error(t, err)
}

func TestNewSizerValidation(t *testing.T) {
	_, err := NewSizer(Config{RiskPercent: 0}, nopLogger{})
	assert.Error(t, err)
	_, err = NewSizer(Config{RiskPercent: 0.5}, nil)
	assert.Error(t, err)
}
