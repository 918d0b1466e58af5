package risk

import "github.com/shopspring/decimal"

// RoundStep rounds value to the nearest multiple of step using banker's
// rounding (half-even) in fixed-point arithmetic, so repeated quantization
// never accumulates floating-point drift. Rounding policy: half-even, e.g.
// RoundStep(100.237, 0.01) = 100.24 and RoundStep(1.0005, 0.001) = 1.0.
// A non-positive step returns value unchanged.
func RoundStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	v := decimal.NewFromFloat(value)
	st := decimal.NewFromFloat(step)
	steps := v.Div(st).RoundBank(0)
	out, _ := steps.Mul(st).Float64()
	return out
}

// QuantizePrice aligns a price to the instrument's tick size.
func QuantizePrice(price, tickSize float64) float64 {
	return RoundStep(price, tickSize)
}
