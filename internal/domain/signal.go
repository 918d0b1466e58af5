package domain

// Signal is the decision produced by one strategy evaluation.
// A signal is created fresh per evaluation and never mutated.
type Signal struct {
	Action     SignalAction // Buy, Sell or Hold
	EntryPrice float64      // Intended entry price (last close)
	StopLoss   float64      // Protective stop price
	TakeProfit float64      // Profit target price
	Confidence float64      // >= 0; values above 1 scale position size upward
	Reason     string       // Human-readable context, mainly for Hold signals
}

// IsHold reports whether the signal carries no trade intent.
func (s *Signal) IsHold() bool {
	return s == nil || s.Action == ActionHold
}
