package domain

// Side represents the direction of an order or position (Buy or Sell).
// Values match the venue's expected casing.
type Side string

const (
	Buy  Side = "Buy"
	Sell Side = "Sell"
)

// Opposite returns the closing side for a position opened on s.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// SignalAction represents the decision produced by a signal strategy.
type SignalAction string

const (
	ActionBuy  SignalAction = "Buy"
	ActionSell SignalAction = "Sell"
	ActionHold SignalAction = "Hold"
)

// MonitorState represents the lifecycle of a position monitor.
type MonitorState string

const (
	MonitorArmed    MonitorState = "armed"
	MonitorWatching MonitorState = "watching"
	MonitorClosed   MonitorState = "closed"
)

// CloseReason indicates why an open position was exited.
type CloseReason string

const (
	CloseReasonTrendReversal CloseReason = "TREND_REVERSAL"
	CloseReasonManual        CloseReason = "MANUAL"
	CloseReasonShutdown      CloseReason = "SHUTDOWN"
)
