package ports

import "time"

// TradeLogEntry is one event recorded by the engine for operators.
type TradeLogEntry struct {
	Time    time.Time              `json:"time"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// TradeRecorder is the append-only trade-log sink consumed by the engine.
// It has no feedback into strategy state.
type TradeRecorder interface {
	// Record appends an event to the log.
	Record(msg string, fields map[string]interface{})
	// Entries returns a snapshot of the retained events, oldest first.
	Entries() []TradeLogEntry
}
