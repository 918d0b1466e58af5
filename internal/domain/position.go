package domain

// Position is a read-through snapshot of a position held at the venue.
// The venue owns the authoritative state; snapshots are refreshed on demand
// and never cached across scheduler ticks.
type Position struct {
	Symbol        string
	Side          Side
	Size          float64
	EntryPrice    float64 // Average entry price
	MarkPrice     float64
	Leverage      int
	UnrealizedPnL float64
}

// IsOpen reports whether the snapshot describes live exposure.
func (p *Position) IsOpen() bool {
	return p != nil && p.Size > 0
}
