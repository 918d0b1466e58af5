package domain

// InstrumentMeta holds the venue's listing parameters for a symbol.
// All three values are strictly positive for a valid instrument; the
// venue rejects orders whose quantity or prices are not aligned to them.
type InstrumentMeta struct {
	TickSize    float64 // Minimum price increment
	MinOrderQty float64 // Minimum order quantity
	QtyStep     float64 // Minimum quantity increment
}

// IsValid reports whether all listing parameters are usable.
func (m *InstrumentMeta) IsValid() bool {
	return m != nil && m.TickSize > 0 && m.MinOrderQty > 0 && m.QtyStep > 0
}
