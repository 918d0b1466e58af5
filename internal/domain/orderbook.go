package domain

// PriceLevel is one side entry of an order book snapshot.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBook is a top-N depth snapshot for a symbol.
type OrderBook struct {
	Symbol string
	Bids   []PriceLevel
	Asks   []PriceLevel
}
