package domain

import "time"

// OrderRequest describes an order ready for submission to the venue.
// Quantity and price fields must already be quantized to the instrument's
// step and tick sizes; the venue rejects unaligned values.
type OrderRequest struct {
	Symbol      string
	Side        Side
	Qty         float64
	OrderType   string // e.g. "Market"
	TimeInForce string // e.g. "IOC"
	StopLoss    float64 // 0 means no stop attached
	TakeProfit  float64 // 0 means no target attached
	ReduceOnly  bool
	OrderLinkID string // Client-generated order ID
}

// OrderAck is the venue's normalized acknowledgement of an accepted order.
type OrderAck struct {
	OrderID     string
	OrderLinkID string
	Symbol      string
	Side        Side
	Qty         float64
	CreatedAt   time.Time
}
