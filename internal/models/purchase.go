package models

import "time"

// PurchaseRequest asks for a quantity of a named product.
type PurchaseRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// PurchaseLine records what was actually bought for one request.
type PurchaseLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"` // May be less than requested when stock ran short
	Cost     float64 `json:"cost"`
}

// Receipt is the outcome of a purchase over several requests.
type Receipt struct {
	ID        string         `json:"id"`
	Total     float64        `json:"total"`
	Lines     []PurchaseLine `json:"lines"`
	CreatedAt time.Time      `json:"created_at"`
}
