package models

import (
	"time"

	"gorm.io/gorm"
)

// Trade side and status values.
const (
	SideBuy  = "buy"
	SideSell = "sell"

	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Trade represents a simulated (paper) position.
// Fees hold the full round-trip cost and are charged once at entry.
type Trade struct {
	gorm.Model
	Symbol      string     `json:"symbol"`
	Quantity    float64    `json:"quantity"`
	EntryPrice  float64    `json:"entry_price"`
	EntryTime   time.Time  `json:"entry_time"`
	Side        string     `json:"side"` // "buy" or "sell"
	Fees        float64    `json:"fees"`
	Status      string     `json:"status"` // "open" or "closed"
	ExitPrice   float64    `json:"exit_price,omitempty"`
	ExitTime    *time.Time `json:"exit_time,omitempty"`
	RealizedPnL float64    `json:"realized_pnl,omitempty"`
}
