package models

import "gorm.io/gorm"

// Ticker is the persisted last-known snapshot of one instrument.
// There is at most one row per symbol; the overreaction strategy upserts
// it in place and never deletes it. gorm.Model.UpdatedAt is the snapshot
// timestamp and moves forward on every upsert.
type Ticker struct {
	gorm.Model
	Symbol    string  `gorm:"uniqueIndex" json:"symbol"`
	Name      string  `json:"name,omitempty"`
	LastPrice float64 `json:"last_price"`
	ChangePct float64 `json:"change_pct"`
}
