package market

import "errors"

// InstrumentType distinguishes stock and crypto quotes.
type InstrumentType string

const (
	TypeStock  InstrumentType = "stock"
	TypeCrypto InstrumentType = "crypto"
)

// Window names the time window a change percentage was computed over.
// Stocks compare the last two daily closes; crypto uses the venue's
// rolling 24h statistic. The tag keeps the two semantics apart instead of
// silently mixing them.
type Window string

const (
	WindowDailyClose Window = "daily_close"
	WindowRolling24h Window = "rolling_24h"
)

// Quote is one normalized tick. Transient, produced per fetch cycle.
type Quote struct {
	Symbol    string         `json:"symbol"`
	Price     float64        `json:"price"`
	ChangePct float64        `json:"change_pct"`
	Type      InstrumentType `json:"type"`
	Window    Window         `json:"window"`
}

// ErrInsufficientHistory is returned when a symbol has fewer than two
// daily closes, so no change percentage can be computed.
var ErrInsufficientHistory = errors.New("insufficient price history")
