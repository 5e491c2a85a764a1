package broker

import "time"

// Position is an open holding. Size is signed: positive for long, negative
// for short. Positions are owned exclusively by the Broker; at most one open
// position exists per instrument at a time.
type Position struct {
	Instrument string
	Size       float64
	EntryPrice float64
	EntryTime  time.Time

	// Mark is the latest mark-to-market price seen for this instrument.
	// Set to EntryPrice at open until the next bar arrives.
	Mark float64

	// Fees accumulates the entry-side transaction cost plus any borrow fees
	// accrued while short. The exit-side fee is added at close time.
	Fees float64
}

// Long reports whether the position is long.
func (p Position) Long() bool { return p.Size > 0 }

// Short reports whether the position is short.
func (p Position) Short() bool { return p.Size < 0 }

// Value is the signed market value at the current mark (negative for shorts).
func (p Position) Value() float64 { return p.Size * p.Mark }

// ClosedPosition is a realized trade. Created only by ClosePosition or by
// end-of-run liquidation, and immutable once appended to the closed-trade
// ledger.
//
// Realized P&L follows the signed-size convention:
//
//	(SellingPrice - PurchasePrice) * Size
//
// which is negative-on-loss for longs and, with a negative stored Size,
// sign-correct for shorts.
type ClosedPosition struct {
	Instrument    string
	Size          float64
	PurchasePrice float64
	SellingPrice  float64
	EntryTime     time.Time
	ExitTime      time.Time
	Fees          float64
}

// RealizedPL is the realized profit or loss before fees.
func (c ClosedPosition) RealizedPL() float64 {
	return (c.SellingPrice - c.PurchasePrice) * c.Size
}

// NetPL is the realized profit or loss after all fees.
func (c ClosedPosition) NetPL() float64 {
	return c.RealizedPL() - c.Fees
}
