package broker

import "time"

// PositionDetail is the per-instrument slice of an AccountSnapshot.
type PositionDetail struct {
	Size  float64
	Price float64
	Value float64 // signed: Size * Price
}

// AccountSnapshot is one row of the account ledger: the account state after
// marking to market at a single timestamp. Snapshots are appended exactly
// once per distinct timestamp and never mutated afterwards, with one
// exception: end-of-run liquidation revises the final snapshot's position
// values in place rather than appending a new row.
//
// Invariant: TotalValue == Cash + LongPositionValue - ShortPositionValue,
// within floating tolerance.
type AccountSnapshot struct {
	Time               time.Time
	Cash               float64
	LongPositionValue  float64
	ShortPositionValue float64
	TotalValue         float64
	Positions          map[string]PositionDetail

	// Benchmark carries the reference value when a benchmark mode is
	// configured, zero otherwise.
	Benchmark float64
}
