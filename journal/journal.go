// Package journal persists the two read-only views a finished run exposes:
// the per-bar account ledger and the realized-trade ledger. Backends exist
// for SQLite and CSV; the in-memory broker never depends on either.
package journal

import (
	"time"

	"github.com/rustyeddy/backtest/broker"
	"github.com/rustyeddy/backtest/internal/id"
)

// SnapshotRecord mirrors one broker.AccountSnapshot row, tagged with the run
// it belongs to.
type SnapshotRecord struct {
	RunID      string
	Time       time.Time
	Cash       float64
	LongValue  float64
	ShortValue float64
	TotalValue float64
	Benchmark  float64
}

// ClosedPositionRecord mirrors one realized trade.
type ClosedPositionRecord struct {
	ID            string
	RunID         string
	Instrument    string
	Size          float64
	PurchasePrice float64
	SellingPrice  float64
	EntryTime     time.Time
	ExitTime      time.Time
	Fees          float64
}

type Journal interface {
	RecordSnapshot(SnapshotRecord) error
	RecordClosedPosition(ClosedPositionRecord) error
	Close() error
}

// Export writes a completed run's ledgers to j under runID and returns the
// number of rows written. Per-instrument position detail stays in memory;
// the persisted columns are the analyzer-boundary contract.
func Export(j Journal, b *broker.Broker, runID string) (snapshots, trades int, err error) {
	for _, s := range b.History() {
		rec := SnapshotRecord{
			RunID:      runID,
			Time:       s.Time,
			Cash:       s.Cash,
			LongValue:  s.LongPositionValue,
			ShortValue: s.ShortPositionValue,
			TotalValue: s.TotalValue,
			Benchmark:  s.Benchmark,
		}
		if err := j.RecordSnapshot(rec); err != nil {
			return snapshots, trades, err
		}
		snapshots++
	}

	for _, c := range b.ClosedPositions() {
		rec := ClosedPositionRecord{
			ID:            id.New(),
			RunID:         runID,
			Instrument:    c.Instrument,
			Size:          c.Size,
			PurchasePrice: c.PurchasePrice,
			SellingPrice:  c.SellingPrice,
			EntryTime:     c.EntryTime,
			ExitTime:      c.ExitTime,
			Fees:          c.Fees,
		}
		if err := j.RecordClosedPosition(rec); err != nil {
			return snapshots, trades, err
		}
		trades++
	}

	return snapshots, trades, nil
}
