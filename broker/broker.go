// Package broker implements the portfolio state machine at the heart of a
// backtest run: cash, open positions, the per-bar account ledger and the
// realized-trade ledger. A Broker is built for exactly one run and is driven
// single-threaded by the engine; strategies receive the same Broker handle to
// submit orders, never to touch its ledgers directly.
package broker

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/backtest/market"
)

// Config is the constructor-time account configuration, immutable for the
// run.
type Config struct {
	// StartCapital is the opening cash balance. Must be positive.
	StartCapital float64

	// Fees is the transaction cost as a fraction of executed notional,
	// applied on both entry and exit. Must be >= 0.
	Fees float64

	// LongOnly rejects negative-size (short) orders when set.
	LongOnly bool

	// ShortFeeRate is the annualized borrow fee charged on the market value
	// of short positions for the time they are held. Must be >= 0.
	ShortFeeRate float64

	// Benchmark selects an optional reference series recorded alongside the
	// ledger. See the Benchmark* mode constants.
	Benchmark string

	// BenchmarkRate is the annualized growth of the constant_growth
	// benchmark. Ignored in other modes.
	BenchmarkRate float64
}

func (c Config) validate() error {
	if c.StartCapital <= 0 {
		return fmt.Errorf("%w: start capital must be positive, got %v", ErrConfiguration, c.StartCapital)
	}
	if c.Fees < 0 {
		return fmt.Errorf("%w: fees must be >= 0, got %v", ErrConfiguration, c.Fees)
	}
	if c.ShortFeeRate < 0 {
		return fmt.Errorf("%w: short fee rate must be >= 0, got %v", ErrConfiguration, c.ShortFeeRate)
	}
	return nil
}

// Broker holds all mutable account state for one simulation run.
type Broker struct {
	cfg Config

	cash      float64
	positions map[string]*Position
	history   []AccountSnapshot
	closed    []ClosedPosition

	bench    *benchmark
	lastTime time.Time
	hasLast  bool
}

// New builds a Broker for a fresh run. Returns ErrConfiguration for invalid
// parameters.
func New(cfg Config) (*Broker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	bench, err := parseBenchmark(cfg)
	if err != nil {
		return nil, err
	}
	return &Broker{
		cfg:       cfg,
		cash:      cfg.StartCapital,
		positions: make(map[string]*Position),
		bench:     bench,
	}, nil
}

// Config returns the run configuration.
func (b *Broker) Config() Config { return b.cfg }

// Cash returns the current cash balance.
func (b *Broker) Cash() float64 { return b.cash }

// Position returns a copy of the open position for instrument, if any.
func (b *Broker) Position(instrument string) (Position, bool) {
	p, ok := b.positions[instrument]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// OpenPositions returns the number of currently open positions.
func (b *Broker) OpenPositions() int { return len(b.positions) }

// Equity returns the current total account value at the latest marks:
// cash plus long position value minus the absolute value of shorts.
func (b *Broker) Equity() float64 {
	total := b.cash
	for _, p := range b.positions {
		total += p.Value() // signed: negative for shorts
	}
	return total
}

// History exposes the account ledger: one snapshot per processed bar, in
// order. Callers must treat it as read-only.
func (b *Broker) History() []AccountSnapshot { return b.history }

// ClosedPositions exposes the realized-trade ledger in close order. Callers
// must treat it as read-only.
func (b *Broker) ClosedPositions() []ClosedPosition { return b.closed }

// HasBenchmark reports whether a benchmark mode is configured, i.e. whether
// snapshot Benchmark values are meaningful.
func (b *Broker) HasBenchmark() bool { return b.bench != nil }

// Update marks open positions to market with the bar's close prices, accrues
// borrow fees on shorts for the elapsed interval, advances the benchmark and
// appends an AccountSnapshot. It must be called once per distinct timestamp
// in strictly increasing order.
//
// Returns ErrOrderingViolation if ts is not after the previous update, and
// ErrRuin if the resulting total value would be non-positive; on ruin the
// ledger keeps only the bars processed strictly before the failure.
func (b *Broker) Update(view market.BarView, ts time.Time) error {
	if b.hasLast && !ts.After(b.lastTime) {
		return fmt.Errorf("%w: %s does not advance past %s",
			ErrOrderingViolation, ts.Format(time.RFC3339), b.lastTime.Format(time.RFC3339))
	}

	var elapsed time.Duration
	if b.hasLast {
		elapsed = ts.Sub(b.lastTime)
	}

	for _, p := range b.positions {
		// Borrow fees accrue on the held mark for the whole elapsed
		// interval, whether or not the instrument trades this bar.
		if p.Short() && b.cfg.ShortFeeRate > 0 && elapsed > 0 {
			fee := -p.Size * p.Mark * b.cfg.ShortFeeRate * years(elapsed)
			b.cash -= fee
			p.Fees += fee
		}

		if price, ok := view.Close(p.Instrument); ok {
			p.Mark = price
		}
		// absent instrument keeps its previous mark
	}

	var longValue, shortValue float64
	detail := make(map[string]PositionDetail, len(b.positions))
	for instr, p := range b.positions {
		v := p.Value()
		if p.Long() {
			longValue += v
		} else {
			shortValue += -v
		}
		detail[instr] = PositionDetail{Size: p.Size, Price: p.Mark, Value: v}
	}

	total := b.cash + longValue - shortValue
	if total <= 0 {
		return fmt.Errorf("%w: total value %v at %s", ErrRuin, total, ts.Format(time.RFC3339))
	}

	snap := AccountSnapshot{
		Time:               ts,
		Cash:               b.cash,
		LongPositionValue:  longValue,
		ShortPositionValue: shortValue,
		TotalValue:         total,
		Positions:          detail,
	}
	if b.bench != nil {
		snap.Benchmark = b.bench.advance(view, ts)
	}

	b.history = append(b.history, snap)
	b.lastTime = ts
	b.hasLast = true
	return nil
}

// OpenPosition executes an entry order: it debits (long) or credits (short)
// cash for the notional, deducts the entry fee, and registers the open
// position. Sizing changes go through close-then-reopen; a second open for
// the same instrument is rejected.
//
// Returns ErrPolicyViolation for a short order under a long-only account, a
// zero size, or an already-open instrument. Rejected orders leave cash and
// positions untouched.
func (b *Broker) OpenPosition(instrument string, size, price float64, ts time.Time) error {
	if size == 0 {
		return fmt.Errorf("%w: zero size order for %s", ErrPolicyViolation, instrument)
	}
	if b.cfg.LongOnly && size < 0 {
		return fmt.Errorf("%w: short %s under long-only account", ErrPolicyViolation, instrument)
	}
	if _, ok := b.positions[instrument]; ok {
		return fmt.Errorf("%w: %s already has an open position", ErrPolicyViolation, instrument)
	}

	fee := price * math.Abs(size) * b.cfg.Fees
	b.cash -= price*size + fee

	b.positions[instrument] = &Position{
		Instrument: instrument,
		Size:       size,
		EntryPrice: price,
		EntryTime:  ts,
		Mark:       price,
		Fees:       fee,
	}
	return nil
}

// ClosePosition executes an exit order at price: credits (long) or debits
// (short) cash for the notional, deducts the exit fee, appends the realized
// trade to the closed ledger and removes the open position.
//
// Returns ErrNotFound if instrument has no open position.
func (b *Broker) ClosePosition(instrument string, price float64, ts time.Time) error {
	p, ok := b.positions[instrument]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, instrument)
	}

	fee := price * math.Abs(p.Size) * b.cfg.Fees
	b.cash += price*p.Size - fee

	b.closed = append(b.closed, ClosedPosition{
		Instrument:    p.Instrument,
		Size:          p.Size,
		PurchasePrice: p.EntryPrice,
		SellingPrice:  price,
		EntryTime:     p.EntryTime,
		ExitTime:      ts,
		Fees:          p.Fees + fee,
	})
	delete(b.positions, instrument)
	return nil
}

// LiquidatePositions force-closes every remaining open position at its last
// mark price, then reconciles the final snapshot in place: position values
// drop to zero and total value becomes post-liquidation cash. The engine
// calls this exactly once after the last bar; calling it again with nothing
// open is a no-op, so the operation is idempotent.
func (b *Broker) LiquidatePositions() error {
	if len(b.positions) == 0 {
		return nil
	}

	instruments := make([]string, 0, len(b.positions))
	for instr := range b.positions {
		instruments = append(instruments, instr)
	}
	sort.Strings(instruments)

	for _, instr := range instruments {
		p := b.positions[instr]
		if err := b.ClosePosition(instr, p.Mark, b.lastTime); err != nil {
			return err
		}
	}

	// Liquidation revises the just-appended final snapshot rather than
	// appending a new row.
	if n := len(b.history); n > 0 {
		last := &b.history[n-1]
		last.Cash = b.cash
		last.LongPositionValue = 0
		last.ShortPositionValue = 0
		last.TotalValue = b.cash
		last.Positions = map[string]PositionDetail{}
	}
	return nil
}

func years(d time.Duration) float64 {
	return d.Seconds() / yearDuration.Seconds()
}
