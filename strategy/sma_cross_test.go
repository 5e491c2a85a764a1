package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtest/broker"
	"github.com/rustyeddy/backtest/market"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func feed(t *testing.T, b *broker.Broker, s Strategy, instrument string, prices []float64) {
	t.Helper()
	for i, price := range prices {
		ts := t0.AddDate(0, 0, i)
		view := market.NewBarView(market.Bar{Time: ts, Instrument: instrument, Close: price})
		require.NoError(t, b.Update(view, ts))
		require.NoError(t, s.GenerateOrders(b, view, ts))
	}
}

func TestSMACrossOpensLongOnUpCross(t *testing.T) {
	t.Parallel()

	b, err := broker.New(broker.Config{StartCapital: 100000})
	require.NoError(t, err)

	s := NewSMACross(SMACrossConfig{
		Instrument: "AAPL",
		Size:       10,
		FastPeriod: 2,
		SlowPeriod: 3,
	})

	// downtrend through warmup, then a sharp rally crossing fast above slow
	feed(t, b, s, "AAPL", []float64{10, 9, 8, 14})

	pos, ok := b.Position("AAPL")
	require.True(t, ok)
	assert.True(t, pos.Long())
	assert.InDelta(t, 10, pos.Size, 1e-9)
	assert.InDelta(t, 14, pos.EntryPrice, 1e-9, "entry fills at the crossing bar's close")
}

func TestSMACrossClosesLongOnDownCross(t *testing.T) {
	t.Parallel()

	b, err := broker.New(broker.Config{StartCapital: 100000, LongOnly: true})
	require.NoError(t, err)

	s := NewSMACross(SMACrossConfig{
		Instrument: "AAPL",
		Size:       10,
		FastPeriod: 2,
		SlowPeriod: 3,
	})

	// rally opens a long, collapse closes it; long-only means no short reversal
	feed(t, b, s, "AAPL", []float64{10, 9, 8, 14, 20, 5, 1})

	_, ok := b.Position("AAPL")
	assert.False(t, ok)
	require.NotEmpty(t, b.ClosedPositions())
	assert.InDelta(t, 14, b.ClosedPositions()[0].PurchasePrice, 1e-9)
}

func TestSMACrossReversesToShort(t *testing.T) {
	t.Parallel()

	b, err := broker.New(broker.Config{StartCapital: 100000})
	require.NoError(t, err)

	s := NewSMACross(SMACrossConfig{
		Instrument: "AAPL",
		Size:       10,
		FastPeriod: 2,
		SlowPeriod: 3,
		AllowShort: true,
	})

	feed(t, b, s, "AAPL", []float64{10, 9, 8, 14, 20, 5, 1})

	pos, ok := b.Position("AAPL")
	require.True(t, ok)
	assert.True(t, pos.Short())
	assert.InDelta(t, -10, pos.Size, 1e-9)
}

func TestSMACrossSizesByEquityFraction(t *testing.T) {
	t.Parallel()

	b, err := broker.New(broker.Config{StartCapital: 100000})
	require.NoError(t, err)

	s := NewSMACross(SMACrossConfig{
		Instrument:  "AAPL",
		RiskPercent: 0.1,
		FastPeriod:  2,
		SlowPeriod:  3,
	})

	feed(t, b, s, "AAPL", []float64{10, 9, 8, 14})

	// 10% of 100000 equity at a price of 14, whole units
	pos, ok := b.Position("AAPL")
	require.True(t, ok)
	assert.InDelta(t, 714, pos.Size, 1e-9)
}

func TestSMACrossSkipsEntryWhenSizeFloorsToZero(t *testing.T) {
	t.Parallel()

	// 1% of 100 equity at a price of 14 floors to zero units; the cross
	// must be skipped, not submitted as a zero-size order
	b, err := broker.New(broker.Config{StartCapital: 100})
	require.NoError(t, err)

	s := NewSMACross(SMACrossConfig{
		Instrument:  "AAPL",
		RiskPercent: 0.01,
		FastPeriod:  2,
		SlowPeriod:  3,
	})

	feed(t, b, s, "AAPL", []float64{10, 9, 8, 14})
	assert.Zero(t, b.OpenPositions())
}

func TestSMACrossIgnoresOtherInstruments(t *testing.T) {
	t.Parallel()

	b, err := broker.New(broker.Config{StartCapital: 100000})
	require.NoError(t, err)

	s := NewSMACross(SMACrossConfig{Instrument: "AAPL", Size: 10, FastPeriod: 2, SlowPeriod: 3})

	feed(t, b, s, "MSFT", []float64{10, 9, 8, 14, 20})
	assert.Zero(t, b.OpenPositions())
}

func TestOpenOnce(t *testing.T) {
	t.Parallel()

	b, err := broker.New(broker.Config{StartCapital: 100000})
	require.NoError(t, err)

	s := &OpenOnce{Instrument: "AAPL", Size: 5}
	feed(t, b, s, "AAPL", []float64{100, 101, 102})

	// opened at the first bar, never again
	pos, ok := b.Position("AAPL")
	require.True(t, ok)
	assert.InDelta(t, 100, pos.EntryPrice, 1e-9)
	assert.Equal(t, 1, b.OpenPositions())
}

func TestOpenOnceRequiresSize(t *testing.T) {
	t.Parallel()

	b, err := broker.New(broker.Config{StartCapital: 100000})
	require.NoError(t, err)

	s := &OpenOnce{Instrument: "AAPL"}
	view := market.NewBarView(market.Bar{Time: t0, Instrument: "AAPL", Close: 100})
	require.NoError(t, b.Update(view, t0))
	assert.Error(t, s.GenerateOrders(b, view, t0))
}

func TestByName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"noop", false},
		{"none", false},
		{"open-once", false},
		{"sma-cross", false},
		{"SMACross", false},
		{"martingale", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := ByName(tt.name, Params{Instrument: "AAPL", Size: 1, FastPeriod: 2, SlowPeriod: 3})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}
