package market

import (
	"fmt"
	"time"
)

// Bar represents one OHLCV slice of market data for a single instrument.
// Close is the price used for marking positions to market.
type Bar struct {
	Time       time.Time
	Instrument string
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
}

// BarView is the cross-section of one timestamp: every instrument's bar for
// that bar interval, in input row order.
type BarView struct {
	bars  []Bar
	index map[string]int
}

func newBarView() BarView {
	return BarView{index: make(map[string]int)}
}

// NewBarView builds a cross-section directly from rows, preserving their
// order. The rows are assumed to share a timestamp.
func NewBarView(bars ...Bar) BarView {
	v := newBarView()
	for _, b := range bars {
		v.add(b)
	}
	return v
}

func (v *BarView) add(b Bar) {
	if _, ok := v.index[b.Instrument]; ok {
		// Last row wins for duplicated instruments within a timestamp.
		v.bars[v.index[b.Instrument]] = b
		return
	}
	v.index[b.Instrument] = len(v.bars)
	v.bars = append(v.bars, b)
}

// Get returns the bar for instrument, if present in this cross-section.
func (v BarView) Get(instrument string) (Bar, bool) {
	i, ok := v.index[instrument]
	if !ok {
		return Bar{}, false
	}
	return v.bars[i], true
}

// Close returns the close price for instrument, if present.
func (v BarView) Close(instrument string) (float64, bool) {
	b, ok := v.Get(instrument)
	return b.Close, ok
}

// Instruments returns the instrument identifiers in input row order.
func (v BarView) Instruments() []string {
	out := make([]string, len(v.bars))
	for i, b := range v.bars {
		out[i] = b.Instrument
	}
	return out
}

// Bars returns the underlying rows in input order.
func (v BarView) Bars() []Bar { return v.bars }

// Len reports how many instruments this cross-section carries.
func (v BarView) Len() int { return len(v.bars) }

// Dataset is an ordered sequence of bar rows sorted by ascending timestamp.
// Rows sharing a timestamp form a single cross-sectional bar.
type Dataset struct {
	bars []Bar
}

// NewDataset validates ascending timestamp order and wraps the rows.
// Equal timestamps are allowed (multiple instruments per bar); a decreasing
// timestamp is a hard error.
func NewDataset(bars []Bar) (*Dataset, error) {
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Before(bars[i-1].Time) {
			return nil, fmt.Errorf("dataset: row %d time %s precedes row %d time %s",
				i, bars[i].Time.Format(time.RFC3339), i-1, bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return &Dataset{bars: bars}, nil
}

// Len reports the number of rows.
func (d *Dataset) Len() int { return len(d.bars) }

// Bars returns the raw rows.
func (d *Dataset) Bars() []Bar { return d.bars }

// Start returns the first timestamp, or the zero time for an empty dataset.
func (d *Dataset) Start() time.Time {
	if len(d.bars) == 0 {
		return time.Time{}
	}
	return d.bars[0].Time
}

// End returns the last timestamp, or the zero time for an empty dataset.
func (d *Dataset) End() time.Time {
	if len(d.bars) == 0 {
		return time.Time{}
	}
	return d.bars[len(d.bars)-1].Time
}

// GroupByTimestamp walks the dataset one cross-sectional bar at a time,
// calling fn once per distinct timestamp with the rows that share it.
// Iteration stops on the first error from fn, which is returned as-is.
func (d *Dataset) GroupByTimestamp(fn func(ts time.Time, view BarView) error) error {
	i := 0
	for i < len(d.bars) {
		ts := d.bars[i].Time
		view := newBarView()
		for i < len(d.bars) && d.bars[i].Time.Equal(ts) {
			view.add(d.bars[i])
			i++
		}
		if err := fn(ts, view); err != nil {
			return err
		}
	}
	return nil
}
