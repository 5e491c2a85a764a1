package strategy

import (
	"time"

	"github.com/rustyeddy/backtest/broker"
	"github.com/rustyeddy/backtest/indicators"
	"github.com/rustyeddy/backtest/market"
	"github.com/rustyeddy/backtest/risk"
)

// SMACross trades a single instrument on a fast/slow simple moving average
// crossover of bar closes:
//   - fast crossing above slow opens a long (closing a short first if one is
//     on and shorts are allowed)
//   - fast crossing below slow closes the long and, when AllowShort is set,
//     opens a short
//
// Entries and exits fill at the bar close that produced the cross.
type SMACross struct {
	cfg SMACrossConfig

	fast *indicators.SimpleMA
	slow *indicators.SimpleMA

	lastDiff     float64
	haveLastDiff bool
}

type SMACrossConfig struct {
	Instrument  string
	Size        float64 // absolute position size per entry; 0 with RiskPercent set sizes by equity
	RiskPercent float64 // equity fraction per entry when Size is 0, e.g. 0.1
	FastPeriod  int     // e.g. 10
	SlowPeriod  int     // e.g. 30
	AllowShort  bool
}

func SMACrossDefaults() SMACrossConfig {
	return SMACrossConfig{
		Size:       1,
		FastPeriod: 10,
		SlowPeriod: 30,
	}
}

func NewSMACross(cfg SMACrossConfig) *SMACross {
	if cfg.Size == 0 && cfg.RiskPercent == 0 {
		cfg.Size = 1
	}
	if cfg.FastPeriod <= 0 {
		cfg.FastPeriod = 10
	}
	if cfg.SlowPeriod <= cfg.FastPeriod {
		cfg.SlowPeriod = 3 * cfg.FastPeriod
	}
	return &SMACross{
		cfg:  cfg,
		fast: indicators.NewMA(cfg.FastPeriod),
		slow: indicators.NewMA(cfg.SlowPeriod),
	}
}

func (s *SMACross) GenerateOrders(b *broker.Broker, view market.BarView, ts time.Time) error {
	price, ok := view.Close(s.cfg.Instrument)
	if !ok {
		return nil
	}

	s.fast.Update(price)
	s.slow.Update(price)
	if !s.fast.Ready() || !s.slow.Ready() {
		return nil
	}

	diff := s.fast.Value() - s.slow.Value()
	defer func() {
		s.lastDiff = diff
		s.haveLastDiff = true
	}()

	if !s.haveLastDiff {
		return nil
	}

	crossedUp := s.lastDiff <= 0 && diff > 0
	crossedDown := s.lastDiff >= 0 && diff < 0
	if !crossedUp && !crossedDown {
		return nil
	}

	pos, held := b.Position(s.cfg.Instrument)

	if crossedUp {
		if held && pos.Short() {
			if err := b.ClosePosition(s.cfg.Instrument, price, ts); err != nil {
				return err
			}
			held = false
		}
		if !held {
			size := s.size(b, price)
			if size == 0 {
				return nil // equity too small for a single unit
			}
			return b.OpenPosition(s.cfg.Instrument, size, price, ts)
		}
		return nil
	}

	// crossedDown
	if held && pos.Long() {
		if err := b.ClosePosition(s.cfg.Instrument, price, ts); err != nil {
			return err
		}
		held = false
	}
	if !held && s.cfg.AllowShort {
		size := s.size(b, price)
		if size == 0 {
			return nil
		}
		return b.OpenPosition(s.cfg.Instrument, -size, price, ts)
	}
	return nil
}

func (s *SMACross) size(b *broker.Broker, price float64) float64 {
	if s.cfg.Size != 0 {
		return s.cfg.Size
	}
	return risk.FractionOfEquity(b.Equity(), s.cfg.RiskPercent, price)
}
