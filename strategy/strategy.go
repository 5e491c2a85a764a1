// Package strategy defines the decision boundary of a backtest run. The
// engine hands each cross-sectional bar to a Strategy after the broker has
// been marked to market; the strategy's only channel of effect is the order
// methods on the Broker handle it receives.
package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/backtest/broker"
	"github.com/rustyeddy/backtest/market"
)

// Strategy is the minimal interface a backtest strategy must implement.
// GenerateOrders is called once per distinct timestamp, after mark-to-market,
// and may call OpenPosition/ClosePosition on b any number of times with
// immediate effect. A returned error aborts the run.
type Strategy interface {
	GenerateOrders(b *broker.Broker, view market.BarView, ts time.Time) error
}

// Params carries the knobs shared by the built-in strategies.
type Params struct {
	Instrument  string
	Size        float64
	RiskPercent float64
	FastPeriod  int
	SlowPeriod  int
	AllowShort  bool
}

// ByName builds one of the built-in strategies.
func ByName(name string, p Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "open-once":
		return &OpenOnce{Instrument: p.Instrument, Size: p.Size}, nil

	case "sma-cross", "smacross":
		return NewSMACross(SMACrossConfig{
			Instrument:  p.Instrument,
			Size:        p.Size,
			RiskPercent: p.RiskPercent,
			FastPeriod:  p.FastPeriod,
			SlowPeriod:  p.SlowPeriod,
			AllowShort:  p.AllowShort,
		}), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, open-once, sma-cross)", name)
	}
}
