// Package risk provides position sizing and exposure checks for strategies.
package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/backtest/broker"
)

// FractionOfEquity sizes a position so its notional value is the given
// fraction of current total equity. The size is truncated to whole units;
// it returns 0 when the trade cannot be sized (non-positive price, equity
// or fraction).
func FractionOfEquity(equity, fraction, price float64) float64 {
	if equity <= 0 || fraction <= 0 || price <= 0 {
		return 0
	}
	return math.Floor(equity * fraction / price)
}

// ExposurePct is the notional value of a trade relative to equity.
func ExposurePct(size, price, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return math.Abs(size) * price / equity
}

// Policy caps exposure before a strategy opens a position. Zero-valued
// limits are not enforced.
type Policy struct {
	MaxOpenPositions int     // e.g. 3
	MaxPositionPct   float64 // notional per position as a fraction of equity, e.g. 0.25
}

// Allow reports whether opening size units at price fits within the policy,
// given the broker's current state.
func (p Policy) Allow(b *broker.Broker, size, price float64) error {
	if p.MaxOpenPositions > 0 && b.OpenPositions() >= p.MaxOpenPositions {
		return fmt.Errorf("risk: %d positions already open (max %d)", b.OpenPositions(), p.MaxOpenPositions)
	}
	if p.MaxPositionPct > 0 {
		equity := b.Equity()
		if pct := ExposurePct(size, price, equity); pct > p.MaxPositionPct {
			return fmt.Errorf("risk: position exposure %.2f%% exceeds limit %.2f%%", pct*100, p.MaxPositionPct*100)
		}
	}
	return nil
}
