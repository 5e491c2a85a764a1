package strategy

import (
	"time"

	"github.com/rustyeddy/backtest/broker"
	"github.com/rustyeddy/backtest/market"
)

// Noop does nothing. Useful for exercising the accounting loop without
// trades.
type Noop struct{}

func (Noop) GenerateOrders(*broker.Broker, market.BarView, time.Time) error {
	return nil
}
