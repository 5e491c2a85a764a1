// Package engine drives a backtest: it walks a dataset one cross-sectional
// bar at a time, marking the broker to market before handing the same bar to
// the strategy, and liquidates whatever is still open once the data runs out.
package engine

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtest/broker"
	"github.com/rustyeddy/backtest/market"
	"github.com/rustyeddy/backtest/strategy"
)

// Engine couples one Broker with one Strategy for a single run. It holds
// references to both but owns neither's internal state.
type Engine struct {
	broker   *broker.Broker
	strategy strategy.Strategy
}

// New builds an Engine.
func New(b *broker.Broker, s strategy.Strategy) (*Engine, error) {
	if b == nil {
		return nil, fmt.Errorf("engine: broker is required")
	}
	if s == nil {
		return nil, fmt.Errorf("engine: strategy is required")
	}
	return &Engine{broker: b, strategy: s}, nil
}

// Run executes the simulation over data: for each distinct timestamp, in
// ascending order, the broker is updated first and the strategy is invoked
// second. After the last bar every remaining open position is force-closed.
//
// There are no retries and no partial rollback; the first error from the
// broker or the strategy aborts the run and surfaces verbatim, leaving the
// ledger at the bars processed strictly before the failure. An empty dataset
// completes cleanly with an empty ledger.
func (e *Engine) Run(data *market.Dataset) error {
	err := data.GroupByTimestamp(func(ts time.Time, view market.BarView) error {
		if err := e.broker.Update(view, ts); err != nil {
			return err
		}
		return e.strategy.GenerateOrders(e.broker, view, ts)
	})
	if err != nil {
		return err
	}

	return e.broker.LiquidatePositions()
}
