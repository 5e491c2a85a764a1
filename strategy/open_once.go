package strategy

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtest/broker"
	"github.com/rustyeddy/backtest/market"
)

// OpenOnce opens a single position at the first bar that carries the
// configured instrument, then holds it until end-of-run liquidation. It's
// meant as a wiring test.
type OpenOnce struct {
	Instrument string
	Size       float64

	opened bool
}

func (s *OpenOnce) GenerateOrders(b *broker.Broker, view market.BarView, ts time.Time) error {
	if s.opened {
		return nil
	}
	price, ok := view.Close(s.Instrument)
	if !ok {
		return nil
	}
	if s.Size == 0 {
		return fmt.Errorf("open-once: size must be non-zero")
	}

	if err := b.OpenPosition(s.Instrument, s.Size, price, ts); err != nil {
		return err
	}
	s.opened = true
	return nil
}
