package broker

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/backtest/market"
)

// Benchmark mode strings accepted by Config.Benchmark.
//
//	""                 no benchmark
//	"constant_growth"  synthetic reference growing at BenchmarkRate per year
//	"track:<instr>"    tracks <instr>'s close price, scaled to start capital
//	                   at its first appearance in the data
const (
	BenchmarkOff            = ""
	BenchmarkConstantGrowth = "constant_growth"
	benchmarkTrackPrefix    = "track:"
)

type benchmark struct {
	mode       string
	instrument string  // track mode only
	rate       float64 // constant_growth: annualized growth
	capital    float64

	value      float64
	basePrice  float64 // track mode: first observed price
	started    bool
	lastUpdate time.Time
}

func parseBenchmark(cfg Config) (*benchmark, error) {
	mode := strings.TrimSpace(cfg.Benchmark)
	switch {
	case mode == BenchmarkOff:
		return nil, nil

	case mode == BenchmarkConstantGrowth:
		return &benchmark{
			mode:    BenchmarkConstantGrowth,
			rate:    cfg.BenchmarkRate,
			capital: cfg.StartCapital,
		}, nil

	case strings.HasPrefix(mode, benchmarkTrackPrefix):
		instr := strings.TrimSpace(strings.TrimPrefix(mode, benchmarkTrackPrefix))
		if instr == "" {
			return nil, fmt.Errorf("%w: benchmark %q names no instrument", ErrConfiguration, cfg.Benchmark)
		}
		return &benchmark{
			mode:       mode,
			instrument: instr,
			capital:    cfg.StartCapital,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown benchmark mode %q", ErrConfiguration, cfg.Benchmark)
	}
}

// advance moves the benchmark to ts and returns its current value.
func (b *benchmark) advance(view market.BarView, ts time.Time) float64 {
	if b.instrument != "" {
		if price, ok := view.Close(b.instrument); ok {
			if !b.started {
				b.basePrice = price
				b.started = true
			}
			b.value = b.capital * price / b.basePrice
		}
		return b.value
	}

	// constant growth
	if !b.started {
		b.value = b.capital
		b.started = true
	} else {
		b.value *= growthFactor(b.rate, ts.Sub(b.lastUpdate))
	}
	b.lastUpdate = ts
	return b.value
}

const yearDuration = 365 * 24 * time.Hour

// growthFactor compounds an annualized rate over dt.
func growthFactor(annualRate float64, dt time.Duration) float64 {
	return math.Pow(1+annualRate, dt.Seconds()/yearDuration.Seconds())
}
