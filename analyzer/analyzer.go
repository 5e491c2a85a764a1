// Package analyzer post-processes a finished run's ledgers into performance
// metrics: returns, risk ratios, drawdowns, trade statistics and a linear
// regression over the log-equity curve. It consumes only the broker's two
// read-only views and never mutates them.
package analyzer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rustyeddy/backtest/broker"
)

// Config sizes one bar in wall-clock terms so per-bar returns can be
// annualized.
type Config struct {
	// BarSize is the time interval of each bar, e.g. "1D". Supported units:
	// 'S' seconds, 'T' minutes, 'H' hours, 'D' trading days.
	BarSize string

	// TradingHoursPerDay defaults to 6.5 (US equities session).
	TradingHoursPerDay float64

	// TradingDaysPerYear defaults to 252.
	TradingDaysPerYear int
}

// Analyzer computes performance metrics over a completed run.
type Analyzer struct {
	history []broker.AccountSnapshot
	closed  []broker.ClosedPosition

	hasBenchmark bool

	secondsPerBar         float64
	tradingSecondsPerYear float64
}

// New builds an Analyzer over b's ledgers. Returns broker.ErrConfiguration
// for an unparseable bar size.
func New(b *broker.Broker, cfg Config) (*Analyzer, error) {
	if cfg.BarSize == "" {
		cfg.BarSize = "1D"
	}
	if cfg.TradingHoursPerDay == 0 {
		cfg.TradingHoursPerDay = 6.5
	}
	if cfg.TradingDaysPerYear == 0 {
		cfg.TradingDaysPerYear = 252
	}

	secondsPerBar, err := parseBarSize(cfg.BarSize, cfg.TradingHoursPerDay)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		history:               b.History(),
		closed:                b.ClosedPositions(),
		hasBenchmark:          b.HasBenchmark(),
		secondsPerBar:         secondsPerBar,
		tradingSecondsPerYear: float64(cfg.TradingDaysPerYear) * cfg.TradingHoursPerDay * 3600,
	}, nil
}

func parseBarSize(barSize string, tradingHoursPerDay float64) (float64, error) {
	if len(barSize) < 2 {
		return 0, fmt.Errorf("%w: bar size %q", broker.ErrConfiguration, barSize)
	}

	value, err := strconv.Atoi(barSize[:len(barSize)-1])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: bar size %q", broker.ErrConfiguration, barSize)
	}

	var secondsPerUnit float64
	switch barSize[len(barSize)-1] {
	case 'S':
		secondsPerUnit = 1
	case 'T':
		secondsPerUnit = 60
	case 'H':
		secondsPerUnit = 3600
	case 'D':
		secondsPerUnit = 3600 * tradingHoursPerDay
	default:
		return 0, fmt.Errorf("%w: unsupported bar size unit %q", broker.ErrConfiguration, barSize[len(barSize)-1:])
	}

	return float64(value) * secondsPerUnit, nil
}

// EquityCurveStats summarizes a linear regression over a log-equity curve.
//
// Slope is the average log-return per bar; SlopeTStat = Slope / SlopeSE
// measures how strongly the data supports a non-zero trend (roughly standard
// normal for typical backtests, so |t| > 1.96 is significant at 95%);
// RSquared is the share of variance the trend explains.
type EquityCurveStats struct {
	Slope      float64
	SlopeSE    float64
	SlopeTStat float64
	RSquared   float64
}

// BenchmarkMetrics carries the benchmark-relative subset of Metrics.
type BenchmarkMetrics struct {
	TotalReturn  float64
	AnnualReturn float64
	EquityCurveStats
}

// Metrics is the full set of performance numbers for a run. Benchmark is nil
// when the broker ran without one.
type Metrics struct {
	TotalReturn  float64
	AnnualReturn float64
	SharpeRatio  float64
	MaxDrawdown  float64
	Volatility   float64
	WinRate      float64
	ProfitFactor float64
	EquityCurveStats

	Benchmark *BenchmarkMetrics
}

// PerformanceMetrics computes all metrics over the run's ledger. The history
// needs at least two snapshots to define a return series.
func (a *Analyzer) PerformanceMetrics() (Metrics, error) {
	if len(a.history) < 2 {
		return Metrics{}, fmt.Errorf("analyzer: need at least 2 snapshots, got %d", len(a.history))
	}

	totals := make([]float64, len(a.history))
	for i, s := range a.history {
		totals[i] = s.TotalValue
	}
	returns := pctChange(totals)

	stats, err := a.equityCurveStats(totals)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		TotalReturn:      totals[len(totals)-1]/totals[0] - 1,
		AnnualReturn:     a.annualReturn(totals),
		SharpeRatio:      a.sharpeRatio(returns, 0),
		MaxDrawdown:      maxDrawdown(totals),
		Volatility:       a.annualizedVolatility(returns),
		WinRate:          a.winRate(),
		ProfitFactor:     a.profitFactor(),
		EquityCurveStats: stats,
	}

	if a.hasBenchmark {
		bench := make([]float64, len(a.history))
		for i, s := range a.history {
			bench[i] = s.Benchmark
		}
		bstats, err := a.equityCurveStats(bench)
		if err != nil {
			return Metrics{}, err
		}
		m.Benchmark = &BenchmarkMetrics{
			TotalReturn:      bench[len(bench)-1]/bench[0] - 1,
			AnnualReturn:     a.annualReturn(bench),
			EquityCurveStats: bstats,
		}
	}

	return m, nil
}

// Drawdowns returns the per-bar drawdown series of the total value curve.
func (a *Analyzer) Drawdowns() []float64 {
	totals := make([]float64, len(a.history))
	for i, s := range a.history {
		totals[i] = s.TotalValue
	}
	return drawdowns(totals)
}

func (a *Analyzer) barsPerYear() float64 {
	return a.tradingSecondsPerYear / a.secondsPerBar
}

func (a *Analyzer) annualReturn(values []float64) float64 {
	years := float64(len(values)) * a.secondsPerBar / a.tradingSecondsPerYear
	totalReturn := values[len(values)-1] / values[0]
	return math.Pow(totalReturn, 1/years) - 1
}

func (a *Analyzer) sharpeRatio(returns []float64, riskFreeRate float64) float64 {
	barsPerYear := a.barsPerYear()
	rfPerBar := math.Pow(1+riskFreeRate, 1/barsPerYear) - 1

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - rfPerBar
	}

	sd := stddev(excess)
	if math.Abs(sd) < 1e-12 {
		return 0
	}
	return math.Sqrt(barsPerYear) * mean(excess) / sd
}

func (a *Analyzer) annualizedVolatility(returns []float64) float64 {
	return stddev(returns) * math.Sqrt(a.barsPerYear())
}

func (a *Analyzer) winRate() float64 {
	if len(a.closed) == 0 {
		return 0
	}
	wins := 0
	for _, c := range a.closed {
		if c.RealizedPL() > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(a.closed))
}

func (a *Analyzer) profitFactor() float64 {
	var profits, losses float64
	for _, c := range a.closed {
		pl := c.RealizedPL()
		if pl > 0 {
			profits += pl
		} else if pl < 0 {
			losses += -pl
		}
	}
	if losses == 0 {
		return math.Inf(1)
	}
	return profits / losses
}

// equityCurveStats regresses the log of values against bar index.
func (a *Analyzer) equityCurveStats(values []float64) (EquityCurveStats, error) {
	logs := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			return EquityCurveStats{}, fmt.Errorf("analyzer: value series contains non-positive values, cannot compute log-based statistics")
		}
		logs[i] = math.Log(v)
	}

	slope, se, r2 := linregress(logs)
	tstat := math.NaN() // undefined below 3 points (and on a residual-free fit)
	if se > 0 {
		tstat = slope / se
	}
	return EquityCurveStats{
		Slope:      slope,
		SlopeSE:    se,
		SlopeTStat: tstat,
		RSquared:   r2,
	}, nil
}

// linregress fits y against x = 0..n-1 and returns the slope, its standard
// error, and R².
func linregress(y []float64) (slope, stderr, r2 float64) {
	n := float64(len(y))

	xMean := (n - 1) / 2
	yMean := mean(y)

	var sxx, sxy, syy float64
	for i, v := range y {
		dx := float64(i) - xMean
		dy := v - yMean
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}

	slope = sxy / sxx

	// residual sum of squares of the fitted line
	sse := syy - slope*sxy
	if sse < 0 {
		sse = 0 // numerical noise on near-perfect fits
	}

	if len(y) > 2 {
		stderr = math.Sqrt(sse / (n - 2) / sxx)
	}
	if syy > 0 {
		r2 = (sxy * sxy) / (sxx * syy)
	}
	return slope, stderr, r2
}

func pctChange(values []float64) []float64 {
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i]/values[i-1] - 1
	}
	return out
}

func drawdowns(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := math.Inf(-1)
	for i, v := range values {
		if v > peak {
			peak = v
		}
		out[i] = (peak - v) / peak
	}
	return out
}

func maxDrawdown(values []float64) float64 {
	worst := 0.0
	for _, d := range drawdowns(values) {
		if d > worst {
			worst = d
		}
	}
	return worst
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (ddof=1).
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
