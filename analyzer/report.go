package analyzer

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rustyeddy/backtest/broker"
)

// Report is a lightweight, printable summary of one run.
type Report struct {
	RunID    string
	Strategy string
	Dataset  string

	Start time.Time
	End   time.Time

	StartCapital float64
	EndCash      float64
	Trades       int

	Metrics Metrics
}

// BuildReport assembles a Report from the broker's ledgers and computed
// metrics.
func BuildReport(b *broker.Broker, m Metrics, runID, strategyName, dataset string) Report {
	r := Report{
		RunID:        runID,
		Strategy:     strategyName,
		Dataset:      dataset,
		StartCapital: b.Config().StartCapital,
		EndCash:      b.Cash(),
		Trades:       len(b.ClosedPositions()),
		Metrics:      m,
	}
	if h := b.History(); len(h) > 0 {
		r.Start = h[0].Time
		r.End = h[len(h)-1].Time
	}
	return r
}

// Print writes the report in a fixed-width text layout.
func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:       %s\n", r.Dataset)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Capital: %.2f\n", r.StartCapital)
	fmt.Fprintf(w, "End Cash:      %.2f\n", r.EndCash)
	fmt.Fprintf(w, "Total Return:  %.2f%%\n", r.Metrics.TotalReturn*100)
	fmt.Fprintf(w, "Annual Return: %.2f%%\n", r.Metrics.AnnualReturn*100)
	fmt.Fprintf(w, "Sharpe Ratio:  %.2f\n", r.Metrics.SharpeRatio)
	fmt.Fprintf(w, "Volatility:    %.2f%%\n", r.Metrics.Volatility*100)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.Metrics.MaxDrawdown*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.Metrics.WinRate*100)
	if !math.IsInf(r.Metrics.ProfitFactor, 1) {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", r.Metrics.ProfitFactor)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Equity Curve Trend")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Slope/Bar:     %.6f\n", r.Metrics.Slope)
	if math.IsNaN(r.Metrics.SlopeTStat) {
		fmt.Fprintln(w, "Slope t-stat:  n/a")
	} else {
		fmt.Fprintf(w, "Slope t-stat:  %.2f\n", r.Metrics.SlopeTStat)
	}
	fmt.Fprintf(w, "R-squared:     %.4f\n", r.Metrics.RSquared)

	if bm := r.Metrics.Benchmark; bm != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Benchmark")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Total Return:  %.2f%%\n", bm.TotalReturn*100)
		fmt.Fprintf(w, "Annual Return: %.2f%%\n", bm.AnnualReturn*100)
		fmt.Fprintf(w, "Slope/Bar:     %.6f\n", bm.Slope)
	}

	fmt.Fprintln(w)
}
