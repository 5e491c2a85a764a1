package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "An event-driven backtesting engine for trading strategies",
	Long: `Backtest simulates a trading strategy over historical bar data and
produces a time-indexed account ledger for later analysis.

It provides tools for:
  - Running strategies bar-by-bar against CSV datasets
  - Portfolio accounting with fees, shorts and borrow costs
  - Benchmark tracking alongside the equity curve
  - Persisting ledgers to SQLite or CSV journals
  - Performance metrics (returns, Sharpe, drawdowns, trend statistics)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
