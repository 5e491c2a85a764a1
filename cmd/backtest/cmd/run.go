package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtest/analyzer"
	"github.com/rustyeddy/backtest/broker"
	"github.com/rustyeddy/backtest/config"
	"github.com/rustyeddy/backtest/engine"
	"github.com/rustyeddy/backtest/internal/id"
	"github.com/rustyeddy/backtest/journal"
	"github.com/rustyeddy/backtest/market"
	"github.com/rustyeddy/backtest/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Run loads a YAML or JSON config, replays the configured CSV dataset
through the broker and strategy, liquidates at the end of the data and
prints a performance report.

Example:
  backtest run -c backtest.yaml`,
	RunE: runBacktest,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "backtest.yaml", "path to config file")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	data, err := market.LoadCSV(cfg.Data.File)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	b, err := broker.New(broker.Config{
		StartCapital:  cfg.Broker.StartCapital,
		Fees:          cfg.Broker.Fees,
		LongOnly:      cfg.Broker.LongOnly,
		ShortFeeRate:  cfg.Broker.ShortFeeRate,
		Benchmark:     cfg.Broker.Benchmark,
		BenchmarkRate: cfg.Broker.BenchmarkRate,
	})
	if err != nil {
		return fmt.Errorf("broker: %w", err)
	}

	strat, err := strategy.ByName(cfg.Strategy.Name, strategy.Params{
		Instrument:  cfg.Strategy.Instrument,
		Size:        cfg.Strategy.Size,
		RiskPercent: cfg.Strategy.RiskPercent,
		FastPeriod:  cfg.Strategy.FastPeriod,
		SlowPeriod:  cfg.Strategy.SlowPeriod,
		AllowShort:  cfg.Strategy.AllowShort,
	})
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	eng, err := engine.New(b, strat)
	if err != nil {
		return err
	}

	if err := eng.Run(data); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	runID := id.New()

	if j, err := openJournal(cfg.Journal); err != nil {
		return err
	} else if j != nil {
		defer j.Close()
		snaps, trades, err := journal.Export(j, b, runID)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		fmt.Fprintf(os.Stderr, "journaled %d snapshots, %d trades (run %s)\n", snaps, trades, runID)
	}

	an, err := analyzer.New(b, analyzer.Config{
		BarSize:            cfg.Analyzer.BarSize,
		TradingHoursPerDay: cfg.Analyzer.TradingHoursPerDay,
		TradingDaysPerYear: cfg.Analyzer.TradingDaysPerYear,
	})
	if err != nil {
		return fmt.Errorf("analyzer: %w", err)
	}

	metrics, err := an.PerformanceMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	report := analyzer.BuildReport(b, metrics, runID, cfg.Strategy.Name, cfg.Data.File)
	report.Print(os.Stdout)
	return nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "csv":
		j, err := journal.NewCSV(cfg.SnapshotsFile, cfg.TradesFile)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}
