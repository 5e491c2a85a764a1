// Package config loads and validates run configuration from YAML or JSON
// files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete backtest configuration.
type Config struct {
	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Analyzer AnalyzerConfig `json:"analyzer" yaml:"analyzer"`
}

// BrokerConfig contains account initialization parameters.
type BrokerConfig struct {
	StartCapital  float64 `json:"start_capital" yaml:"start_capital"`
	Fees          float64 `json:"fees" yaml:"fees"`
	LongOnly      bool    `json:"long_only" yaml:"long_only"`
	ShortFeeRate  float64 `json:"short_fee_rate" yaml:"short_fee_rate"`
	Benchmark     string  `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`
	BenchmarkRate float64 `json:"benchmark_rate,omitempty" yaml:"benchmark_rate,omitempty"`
}

// StrategyConfig contains strategy selection and parameters.
type StrategyConfig struct {
	Name        string  `json:"name" yaml:"name"`
	Instrument  string  `json:"instrument" yaml:"instrument"`
	Size        float64 `json:"size" yaml:"size"`
	RiskPercent float64 `json:"risk_percent,omitempty" yaml:"risk_percent,omitempty"`
	FastPeriod  int     `json:"fast_period,omitempty" yaml:"fast_period,omitempty"`
	SlowPeriod  int     `json:"slow_period,omitempty" yaml:"slow_period,omitempty"`
	AllowShort  bool    `json:"allow_short,omitempty" yaml:"allow_short,omitempty"`
}

// DataConfig points at the bar dataset.
type DataConfig struct {
	File string `json:"file" yaml:"file"` // CSV path, .xz accepted
}

// JournalConfig contains ledger persistence parameters.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	SnapshotsFile string `json:"snapshots_file,omitempty" yaml:"snapshots_file,omitempty"`
	TradesFile    string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// AnalyzerConfig sizes a bar for annualized metrics.
type AnalyzerConfig struct {
	BarSize            string  `json:"bar_size" yaml:"bar_size"`
	TradingHoursPerDay float64 `json:"trading_hours_per_day,omitempty" yaml:"trading_hours_per_day,omitempty"`
	TradingDaysPerYear int     `json:"trading_days_per_year,omitempty" yaml:"trading_days_per_year,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Broker.StartCapital <= 0 {
		return fmt.Errorf("broker.start_capital must be positive")
	}
	if c.Broker.Fees < 0 {
		return fmt.Errorf("broker.fees must be >= 0")
	}
	if c.Broker.ShortFeeRate < 0 {
		return fmt.Errorf("broker.short_fee_rate must be >= 0")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.RiskPercent < 0 || c.Strategy.RiskPercent > 1 {
		return fmt.Errorf("strategy.risk_percent must be between 0 and 1")
	}
	if c.Strategy.Name != "noop" && c.Strategy.Instrument == "" {
		return fmt.Errorf("strategy.instrument is required")
	}
	if c.Data.File == "" {
		return fmt.Errorf("data.file is required")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.SnapshotsFile == "" || c.Journal.TradesFile == "" {
			return fmt.Errorf("journal snapshots_file and trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			StartCapital: 100000,
			Fees:         0.001,
			LongOnly:     true,
			ShortFeeRate: 0.02,
		},
		Strategy: StrategyConfig{
			Name:       "sma-cross",
			Instrument: "AAPL",
			Size:       10,
			FastPeriod: 10,
			SlowPeriod: 30,
		},
		Data: DataConfig{
			File: "./bars.csv",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./backtest.db",
		},
		Analyzer: AnalyzerConfig{
			BarSize:            "1D",
			TradingHoursPerDay: 6.5,
			TradingDaysPerYear: 252,
		},
	}
}
