package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 100000.0, cfg.Broker.StartCapital)
	assert.Equal(t, 0.001, cfg.Broker.Fees)
	assert.True(t, cfg.Broker.LongOnly)
	assert.Equal(t, "sma-cross", cfg.Strategy.Name)
	assert.Equal(t, "1D", cfg.Analyzer.BarSize)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return Default() }

	tests := []struct {
		name    string
		config  *Config
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  valid(),
			wantErr: false,
		},
		{
			name:    "zero start capital",
			config:  valid(),
			mutate:  func(c *Config) { c.Broker.StartCapital = 0 },
			wantErr: true,
			errMsg:  "broker.start_capital must be positive",
		},
		{
			name:    "negative fees",
			config:  valid(),
			mutate:  func(c *Config) { c.Broker.Fees = -0.01 },
			wantErr: true,
			errMsg:  "broker.fees must be >= 0",
		},
		{
			name:    "negative short fee rate",
			config:  valid(),
			mutate:  func(c *Config) { c.Broker.ShortFeeRate = -1 },
			wantErr: true,
			errMsg:  "broker.short_fee_rate must be >= 0",
		},
		{
			name:    "missing strategy name",
			config:  valid(),
			mutate:  func(c *Config) { c.Strategy.Name = "" },
			wantErr: true,
			errMsg:  "strategy.name is required",
		},
		{
			name:    "missing instrument",
			config:  valid(),
			mutate:  func(c *Config) { c.Strategy.Instrument = "" },
			wantErr: true,
			errMsg:  "strategy.instrument is required",
		},
		{
			name:    "noop needs no instrument",
			config:  valid(),
			mutate:  func(c *Config) { c.Strategy.Name = "noop"; c.Strategy.Instrument = "" },
			wantErr: false,
		},
		{
			name:    "missing data file",
			config:  valid(),
			mutate:  func(c *Config) { c.Data.File = "" },
			wantErr: true,
			errMsg:  "data.file is required",
		},
		{
			name:   "csv journal without files",
			config: valid(),
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "csv"}
			},
			wantErr: true,
			errMsg:  "snapshots_file and trades_file required",
		},
		{
			name:   "sqlite journal without db path",
			config: valid(),
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "sqlite"}
			},
			wantErr: true,
			errMsg:  "db_path required",
		},
		{
			name:    "unknown journal type",
			config:  valid(),
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:    "journal may be disabled",
			config:  valid(),
			mutate:  func(c *Config) { c.Journal = JournalConfig{Type: "none"} },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate != nil {
				tt.mutate(tt.config)
			}
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Broker.StartCapital, loaded.Broker.StartCapital)
			assert.Equal(t, cfg.Broker.Fees, loaded.Broker.Fees)
			assert.Equal(t, cfg.Strategy.Name, loaded.Strategy.Name)
			assert.Equal(t, cfg.Strategy.Instrument, loaded.Strategy.Instrument)
			assert.Equal(t, cfg.Journal.Type, loaded.Journal.Type)
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}
