//go:build blackbox

package blackbox

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestBacktestSMACross_ProducesTrades(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "backtest.sqlite")
	barsPath := filepath.Join(dir, "bars.csv")
	cfgPath := filepath.Join(dir, "backtest.yaml")

	// Build enough bars to make MA(5/20) ready and force at least one cross.
	// Phase 1: flat
	// Phase 2: ramp up
	// Phase 3: ramp down (creates opposite cross)
	writeBarsCSV(t, barsPath, "AAPL", 200, func(i int) float64 {
		switch {
		case i < 80:
			return 100.00
		case i < 140:
			return 100.00 + float64(i-80)*0.50
		default:
			return 130.00 - float64(i-140)*0.50
		}
	})

	writeConfig(t, cfgPath, fmt.Sprintf(`
broker:
  start_capital: 100000
  fees: 0.001
  long_only: true
strategy:
  name: sma-cross
  instrument: AAPL
  size: 100
  fast_period: 5
  slow_period: 20
data:
  file: %s
journal:
  type: sqlite
  db_path: %s
analyzer:
  bar_size: 1D
`, barsPath, dbPath))

	out := run(t, "run", "-c", cfgPath)

	if !contains(out, "Backtest Result") {
		t.Fatalf("expected report in output, got:\n%s", out)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var snapshots int
	if err := db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&snapshots); err != nil {
		t.Fatal(err)
	}
	if snapshots != 200 {
		t.Fatalf("expected 200 snapshots, got %d", snapshots)
	}

	var trades int
	if err := db.QueryRow("SELECT COUNT(*) FROM closed_positions").Scan(&trades); err != nil {
		t.Fatal(err)
	}
	if trades == 0 {
		t.Fatal("expected at least one closed trade")
	}
}

func TestBacktestNoop_LedgerOnly(t *testing.T) {
	dir := t.TempDir()
	barsPath := filepath.Join(dir, "bars.csv")
	cfgPath := filepath.Join(dir, "backtest.yaml")

	writeBarsCSV(t, barsPath, "AAPL", 10, func(i int) float64 {
		return 100 + float64(i)
	})

	writeConfig(t, cfgPath, fmt.Sprintf(`
broker:
  start_capital: 50000
strategy:
  name: noop
data:
  file: %s
journal:
  type: none
analyzer:
  bar_size: 1D
`, barsPath))

	out := run(t, "run", "-c", cfgPath)

	if !contains(out, "Trades:        0") {
		t.Fatalf("expected zero trades in report, got:\n%s", out)
	}
	if !contains(out, "Total Return:  0.00%") {
		t.Fatalf("expected flat return for noop strategy, got:\n%s", out)
	}
}
