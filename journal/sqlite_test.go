package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('snapshots','closed_positions')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["snapshots"])
	assert.True(t, found["closed_positions"])
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordSnapshot(SnapshotRecord{
		RunID:      "R1",
		Time:       ts,
		Cash:       99000,
		LongValue:  1000,
		TotalValue: 100000,
	}))
	require.NoError(t, j.RecordSnapshot(SnapshotRecord{
		RunID:      "R1",
		Time:       ts.AddDate(0, 0, 1),
		Cash:       100100,
		TotalValue: 100100,
	}))
	require.NoError(t, j.RecordClosedPosition(ClosedPositionRecord{
		ID:            "T1",
		RunID:         "R1",
		Instrument:    "AAPL",
		Size:          10,
		PurchasePrice: 100,
		SellingPrice:  110,
		EntryTime:     ts,
		ExitTime:      ts.AddDate(0, 0, 1),
		Fees:          2.1,
	}))

	snaps, err := j.ListSnapshots("R1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 99000.0, snaps[0].Cash)
	assert.True(t, snaps[0].Time.Before(snaps[1].Time))

	trades, err := j.ListClosedPositions("R1")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "AAPL", trades[0].Instrument)
	assert.Equal(t, 110.0, trades[0].SellingPrice)
	assert.Equal(t, 2.1, trades[0].Fees)

	// unknown run yields nothing
	none, err := j.ListSnapshots("R2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteListClosedBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordClosedPosition(ClosedPositionRecord{
			ID:       string(rune('A' + i)),
			RunID:    "R1",
			ExitTime: ts.AddDate(0, 0, i),
		}))
	}

	recs, err := j.ListClosedBetween(ts, ts.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
