package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordSnapshot(s SnapshotRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO snapshots
		(run_id, time, cash, long_value, short_value, total_value, benchmark)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Time, s.Cash, s.LongValue, s.ShortValue, s.TotalValue, s.Benchmark,
	)
	return err
}

func (j *SQLite) RecordClosedPosition(c ClosedPositionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO closed_positions
		(id, run_id, instrument, size, purchase_price, selling_price, entry_time, exit_time, fees)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.RunID, c.Instrument, c.Size, c.PurchasePrice,
		c.SellingPrice, c.EntryTime, c.ExitTime, c.Fees,
	)
	return err
}

// ListSnapshots returns a run's ledger rows in time order.
func (j *SQLite) ListSnapshots(runID string) ([]SnapshotRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, cash, long_value, short_value, total_value, benchmark
		FROM snapshots WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		if err := rows.Scan(&rec.RunID, &rec.Time, &rec.Cash,
			&rec.LongValue, &rec.ShortValue, &rec.TotalValue, &rec.Benchmark); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListClosedPositions returns a run's realized trades in exit-time order.
func (j *SQLite) ListClosedPositions(runID string) ([]ClosedPositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, run_id, instrument, size, purchase_price, selling_price, entry_time, exit_time, fees
		FROM closed_positions WHERE run_id = ? ORDER BY exit_time, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClosedPositionRecord
	for rows.Next() {
		var rec ClosedPositionRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Instrument, &rec.Size,
			&rec.PurchasePrice, &rec.SellingPrice, &rec.EntryTime, &rec.ExitTime, &rec.Fees); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListClosedBetween returns realized trades across runs whose exit time falls
// in [from, to).
func (j *SQLite) ListClosedBetween(from, to time.Time) ([]ClosedPositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, run_id, instrument, size, purchase_price, selling_price, entry_time, exit_time, fees
		FROM closed_positions WHERE exit_time >= ? AND exit_time < ? ORDER BY exit_time, id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClosedPositionRecord
	for rows.Next() {
		var rec ClosedPositionRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Instrument, &rec.Size,
			&rec.PurchasePrice, &rec.SellingPrice, &rec.EntryTime, &rec.ExitTime, &rec.Fees); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
