package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	snaps  *csv.Writer
	trades *csv.Writer
	sf, tf *os.File
}

func NewCSV(snapshotsPath, tradesPath string) (*CSV, error) {
	sf, err := os.Create(snapshotsPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		sf.Close()
		return nil, err
	}

	sw := csv.NewWriter(sf)
	tw := csv.NewWriter(tf)

	if err := sw.Write([]string{"run_id", "time", "cash", "long_value", "short_value", "total_value", "benchmark"}); err != nil {
		return nil, err
	}
	if err := tw.Write([]string{"id", "run_id", "instrument", "size", "purchase_price", "selling_price", "entry_time", "exit_time", "fees"}); err != nil {
		return nil, err
	}

	sw.Flush()
	if err := sw.Error(); err != nil {
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSV{snaps: sw, trades: tw, sf: sf, tf: tf}, nil
}

func (j *CSV) RecordSnapshot(s SnapshotRecord) error {
	err := j.snaps.Write([]string{
		s.RunID,
		s.Time.Format(time.RFC3339),
		f(s.Cash),
		f(s.LongValue),
		f(s.ShortValue),
		f(s.TotalValue),
		f(s.Benchmark),
	})
	if err != nil {
		return err
	}
	j.snaps.Flush()
	return j.snaps.Error()
}

func (j *CSV) RecordClosedPosition(c ClosedPositionRecord) error {
	err := j.trades.Write([]string{
		c.ID,
		c.RunID,
		c.Instrument,
		f(c.Size),
		f(c.PurchasePrice),
		f(c.SellingPrice),
		c.EntryTime.Format(time.RFC3339),
		c.ExitTime.Format(time.RFC3339),
		f(c.Fees),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) Close() error {
	j.snaps.Flush()
	if err := j.snaps.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}

	if err := j.sf.Close(); err != nil {
		return err
	}
	return j.tf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
