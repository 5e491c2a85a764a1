package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// LoadCSV reads canonical bar CSV rows:
//
//	time,instrument,open,high,low,close[,volume]
//
// where time is RFC3339 or RFC3339Nano. A header row ("time,...") is allowed.
// Empty/short rows are skipped. Files ending in .xz are decompressed on the
// fly.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz stream %s: %w", path, err)
		}
		src = xr
	}

	return ReadCSV(src)
}

// ReadCSV parses bar rows from r. See LoadCSV for the row format.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []Bar
	sawFirst := false

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		b, ok, err := parseBarRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		bars = append(bars, b)
	}

	return NewDataset(bars)
}

func parseBarRow(row []string) (Bar, bool, error) {
	// Need at least: time,instrument,open,high,low,close
	if len(row) < 6 {
		return Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return Bar{}, false, nil
	}

	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad time %q: %w", ts, err)
		}
	}

	instr := strings.TrimSpace(row[1])
	if instr == "" {
		return Bar{}, false, nil
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad price %q: %w", row[2+i], err)
		}
		vals[i] = v
	}

	b := Bar{
		Time:       t.UTC(),
		Instrument: instr,
		Open:       vals[0],
		High:       vals[1],
		Low:        vals[2],
		Close:      vals[3],
	}

	if len(row) > 6 {
		vol, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err == nil {
			b.Volume = vol
		}
	}

	return b, true, nil
}
