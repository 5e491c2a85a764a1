//go:build blackbox

package blackbox

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// writeBarsCSV writes n daily bars for instrument with closes from priceFn.
func writeBarsCSV(t *testing.T, path, instrument string, n int, priceFn func(i int) float64) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("time,instrument,open,high,low,close,volume\n")
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := priceFn(i)
		sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%.4f,%.4f,%.4f,1000\n",
			start.AddDate(0, 0, i).Format(time.RFC3339), instrument, p, p, p, p))
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}
