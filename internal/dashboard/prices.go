package dashboard

import (
	"fmt"
	"time"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/prefs"
)

// PriceRow is one line of the prices card.
type PriceRow struct {
	Symbol string
	USD    float64
	Known  bool
}

func (r PriceRow) Display() string {
	if !r.Known {
		return "—"
	}
	return fmt.Sprintf("$%.2f", r.USD)
}

// PriceRows returns one row per preferred asset in preference order.
func PriceRows(assets []string, prices map[string]api.Price) []PriceRow {
	rows := make([]PriceRow, 0, len(assets))
	for _, sym := range assets {
		row := PriceRow{Symbol: sym}
		if p, ok := prices[prefs.PriceID(sym)]; ok {
			row.USD, row.Known = p.USD, true
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatClock renders t like "Sun, Oct 18 2026 • 09:05".
func FormatClock(t time.Time) string {
	return t.Format("Mon, Jan 2 2006 • 15:04")
}
