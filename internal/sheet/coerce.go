// Package sheet holds cell-level coercion helpers shared by the workbook
// readers. Coercion never fails: a cell that cannot be interpreted
// becomes a nil value or a sentinel, matching the null-propagation policy
// of the reconciliation and analysis layers.
package sheet

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts covers the date renderings excelize produces for the raw
// report cells, depending on how the upstream system styled them.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006/1/2",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"1/2/2006",
	"2006年1月2日",
}

// CellAt returns the trimmed cell at idx, tolerating short rows.
func CellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseFloat coerces a cell to a float. Empty cells and cells that do
// not parse become nil, never an error.
func ParseFloat(cell string) *float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseDate coerces a cell to a calendar date at UTC midnight. Handles
// the layouts above plus raw Excel serial numbers (days since
// 1899-12-30).
func ParseDate(cell string) (time.Time, bool) {
	cleaned := strings.TrimSpace(cell)
	if cleaned == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	// Excel serial date fallback
	if serial, err := strconv.ParseFloat(cleaned, 64); err == nil && serial > 20000 && serial < 80000 {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), true
	}

	return time.Time{}, false
}

// SlotClockSentinel sorts unparseable time-slot labels after every valid
// clock value within their date.
const SlotClockSentinel = 1 << 30

// SlotClock converts an HH:MM time-slot label to minutes since midnight
// for ordering. Labels that do not parse (including "24:00") return the
// sentinel so they sort last within their date.
func SlotClock(slot string) int {
	t, err := time.Parse("15:04", strings.TrimSpace(slot))
	if err != nil {
		return SlotClockSentinel
	}
	return t.Hour()*60 + t.Minute()
}
