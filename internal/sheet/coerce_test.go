package sheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellAt(t *testing.T) {
	row := []string{"a", " b ", ""}
	assert.Equal(t, "a", CellAt(row, 0))
	assert.Equal(t, "b", CellAt(row, 1))
	assert.Equal(t, "", CellAt(row, 2))
	assert.Equal(t, "", CellAt(row, 5))
	assert.Equal(t, "", CellAt(row, -1))
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want *float64
	}{
		{"plain", "123.45", ptr(123.45)},
		{"thousands separator", "1,234.5", ptr(1234.5)},
		{"negative", "-12.3", ptr(-12.3)},
		{"padded", "  42 ", ptr(42)},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"text", "总加", nil},
		{"mixed", "12MW", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFloat(tt.cell)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
		ok   bool
	}{
		{"iso", "2025-08-30", "2025-08-30", true},
		{"slash", "2025/8/30", "2025-08-30", true},
		{"iso with time", "2025-08-30 00:00:00", "2025-08-30", true},
		{"us short", "08-30-25", "2025-08-30", true},
		{"chinese", "2025年8月30日", "2025-08-30", true},
		{"excel serial", "45899", "2025-08-30", true},
		{"garbage", "总加", "", false},
		{"empty", "", "", false},
		{"small number", "96", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.cell)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestSlotClock(t *testing.T) {
	assert.Equal(t, 15, SlotClock("00:15"))
	assert.Equal(t, 23*60+45, SlotClock("23:45"))
	assert.Equal(t, 0, SlotClock("00:00"))
	assert.Equal(t, 30, SlotClock(" 00:30 "))

	// Unparseable labels sort after every valid clock value
	assert.Equal(t, SlotClockSentinel, SlotClock("24:00"))
	assert.Equal(t, SlotClockSentinel, SlotClock("合计"))
	assert.Equal(t, SlotClockSentinel, SlotClock(""))
}

func ptr(v float64) *float64 {
	return &v
}
