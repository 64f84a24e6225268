package boundary

import (
	"regexp"
	"strconv"
	"strings"
)

// capacityPattern matches the online unit capacity embedded in the
// clearing-summary free text, e.g. "运行机组容量42340.00MW".
var capacityPattern = regexp.MustCompile(`运行机组容量(\d+\.?\d*)\s*MW`)

// ExtractOnlineCapacity pulls the online unit capacity in MW out of a
// clearing-summary cell. Only the first match is used. Returns nil when
// the cell is empty or carries no recognizable capacity figure.
func ExtractOnlineCapacity(text string) *float64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	match := capacityPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}
	return &value
}
