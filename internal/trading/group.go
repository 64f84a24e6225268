package trading

import (
	"regexp"
	"strconv"

	"spotcli/pkg/contracts/domain"
)

var unitNumberPattern = regexp.MustCompile(`(\d+)`)

// DeriveUnitGroup folds a unit name into its group by the first number
// embedded in the name: units 1 and 3 share a group, units 2 and 4 the
// other. Names with another number map to "other", names without any
// digit to "unknown".
func DeriveUnitGroup(unitName string) string {
	match := unitNumberPattern.FindStringSubmatch(unitName)
	if match == nil {
		return domain.UnitGroupUnknown
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		// A digit run too long for int; treat like any other number
		return domain.UnitGroupOther
	}

	switch n {
	case 1, 3:
		return domain.UnitGroup13
	case 2, 4:
		return domain.UnitGroup24
	default:
		return domain.UnitGroupOther
	}
}
