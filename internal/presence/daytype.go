package presence

import "fmt"

// DayType is the closed set of attendance statuses. Wire names are fixed;
// unknown values are rejected at the API boundary before reaching the
// service or store.
type DayType string

const (
	DayTypeFull      DayType = "FULL"
	DayTypeFirstHalf DayType = "FIRST-HALF"
	DayTypeLastHalf  DayType = "LAST-HALF"
	DayTypeEmpty     DayType = "EMPTY"
)

// ParseDayType validates s against the closed set.
func ParseDayType(s string) (DayType, error) {
	switch DayType(s) {
	case DayTypeFull, DayTypeFirstHalf, DayTypeLastHalf, DayTypeEmpty:
		return DayType(s), nil
	default:
		return "", fmt.Errorf("unknown day type: %q", s)
	}
}

func (d DayType) Valid() bool {
	_, err := ParseDayType(string(d))
	return err == nil
}
