package date

import (
	"fmt"
	"strings"
)

// Period is a standard calendar period used to build report ranges.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

// periodNames holds the adjective and noun forms of each period, in Period order.
var periodNames = [...][2]string{
	{"daily", "day"},
	{"weekly", "week"},
	{"monthly", "month"},
	{"quarterly", "quarter"},
	{"yearly", "year"},
}

func (p Period) String() string {
	if p < 0 || int(p) >= len(periodNames) {
		panic(fmt.Sprintf("unknown period %d", p))
	}
	return periodNames[p][0]
}

// ParsePeriod parses a period name, accepting both "month" and "monthly" forms.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, names := range periodNames {
		if s == names[0] || s == names[1] {
			return Period(p), nil
		}
	}
	return Daily, fmt.Errorf("unknown period %q", s)
}
