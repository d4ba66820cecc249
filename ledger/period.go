package ledger

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - Closed set of history lookback windows
// =============================================================================

// Period is a history lookback window. Only the constants below are valid;
// use ParsePeriod to convert untrusted input.
type Period string

const (
	PeriodWeek    Period = "7d"
	PeriodMonth   Period = "30d"
	PeriodQuarter Period = "90d"
	PeriodYear    Period = "1y"
	PeriodAll     Period = "all"
)

// DefaultPeriod is used when the caller does not name a period.
const DefaultPeriod = PeriodMonth

var periodDays = map[Period]int{
	PeriodWeek:    7,
	PeriodMonth:   30,
	PeriodQuarter: 90,
	PeriodYear:    365,
	PeriodAll:     0,
}

// Periods lists every supported period, shortest first.
func Periods() []Period {
	return []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll}
}

// ParsePeriod converts a period name. An empty string selects DefaultPeriod;
// any other unknown value is a ValidationError.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	p := Period(s)
	if _, ok := periodDays[p]; !ok {
		names := make([]string, 0, len(periodDays))
		for _, known := range Periods() {
			names = append(names, string(known))
		}
		return "", Invalid("period", fmt.Sprintf("unknown period %q (want one of %s)", s, strings.Join(names, ", ")))
	}
	return p, nil
}

// Days returns the window length. ok is false for PeriodAll, which has no
// lower bound.
func (p Period) Days() (days int, ok bool) {
	days = periodDays[p]
	return days, days > 0
}

// Since returns the window's lower bound relative to now, or the zero time
// for PeriodAll.
func (p Period) Since(now time.Time) time.Time {
	days, ok := p.Days()
	if !ok {
		return time.Time{}
	}
	return now.AddDate(0, 0, -days)
}

func (p Period) String() string { return string(p) }
