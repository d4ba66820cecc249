package ledger

import (
	"sort"
	"time"
)

// BucketByDay groups entries by the UTC calendar date they were created,
// sums each day, and runs a prefix sum over the days in ascending order.
//
// Days without entries produce no point. Callers that want a dense series
// must fill the gaps themselves.
func BucketByDay(entries []Entry) []HistoryPoint {
	daily := make(map[time.Time]int64)
	for _, e := range entries {
		daily[dayOf(e.CreatedAt)] += e.Amount
	}

	days := make([]time.Time, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]HistoryPoint, 0, len(days))
	var cumulative int64
	for _, d := range days {
		cumulative += daily[d]
		points = append(points, HistoryPoint{
			Date:            d,
			DailyCoins:      daily[d],
			CumulativeCoins: cumulative,
		})
	}
	return points
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
