package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/coinboard/ledger"
)

func at(day, hour int) time.Time {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC)
}

func entry(amount int64, created time.Time) ledger.Entry {
	return ledger.Entry{TeamID: 1, Amount: amount, Reason: "test", CreatedAt: created}
}

func TestBucketByDay_CumulativeSeries(t *testing.T) {
	// GIVEN: Daily sums [3, -1, 5] on three consecutive active dates
	// THEN: Cumulative series is [3, 2, 7]

	entries := []ledger.Entry{
		entry(2, at(10, 9)),
		entry(1, at(10, 17)),
		entry(-1, at(11, 12)),
		entry(5, at(12, 8)),
	}

	points := ledger.BucketByDay(entries)
	require.Len(t, points, 3)

	var daily, cumulative []int64
	for _, p := range points {
		daily = append(daily, p.DailyCoins)
		cumulative = append(cumulative, p.CumulativeCoins)
	}
	assert.Equal(t, []int64{3, -1, 5}, daily)
	assert.Equal(t, []int64{3, 2, 7}, cumulative)
	assert.Equal(t, at(10, 0), points[0].Date)
}

func TestBucketByDay_SparseAndSorted(t *testing.T) {
	// Entries out of order, with a gap on the 2nd..4th.
	entries := []ledger.Entry{
		entry(10, at(5, 1)),
		entry(4, at(1, 23)),
	}

	points := ledger.BucketByDay(entries)
	require.Len(t, points, 2, "inactive days produce no point")
	assert.Equal(t, at(1, 0), points[0].Date)
	assert.Equal(t, at(5, 0), points[1].Date)
	assert.Equal(t, int64(14), points[1].CumulativeCoins)
}

func TestBucketByDay_UsesUTCDate(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 21:00 EST on the 1st is 02:00 UTC on the 2nd.
	e := entry(1, time.Date(2025, time.March, 1, 21, 0, 0, 0, est))

	points := ledger.BucketByDay([]ledger.Entry{e})
	require.Len(t, points, 1)
	assert.Equal(t, at(2, 0), points[0].Date)
}

func TestBucketByDay_Empty(t *testing.T) {
	assert.Empty(t, ledger.BucketByDay(nil))
}

func TestBucketByDay_ZeroSumDayStillPresent(t *testing.T) {
	entries := []ledger.Entry{entry(5, at(3, 1)), entry(-5, at(3, 2))}

	points := ledger.BucketByDay(entries)
	require.Len(t, points, 1)
	assert.Equal(t, int64(0), points[0].DailyCoins)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want ledger.Period
		days int
	}{
		{"7d", ledger.PeriodWeek, 7},
		{"30d", ledger.PeriodMonth, 30},
		{"90d", ledger.PeriodQuarter, 90},
		{"1y", ledger.PeriodYear, 365},
		{"all", ledger.PeriodAll, 0},
		{"", ledger.PeriodMonth, 30},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ledger.ParsePeriod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
			days, _ := p.Days()
			assert.Equal(t, tt.days, days)
		})
	}
}

func TestParsePeriod_RejectsUnknown(t *testing.T) {
	for _, in := range []string{"14d", "ALL", "1w", "forever"} {
		_, err := ledger.ParsePeriod(in)
		var verr *ledger.ValidationError
		require.ErrorAs(t, err, &verr, in)
		assert.Equal(t, "period", verr.Field)
	}
}

func TestPeriodSince(t *testing.T) {
	now := at(31, 12)
	assert.Equal(t, at(24, 12), ledger.PeriodWeek.Since(now))
	assert.True(t, ledger.PeriodAll.Since(now).IsZero())
}
