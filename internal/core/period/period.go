// Package period provides the immutable time range used by every report query
package period

import "time"

// Moscow is the fixed reporting zone: every upstream renders and accepts
// wall-clock times in UTC+3 regardless of the unit's physical location
var Moscow = time.FixedZone("MSK", 3*60*60)

// Now returns the current reporting-zone time. Swappable in tests
var Now = func() time.Time { return time.Now().In(Moscow) }

// Period is a closed time range. Start is never after End.
// Values are constructed once per request and never mutated
type Period struct {
	Start time.Time
	End   time.Time
}

// New builds a Period, swapping the bounds if they arrive reversed
func New(start, end time.Time) Period {
	if end.Before(start) {
		start, end = end, start
	}
	return Period{Start: start, End: end}
}

// Today spans from the beginning of the current reporting day to now
func Today() Period {
	now := Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Moscow)
	return Period{Start: start, End: now}
}

// WeekBeforeToThisTime spans from the beginning of the day seven days ago
// to the same clock time seven days ago
func WeekBeforeToThisTime() Period {
	then := Now().AddDate(0, 0, -7)
	start := time.Date(then.Year(), then.Month(), then.Day(), 0, 0, 0, 0, Moscow)
	return Period{Start: start, End: then}
}

// RoundedToHour returns a copy whose bounds are rounded with RoundToHours,
// required by the productivity upstream which rejects sub-hour bounds
func (p Period) RoundedToHour() Period {
	return Period{Start: RoundToHours(p.Start), End: RoundToHours(p.End)}
}

// RoundToHours rounds t up to the next hour boundary, except that hour 23
// is pinned rather than rolled into the next day
func RoundToHours(t time.Time) time.Time {
	h := t.Hour()
	if h != 23 {
		h++
	}
	return time.Date(t.Year(), t.Month(), t.Day(), h, 0, 0, 0, t.Location())
}

// DayBucket is the cache-key granularity: two periods starting on the same
// reporting day share a bucket
func (p Period) DayBucket() string {
	return p.Start.Format("2006-01-02")
}

// Upstream date formats. The console endpoints take day-precision Russian
// order dates; the JSON API takes ISO timestamps, hour-truncated for the
// productivity family
const (
	ConsoleDate  = "02.01.2006"
	APITimestamp = "2006-01-02T15:04:05"
	APIHourStamp = "2006-01-02T15:00:00"
)
