// Package calc holds the pure metric arithmetic shared by the report
// services. Everything here is deterministic and free of I/O so the
// formulas can be tested exhaustively in isolation
package calc

import (
	"math"
	"time"
)

// PercentChange compares a current value against a baseline and reports
// the relative change in whole percent. A zero baseline yields 0, not an
// infinity: week-old data is routinely missing for fresh units and the
// dashboards render 0 as "no comparison"
func PercentChange(now, before float64) int {
	if before == 0 {
		return 0
	}
	return int(math.Round(now/before*100)) - 100
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Share is part of total as a percentage, rounded to one decimal.
// Zero total yields 0
func Share(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return Round1(part / total * 100)
}

// OrdersPerLaborHour spreads an order count over the staffed time,
// rounded to one decimal. Zero labor yields 0
func OrdersPerLaborHour(orders float64, laborSeconds int64) float64 {
	if laborSeconds <= 0 {
		return 0
	}
	return Round1(orders / (float64(laborSeconds) / 3600))
}

// CouriersWorkload is the fraction of total courier shift time spent on
// trips, in percent rounded to two decimals. Zero shift time yields 0
func CouriersWorkload(tripsSeconds, shiftSeconds int64) float64 {
	if shiftSeconds <= 0 {
		return 0
	}
	return Round2(float64(tripsSeconds) / float64(shiftSeconds) * 100)
}

// Interval is a possibly still-open stop window
type Interval struct {
	StartedAt time.Time
	EndedAt   *time.Time
}

// StopsDuration sums elapsed stop time across intervals. An interval
// with no end is still in force and is clipped to now, so an
// unresumed sale stop accrues time for exactly as long as it has
// actually lasted
func StopsDuration(stops []Interval, now time.Time) time.Duration {
	var total time.Duration
	for _, s := range stops {
		end := now
		if s.EndedAt != nil {
			end = *s.EndedAt
		}
		if end.Before(s.StartedAt) {
			continue
		}
		total += end.Sub(s.StartedAt)
	}
	return total
}

// AvgSeconds averages a series of second counts, truncating toward
// zero. An empty series yields 0
func AvgSeconds(vals []int64) int64 {
	if len(vals) == 0 {
		return 0
	}
	var sum int64
	for _, v := range vals {
		sum += v
	}
	return sum / int64(len(vals))
}

// TrackingPendingAndCooking is the single "order start to cooking done"
// number the dashboards show, folded from the two tracked phases
func TrackingPendingAndCooking(avgPendingSeconds, avgCookingSeconds int64) int64 {
	return avgPendingSeconds + avgCookingSeconds
}
