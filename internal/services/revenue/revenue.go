// Package revenue builds the units-revenue report from the public
// reporting API, one document per unit, cached per unit per day
package revenue

import (
	"context"

	"opstats/internal/core/batch"
	"opstats/internal/core/calc"
	"opstats/internal/core/period"
	"opstats/internal/platform/cache"
	"opstats/internal/upstream/publicapi"
)

const cacheKind = "revenue"

// OperationalAPI is the slice of the public API this service consumes
type OperationalAPI interface {
	OperationalStatisticsForTodayAndWeekBefore(ctx context.Context, unitID int64) (publicapi.UnitOperationalStatistics, error)
}

// Service assembles revenue reports
type Service struct {
	api   OperationalAPI
	store cache.Store
	width int
}

// New builds the service. width caps the fan-out, 0 means default
func New(api OperationalAPI, store cache.Store, width int) *Service {
	return &Service{api: api, store: store, width: width}
}

// UnitRevenue is today's revenue of one unit next to the same moment a
// week earlier
type UnitRevenue struct {
	UnitID                int64 `json:"unit_id"`
	Today                 int64 `json:"today"`
	FromWeekBeforePercent int   `json:"from_week_before_in_percents"`
}

// TotalRevenue sums the unit rows that actually arrived
type TotalRevenue struct {
	Today                 int64 `json:"today"`
	FromWeekBeforePercent int   `json:"from_week_before_in_percents"`
}

// Report is the batch-shaped revenue response
type Report struct {
	Units        []UnitRevenue `json:"units"`
	Total        TotalRevenue  `json:"total"`
	ErrorUnitIDs []int64       `json:"error_unit_ids"`
}

// Statistics fans out over the unit set, consulting the per-unit day
// cache first. Units the upstream failed on are listed, not dropped
// silently; the total covers only the units that answered
func (s *Service) Statistics(ctx context.Context, unitIDs []int64) (Report, error) {
	p := period.Today()

	res, err := batch.Aggregate(ctx, unitIDs,
		func(ctx context.Context, id int64) (publicapi.UnitOperationalStatistics, error) {
			key := cache.Key(cacheKind, id, p.DayBucket())
			return cache.GetOrFetch(ctx, s.store, key, cache.DefaultTTL,
				func(ctx context.Context) (publicapi.UnitOperationalStatistics, error) {
					return s.api.OperationalStatisticsForTodayAndWeekBefore(ctx, id)
				})
		},
		batch.WithWidth(s.width),
	)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Units:        make([]UnitRevenue, 0, len(res.Units)),
		ErrorUnitIDs: res.Errors,
	}
	if report.ErrorUnitIDs == nil {
		report.ErrorUnitIDs = []int64{}
	}

	var today, weekBefore int64
	for _, unit := range res.Units {
		report.Units = append(report.Units, UnitRevenue{
			UnitID: unit.UnitID,
			Today:  unit.Today.Revenue,
			FromWeekBeforePercent: calc.PercentChange(
				float64(unit.Today.Revenue),
				float64(unit.WeekBeforeToThisTime.Revenue),
			),
		})
		today += unit.Today.Revenue
		weekBefore += unit.WeekBeforeToThisTime.Revenue
	}
	report.Total = TotalRevenue{
		Today:                 today,
		FromWeekBeforePercent: calc.PercentChange(float64(today), float64(weekBefore)),
	}
	return report, nil
}
