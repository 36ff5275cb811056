// Package delivery builds the courier-side reports: speed,
// productivity against the week before, lateness vouchers, console
// certificate counts and the single-order-trip share
package delivery

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"opstats/internal/core/batch"
	"opstats/internal/core/calc"
	"opstats/internal/core/period"
	"opstats/internal/platform/cache"
	"opstats/internal/upstream/dodoapi"
	"opstats/internal/upstream/officemanager"
)

// API is the slice of the statistics API this service consumes
type API interface {
	DeliveryStatistics(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.UnitDeliveryStatistics, error)
	LateDeliveryVouchers(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.LateDeliveryVoucher, error)
}

// Exporter downloads the delivery-statistics workbook from the console
type Exporter interface {
	DeliveryStatisticsExport(ctx context.Context, p period.Period, unitIDs []int64) ([]byte, error)
}

// Service assembles delivery reports
type Service struct {
	api API
}

// New builds the service
func New(api API) *Service { return &Service{api: api} }

// UnitDeliverySpeed is the four average delivery phase timings of one
// unit, in seconds
type UnitDeliverySpeed struct {
	UnitID                              uuid.UUID `json:"unit_uuid"`
	AverageCookingTime                  int64     `json:"average_cooking_time"`
	AverageDeliveryOrderFulfillmentTime int64     `json:"average_delivery_order_fulfillment_time"`
	AverageHeatedShelfTime              int64     `json:"average_heated_shelf_time"`
	AverageOrderTripTime                int64     `json:"average_order_trip_time"`
}

// Speed projects today's delivery window onto the four phase averages.
// Every requested unit appears exactly once; omitted units get zeros
func (s *Service) Speed(ctx context.Context, units []uuid.UUID) ([]UnitDeliverySpeed, error) {
	p := period.Today()
	statistics, err := s.api.DeliveryStatistics(ctx, p, units)
	if err != nil {
		return nil, err
	}

	byUnit := batch.IndexBy(statistics,
		func(u dodoapi.UnitDeliveryStatistics) uuid.UUID { return u.UnitID })

	out := make([]UnitDeliverySpeed, 0, len(units))
	for _, id := range units {
		row := UnitDeliverySpeed{UnitID: id}
		if u, ok := byUnit[id]; ok {
			row.AverageCookingTime = u.AvgCookingTime
			row.AverageDeliveryOrderFulfillmentTime = u.AvgDeliveryOrderFulfillmentTime
			row.AverageHeatedShelfTime = u.AvgHeatedShelfTime
			row.AverageOrderTripTime = u.AvgOrderTripTime
		}
		out = append(out, row)
	}
	return out, nil
}

// UnitDeliveryProductivity compares courier throughput today against
// the same moment a week earlier
type UnitDeliveryProductivity struct {
	UnitID                       uuid.UUID `json:"unit_uuid"`
	OrdersPerLaborHourToday      float64   `json:"orders_per_labor_hour_today"`
	OrdersPerLaborHourWeekBefore float64   `json:"orders_per_labor_hour_week_before"`
	FromWeekBeforePercent        int       `json:"from_week_before_in_percents"`
}

// Productivity fetches both windows concurrently and joins them by
// unit, zero-filling whichever side omitted the unit
func (s *Service) Productivity(ctx context.Context, units []uuid.UUID) ([]UnitDeliveryProductivity, error) {
	var today, weekBefore []dodoapi.UnitDeliveryStatistics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		today, err = s.api.DeliveryStatistics(gctx, period.Today(), units)
		return err
	})
	g.Go(func() (err error) {
		weekBefore, err = s.api.DeliveryStatistics(gctx, period.WeekBeforeToThisTime(), units)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	todayByUnit := batch.IndexBy(today,
		func(u dodoapi.UnitDeliveryStatistics) uuid.UUID { return u.UnitID })
	weekByUnit := batch.IndexBy(weekBefore,
		func(u dodoapi.UnitDeliveryStatistics) uuid.UUID { return u.UnitID })

	out := make([]UnitDeliveryProductivity, 0, len(units))
	for _, id := range units {
		row := UnitDeliveryProductivity{UnitID: id}
		if u, ok := todayByUnit[id]; ok {
			row.OrdersPerLaborHourToday = u.OrdersPerLaborHour()
		}
		if u, ok := weekByUnit[id]; ok {
			row.OrdersPerLaborHourWeekBefore = u.OrdersPerLaborHour()
		}
		row.FromWeekBeforePercent = calc.PercentChange(
			row.OrdersPerLaborHourToday, row.OrdersPerLaborHourWeekBefore)
		out = append(out, row)
	}
	return out, nil
}

// UnitBeingLateCertificates counts lateness compensation vouchers per
// unit for today and the week-before window
type UnitBeingLateCertificates struct {
	UnitID                      uuid.UUID `json:"unit_uuid"`
	CertificatesCountToday      int       `json:"certificates_count_today"`
	CertificatesCountWeekBefore int       `json:"certificates_count_week_before"`
}

// BeingLateCertificates counts vouchers in both windows per unit.
// Units without vouchers get explicit zeros: no voucher is a fact, not
// missing data
func (s *Service) BeingLateCertificates(ctx context.Context, units []uuid.UUID) ([]UnitBeingLateCertificates, error) {
	var today, weekBefore []dodoapi.LateDeliveryVoucher

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		today, err = s.api.LateDeliveryVouchers(gctx, period.Today(), units)
		return err
	})
	g.Go(func() (err error) {
		weekBefore, err = s.api.LateDeliveryVouchers(gctx, period.WeekBeforeToThisTime(), units)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]UnitBeingLateCertificates, 0, len(units))
	for _, id := range units {
		out = append(out, UnitBeingLateCertificates{
			UnitID:                      id,
			CertificatesCountToday:      countVouchers(today, id),
			CertificatesCountWeekBefore: countVouchers(weekBefore, id),
		})
	}
	return out, nil
}

func countVouchers(vouchers []dodoapi.LateDeliveryVoucher, unit uuid.UUID) int {
	n := 0
	for _, v := range vouchers {
		if v.UnitID == unit {
			n++
		}
	}
	return n
}

// TripsWithOneOrder downloads today's delivery workbook and extracts
// the share of single-order courier trips per unit
func TripsWithOneOrder(ctx context.Context, exporter Exporter, unitIDs []int64) ([]officemanager.TripsWithOneOrder, error) {
	workbook, err := exporter.DeliveryStatisticsExport(ctx, period.Today(), unitIDs)
	if err != nil {
		return nil, err
	}
	return officemanager.ParseTripsWithOneOrder(workbook)
}

const certificatesCacheKind = "being_late_certificates"

// CertificatesConsole is the console slice serving the certificate
// report pages
type CertificatesConsole interface {
	BeingLateCertificates(ctx context.Context, p period.Period, units []officemanager.UnitIDAndName) ([]officemanager.BeingLateCertificates, error)
}

// ConsoleCertificatesReport is the batch-shaped console certificate
// counts
type ConsoleCertificatesReport struct {
	Units        []officemanager.BeingLateCertificates `json:"units"`
	ErrorUnitIDs []int64                               `json:"error_unit_ids"`
}

// ConsoleCertificates counts today's lateness certificates from the
// console report, one cached call per unit. A unit the report leaves
// empty gets an explicit zero row
func ConsoleCertificates(
	ctx context.Context,
	console CertificatesConsole,
	store cache.Store,
	units []officemanager.UnitIDAndName,
	width int,
) (ConsoleCertificatesReport, error) {
	p := period.Today()
	bucket := p.DayBucket()

	res, err := batch.Aggregate(ctx, units,
		func(ctx context.Context, u officemanager.UnitIDAndName) (officemanager.BeingLateCertificates, error) {
			key := cache.Key(certificatesCacheKind, u.ID, bucket)
			return cache.GetOrFetch(ctx, store, key, cache.DefaultTTL,
				func(ctx context.Context) (officemanager.BeingLateCertificates, error) {
					rows, err := console.BeingLateCertificates(ctx, p, []officemanager.UnitIDAndName{u})
					if err != nil {
						return officemanager.BeingLateCertificates{}, err
					}
					if len(rows) == 0 {
						return officemanager.BeingLateCertificates{UnitID: u.ID, UnitName: u.Name}, nil
					}
					return rows[0], nil
				})
		},
		batch.WithWidth(width))
	if err != nil {
		return ConsoleCertificatesReport{}, err
	}

	out := ConsoleCertificatesReport{
		Units:        res.Units,
		ErrorUnitIDs: make([]int64, 0, len(res.Errors)),
	}
	if out.Units == nil {
		out.Units = []officemanager.BeingLateCertificates{}
	}
	for _, u := range res.Errors {
		out.ErrorUnitIDs = append(out.ErrorUnitIDs, u.ID)
	}
	return out, nil
}
