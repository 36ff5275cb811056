// Package production builds the kitchen-side reports from the JSON
// statistics API: productivity balance, cooking times, heated shelf
package production

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"opstats/internal/core/batch"
	"opstats/internal/core/calc"
	"opstats/internal/core/period"
	"opstats/internal/upstream/dodoapi"
)

// API is the slice of the statistics API this service consumes
type API interface {
	ProductivityStatistics(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.UnitProductivityStatistics, error)
	DeliveryStatistics(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.UnitDeliveryStatistics, error)
	StopSalesBySalesChannels(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.StopSaleBySalesChannels, error)
	OrdersHandoverTime(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.OrderHandoverTime, error)
}

// Service assembles production reports
type Service struct {
	api API
}

// New builds the service
func New(api API) *Service { return &Service{api: api} }

// UnitProductivityBalance joins three same-window statistics for one
// unit: sales throughput, courier throughput and how long delivery was
// fully stopped
type UnitProductivityBalance struct {
	UnitID                  uuid.UUID `json:"unit_uuid"`
	SalesPerLaborHour       float64   `json:"sales_per_labor_hour"`
	OrdersPerLaborHour      float64   `json:"orders_per_labor_hour"`
	StopSaleDurationSeconds int64     `json:"stop_sale_duration_in_seconds"`
}

// ProductivityBalance fetches the three windows concurrently and joins
// them by unit. Every requested unit appears exactly once; a unit the
// upstream omitted from any side gets that side zero-filled
func (s *Service) ProductivityBalance(ctx context.Context, units []uuid.UUID) ([]UnitProductivityBalance, error) {
	p := period.Today()

	var (
		productivity []dodoapi.UnitProductivityStatistics
		delivery     []dodoapi.UnitDeliveryStatistics
		stops        []dodoapi.StopSaleBySalesChannels
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		productivity, err = s.api.ProductivityStatistics(gctx, p, units)
		return err
	})
	g.Go(func() (err error) {
		delivery, err = s.api.DeliveryStatistics(gctx, p, units)
		return err
	})
	g.Go(func() (err error) {
		stops, err = s.api.StopSalesBySalesChannels(gctx, p, units)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productivityByUnit := batch.IndexBy(productivity,
		func(u dodoapi.UnitProductivityStatistics) uuid.UUID { return u.UnitID })
	deliveryByUnit := batch.IndexBy(delivery,
		func(u dodoapi.UnitDeliveryStatistics) uuid.UUID { return u.UnitID })

	var completeDeliveryStops []dodoapi.StopSaleBySalesChannels
	for _, stop := range stops {
		if stop.SalesChannelName == dodoapi.SalesChannelDelivery &&
			stop.ChannelStopType == dodoapi.ChannelStopTypeComplete {
			completeDeliveryStops = append(completeDeliveryStops, stop)
		}
	}
	stopsByUnit := batch.GroupBy(completeDeliveryStops,
		func(s dodoapi.StopSaleBySalesChannels) uuid.UUID { return s.UnitID })

	out := make([]UnitProductivityBalance, 0, len(units))
	for _, id := range units {
		row := UnitProductivityBalance{UnitID: id}
		if u, ok := productivityByUnit[id]; ok {
			row.SalesPerLaborHour = u.SalesPerLaborHour
		}
		if u, ok := deliveryByUnit[id]; ok {
			row.OrdersPerLaborHour = u.OrdersPerLaborHour()
		}
		unitStops := stopsByUnit[id]
		intervals := make([]calc.Interval, len(unitStops))
		for i, stop := range unitStops {
			intervals[i] = stop.Interval()
		}
		row.StopSaleDurationSeconds = int64(calc.StopsDuration(intervals, p.End).Seconds())
		out = append(out, row)
	}
	return out, nil
}

// UnitRestaurantCookingTime is how long a dine-in guest waits from
// tracking start to the end of cooking, averaged over the unit's orders
type UnitRestaurantCookingTime struct {
	UnitID                               uuid.UUID `json:"unit_uuid"`
	AverageTrackingPendingAndCookingTime int64     `json:"average_tracking_pending_and_cooking_time"`
}

// RestaurantCookingTime averages the pending and cooking phases of
// today's dine-in orders per unit. A unit without dine-in orders gets
// a zero row, never dropped
func (s *Service) RestaurantCookingTime(ctx context.Context, units []uuid.UUID) ([]UnitRestaurantCookingTime, error) {
	p := period.Today()
	orders, err := s.api.OrdersHandoverTime(ctx, p, units)
	if err != nil {
		return nil, err
	}

	var dineIn []dodoapi.OrderHandoverTime
	for _, order := range orders {
		if order.SalesChannel == dodoapi.SalesChannelDineIn {
			dineIn = append(dineIn, order)
		}
	}
	byUnit := batch.GroupBy(dineIn,
		func(o dodoapi.OrderHandoverTime) uuid.UUID { return o.UnitID })

	out := make([]UnitRestaurantCookingTime, 0, len(units))
	for _, id := range units {
		unitOrders := byUnit[id]
		pending := make([]int64, len(unitOrders))
		cooking := make([]int64, len(unitOrders))
		for i, order := range unitOrders {
			pending[i] = order.TrackingPendingTime
			cooking[i] = order.CookingTime
		}
		out = append(out, UnitRestaurantCookingTime{
			UnitID: id,
			AverageTrackingPendingAndCookingTime: calc.TrackingPendingAndCooking(
				calc.AvgSeconds(pending), calc.AvgSeconds(cooking)),
		})
	}
	return out, nil
}

// UnitTotalCookingTime is the average cooking phase across every sales
// channel of a unit
type UnitTotalCookingTime struct {
	UnitID             uuid.UUID `json:"unit_uuid"`
	AverageCookingTime int64     `json:"average_cooking_time"`
}

// TotalCookingTime averages the cooking phase of today's orders per
// unit, all channels included
func (s *Service) TotalCookingTime(ctx context.Context, units []uuid.UUID) ([]UnitTotalCookingTime, error) {
	p := period.Today()
	orders, err := s.api.OrdersHandoverTime(ctx, p, units)
	if err != nil {
		return nil, err
	}

	byUnit := batch.GroupBy(orders,
		func(o dodoapi.OrderHandoverTime) uuid.UUID { return o.UnitID })

	out := make([]UnitTotalCookingTime, 0, len(units))
	for _, id := range units {
		unitOrders := byUnit[id]
		cooking := make([]int64, len(unitOrders))
		for i, order := range unitOrders {
			cooking[i] = order.CookingTime
		}
		out = append(out, UnitTotalCookingTime{
			UnitID:             id,
			AverageCookingTime: calc.AvgSeconds(cooking),
		})
	}
	return out, nil
}

// UnitHeatedShelfTime is how long orders sat on the heated shelf on
// average
type UnitHeatedShelfTime struct {
	UnitID                 uuid.UUID `json:"unit_uuid"`
	AverageHeatedShelfTime int64     `json:"average_heated_shelf_time"`
}

// HeatedShelfTime projects the productivity window onto shelf times.
// Units the upstream omitted stay omitted here: the caller cannot tell
// an idle shelf from a missing one and must not pretend otherwise
func (s *Service) HeatedShelfTime(ctx context.Context, units []uuid.UUID) ([]UnitHeatedShelfTime, error) {
	p := period.Today()
	productivity, err := s.api.ProductivityStatistics(ctx, p, units)
	if err != nil {
		return nil, err
	}

	out := make([]UnitHeatedShelfTime, 0, len(productivity))
	for _, unit := range productivity {
		out = append(out, UnitHeatedShelfTime{
			UnitID:                 unit.UnitID,
			AverageHeatedShelfTime: unit.AvgHeatedShelfTime,
		})
	}
	return out, nil
}
