package production

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"opstats/internal/core/period"
	"opstats/internal/upstream/dodoapi"
)

var (
	unitA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	unitB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type fakeAPI struct {
	productivity []dodoapi.UnitProductivityStatistics
	delivery     []dodoapi.UnitDeliveryStatistics
	stops        []dodoapi.StopSaleBySalesChannels
	orders       []dodoapi.OrderHandoverTime

	err error
}

func (f *fakeAPI) ProductivityStatistics(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.UnitProductivityStatistics, error) {
	return f.productivity, f.err
}

func (f *fakeAPI) DeliveryStatistics(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.UnitDeliveryStatistics, error) {
	return f.delivery, f.err
}

func (f *fakeAPI) StopSalesBySalesChannels(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.StopSaleBySalesChannels, error) {
	return f.stops, f.err
}

func (f *fakeAPI) OrdersHandoverTime(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.OrderHandoverTime, error) {
	return f.orders, f.err
}

func freezeNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := period.Now
	period.Now = func() time.Time { return at }
	t.Cleanup(func() { period.Now = prev })
}

func stamp(t time.Time) dodoapi.Timestamp { return dodoapi.Timestamp{Time: t} }

func TestProductivityBalance(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, period.Moscow)
	freezeNow(t, now)

	stopStart := now.Add(-10 * time.Minute)
	resumed := stamp(stopStart.Add(3 * time.Minute))
	api := &fakeAPI{
		productivity: []dodoapi.UnitProductivityStatistics{
			{UnitID: unitA, SalesPerLaborHour: 1500.5},
		},
		delivery: []dodoapi.UnitDeliveryStatistics{
			{UnitID: unitA, DeliveryOrdersCount: 45, CouriersShiftsDuration: 9 * 3600},
		},
		stops: []dodoapi.StopSaleBySalesChannels{
			{
				StopSale:         dodoapi.StopSale{UnitID: unitA, StartedAt: stamp(stopStart)},
				SalesChannelName: dodoapi.SalesChannelDelivery,
				ChannelStopType:  dodoapi.ChannelStopTypeComplete,
			},
			{
				StopSale:         dodoapi.StopSale{UnitID: unitA, StartedAt: stamp(stopStart), EndedAt: &resumed},
				SalesChannelName: dodoapi.SalesChannelDelivery,
				ChannelStopType:  dodoapi.ChannelStopTypeComplete,
			},
			// wrong channel and wrong stop type must not count
			{
				StopSale:         dodoapi.StopSale{UnitID: unitA, StartedAt: stamp(stopStart)},
				SalesChannelName: dodoapi.SalesChannelDineIn,
				ChannelStopType:  dodoapi.ChannelStopTypeComplete,
			},
			{
				StopSale:         dodoapi.StopSale{UnitID: unitA, StartedAt: stamp(stopStart)},
				SalesChannelName: dodoapi.SalesChannelDelivery,
				ChannelStopType:  dodoapi.ChannelStopTypeRedirection,
			},
		},
	}

	rows, err := New(api).ProductivityBalance(context.Background(), []uuid.UUID{unitA, unitB})
	if err != nil {
		t.Fatalf("productivity balance: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("every requested unit must appear once, got %d rows", len(rows))
	}

	a := rows[0]
	if a.UnitID != unitA || a.SalesPerLaborHour != 1500.5 {
		t.Fatalf("unexpected unit A row: %+v", a)
	}
	if a.OrdersPerLaborHour != 5 {
		t.Fatalf("expected 5 orders per labor hour, got %v", a.OrdersPerLaborHour)
	}
	// open stop clipped to the window end (600s) plus the resumed one (180s)
	if a.StopSaleDurationSeconds != 780 {
		t.Fatalf("expected 780s stop duration, got %d", a.StopSaleDurationSeconds)
	}

	b := rows[1]
	if b.UnitID != unitB || b.SalesPerLaborHour != 0 || b.OrdersPerLaborHour != 0 || b.StopSaleDurationSeconds != 0 {
		t.Fatalf("expected zero-filled unit B row, got %+v", b)
	}
}

func TestRestaurantCookingTime(t *testing.T) {
	api := &fakeAPI{
		orders: []dodoapi.OrderHandoverTime{
			{UnitID: unitA, SalesChannel: dodoapi.SalesChannelDineIn, TrackingPendingTime: 60, CookingTime: 300},
			{UnitID: unitA, SalesChannel: dodoapi.SalesChannelDineIn, TrackingPendingTime: 120, CookingTime: 360},
			{UnitID: unitA, SalesChannel: dodoapi.SalesChannelDelivery, TrackingPendingTime: 999, CookingTime: 999},
		},
	}

	rows, err := New(api).RestaurantCookingTime(context.Background(), []uuid.UUID{unitA, unitB})
	if err != nil {
		t.Fatalf("restaurant cooking time: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// mean pending 90 + mean cooking 330
	if rows[0].AverageTrackingPendingAndCookingTime != 420 {
		t.Fatalf("expected 420s for unit A, got %d", rows[0].AverageTrackingPendingAndCookingTime)
	}
	if rows[1].AverageTrackingPendingAndCookingTime != 0 {
		t.Fatalf("expected zero row for unit B, got %+v", rows[1])
	}
}

func TestTotalCookingTime(t *testing.T) {
	api := &fakeAPI{
		orders: []dodoapi.OrderHandoverTime{
			{UnitID: unitA, SalesChannel: dodoapi.SalesChannelDineIn, CookingTime: 300},
			{UnitID: unitA, SalesChannel: dodoapi.SalesChannelDelivery, CookingTime: 500},
		},
	}

	rows, err := New(api).TotalCookingTime(context.Background(), []uuid.UUID{unitA})
	if err != nil {
		t.Fatalf("total cooking time: %v", err)
	}
	if len(rows) != 1 || rows[0].AverageCookingTime != 400 {
		t.Fatalf("expected 400s all-channel average, got %+v", rows)
	}
}

func TestHeatedShelfTimeKeepsUpstreamOmission(t *testing.T) {
	api := &fakeAPI{
		productivity: []dodoapi.UnitProductivityStatistics{
			{UnitID: unitA, AvgHeatedShelfTime: 210},
		},
	}

	rows, err := New(api).HeatedShelfTime(context.Background(), []uuid.UUID{unitA, unitB})
	if err != nil {
		t.Fatalf("heated shelf time: %v", err)
	}
	if len(rows) != 1 || rows[0].UnitID != unitA || rows[0].AverageHeatedShelfTime != 210 {
		t.Fatalf("expected the single upstream row back, got %+v", rows)
	}
}
