package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"opstats/internal/core/period"
	"opstats/internal/platform/cache"
	"opstats/internal/upstream/dodoapi"
	"opstats/internal/upstream/officemanager"
)

var (
	unitA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	unitB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type fakeAPI struct {
	// keyed by the window start day so today and week before differ
	statistics map[string][]dodoapi.UnitDeliveryStatistics
	vouchers   map[string][]dodoapi.LateDeliveryVoucher
}

func (f *fakeAPI) DeliveryStatistics(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.UnitDeliveryStatistics, error) {
	return f.statistics[p.DayBucket()], nil
}

func (f *fakeAPI) LateDeliveryVouchers(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.LateDeliveryVoucher, error) {
	return f.vouchers[p.DayBucket()], nil
}

func TestSpeedBlankFillsOmittedUnits(t *testing.T) {
	api := &fakeAPI{statistics: map[string][]dodoapi.UnitDeliveryStatistics{
		period.Today().DayBucket(): {
			{
				UnitID:                          unitA,
				AvgCookingTime:                  600,
				AvgDeliveryOrderFulfillmentTime: 1800,
				AvgHeatedShelfTime:              120,
				AvgOrderTripTime:                900,
			},
		},
	}}

	rows, err := New(api).Speed(context.Background(), []uuid.UUID{unitA, unitB})
	if err != nil {
		t.Fatalf("speed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].AverageCookingTime != 600 || rows[0].AverageOrderTripTime != 900 {
		t.Fatalf("unexpected unit A row: %+v", rows[0])
	}
	if rows[1] != (UnitDeliverySpeed{UnitID: unitB}) {
		t.Fatalf("expected zero-filled unit B row, got %+v", rows[1])
	}
}

func TestProductivity(t *testing.T) {
	today := period.Today().DayBucket()
	week := period.WeekBeforeToThisTime().DayBucket()
	api := &fakeAPI{statistics: map[string][]dodoapi.UnitDeliveryStatistics{
		today: {
			{UnitID: unitA, DeliveryOrdersCount: 54, CouriersShiftsDuration: 9 * 3600},
		},
		week: {
			{UnitID: unitA, DeliveryOrdersCount: 45, CouriersShiftsDuration: 9 * 3600},
		},
	}}

	rows, err := New(api).Productivity(context.Background(), []uuid.UUID{unitA, unitB})
	if err != nil {
		t.Fatalf("productivity: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	a := rows[0]
	if a.OrdersPerLaborHourToday != 6 || a.OrdersPerLaborHourWeekBefore != 5 {
		t.Fatalf("unexpected throughput: %+v", a)
	}
	if a.FromWeekBeforePercent != 20 {
		t.Fatalf("expected +20%%, got %d", a.FromWeekBeforePercent)
	}

	// zero baseline pins the delta to zero
	if rows[1].FromWeekBeforePercent != 0 {
		t.Fatalf("expected 0%% for zero-filled unit, got %d", rows[1].FromWeekBeforePercent)
	}
}

func TestBeingLateCertificates(t *testing.T) {
	today := period.Today().DayBucket()
	week := period.WeekBeforeToThisTime().DayBucket()
	api := &fakeAPI{vouchers: map[string][]dodoapi.LateDeliveryVoucher{
		today: {{UnitID: unitA}, {UnitID: unitA}},
		week:  {{UnitID: unitA}, {UnitID: unitB}},
	}}

	rows, err := New(api).BeingLateCertificates(context.Background(), []uuid.UUID{unitA, unitB})
	if err != nil {
		t.Fatalf("being late certificates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CertificatesCountToday != 2 || rows[0].CertificatesCountWeekBefore != 1 {
		t.Fatalf("unexpected unit A counts: %+v", rows[0])
	}
	if rows[1].CertificatesCountToday != 0 || rows[1].CertificatesCountWeekBefore != 1 {
		t.Fatalf("unexpected unit B counts: %+v", rows[1])
	}
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.Miss
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	return nil
}

type fakeCertConsole struct {
	mu    sync.Mutex
	calls int
	rows  map[int64][]officemanager.BeingLateCertificates
	fail  map[int64]error
}

func (f *fakeCertConsole) BeingLateCertificates(
	ctx context.Context,
	p period.Period,
	units []officemanager.UnitIDAndName,
) ([]officemanager.BeingLateCertificates, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	id := units[0].ID
	if err := f.fail[id]; err != nil {
		return nil, err
	}
	return f.rows[id], nil
}

func TestConsoleCertificates(t *testing.T) {
	console := &fakeCertConsole{
		rows: map[int64][]officemanager.BeingLateCertificates{
			389: {{UnitID: 389, UnitName: "Москва 4-1", Count: 3}},
		},
		fail: map[int64]error{42: errors.New("console is down")},
	}
	units := []officemanager.UnitIDAndName{
		{ID: 389, Name: "Москва 4-1"},
		{ID: 465, Name: "Москва 4-2"},
		{ID: 42, Name: "Москва 4-3"},
	}

	got, err := ConsoleCertificates(context.Background(), console, newMemStore(), units, 0)
	if err != nil {
		t.Fatalf("console certificates: %v", err)
	}
	if len(got.Units) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got.Units))
	}
	byID := map[int64]officemanager.BeingLateCertificates{}
	for _, row := range got.Units {
		byID[row.UnitID] = row
	}
	if byID[389].Count != 3 {
		t.Fatalf("unexpected unit 389 row: %+v", byID[389])
	}
	// report omission means zero certificates, not missing data
	if row := byID[465]; row.Count != 0 || row.UnitName != "Москва 4-2" {
		t.Fatalf("expected zero row for unit 465, got %+v", row)
	}
	if len(got.ErrorUnitIDs) != 1 || got.ErrorUnitIDs[0] != 42 {
		t.Fatalf("expected unit 42 in errors, got %v", got.ErrorUnitIDs)
	}
}

func TestConsoleCertificatesServesRepeatsFromCache(t *testing.T) {
	console := &fakeCertConsole{
		rows: map[int64][]officemanager.BeingLateCertificates{
			389: {{UnitID: 389, UnitName: "Москва 4-1", Count: 1}},
		},
	}
	store := newMemStore()
	units := []officemanager.UnitIDAndName{{ID: 389, Name: "Москва 4-1"}}

	for i := 0; i < 3; i++ {
		got, err := ConsoleCertificates(context.Background(), console, store, units, 0)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(got.Units) != 1 || got.Units[0].Count != 1 {
			t.Fatalf("call %d: unexpected report %+v", i, got)
		}
	}
	if console.calls != 1 {
		t.Fatalf("expected 1 console call, got %d", console.calls)
	}
}
