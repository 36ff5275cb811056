package revenue

import (
	"context"
	"sync"
	"testing"
	"time"

	"opstats/internal/platform/cache"
	"opstats/internal/upstream/publicapi"

	perr "opstats/internal/platform/errors"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls map[int64]int
	docs  map[int64]publicapi.UnitOperationalStatistics
	fail  map[int64]error
}

func (f *fakeAPI) OperationalStatisticsForTodayAndWeekBefore(
	ctx context.Context,
	unitID int64,
) (publicapi.UnitOperationalStatistics, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[int64]int{}
	}
	f.calls[unitID]++
	f.mu.Unlock()

	if err, ok := f.fail[unitID]; ok {
		return publicapi.UnitOperationalStatistics{}, err
	}
	return f.docs[unitID], nil
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

func doc(unitID, today, weekBefore int64) publicapi.UnitOperationalStatistics {
	return publicapi.UnitOperationalStatistics{
		UnitID:               unitID,
		Today:                publicapi.OperationalStatistics{Revenue: today},
		WeekBeforeToThisTime: publicapi.OperationalStatistics{Revenue: weekBefore},
	}
}

func TestStatistics(t *testing.T) {
	api := &fakeAPI{docs: map[int64]publicapi.UnitOperationalStatistics{
		389: doc(389, 120, 100),
		390: doc(390, 80, 100),
	}}
	svc := New(api, newMemStore(), 0)

	report, err := svc.Statistics(context.Background(), []int64{389, 390})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if len(report.Units) != 2 || len(report.ErrorUnitIDs) != 0 {
		t.Fatalf("unexpected report shape: %+v", report)
	}
	if report.Units[0].Today != 120 || report.Units[0].FromWeekBeforePercent != 20 {
		t.Fatalf("unexpected first unit: %+v", report.Units[0])
	}
	if report.Units[1].FromWeekBeforePercent != -20 {
		t.Fatalf("unexpected second unit: %+v", report.Units[1])
	}
	if report.Total.Today != 200 || report.Total.FromWeekBeforePercent != 0 {
		t.Fatalf("unexpected total: %+v", report.Total)
	}
}

func TestStatisticsIsolatesUnitFailures(t *testing.T) {
	api := &fakeAPI{
		docs: map[int64]publicapi.UnitOperationalStatistics{389: doc(389, 100, 50)},
		fail: map[int64]error{390: perr.Unavailablef("boom")},
	}
	svc := New(api, newMemStore(), 0)

	report, err := svc.Statistics(context.Background(), []int64{389, 390})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if len(report.Units) != 1 || report.Units[0].UnitID != 389 {
		t.Fatalf("expected unit 389 only, got %+v", report.Units)
	}
	if len(report.ErrorUnitIDs) != 1 || report.ErrorUnitIDs[0] != 390 {
		t.Fatalf("expected error for unit 390, got %v", report.ErrorUnitIDs)
	}
	if report.Total.Today != 100 {
		t.Fatalf("total must cover answered units only, got %+v", report.Total)
	}
}

func TestStatisticsFatalAborts(t *testing.T) {
	api := &fakeAPI{fail: map[int64]error{390: perr.Unauthorizedf("expired")}}
	svc := New(api, newMemStore(), 0)

	_, err := svc.Statistics(context.Background(), []int64{389, 390})
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestStatisticsSecondCallHitsCache(t *testing.T) {
	api := &fakeAPI{docs: map[int64]publicapi.UnitOperationalStatistics{389: doc(389, 100, 50)}}
	svc := New(api, newMemStore(), 0)

	for i := 0; i < 2; i++ {
		if _, err := svc.Statistics(context.Background(), []int64{389}); err != nil {
			t.Fatalf("statistics #%d: %v", i+1, err)
		}
	}
	if got := api.calls[389]; got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}
