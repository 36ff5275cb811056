package batch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	perr "opstats/internal/platform/errors"
)

func TestAggregatePartitionsOutcomes(t *testing.T) {
	t.Parallel()

	ids := []int64{1, 2, 3, 4, 5}
	bad := map[int64]bool{2: true, 4: true}

	res, err := Aggregate(context.Background(), ids, func(_ context.Context, id int64) (int64, error) {
		if bad[id] {
			return 0, Fail(id, errors.New("boom"))
		}
		return id * 10, nil
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if got, want := len(res.Units), 3; got != want {
		t.Fatalf("units: got %d, want %d", got, want)
	}
	if got, want := len(res.Errors), 2; got != want {
		t.Fatalf("errors: got %d, want %d", got, want)
	}

	sort.Slice(res.Errors, func(i, j int) bool { return res.Errors[i] < res.Errors[j] })
	if res.Errors[0] != 2 || res.Errors[1] != 4 {
		t.Fatalf("error ids: got %v, want [2 4]", res.Errors)
	}
	for _, v := range res.Units {
		if bad[v/10] {
			t.Fatalf("failed unit leaked into results: %d", v)
		}
	}
}

func TestAggregateFatalAbortsBatch(t *testing.T) {
	t.Parallel()

	ids := []int64{1, 2, 3}
	res, err := Aggregate(context.Background(), ids, func(_ context.Context, id int64) (int64, error) {
		if id == 2 {
			return 0, perr.Unauthorizedf("token expired")
		}
		return id, nil
	})
	if err == nil {
		t.Fatal("expected fatal error, got nil")
	}
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("error code: got %v", perr.CodeOf(err))
	}
	if len(res.Units) != 0 || len(res.Errors) != 0 {
		t.Fatalf("aborted batch must be empty, got %+v", res)
	}
}

func TestAggregateFatalReturnsBeforeSiblingsFinish(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	ids := []int64{1, 2}
	res, err := Aggregate(context.Background(), ids, func(_ context.Context, id int64) (int64, error) {
		if id == 1 {
			<-release
			return id, nil
		}
		return 0, perr.ValidationErrf("bad period")
	})
	if err == nil {
		t.Fatal("expected fatal error, got nil")
	}
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("error code: got %v", perr.CodeOf(err))
	}
	if len(res.Units) != 0 || len(res.Errors) != 0 {
		t.Fatalf("aborted batch must be empty, got %+v", res)
	}
}

func TestAggregateRespectsWidth(t *testing.T) {
	t.Parallel()

	var inFlight, peak int64
	ids := make([]int, 20)
	for i := range ids {
		ids[i] = i
	}

	_, err := Aggregate(context.Background(), ids, func(_ context.Context, id int) (int, error) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return id, nil
	}, WithWidth(3))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if p := atomic.LoadInt64(&peak); p > 3 {
		t.Fatalf("concurrency ceiling breached: peak %d", p)
	}
}

func TestAggregateAllUnitsVisited(t *testing.T) {
	t.Parallel()

	ids := []int64{10, 20, 30, 40}
	var mu sync.Mutex
	seen := map[int64]int{}

	res, err := Aggregate(context.Background(), ids, func(_ context.Context, id int64) (int64, error) {
		mu.Lock()
		seen[id]++
		mu.Unlock()
		return id, nil
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(res.Units) != len(ids) {
		t.Fatalf("units: got %d, want %d", len(res.Units), len(ids))
	}
	for _, id := range ids {
		if seen[id] != 1 {
			t.Fatalf("unit %d fetched %d times", id, seen[id])
		}
	}
}

func TestFailClassifiesKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"timeout code", perr.Timeoutf("slow upstream"), KindTimeout},
		{"not found", perr.NotFoundf("unit gone"), KindNotFound},
		{"parse", perr.Parsef("bad cell"), KindParse},
		{"plain", errors.New("conn refused"), KindUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fail(int64(7), tc.err).Kind; got != tc.want {
				t.Fatalf("kind: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIndexByAndGroupBy(t *testing.T) {
	t.Parallel()

	type rec struct {
		Unit int64
		N    int
	}
	items := []rec{{1, 10}, {2, 20}, {1, 11}}

	byUnit := IndexBy(items, func(r rec) int64 { return r.Unit })
	if byUnit[2].N != 20 {
		t.Fatalf("IndexBy: got %+v", byUnit[2])
	}
	// IndexBy keeps the last record per key
	if byUnit[1].N != 11 {
		t.Fatalf("IndexBy last-wins: got %+v", byUnit[1])
	}

	groups := GroupBy(items, func(r rec) int64 { return r.Unit })
	if len(groups[1]) != 2 || groups[1][0].N != 10 || groups[1][1].N != 11 {
		t.Fatalf("GroupBy order: got %+v", groups[1])
	}
}
