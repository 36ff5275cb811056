package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memStore struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	setKeys []string
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return nil, Miss
	}
	return raw, nil
}

func (m *memStore) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setKeys = append(m.setKeys, key)
	m.data[key] = val
	return nil
}

type payload struct {
	UnitID  int64   `json:"unit_id"`
	Revenue float64 `json:"revenue"`
}

func TestKeyShape(t *testing.T) {
	t.Parallel()

	got := Key("revenue", 389, "2024-03-01")
	want := "opstats:revenue:389:2024-03-01"
	if got != want {
		t.Fatalf("Key: got %q, want %q", got, want)
	}
}

func TestGetJSONRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newMemStore()
	in := payload{UnitID: 7, Revenue: 1234.5}

	if err := SetJSON(ctx, s, "k", in, DefaultTTL); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	out, err := GetJSON[payload](ctx, s, "k")
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out != in {
		t.Fatalf("round trip: got %+v, want %+v", out, in)
	}
}

func TestGetJSONMiss(t *testing.T) {
	t.Parallel()

	_, err := GetJSON[payload](context.Background(), newMemStore(), "absent")
	if !errors.Is(err, Miss) {
		t.Fatalf("expected Miss, got %v", err)
	}
}

func TestGetJSONCorruptEntryBehavesLikeMiss(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	s.data["k"] = []byte("{not json")
	_, err := GetJSON[payload](context.Background(), s, "k")
	if !errors.Is(err, Miss) {
		t.Fatalf("expected Miss, got %v", err)
	}
}

func TestGetOrFetchHitSkipsFetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newMemStore()
	if err := SetJSON(ctx, s, "k", payload{UnitID: 1}, DefaultTTL); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	called := false
	out, err := GetOrFetch(ctx, s, "k", DefaultTTL, func(context.Context) (payload, error) {
		called = true
		return payload{}, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if called {
		t.Fatal("fetch ran on a cache hit")
	}
	if out.UnitID != 1 {
		t.Fatalf("got %+v", out)
	}
}

func TestGetOrFetchMissWritesThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newMemStore()
	out, err := GetOrFetch(ctx, s, "k", DefaultTTL, func(context.Context) (payload, error) {
		return payload{UnitID: 9, Revenue: 50}, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if out.UnitID != 9 {
		t.Fatalf("got %+v", out)
	}
	if len(s.setKeys) != 1 || s.setKeys[0] != "k" {
		t.Fatalf("write-through keys: %v", s.setKeys)
	}
}

func TestGetOrFetchCacheFaultDegradesToFetch(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	s.getErr = errors.New("conn reset")
	out, err := GetOrFetch(context.Background(), s, "k", DefaultTTL, func(context.Context) (payload, error) {
		return payload{UnitID: 3}, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if out.UnitID != 3 {
		t.Fatalf("got %+v", out)
	}
}

func TestGetOrFetchFetchErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream down")
	_, err := GetOrFetch(context.Background(), newMemStore(), "k", DefaultTTL, func(context.Context) (payload, error) {
		return payload{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
