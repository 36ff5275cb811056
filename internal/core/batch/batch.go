// Package batch fans one logical multi-unit request out into per-unit
// upstream calls and folds the outcomes back into a single result.
// Failures of one unit never touch its siblings; only a broken request
// (bad parameters, dead credentials) aborts the whole batch
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	perr "opstats/internal/platform/errors"
)

// Kind is the coarse per-unit failure reason
type Kind uint8

const (
	// KindUnavailable means the upstream call failed outright
	KindUnavailable Kind = iota

	// KindTimeout means the upstream call ran out of time
	KindTimeout

	// KindNotFound means the upstream does not know the unit
	KindNotFound

	// KindParse means the payload arrived but its shape did not match
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not_found"
	case KindParse:
		return "parse"
	default:
		return "unavailable"
	}
}

// UnitError is a failure scoped to exactly one unit of a batch.
// It is created at the failing call, consumed by Aggregate, never stored
type UnitError[K comparable] struct {
	UnitID K
	Kind   Kind
	Cause  error
}

func (e UnitError[K]) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unit %v: %s: %v", e.UnitID, e.Kind, e.Cause)
	}
	return fmt.Sprintf("unit %v: %s", e.UnitID, e.Kind)
}

func (e UnitError[K]) Unwrap() error { return e.Cause }

// Fail wraps err into a UnitError for unit id, classifying the reason from
// the project error code
func Fail[K comparable](id K, err error) UnitError[K] {
	kind := KindUnavailable
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case perr.IsCode(err, perr.ErrorCodeTimeout):
		kind = KindTimeout
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		kind = KindNotFound
	case perr.IsCode(err, perr.ErrorCodeParse):
		kind = KindParse
	}
	return UnitError[K]{UnitID: id, Kind: kind, Cause: err}
}

// Result is the outcome of one fan-out. A unit id never appears both in
// Units and Errors; the union of both may be a strict subset of the
// requested set, because some upstreams silently omit idle units.
// Callers treat "absent from both" as unknown, not as success
type Result[K comparable, T any] struct {
	Units  []T
	Errors []K
}

// Option tunes a single Aggregate call
type Option func(*settings)

type settings struct{ width int }

// DefaultWidth caps how many sibling upstream calls may be in flight.
// Generous for a ≤30-unit batch but finite, so a burst of concurrent
// batches cannot multiply into unbounded upstream load
const DefaultWidth = 16

// WithWidth overrides the fan-out concurrency ceiling
func WithWidth(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.width = n
		}
	}
}

// Aggregate issues fetch for every id concurrently and partitions the
// outcomes. A UnitError (or anything classifiable as one) lands in
// Result.Errors under its unit id. A fatal error is returned as the
// aggregate's own failure as soon as one unit observes it; siblings
// still in flight are not cancelled and their outcomes are discarded
func Aggregate[K comparable, T any](
	ctx context.Context,
	ids []K,
	fetch func(context.Context, K) (T, error),
	opts ...Option,
) (Result[K, T], error) {
	cfg := settings{width: DefaultWidth}
	for _, o := range opts {
		o(&cfg)
	}

	type outcome struct {
		value T
		err   error
	}
	out := make([]outcome, len(ids))

	fatal := make(chan error, 1)
	sem := make(chan struct{}, cfg.width)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			v, err := fetch(ctx, ids[i])
			out[i] = outcome{value: v, err: err}
			if err != nil && perr.Fatal(err) {
				select {
				case fatal <- err:
				default:
				}
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case err := <-fatal:
		return Result[K, T]{}, err
	case <-done:
	}

	var res Result[K, T]
	for i, o := range out {
		switch {
		case o.err == nil:
			res.Units = append(res.Units, o.value)
		case perr.Fatal(o.err):
			return Result[K, T]{}, o.err
		default:
			var ue UnitError[K]
			if !errors.As(o.err, &ue) {
				ue = Fail(ids[i], o.err)
			}
			res.Errors = append(res.Errors, ue.UnitID)
		}
	}
	return res, nil
}

// IndexBy re-keys a slice of records by unit id so callers can join
// same-shaped batches without relying on completion order
func IndexBy[K comparable, T any](items []T, key func(T) K) map[K]T {
	m := make(map[K]T, len(items))
	for _, it := range items {
		m[key(it)] = it
	}
	return m
}

// GroupBy collects records sharing a unit id, preserving input order
// inside each group
func GroupBy[K comparable, T any](items []T, key func(T) K) map[K][]T {
	m := make(map[K][]T)
	for _, it := range items {
		k := key(it)
		m[k] = append(m[k], it)
	}
	return m
}
