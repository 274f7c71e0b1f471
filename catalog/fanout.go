package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/willibrandon/nugetcatalog/observability"
)

// Task computes one unit's outcome. Returning ok == false marks the unit
// absent; a non-nil error is reported and also makes the unit absent.
type Task[K, T any] func(ctx context.Context, key K) (value T, ok bool, err error)

// UnitError attaches report properties to a unit failure. FanOut merges
// Properties into the stage and key it reports.
type UnitError struct {
	Err        error
	Properties map[string]string
}

func (e *UnitError) Error() string { return e.Err.Error() }

func (e *UnitError) Unwrap() error { return e.Err }

type outcome[K, T any] struct {
	key   K
	value T
	ok    bool
}

// FanOut runs task once per key, each on its own goroutine, and yields the
// present outcomes in completion order. A unit that fails or panics is
// reported to reporter and skipped; the rest of the batch is unaffected.
//
// Units share a context derived from ctx that is cancelled when ctx is, or
// when the consumer stops ranging. After cancellation FanOut stops waiting
// and returns; late units finish into a buffered channel and are dropped.
// Each range over the returned sequence runs a fresh batch.
func FanOut[K, T any](ctx context.Context, reporter ErrorReporter, stage string, keys []K, task Task[K, T]) iter.Seq2[K, T] {
	return func(yield func(K, T) bool) {
		if len(keys) == 0 {
			return
		}

		ctx, span := observability.StartStageSpan(ctx, stage, len(keys))
		defer span.End()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		results := make(chan outcome[K, T], len(keys))
		for _, key := range keys {
			go func() {
				results <- runUnit(ctx, reporter, stage, key, task)
			}()
		}

		for range keys {
			select {
			case <-ctx.Done():
				return
			case out := <-results:
				if !out.ok {
					continue
				}
				if !yield(out.key, out.value) {
					return
				}
			}
		}
	}
}

func runUnit[K, T any](ctx context.Context, reporter ErrorReporter, stage string, key K, task Task[K, T]) (out outcome[K, T]) {
	out.key = key

	defer func() {
		if r := recover(); r != nil {
			out = outcome[K, T]{key: key}
			reportUnit(ctx, reporter, stage, key, fmt.Errorf("panic: %v", r))
			observability.StageUnitsTotal.WithLabelValues(stage, "failed").Inc()
		}
	}()

	value, ok, err := task(ctx, key)
	switch {
	case err != nil:
		// Units cut short by cancellation are absent, not failed.
		if ctx.Err() == nil {
			reportUnit(ctx, reporter, stage, key, err)
			observability.StageUnitsTotal.WithLabelValues(stage, "failed").Inc()
		} else {
			observability.StageUnitsTotal.WithLabelValues(stage, "absent").Inc()
		}
		return out
	case !ok:
		observability.StageUnitsTotal.WithLabelValues(stage, "absent").Inc()
		return out
	}

	observability.StageUnitsTotal.WithLabelValues(stage, "present").Inc()
	out.value = value
	out.ok = true
	return out
}

func reportUnit[K any](ctx context.Context, reporter ErrorReporter, stage string, key K, err error) {
	if reporter == nil {
		return
	}
	props := map[string]string{}
	var unitErr *UnitError
	if errors.As(err, &unitErr) {
		for k, v := range unitErr.Properties {
			props[k] = v
		}
	}
	props[PropComponent] = stage
	props[PropStage] = stage
	props[PropKey] = fmt.Sprint(key)
	reporter.Report(ctx, err, props)
}
