package ideas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker placed in front of a Store.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

type breakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps store with a circuit breaker. While the breaker is open,
// calls fail immediately with ErrUnavailable. Conflicts and empty results
// are normal outcomes and do not count as failures.
func WithBreaker(store Store, s BreakerSettings, logger *slog.Logger) Store {
	logger = logger.With("system", "breaker", "name", s.Name)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("breaker state changed", "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrConflict) ||
				errors.Is(err, ErrEmpty) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &breakerStore{next: store, cb: cb}
}

func execute[T any](b *breakerStore, fn func() (T, error)) (T, error) {
	var zero T

	v, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return zero, err
	}
	return v.(T), nil
}

func (b *breakerStore) Count(ctx context.Context) (int, error) {
	return execute(b, func() (int, error) {
		return b.next.Count(ctx)
	})
}

func (b *breakerStore) Insert(ctx context.Context, idea Idea) (Idea, error) {
	return execute(b, func() (Idea, error) {
		return b.next.Insert(ctx, idea)
	})
}

func (b *breakerStore) InsertMany(ctx context.Context, ideas []Idea) (int, error) {
	return execute(b, func() (int, error) {
		return b.next.InsertMany(ctx, ideas)
	})
}

func (b *breakerStore) ListByRecency(ctx context.Context) ([]Idea, error) {
	return execute(b, func() ([]Idea, error) {
		return b.next.ListByRecency(ctx)
	})
}

func (b *breakerStore) SampleOne(ctx context.Context) (Idea, error) {
	return execute(b, func() (Idea, error) {
		return b.next.SampleOne(ctx)
	})
}
