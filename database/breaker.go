package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/models"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker placed around every
// collection.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         1,
		Interval:            0,
		Timeout:             5 * time.Second,
		ConsecutiveFailures: 3,
	}
}

func newBreaker(name string, s BreakerSettings) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
		// a miss or a cancelled request says nothing about the store's health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNoRecord) ||
				errors.Is(err, context.Canceled)
		},
	})
}

// breakerCollection fails fast while its store is unhealthy.
type breakerCollection struct {
	next Collection
	cb   *gobreaker.CircuitBreaker
}

func withBreaker(next Collection, cb *gobreaker.CircuitBreaker) Collection {
	return breakerCollection{next: next, cb: cb}
}

func (c breakerCollection) FindOne(ctx context.Context, filter Filter) (models.RawRecord, error) {
	return guard(c.cb, func() (models.RawRecord, error) { return c.next.FindOne(ctx, filter) })
}

func (c breakerCollection) FindMany(ctx context.Context, filter Filter) ([]models.RawRecord, error) {
	return guard(c.cb, func() ([]models.RawRecord, error) { return c.next.FindMany(ctx, filter) })
}

func (c breakerCollection) InsertOne(ctx context.Context, doc models.RawRecord) (string, error) {
	return guard(c.cb, func() (string, error) { return c.next.InsertOne(ctx, doc) })
}

func (c breakerCollection) UpdateOne(ctx context.Context, filter Filter, update Update) (models.RawRecord, error) {
	return guard(c.cb, func() (models.RawRecord, error) { return c.next.UpdateOne(ctx, filter, update) })
}

func (c breakerCollection) ToggleOne(ctx context.Context, filter Filter, toggle Toggle) (models.RawRecord, error) {
	return guard(c.cb, func() (models.RawRecord, error) { return c.next.ToggleOne(ctx, filter, toggle) })
}

func (c breakerCollection) DeleteOne(ctx context.Context, filter Filter) error {
	_, err := guard(c.cb, func() (struct{}, error) { return struct{}{}, c.next.DeleteOne(ctx, filter) })
	return err
}

func guard[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, fmt.Errorf("%w: %s: %v", errs.ErrCircuitBreakerOpen, cb.Name(), err)
	}
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}
