package services

import (
	"time"

	"github.com/google/uuid"
)

type options struct {
	newID func() string
	now   func() time.Time
}

type Option func(*options)

// WithIDGenerator replaces uuid.NewString as the source of record ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

// WithClock replaces the wall clock used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp is the store-safe current time: UTC with millisecond precision,
// which every backend round-trips exactly.
func (o options) timestamp() time.Time {
	return o.now().UTC().Truncate(time.Millisecond)
}
