package storage

import (
	"time"

	"github.com/Veraticus/spendsmart/internal/service"
)

// DefaultFlushDebounce is how long the snapshot store waits after the last
// mutation before writing.
const DefaultFlushDebounce = 100 * time.Millisecond

// flushRetry bounds the synchronous retries of FlushNow.
var flushRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 20 * time.Millisecond,
	MaxDelay:     200 * time.Millisecond,
	Multiplier:   2,
}

type options struct {
	location *time.Location
	debounce time.Duration
	retry    service.RetryOptions
}

// Option configures a storage backend.
type Option func(*options)

// WithLocation sets the time zone used to bucket spending by day.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithFlushDebounce sets the write-behind delay of the snapshot store.
func WithFlushDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithFlushRetry overrides the retry policy used by FlushNow.
func WithFlushRetry(r service.RetryOptions) Option {
	return func(o *options) {
		o.retry = r
	}
}

func buildOptions(opts []Option) options {
	o := options{
		location: time.Local,
		debounce: DefaultFlushDebounce,
		retry:    flushRetry,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
