package service

import "time"

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now; every status and timestamp decision of one call uses a single reading.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
