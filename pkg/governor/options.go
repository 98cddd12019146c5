package governor

import (
	"time"
)

const (
	DefaultMaxActive      = 5
	DefaultExecuteTimeout = 10 * time.Second
	DefaultQueueTimeout   = 10 * time.Second
)

// Options bound how many functions run at once and for how long.
type Options struct {
	// MaxActive is the number of functions that may run at once in this process.
	// Zero disables functions entirely.
	MaxActive int

	// ExecuteTimeout is how long a function may run before it is interrupted.
	ExecuteTimeout time.Duration

	// QueueTimeout is how long a function may wait for a free slot before giving up.
	QueueTimeout time.Duration
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		MaxActive:      DefaultMaxActive,
		ExecuteTimeout: DefaultExecuteTimeout,
		QueueTimeout:   DefaultQueueTimeout,
	}
}

func (o *Options) setDefaults() {
	if o.MaxActive < 0 {
		o.MaxActive = 0
	}
	if o.ExecuteTimeout <= 0 {
		o.ExecuteTimeout = DefaultExecuteTimeout
	}
	if o.QueueTimeout <= 0 {
		o.QueueTimeout = DefaultQueueTimeout
	}
}
