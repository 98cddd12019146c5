package worker

import (
	"time"
)

const (
	defWorkers      = 4
	defPollInterval = 500 * time.Millisecond
)

type Options struct {
	// Workers is the number of polling loops; each runs at most one job at a time.
	Workers int

	// PollInterval is how long a loop sleeps between claims, unless woken by a new job.
	PollInterval time.Duration
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = defWorkers
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defPollInterval
	}
}
