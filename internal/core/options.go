package core

import (
	"time"

	"github.com/RaythaHQ/raytha-sub006/pkg/dispatch"
	"github.com/RaythaHQ/raytha-sub006/pkg/governor"
	"github.com/RaythaHQ/raytha-sub006/pkg/queue"
	"github.com/RaythaHQ/raytha-sub006/pkg/worker"
)

const (
	defReconnectDelay = 5 * time.Second
	minReapFrequency  = time.Second
)

// Options passed to the Service on creation
type Options struct {
	Queue    *queue.Options
	Worker   *worker.Options
	Governor *governor.Options

	// ReapAfter requeues Processing jobs that haven't been updated for this long.
	// Zero disables the reaper; pick something well over the longest expected job.
	ReapAfter time.Duration

	// ReapFrequency is how often the reaper looks. Defaults to half of ReapAfter.
	ReapFrequency time.Duration

	// ListenChannel, if set, dispatches events published on this database channel
	ListenChannel string

	// AMQP, if set, dispatches events consumed from this queue
	AMQP *dispatch.AMQPOptions

	// ReconnectDelay is the pause before reopening an event source that failed
	ReconnectDelay time.Duration
}

func (o *Options) setDefaults() {
	if o.Queue == nil {
		o.Queue = &queue.Options{}
	}
	if o.Worker == nil {
		o.Worker = &worker.Options{}
	}
	if o.Governor == nil {
		o.Governor = governor.DefaultOptions()
	}
	if o.ReapAfter > 0 && o.ReapFrequency <= 0 {
		o.ReapFrequency = o.ReapAfter / 2
	}
	if o.ReapAfter > 0 && o.ReapFrequency < minReapFrequency {
		o.ReapFrequency = minReapFrequency
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = defReconnectDelay
	}
}
