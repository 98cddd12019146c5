package queue

const (
	defWakeBuffer = 16
)

// Options configure a Queue.
type Options struct {
	// WakeBuffer is how many pending wake-up signals are held for idle workers.
	// Signals beyond this are dropped; workers still find the work on their next poll.
	WakeBuffer int

	// Retry, if set, requeues jobs whose handler returns a Transient error.
	Retry *RetryPolicy
}

func (o *Options) setDefaults() {
	if o.WakeBuffer <= 0 {
		o.WakeBuffer = defWakeBuffer
	}
}
