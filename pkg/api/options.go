package api

import (
	"time"
)

const (
	defAddr         = ":8080"
	defReadTimeout  = 15 * time.Second
	defWriteTimeout = 15 * time.Second
	defShutdownWait = 30 * time.Second
)

// Options for serving the API
type Options struct {
	// Addr to listen on
	Addr string

	// Debug adds per-request logging
	Debug bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ShutdownWait is how long in-flight requests get to finish once we're told to stop
	ShutdownWait time.Duration
}

func (o *Options) SetDefaults() {
	if o.Addr == "" {
		o.Addr = defAddr
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = defReadTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defWriteTimeout
	}
	if o.ShutdownWait <= 0 {
		o.ShutdownWait = defShutdownWait
	}
}
