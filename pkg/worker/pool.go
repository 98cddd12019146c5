package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/queue"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// Pool runs a fixed number of loops that each claim a job, run its handler and record
// the outcome.
type Pool struct {
	opts *Options
	qu   *queue.Queue
	reg  *Registry
	log  *zap.Logger
}

func NewPool(qu *queue.Queue, reg *Registry, opts *Options, log *zap.Logger) *Pool {
	if opts == nil {
		opts = &Options{}
	}
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{opts: opts, qu: qu, reg: reg, log: log.Named("worker")}
}

// Run starts the loops and blocks until ctx is cancelled and every loop has finished its
// current job.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info("starting workers",
		zap.Int("workers", p.opts.Workers),
		zap.Duration("poll_interval", p.opts.PollInterval),
		zap.Strings("kinds", p.reg.Kinds()),
	)

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.loop(ctx, id)
		}(i)
	}
	wg.Wait()

	p.log.Info("workers stopped")
	return nil
}

func (p *Pool) loop(ctx context.Context, id int) {
	log := p.log.With(zap.Int("loop", id))
	for {
		if !p.sleep(ctx) {
			return
		}

		job := p.qu.Dequeue(ctx)
		if job == nil {
			continue
		}
		p.process(ctx, log, job)
	}
}

// sleep waits for the poll interval or a wake signal. Returns false if we're shutting down.
func (p *Pool) sleep(ctx context.Context) bool {
	t := time.NewTimer(p.opts.PollInterval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
	case <-p.qu.Wake():
	}
	return true
}

func (p *Pool) process(ctx context.Context, log *zap.Logger, job *structs.Job) {
	log = log.With(zap.String("job_id", job.ID), zap.String("kind", job.Kind))
	start := time.Now()

	err := p.execute(ctx, job)
	if err != nil {
		log.Warn("job failed", zap.Error(err), zap.Duration("took", time.Since(start)))
	} else {
		log.Debug("job complete", zap.Duration("took", time.Since(start)))
	}

	// the outcome is recorded even if we were told to stop mid job
	wctx := context.WithoutCancel(ctx)
	if err != nil && ctx.Err() != nil {
		// interrupted by shutdown, another worker picks it up
		log.Info("requeueing job interrupted by shutdown", zap.Error(err))
		ferr := p.qu.Retry(wctx, job, 0)
		if ferr != nil {
			log.Error("failed to requeue job", zap.Error(ferr))
		}
		return
	}

	ferr := p.qu.Finish(wctx, job, err)
	if ferr != nil {
		log.Error("failed to record job outcome", zap.Error(ferr))
	}
}

// execute runs the job's handler, turning a panic into an error.
func (p *Pool) execute(ctx context.Context, job *structs.Job) (err error) {
	handler, ok := p.reg.Get(job.Kind)
	if !ok {
		return errors.NewHandlerError(job.Kind, job.ID, fmt.Errorf("%w %s", errors.ErrNoHandler, job.Kind))
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.NewHandlerError(job.Kind, job.ID, fmt.Errorf("panic: %v", r))
		}
	}()

	err = handler(ctx, p.qu.Meta(job))
	if err != nil {
		return errors.NewHandlerError(job.Kind, job.ID, err)
	}
	return nil
}
