package governor

import (
	"context"
	stderrs "errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// Interpreter runs a function's code. It must return promptly once ctx is done.
type Interpreter interface {
	Execute(ctx context.Context, run *structs.FunctionRun) (*structs.FunctionResult, error)
}

// Governor bounds the number of functions running at once (process wide) and how long
// each may wait for a slot and then run.
type Governor struct {
	opts   *Options
	interp Interpreter
	sem    *semaphore.Weighted
	log    *zap.Logger
}

func New(interp Interpreter, opts *Options, log *zap.Logger) *Governor {
	if opts == nil {
		opts = DefaultOptions()
	}
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}

	g := &Governor{opts: opts, interp: interp, log: log.Named("governor")}
	if opts.MaxActive > 0 {
		g.sem = semaphore.NewWeighted(int64(opts.MaxActive))
	}
	return g
}

// Run waits up to the queue timeout for a slot then executes the function with the execute
// timeout. The slot is always released before Run returns.
func (g *Governor) Run(ctx context.Context, run *structs.FunctionRun) (*structs.FunctionResult, error) {
	if g.sem == nil {
		return nil, fmt.Errorf("%w: %s was not run", errors.ErrFunctionsDisabled, run.DeveloperName)
	}

	qctx, qcancel := context.WithTimeout(ctx, g.opts.QueueTimeout)
	err := g.sem.Acquire(qctx, 1)
	qcancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s waited %s", errors.ErrQueueTimeout, run.DeveloperName, g.opts.QueueTimeout)
	}
	defer g.sem.Release(1)

	ectx, ecancel := context.WithTimeout(ctx, g.opts.ExecuteTimeout)
	defer ecancel()

	start := time.Now()
	result, err := g.interp.Execute(ectx, run)
	took := time.Since(start)

	if err != nil {
		switch {
		case stderrs.Is(ectx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			err = fmt.Errorf("%w: %s ran for longer than %s", errors.ErrExecuteTimeout, run.DeveloperName, g.opts.ExecuteTimeout)
		case ctx.Err() != nil:
			err = ctx.Err()
		case !stderrs.Is(err, errors.ErrScript):
			err = fmt.Errorf("%w: %v", errors.ErrScript, err)
		}
		g.log.Debug("function failed", zap.String("function", run.DeveloperName), zap.Duration("took", took), zap.Error(err))
		return nil, err
	}

	g.log.Debug("function complete", zap.String("function", run.DeveloperName), zap.Duration("took", took))
	return result, nil
}
