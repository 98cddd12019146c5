package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// FunctionSource lists functions that react to a trigger.
type FunctionSource interface {
	Functions(ctx context.Context, trigger structs.Trigger) ([]*structs.Function, error)
}

// Enqueuer writes jobs; satisfied by *queue.Queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind string, payload interface{}) (string, error)
}

// Dispatcher turns domain events into governed-function jobs.
type Dispatcher struct {
	fns FunctionSource
	qu  Enqueuer
	log *zap.Logger
}

func NewDispatcher(fns FunctionSource, qu Enqueuer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{fns: fns, qu: qu, log: log.Named("dispatch")}
}

// Dispatch enqueues one job per active function whose trigger matches the event and
// returns the new job IDs. Nothing is run here.
//
// If an enqueue fails the IDs of jobs already written are returned along with the error.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *structs.Event) ([]string, error) {
	if evt == nil {
		return nil, fmt.Errorf("%w event is required", errors.ErrInvalidArg)
	}
	trigger := structs.ToTrigger(string(evt.Trigger))
	if trigger == "" {
		return nil, fmt.Errorf("%w unknown trigger %q", errors.ErrInvalidArg, evt.Trigger)
	}

	fns, err := d.fns.Functions(ctx, trigger)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, fn := range fns {
		if !fn.IsActive || fn.Trigger != trigger {
			continue
		}
		id, err := d.qu.Enqueue(ctx, structs.KindGovernedFunction, &structs.FunctionRun{
			FunctionID:    fn.ID,
			DeveloperName: fn.DeveloperName,
			Code:          fn.Code,
			Trigger:       trigger,
			ContentType:   evt.ContentType,
			Entity:        evt.Entity,
		})
		if err != nil {
			return ids, err
		}
		d.log.Debug(
			"function dispatched",
			zap.String("job_id", id),
			zap.String("function", fn.DeveloperName),
			zap.String("trigger", string(trigger)),
		)
		ids = append(ids, id)
	}
	return ids, nil
}
