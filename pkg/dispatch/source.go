package dispatch

import (
	"context"
	stderrs "errors"

	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/pkg/database"
	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// Ack is called once an event has been dispatched, with the dispatch error (if any).
type Ack func(err error)

// Source is somewhere domain events arrive from.
type Source interface {
	// Next blocks for the next event. A nil event and nil error means the source is closed.
	//
	// An ErrInvalidArg error means one event was unreadable; the source is still usable.
	Next(ctx context.Context) (*structs.Event, Ack, error)
	Close() error
}

type streamSource struct {
	stream database.EventStream
}

// FromStream reads events from a database stream. Notifications can't be redelivered
// so there's nothing to acknowledge.
func FromStream(stream database.EventStream) Source {
	return &streamSource{stream: stream}
}

func (s *streamSource) Next(ctx context.Context) (*structs.Event, Ack, error) {
	evt, err := s.stream.Next(ctx)
	return evt, func(error) {}, err
}

func (s *streamSource) Close() error {
	return s.stream.Close()
}

// Consume dispatches events from src until ctx is done or the source closes.
//
// Unreadable events are logged & skipped; any other source error is returned.
func (d *Dispatcher) Consume(ctx context.Context, src Source) error {
	for {
		evt, ack, err := src.Next(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if stderrs.Is(err, errors.ErrInvalidArg) {
			d.log.Warn("skipping unreadable event", zap.Error(err))
			continue
		} else if err != nil {
			return err
		}
		if evt == nil {
			return nil
		}

		ids, err := d.Dispatch(ctx, evt)
		if err != nil {
			d.log.Error(
				"failed to dispatch event",
				zap.String("trigger", string(evt.Trigger)),
				zap.Strings("job_ids", ids),
				zap.Error(err),
			)
		}
		ack(err)
	}
}
