package core

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RaythaHQ/raytha-sub006/pkg/database"
	"github.com/RaythaHQ/raytha-sub006/pkg/dispatch"
	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/governor"
	"github.com/RaythaHQ/raytha-sub006/pkg/queue"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
	"github.com/RaythaHQ/raytha-sub006/pkg/worker"
)

// Service ties the queue, workers, governor & event dispatch together.
// It implements api.API.
type Service struct {
	db   database.Database
	qu   *queue.Queue
	reg  *worker.Registry
	pool *worker.Pool
	gov  *governor.Governor
	dsp  *dispatch.Dispatcher
	opts *Options
	log  *zap.Logger
}

// NewService builds a service over db. Governed functions are run with interp.
func NewService(db database.Database, interp governor.Interpreter, opts *Options, log *zap.Logger) (*Service, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}

	qu := queue.New(database.NewQueueDB(db), opts.Queue, log)
	reg := worker.NewRegistry()
	gov := governor.New(interp, opts.Governor, log)

	err := reg.Register(structs.KindGovernedFunction, gov.Handle)
	if err != nil {
		return nil, err
	}

	return &Service{
		db:   db,
		qu:   qu,
		reg:  reg,
		pool: worker.NewPool(qu, reg, opts.Worker, log),
		gov:  gov,
		dsp:  dispatch.NewDispatcher(db, qu, log),
		opts: opts,
		log:  log.Named("service"),
	}, nil
}

// Register adds a handler for a job kind. Must be called before Run.
func (s *Service) Register(kind string, h worker.Handler) error {
	return s.reg.Register(kind, h)
}

// Run blocks running workers, the reaper & any configured event sources until ctx is
// cancelled or one of them fails.
func (s *Service) Run(ctx context.Context) error {
	listener, canListen := s.db.(database.Listener)
	if s.opts.ListenChannel != "" && !canListen {
		return fmt.Errorf("%w database cannot listen for events", errors.ErrNotSupported)
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return s.pool.Run(ctx)
	})

	if s.opts.ReapAfter > 0 {
		eg.Go(func() error {
			return s.reap(ctx)
		})
	}

	if s.opts.ListenChannel != "" {
		eg.Go(func() error {
			return s.consume(ctx, "listen", func(ctx context.Context) (dispatch.Source, error) {
				stream, err := listener.Listen(ctx, s.opts.ListenChannel)
				if err != nil {
					return nil, err
				}
				return dispatch.FromStream(stream), nil
			})
		})
	}

	if s.opts.AMQP != nil {
		eg.Go(func() error {
			return s.consume(ctx, "amqp", func(ctx context.Context) (dispatch.Source, error) {
				return dispatch.NewAMQPSource(s.opts.AMQP, s.log)
			})
		})
	}

	return eg.Wait()
}

func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) Enqueue(ctx context.Context, req *structs.EnqueueRequest) (*structs.EnqueueResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w request is required", errors.ErrInvalidArg)
	}
	if len(req.Args) > 0 && !json.Valid(req.Args) {
		return nil, fmt.Errorf("%w args are not valid json", errors.ErrInvalidArg)
	}
	id, err := s.qu.Enqueue(ctx, req.Kind, req.Args)
	if err != nil {
		return nil, err
	}
	return &structs.EnqueueResponse{ID: id}, nil
}

func (s *Service) Dispatch(ctx context.Context, evt *structs.Event) (*structs.DispatchResponse, error) {
	ids, err := s.dsp.Dispatch(ctx, evt)
	return &structs.DispatchResponse{JobIDs: ids}, err
}

func (s *Service) Job(ctx context.Context, id string) (*structs.Job, error) {
	return s.qu.Job(ctx, id)
}

func (s *Service) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()
	return s.qu.Jobs(ctx, q)
}
