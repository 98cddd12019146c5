package queue

import (
	"context"
	stderrs "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/internal/utils"
	"github.com/RaythaHQ/raytha-sub006/pkg/database"
	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// Queue is a durable job queue backed by a database.
//
// Enqueue writes job records, Dequeue claims them exclusively for one caller and
// Complete / Fail / Retry write the outcome.
type Queue struct {
	opts *Options
	db   database.QueueDB
	log  *zap.Logger
	wake chan struct{}
}

func New(db database.QueueDB, opts *Options, log *zap.Logger) *Queue {
	if opts == nil {
		opts = &Options{}
	}
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		opts: opts,
		db:   db,
		log:  log.Named("queue"),
		wake: make(chan struct{}, opts.WakeBuffer),
	}
}

// Enqueue serialises the payload and writes a new job of the given kind. The job ID is returned
// as soon as the record is stored; the job runs later on some worker.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload interface{}) (string, error) {
	if kind == "" {
		return "", fmt.Errorf("%w job kind is required", errors.ErrInvalidArg)
	}

	args, err := Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w payload for %s could not be serialised: %v", errors.ErrInvalidArg, kind, err)
	}

	job := &structs.Job{
		ID:     utils.NewID(),
		Kind:   kind,
		Args:   args,
		Status: structs.ENQUEUED,
	}
	err = q.db.InsertJob(ctx, job)
	if err != nil {
		return "", err
	}

	q.log.Debug("enqueued job", zap.String("job_id", job.ID), zap.String("kind", kind))
	q.notify()
	return job.ID, nil
}

// Dequeue claims the oldest pending job or returns nil if there is nothing to do.
//
// Claim failures are logged and reported as nothing to do; the caller will poll again.
func (q *Queue) Dequeue(ctx context.Context) *structs.Job {
	job, err := q.db.ClaimJob(ctx)
	if err != nil {
		if ctx.Err() == nil {
			q.log.Warn("failed to claim job", zap.Error(err))
		}
		return nil
	}
	return job
}

// Wake is signalled (best effort) whenever a job is enqueued by this process.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Meta returns the handle a handler uses to read its args & report progress.
func (q *Queue) Meta(job *structs.Job) *Meta {
	return &Meta{Job: job, db: q.db}
}

// Complete marks a claimed job as successfully finished.
func (q *Queue) Complete(ctx context.Context, job *structs.Job) error {
	return q.db.SetJobState(ctx, job, structs.COMPLETE, "")
}

// Fail marks a claimed job as errored with the given reason.
func (q *Queue) Fail(ctx context.Context, job *structs.Job, reason error) error {
	msg := "unknown error"
	var he *errors.HandlerError
	if stderrs.As(reason, &he) && he.Err != nil {
		msg = he.Err.Error()
	} else if reason != nil {
		msg = reason.Error()
	}
	return q.db.SetJobState(ctx, job, structs.ERROR, msg)
}

// Finish writes the outcome of running a job. A nil error completes the job. A transient error
// is retried if we have a retry policy that allows another attempt, anything else errors the job.
func (q *Queue) Finish(ctx context.Context, job *structs.Job, result error) error {
	if result == nil {
		return q.Complete(ctx, job)
	}

	if IsTransient(result) && q.opts.Retry != nil {
		delay, ok := q.opts.Retry.Next(job.NumberOfRetries + 1)
		if ok {
			q.log.Info("requeueing job after transient error",
				zap.String("job_id", job.ID),
				zap.Int("retry", job.NumberOfRetries+1),
				zap.Duration("delay", delay),
				zap.Error(result),
			)
			return q.Retry(ctx, job, delay)
		}
	}

	return q.Fail(ctx, job, result)
}

// Retry puts a claimed job back in the queue, claimable after delay.
func (q *Queue) Retry(ctx context.Context, job *structs.Job, delay time.Duration) error {
	err := q.db.Requeue(ctx, job, delay)
	if err == nil && delay <= 0 {
		q.notify()
	}
	return err
}

func (q *Queue) Job(ctx context.Context, id string) (*structs.Job, error) {
	return q.db.Job(ctx, id)
}

func (q *Queue) Jobs(ctx context.Context, qry *structs.Query) ([]*structs.Job, error) {
	return q.db.Jobs(ctx, qry)
}

// notify raises the wake signal without blocking
func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
