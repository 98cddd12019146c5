package database

import (
	"context"
	"time"

	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// EventStream is a stream of domain events published through the database.
type EventStream interface {
	// Next blocks until an event arrives. A nil event with a nil error means
	// the stream has been closed.
	Next(ctx context.Context) (*structs.Event, error)
	Close() error
}

type Database interface {
	// InsertJob writes a new job record.
	InsertJob(ctx context.Context, j *structs.Job) error

	// ClaimJob atomically moves the oldest claimable Enqueued job to Processing
	// and returns it. If no job is claimable (nil, nil) is returned.
	//
	// Concurrent callers never receive the same job.
	ClaimJob(ctx context.Context) (*structs.Job, error)

	// UpdateProgress applies progress to a Processing job.
	//
	// Writes on a running job are fenced by `claim`, the job's number of retries when it
	// was claimed. Every requeue bumps the count so a worker whose claim was reaped can't
	// write over the worker that claimed the job after it.
	UpdateProgress(ctx context.Context, id string, claim int, p *structs.Progress) error

	// FinishJob moves a Processing job to a final state (Complete or Error).
	FinishJob(ctx context.Context, id string, claim int, st structs.Status, msg string) error

	// RequeueJob moves a Processing job back to Enqueued, bumping its retry count.
	// The job will not be claimed again before runAfter.
	RequeueJob(ctx context.Context, id string, claim int, runAfter time.Time) error

	// RequeueStale moves Processing jobs not modified since `before` back to Enqueued
	// and returns their IDs.
	RequeueStale(ctx context.Context, before time.Time) ([]string, error)

	Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error)

	// Functions returns active functions with the given trigger.
	Functions(ctx context.Context, trigger structs.Trigger) ([]*structs.Function, error)

	Close() error
}

// Listener is implemented by databases that can publish domain events.
type Listener interface {
	Listen(ctx context.Context, channel string) (EventStream, error)
}

// QueueDB is the subset of the database the job queue is allowed to call.
type QueueDB interface {
	InsertJob(ctx context.Context, j *structs.Job) error
	ClaimJob(ctx context.Context) (*structs.Job, error)

	// SetProgress records progress on a running job.
	SetProgress(ctx context.Context, j *structs.Job, p *structs.Progress) error

	// SetJobState sets a running job to either COMPLETE or ERROR.
	SetJobState(ctx context.Context, j *structs.Job, st structs.Status, msg string) error

	// Requeue returns a running job to the queue after the given delay.
	Requeue(ctx context.Context, j *structs.Job, delay time.Duration) error

	Job(ctx context.Context, id string) (*structs.Job, error)
	Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error)
}

func NewQueueDB(db Database) QueueDB {
	return newDefaultQDB(db)
}
