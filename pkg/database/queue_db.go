package database

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

const (
	// maxErrorMessage is the longest error message we'll write to a job record
	maxErrorMessage = 4000
)

type defaultQDB struct {
	db Database
}

// NewQueueDB returns a new QueueDB
func newDefaultQDB(db Database) *defaultQDB {
	return &defaultQDB{db: db}
}

func (q *defaultQDB) InsertJob(ctx context.Context, j *structs.Job) error {
	if j.ID == "" || j.Kind == "" {
		return fmt.Errorf("%w job requires an id and kind", errors.ErrInvalidArg)
	}
	return q.db.InsertJob(ctx, j)
}

func (q *defaultQDB) ClaimJob(ctx context.Context) (*structs.Job, error) {
	return q.db.ClaimJob(ctx)
}

// SetProgress applies progress to the job in the database and mirrors it on the given struct.
func (q *defaultQDB) SetProgress(ctx context.Context, j *structs.Job, p *structs.Progress) error {
	if p.IsEmpty() {
		return nil
	}
	if p.PercentComplete != nil {
		pct := structs.ClampPercent(*p.PercentComplete)
		p.PercentComplete = &pct
	}

	err := q.db.UpdateProgress(ctx, j.ID, j.NumberOfRetries, p)
	if err != nil {
		return err
	}

	j.StatusInfo = structs.AppendInfo(j.StatusInfo, p.AppendInfo)
	if p.PercentComplete != nil {
		j.PercentComplete = *p.PercentComplete
	}
	if p.NextStep {
		j.TaskStep++
	}
	return nil
}

// SetJobState sets the state of the given job to the given status.
// This func is restricted to setting a final state (complete, error).
func (q *defaultQDB) SetJobState(ctx context.Context, j *structs.Job, st structs.Status, msg string) error {
	// only allow setting selected states
	if !structs.IsFinalStatus(st) {
		return fmt.Errorf("%w %s is not a permitted status (complete, error)", errors.ErrInvalidState, st)
	}
	if st == structs.COMPLETE {
		msg = ""
	} else {
		msg = truncate(msg, maxErrorMessage)
	}

	err := q.db.FinishJob(ctx, j.ID, j.NumberOfRetries, st, msg)
	if err != nil {
		return err
	}

	now := timeNow()
	j.Status = st
	j.ErrorMessage = msg
	j.PercentComplete = 100
	j.LastModificationTime = now
	j.CompletionTime = &now
	return nil
}

func (q *defaultQDB) Requeue(ctx context.Context, j *structs.Job, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	runAfter := timeNow().Add(delay)
	err := q.db.RequeueJob(ctx, j.ID, j.NumberOfRetries, runAfter)
	if err != nil {
		return err
	}
	j.Status = structs.ENQUEUED
	j.NumberOfRetries++
	j.RunAfter = runAfter
	return nil
}

// Job returns a single job by id.
func (q *defaultQDB) Job(ctx context.Context, id string) (*structs.Job, error) {
	jobs, err := q.db.Jobs(ctx, &structs.Query{JobIDs: []string{id}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w job %s", errors.ErrNotFound, id)
	}
	return jobs[0], nil
}

func (q *defaultQDB) Jobs(ctx context.Context, qry *structs.Query) ([]*structs.Job, error) {
	if qry == nil {
		qry = &structs.Query{}
	}
	qry.Sanitize()
	return q.db.Jobs(ctx, qry)
}

// truncate cuts s to at most n bytes without splitting a rune. Invalid UTF-8 is dropped
// since text columns reject it.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
