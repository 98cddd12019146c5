package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// Memory is an in process database. Claims are serialised by a single lock which
// gives the same guarantees row locking does for the SQL databases.
//
// Intended for tests and single process deployments; nothing survives a restart.
type Memory struct {
	lock sync.Mutex
	jobs map[string]*structs.Job
	fns  map[string]*structs.Function

	// insertion order, so records created in the same instant keep FIFO order
	order map[string]int64
	seq   int64

	events memoryEvents
}

func NewMemory() *Memory {
	return &Memory{
		jobs:  map[string]*structs.Job{},
		fns:   map[string]*structs.Function{},
		order: map[string]int64{},
	}
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) InsertJob(ctx context.Context, j *structs.Job) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.jobs[j.ID]; ok {
		return fmt.Errorf("%w job %s already exists", errors.ErrInvalidArg, j.ID)
	}
	if j.CreationTime.IsZero() {
		j.CreationTime = timeNow()
	}
	if j.LastModificationTime.IsZero() {
		j.LastModificationTime = j.CreationTime
	}
	if j.RunAfter.IsZero() {
		j.RunAfter = j.CreationTime
	}

	m.seq++
	m.order[j.ID] = m.seq
	m.jobs[j.ID] = copyJob(j)
	return nil
}

func (m *Memory) ClaimJob(ctx context.Context) (*structs.Job, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := timeNow()
	var oldest *structs.Job
	for _, j := range m.jobs {
		if j.Status != structs.ENQUEUED || j.RunAfter.After(now) {
			continue
		}
		if oldest == nil || m.before(j, oldest) {
			oldest = j
		}
	}
	if oldest == nil {
		return nil, nil
	}

	oldest.Status = structs.PROCESSING
	oldest.LastModificationTime = now
	return copyJob(oldest), nil
}

func (m *Memory) UpdateProgress(ctx context.Context, id string, claim int, p *structs.Progress) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	j, err := m.processing(id, claim)
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
	j.LastModificationTime = timeNow()
	return nil
}

func (m *Memory) FinishJob(ctx context.Context, id string, claim int, st structs.Status, msg string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	j, err := m.processing(id, claim)
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

func (m *Memory) RequeueJob(ctx context.Context, id string, claim int, runAfter time.Time) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	j, err := m.processing(id, claim)
	if err != nil {
		return err
	}
	j.Status = structs.ENQUEUED
	j.NumberOfRetries++
	j.RunAfter = runAfter
	j.LastModificationTime = timeNow()
	return nil
}

func (m *Memory) RequeueStale(ctx context.Context, before time.Time) ([]string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := timeNow()
	ids := []string{}
	for _, j := range m.jobs {
		if j.Status != structs.PROCESSING || !j.LastModificationTime.Before(before) {
			continue
		}
		j.Status = structs.ENQUEUED
		j.NumberOfRetries++
		j.RunAfter = now
		j.LastModificationTime = now
		ids = append(ids, j.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	ids := toSet(q.JobIDs)
	kinds := toSet(q.Kinds)
	statuses := toSet(statusToStrings(q.Statuses))

	found := []*structs.Job{}
	for _, j := range m.jobs {
		if !matches(ids, j.ID) || !matches(kinds, j.Kind) || !matches(statuses, string(j.Status)) {
			continue
		}
		found = append(found, j)
	}
	sort.Slice(found, func(a, b int) bool {
		return m.before(found[b], found[a]) // newest first
	})

	out := []*structs.Job{}
	for i := q.Offset; i < len(found) && (q.Limit <= 0 || len(out) < q.Limit); i++ {
		out = append(out, copyJob(found[i]))
	}
	return out, nil
}

// SetFunction adds or replaces a function, keyed by developer name.
func (m *Memory) SetFunction(fn *structs.Function) {
	m.lock.Lock()
	defer m.lock.Unlock()
	cp := *fn
	m.fns[fn.DeveloperName] = &cp
}

func (m *Memory) Functions(ctx context.Context, trigger structs.Trigger) ([]*structs.Function, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	fns := []*structs.Function{}
	for _, fn := range m.fns {
		if !fn.IsActive || fn.Trigger != trigger {
			continue
		}
		cp := *fn
		fns = append(fns, &cp)
	}
	sort.Slice(fns, func(a, b int) bool {
		return fns[a].DeveloperName < fns[b].DeveloperName
	})
	return fns, nil
}

// processing returns the stored job if it's in Processing under the given claim. Lock must be held.
func (m *Memory) processing(id string, claim int) (*structs.Job, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w job %s", errors.ErrNotFound, id)
	}
	if j.Status != structs.PROCESSING {
		return nil, fmt.Errorf("%w job %s is not processing", errors.ErrInvalidState, id)
	}
	if j.NumberOfRetries != claim {
		return nil, fmt.Errorf("%w job %s was reclaimed", errors.ErrInvalidState, id)
	}
	return j, nil
}

// before returns if a was created before b. Lock must be held.
func (m *Memory) before(a, b *structs.Job) bool {
	if !a.CreationTime.Equal(b.CreationTime) {
		return a.CreationTime.Before(b.CreationTime)
	}
	return m.order[a.ID] < m.order[b.ID]
}

func copyJob(j *structs.Job) *structs.Job {
	cp := *j
	if j.Args != nil {
		cp.Args = append([]byte{}, j.Args...)
	}
	if j.CompletionTime != nil {
		t := *j.CompletionTime
		cp.CompletionTime = &t
	}
	return &cp
}

func toSet(in []string) map[string]bool {
	if len(in) == 0 {
		return nil
	}
	s := map[string]bool{}
	for _, v := range in {
		s[v] = true
	}
	return s
}

func matches(set map[string]bool, v string) bool {
	return set == nil || set[v]
}
