package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

func newTestJob(id, kind string, created time.Time) *structs.Job {
	return &structs.Job{
		ID:           id,
		Kind:         kind,
		Args:         []byte(`{"n": 1}`),
		Status:       structs.ENQUEUED,
		CreationTime: created,
	}
}

func TestMemoryClaimNoDoubleClaim(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	base := time.Now().Add(-time.Minute)

	total := 200
	for i := 0; i < total; i++ {
		require.NoError(t, db.InsertJob(ctx, newTestJob(fmt.Sprintf("job-%03d", i), "k", base.Add(time.Duration(i)*time.Millisecond))))
	}

	var lock sync.Mutex
	seen := map[string]int{}

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				j, err := db.ClaimJob(ctx)
				assert.NoError(t, err)
				if j == nil {
					return
				}
				lock.Lock()
				seen[j.ID]++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, total, len(seen))
	for id, n := range seen {
		assert.Equal(t, 1, n, "job %s claimed %d times", id, n)
	}
}

func TestMemoryClaimFIFO(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	now := time.Now().Add(-time.Minute)

	// inserted out of order, claimed by creation time
	require.NoError(t, db.InsertJob(ctx, newTestJob("c", "k", now.Add(3*time.Second))))
	require.NoError(t, db.InsertJob(ctx, newTestJob("a", "k", now.Add(1*time.Second))))
	require.NoError(t, db.InsertJob(ctx, newTestJob("b", "k", now.Add(2*time.Second))))

	// same creation time keeps insertion order
	require.NoError(t, db.InsertJob(ctx, newTestJob("e", "k", now.Add(4*time.Second))))
	require.NoError(t, db.InsertJob(ctx, newTestJob("d", "k", now.Add(4*time.Second))))

	result := []string{}
	for {
		j, err := db.ClaimJob(ctx)
		require.NoError(t, err)
		if j == nil {
			break
		}
		assert.Equal(t, structs.PROCESSING, j.Status)
		result = append(result, j.ID)
	}

	assert.Equal(t, []string{"a", "b", "c", "e", "d"}, result)
}

func TestMemoryClaimRespectsRunAfter(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	j := newTestJob("later", "k", time.Now())
	j.RunAfter = time.Now().Add(time.Hour)
	require.NoError(t, db.InsertJob(ctx, j))

	claimed, err := db.ClaimJob(ctx)
	assert.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestMemoryFinalStatesDoNotRegress(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		Name  string
		Final structs.Status
	}{
		{"Complete", structs.COMPLETE},
		{"Error", structs.ERROR},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			db := NewMemory()
			require.NoError(t, db.InsertJob(ctx, newTestJob("a", "k", time.Now().Add(-time.Second))))

			j, err := db.ClaimJob(ctx)
			require.NoError(t, err)
			require.NotNil(t, j)
			assert.Nil(t, j.CompletionTime)

			require.NoError(t, db.FinishJob(ctx, j.ID, 0, c.Final, "msg"))

			for _, st := range []structs.Status{structs.COMPLETE, structs.ERROR} {
				err = db.FinishJob(ctx, j.ID, 0, st, "again")
				assert.ErrorIs(t, err, errors.ErrInvalidState)
			}
			assert.ErrorIs(t, db.RequeueJob(ctx, j.ID, 0, time.Now()), errors.ErrInvalidState)
			assert.ErrorIs(t, db.UpdateProgress(ctx, j.ID, 0, &structs.Progress{NextStep: true}), errors.ErrInvalidState)

			again, err := db.ClaimJob(ctx)
			assert.NoError(t, err)
			assert.Nil(t, again)

			jobs, err := db.Jobs(ctx, &structs.Query{JobIDs: []string{j.ID}})
			require.NoError(t, err)
			require.Len(t, jobs, 1)
			assert.Equal(t, c.Final, jobs[0].Status)
			assert.Equal(t, 100, jobs[0].PercentComplete)
			assert.NotNil(t, jobs[0].CompletionTime)
			assert.Equal(t, `{"n": 1}`, string(jobs[0].Args))
		})
	}
}

func TestMemoryUpdateProgress(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	require.NoError(t, db.InsertJob(ctx, newTestJob("a", "k", time.Now().Add(-time.Second))))

	// not yet claimed
	assert.ErrorIs(t, db.UpdateProgress(ctx, "a", 0, &structs.Progress{AppendInfo: "x"}), errors.ErrInvalidState)
	assert.ErrorIs(t, db.UpdateProgress(ctx, "nope", 0, &structs.Progress{AppendInfo: "x"}), errors.ErrNotFound)

	_, err := db.ClaimJob(ctx)
	require.NoError(t, err)

	pct := 40
	require.NoError(t, db.UpdateProgress(ctx, "a", 0, &structs.Progress{AppendInfo: "one", NextStep: true}))
	require.NoError(t, db.UpdateProgress(ctx, "a", 0, &structs.Progress{AppendInfo: "two", PercentComplete: &pct, NextStep: true}))

	jobs, err := db.Jobs(ctx, &structs.Query{JobIDs: []string{"a"}})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "one\ntwo", jobs[0].StatusInfo)
	assert.Equal(t, 40, jobs[0].PercentComplete)
	assert.Equal(t, 2, jobs[0].TaskStep)
	assert.Equal(t, structs.PROCESSING, jobs[0].Status)
	assert.Nil(t, jobs[0].CompletionTime)
}

func TestMemoryRequeue(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	require.NoError(t, db.InsertJob(ctx, newTestJob("a", "k", time.Now().Add(-time.Second))))

	_, err := db.ClaimJob(ctx)
	require.NoError(t, err)

	require.NoError(t, db.RequeueJob(ctx, "a", 0, time.Now().Add(time.Hour)))

	// not claimable until run after
	j, err := db.ClaimJob(ctx)
	assert.NoError(t, err)
	assert.Nil(t, j)

	jobs, err := db.Jobs(ctx, &structs.Query{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, structs.ENQUEUED, jobs[0].Status)
	assert.Equal(t, 1, jobs[0].NumberOfRetries)
}

func TestMemoryRequeueStale(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	require.NoError(t, db.InsertJob(ctx, newTestJob("a", "k", time.Now().Add(-2*time.Second))))
	require.NoError(t, db.InsertJob(ctx, newTestJob("b", "k", time.Now().Add(-time.Second))))

	_, err := db.ClaimJob(ctx)
	require.NoError(t, err)

	// nothing older than a minute ago
	ids, err := db.RequeueStale(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = db.RequeueStale(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	j, err := db.ClaimJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.Equal(t, "a", j.ID)
	assert.Equal(t, 1, j.NumberOfRetries)
}

func TestMemoryReclaimedJobFencesFormerWorker(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	qdb := NewQueueDB(db)
	require.NoError(t, db.InsertJob(ctx, newTestJob("a", "k", time.Now().Add(-time.Second))))

	first, err := qdb.ClaimJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	ids, err := db.RequeueStale(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, ids)

	second, err := qdb.ClaimJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)

	// the reaped worker can no longer write to the record
	assert.ErrorIs(t, qdb.SetProgress(ctx, first, &structs.Progress{AppendInfo: "late"}), errors.ErrInvalidState)
	assert.ErrorIs(t, qdb.SetJobState(ctx, first, structs.ERROR, "late"), errors.ErrInvalidState)
	assert.ErrorIs(t, qdb.Requeue(ctx, first, 0), errors.ErrInvalidState)

	require.NoError(t, qdb.SetProgress(ctx, second, &structs.Progress{AppendInfo: "mine"}))
	require.NoError(t, qdb.SetJobState(ctx, second, structs.COMPLETE, ""))

	j, err := qdb.Job(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, structs.COMPLETE, j.Status)
	assert.Equal(t, "mine", j.StatusInfo)
	assert.Empty(t, j.ErrorMessage)
	assert.Equal(t, 1, j.NumberOfRetries)
}

func TestMemoryJobsQuery(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	base := time.Now().Add(-time.Minute)
	require.NoError(t, db.InsertJob(ctx, newTestJob("a", "export", base)))
	require.NoError(t, db.InsertJob(ctx, newTestJob("b", "email", base.Add(time.Second))))
	require.NoError(t, db.InsertJob(ctx, newTestJob("c", "export", base.Add(2*time.Second))))

	cases := []struct {
		Name   string
		Query  *structs.Query
		Expect []string
	}{
		{"All", &structs.Query{}, []string{"c", "b", "a"}},
		{"Kind", &structs.Query{Kinds: []string{"export"}}, []string{"c", "a"}},
		{"Status", &structs.Query{Statuses: []structs.Status{structs.COMPLETE}}, []string{}},
		{"Limit", &structs.Query{Limit: 1}, []string{"c"}},
		{"Offset", &structs.Query{Limit: 5, Offset: 2}, []string{"a"}},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			jobs, err := db.Jobs(ctx, c.Query)
			require.NoError(t, err)

			ids := []string{}
			for _, j := range jobs {
				ids = append(ids, j.ID)
			}
			assert.Equal(t, c.Expect, ids)
		})
	}
}

func TestMemoryFunctions(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	db.SetFunction(&structs.Function{ID: "1", DeveloperName: "b_fn", Trigger: structs.TriggerContentItemCreated, IsActive: true})
	db.SetFunction(&structs.Function{ID: "2", DeveloperName: "a_fn", Trigger: structs.TriggerContentItemCreated, IsActive: true})
	db.SetFunction(&structs.Function{ID: "3", DeveloperName: "off", Trigger: structs.TriggerContentItemCreated, IsActive: false})
	db.SetFunction(&structs.Function{ID: "4", DeveloperName: "upd", Trigger: structs.TriggerContentItemUpdated, IsActive: true})

	fns, err := db.Functions(ctx, structs.TriggerContentItemCreated)
	require.NoError(t, err)
	require.Len(t, fns, 2)
	assert.Equal(t, "a_fn", fns[0].DeveloperName)
	assert.Equal(t, "b_fn", fns[1].DeveloperName)

	fns, err = db.Functions(ctx, structs.TriggerContentItemDeleted)
	require.NoError(t, err)
	assert.Empty(t, fns)
}
