package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/RaythaHQ/raytha-sub006/internal/mocks/pkg/database_mock"
	"github.com/RaythaHQ/raytha-sub006/pkg/database"
	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/governor"
	"github.com/RaythaHQ/raytha-sub006/pkg/queue"
	"github.com/RaythaHQ/raytha-sub006/pkg/script"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
	"github.com/RaythaHQ/raytha-sub006/pkg/worker"
)

const testPoll = 5 * time.Millisecond

// countingInterpreter sleeps for each run, tracking the most runs seen at once.
type countingInterpreter struct {
	sleep   time.Duration
	active  int32
	maxSeen int32
	calls   int32
}

func (c *countingInterpreter) Execute(ctx context.Context, run *structs.FunctionRun) (*structs.FunctionResult, error) {
	atomic.AddInt32(&c.calls, 1)
	now := atomic.AddInt32(&c.active, 1)
	defer atomic.AddInt32(&c.active, -1)
	for {
		seen := atomic.LoadInt32(&c.maxSeen)
		if now <= seen || atomic.CompareAndSwapInt32(&c.maxSeen, seen, now) {
			break
		}
	}
	select {
	case <-time.After(c.sleep):
		return &structs.FunctionResult{Type: structs.ResultValue, Body: run.DeveloperName}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func testOptions(workers int) *Options {
	return &Options{
		Worker:         &worker.Options{Workers: workers, PollInterval: testPoll},
		ReconnectDelay: 10 * time.Millisecond,
	}
}

// start runs the service in the background; the returned func stops it.
func start(t *testing.T, svc *Service) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, svc.Run(ctx))
	}()
	return func() {
		cancel()
		<-done
	}
}

func waitForFinal(t *testing.T, svc *Service, ids ...string) []*structs.Job {
	jobs := make([]*structs.Job, len(ids))
	require.Eventually(t, func() bool {
		for i, id := range ids {
			j, err := svc.Job(context.Background(), id)
			if err != nil || !structs.IsFinalStatus(j.Status) {
				return false
			}
			jobs[i] = j
		}
		return true
	}, 5*time.Second, testPoll)
	return jobs
}

func enqueue(t *testing.T, svc *Service, kind string) string {
	resp, err := svc.Enqueue(context.Background(), &structs.EnqueueRequest{Kind: kind, Args: []byte(`{}`)})
	require.NoError(t, err)
	return resp.ID
}

func TestServiceRunsJobsInOrder(t *testing.T) {
	svc, err := NewService(database.NewMemory(), &countingInterpreter{}, testOptions(1), nil)
	require.NoError(t, err)

	var lock sync.Mutex
	order := []string{}
	for _, kind := range []string{"A", "B"} {
		kind := kind
		require.NoError(t, svc.Register(kind, func(ctx context.Context, meta *queue.Meta) error {
			lock.Lock()
			defer lock.Unlock()
			order = append(order, kind)
			return nil
		}))
	}

	ids := []string{enqueue(t, svc, "A"), enqueue(t, svc, "B"), enqueue(t, svc, "A")}
	stop := start(t, svc)
	defer stop()

	for _, j := range waitForFinal(t, svc, ids...) {
		assert.Equal(t, structs.COMPLETE, j.Status)
		assert.NotNil(t, j.CompletionTime)
	}
	lock.Lock()
	defer lock.Unlock()
	assert.Equal(t, []string{"A", "B", "A"}, order)
}

func TestServiceFailingHandler(t *testing.T) {
	svc, err := NewService(database.NewMemory(), &countingInterpreter{}, testOptions(2), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Register("fails", func(ctx context.Context, meta *queue.Meta) error {
		return fmt.Errorf("smtp refused")
	}))
	require.NoError(t, svc.Register("ok", func(ctx context.Context, meta *queue.Meta) error {
		return nil
	}))

	bad := enqueue(t, svc, "fails")
	good := enqueue(t, svc, "ok")
	stop := start(t, svc)
	defer stop()

	jobs := waitForFinal(t, svc, bad, good)
	assert.Equal(t, structs.ERROR, jobs[0].Status)
	assert.Contains(t, jobs[0].ErrorMessage, "smtp refused")
	assert.Equal(t, 100, jobs[0].PercentComplete)
	assert.NotNil(t, jobs[0].CompletionTime)
	assert.Equal(t, structs.COMPLETE, jobs[1].Status)
}

func TestServiceFunctionsRespectMaxActive(t *testing.T) {
	db := database.NewMemory()
	for i := 0; i < 4; i++ {
		db.SetFunction(&structs.Function{
			ID:            fmt.Sprint(i),
			DeveloperName: fmt.Sprintf("fn_%d", i),
			Trigger:       structs.TriggerContentItemCreated,
			IsActive:      true,
		})
	}

	interp := &countingInterpreter{sleep: 20 * time.Millisecond}
	opts := testOptions(4)
	opts.Governor = &governor.Options{MaxActive: 1, ExecuteTimeout: time.Second, QueueTimeout: 5 * time.Second}
	svc, err := NewService(db, interp, opts, nil)
	require.NoError(t, err)

	resp, err := svc.Dispatch(context.Background(), &structs.Event{Trigger: structs.TriggerContentItemCreated})
	require.NoError(t, err)
	require.Len(t, resp.JobIDs, 4)

	stop := start(t, svc)
	defer stop()

	for _, j := range waitForFinal(t, svc, resp.JobIDs...) {
		assert.Equal(t, structs.COMPLETE, j.Status)
		assert.Contains(t, j.StatusInfo, "returned")
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&interp.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&interp.maxSeen))
}

// timingInterpreter records when each run started & finished.
type timingInterpreter struct {
	lock  sync.Mutex
	spans [][2]time.Time
}

func (i *timingInterpreter) Execute(ctx context.Context, run *structs.FunctionRun) (*structs.FunctionResult, error) {
	start := time.Now()
	time.Sleep(30 * time.Millisecond)
	i.lock.Lock()
	defer i.lock.Unlock()
	i.spans = append(i.spans, [2]time.Time{start, time.Now()})
	return nil, nil
}

func TestServiceSingleSlotRunsFunctionsOneAtATime(t *testing.T) {
	db := database.NewMemory()
	db.SetFunction(&structs.Function{ID: "1", DeveloperName: "notify", Trigger: structs.TriggerContentItemCreated, IsActive: true})

	interp := &timingInterpreter{}
	opts := testOptions(2)
	opts.Governor = &governor.Options{MaxActive: 1, ExecuteTimeout: time.Second, QueueTimeout: 5 * time.Second}
	svc, err := NewService(db, interp, opts, nil)
	require.NoError(t, err)

	ids := []string{}
	for _, id := range []string{"p1", "p2"} {
		resp, err := svc.Dispatch(context.Background(), &structs.Event{
			Trigger: structs.TriggerContentItemCreated,
			Entity:  map[string]interface{}{"id": id},
		})
		require.NoError(t, err)
		ids = append(ids, resp.JobIDs...)
	}
	require.Len(t, ids, 2)

	stop := start(t, svc)
	defer stop()

	for _, j := range waitForFinal(t, svc, ids...) {
		assert.Equal(t, structs.COMPLETE, j.Status)
	}

	interp.lock.Lock()
	defer interp.lock.Unlock()
	require.Len(t, interp.spans, 2)
	first, second := interp.spans[0], interp.spans[1]
	assert.False(t, second[0].Before(first[1]), "second run started before the first finished")
}

func TestServiceRunsScripts(t *testing.T) {
	db := database.NewMemory()
	db.SetFunction(&structs.Function{
		ID:            "1",
		DeveloperName: "title_fn",
		Code:          `function run(p) { return JsonResult({title: p.title}); }`,
		Trigger:       structs.TriggerContentItemUpdated,
		IsActive:      true,
	})
	db.SetFunction(&structs.Function{
		ID:            "2",
		DeveloperName: "spin_fn",
		Code:          `function run(p) { while (true) {} }`,
		Trigger:       structs.TriggerContentItemUpdated,
		IsActive:      true,
	})

	opts := testOptions(2)
	opts.Governor = &governor.Options{MaxActive: 2, ExecuteTimeout: 50 * time.Millisecond, QueueTimeout: time.Second}
	svc, err := NewService(db, script.NewGoja(nil, nil), opts, nil)
	require.NoError(t, err)

	resp, err := svc.Dispatch(context.Background(), &structs.Event{
		Trigger: structs.TriggerContentItemUpdated,
		Entity:  map[string]interface{}{"title": "hi"},
	})
	require.NoError(t, err)
	require.Len(t, resp.JobIDs, 2) // functions are listed by developer name; spin_fn first

	stop := start(t, svc)
	defer stop()

	jobs := waitForFinal(t, svc, resp.JobIDs...)

	assert.Equal(t, structs.ERROR, jobs[0].Status)
	assert.Contains(t, jobs[0].ErrorMessage, errors.ErrExecuteTimeout.Error())

	assert.Equal(t, structs.COMPLETE, jobs[1].Status)
	assert.Equal(t, `title_fn returned {"type":"json","status_code":200,"body":{"title":"hi"}}`, jobs[1].StatusInfo)
}

func TestServiceListen(t *testing.T) {
	db := database.NewMemory()
	db.SetFunction(&structs.Function{ID: "1", DeveloperName: "fn", Trigger: structs.TriggerContentItemDeleted, IsActive: true})

	opts := testOptions(1)
	opts.ListenChannel = "content"
	svc, err := NewService(db, &countingInterpreter{}, opts, nil)
	require.NoError(t, err)

	stop := start(t, svc)
	defer stop()

	// the listener may not be subscribed yet, so keep publishing until something arrives
	require.Eventually(t, func() bool {
		err := db.Publish(context.Background(), "content", &structs.Event{Trigger: structs.TriggerContentItemDeleted})
		if err != nil {
			return false
		}
		jobs, err := svc.Jobs(context.Background(), &structs.Query{Kinds: []string{structs.KindGovernedFunction}})
		return err == nil && len(jobs) > 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestServiceListenNotSupported(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	opts := testOptions(1)
	opts.ListenChannel = "content"
	svc, err := NewService(db, &countingInterpreter{}, opts, nil)
	require.NoError(t, err)

	err = svc.Run(context.Background())

	assert.ErrorIs(t, err, errors.ErrNotSupported)
}

func TestServiceReap(t *testing.T) {
	db := database.NewMemory()
	opts := testOptions(1)
	opts.ReapAfter = time.Millisecond
	svc, err := NewService(db, &countingInterpreter{}, opts, nil)
	require.NoError(t, err)

	id := enqueue(t, svc, "stuck")
	claimed, err := db.ClaimJob(context.Background())
	require.NoError(t, err)
	require.Equal(t, id, claimed.ID)
	time.Sleep(5 * time.Millisecond)

	ids, err := svc.reapOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	job, err := svc.Job(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, structs.ENQUEUED, job.Status)
	assert.Equal(t, 1, job.NumberOfRetries)
}

func TestServiceEnqueueInvalid(t *testing.T) {
	cases := []*structs.EnqueueRequest{
		nil,
		{Kind: ""},
		{Kind: "x", Args: []byte(`{"broken"`)},
	}

	svc, err := NewService(database.NewMemory(), &countingInterpreter{}, nil, nil)
	require.NoError(t, err)

	for i, req := range cases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			_, err := svc.Enqueue(context.Background(), req)
			assert.ErrorIs(t, err, errors.ErrInvalidArg)
		})
	}
}

func TestServiceJobNotFound(t *testing.T) {
	svc, err := NewService(database.NewMemory(), &countingInterpreter{}, nil, nil)
	require.NoError(t, err)

	_, err = svc.Job(context.Background(), "missing")

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestOptionsDefaults(t *testing.T) {
	opts := &Options{ReapAfter: time.Minute}
	opts.setDefaults()

	assert.Equal(t, 30*time.Second, opts.ReapFrequency)
	assert.Equal(t, defReconnectDelay, opts.ReconnectDelay)
	assert.Equal(t, governor.DefaultMaxActive, opts.Governor.MaxActive)

	opts = &Options{ReapAfter: time.Millisecond}
	opts.setDefaults()
	assert.Equal(t, minReapFrequency, opts.ReapFrequency)
}
