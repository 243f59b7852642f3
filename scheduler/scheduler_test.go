package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/flock/flock"
)

// recordingPhase appends its name to a shared log when its task runs.
type recordingPhase struct {
	name     string
	priority int
	log      *[]string
	mu       *sync.Mutex
}

func (p recordingPhase) Name() string  { return p.name }
func (p recordingPhase) Priority() int { return p.priority }
func (p recordingPhase) Schedule(s *Step, dep Handle) Handle {
	return s.Single(p.name, dep, func() {
		p.mu.Lock()
		*p.log = append(*p.log, p.name)
		p.mu.Unlock()
	})
}

// funcPhase schedules an arbitrary closure.
type funcPhase struct {
	name     string
	priority int
	schedule func(s *Step, dep Handle) Handle
}

func (p funcPhase) Name() string                        { return p.name }
func (p funcPhase) Priority() int                       { return p.priority }
func (p funcPhase) Schedule(s *Step, dep Handle) Handle { return p.schedule(s, dep) }

func TestPhasesRunInPriorityOrderWithStableTies(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var (
		log []string
		mu  sync.Mutex
	)
	phase := func(name string, prio int) Phase {
		return recordingPhase{name: name, priority: prio, log: &log, mu: &mu}
	}
	s := New(pool, []Phase{
		phase("c", 30),
		phase("a1", 10),
		phase("b", 20),
		phase("a2", 10),
	}, nil, Options{DT: 0.01})

	assert.Equal(t, []string{"a1", "a2", "b", "c"}, s.Phases())

	require.NoError(t, s.Step())
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, log)
	assert.Equal(t, 1, s.StepCount())
}

func TestNextPhaseObservesCommittedWrites(t *testing.T) {
	pool := NewPool(8)
	defer pool.Close()

	const n = 4096
	src := make([]int, n)
	dst := make([]int, n)

	write := funcPhase{name: "write", priority: 0, schedule: func(s *Step, dep Handle) Handle {
		return s.ParallelFor("write", n, dep, func(start, end int) {
			for i := start; i < end; i++ {
				time.Sleep(time.Microsecond)
				src[i] = i + 1
			}
		})
	}}
	read := funcPhase{name: "read", priority: 1, schedule: func(s *Step, dep Handle) Handle {
		return s.ParallelFor("read", n, dep, func(start, end int) {
			for i := start; i < end; i++ {
				// reads another batch's element
				dst[i] = src[n-1-i]
			}
		})
	}}

	s := New(pool, []Phase{read, write}, nil, Options{BatchSize: 64})
	require.NoError(t, s.Step())

	for i := 0; i < n; i++ {
		require.Equal(t, n-i, dst[i], "index %d", i)
	}
}

func TestPanicAbortsStepAndSkipsDependents(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var ran atomic.Bool
	boom := funcPhase{name: "boom", priority: 0, schedule: func(s *Step, dep Handle) Handle {
		return s.ParallelFor("boom", 256, dep, func(start, end int) {
			var idx []int
			_ = idx[start] // index out of range
		})
	}}
	after := funcPhase{name: "after", priority: 1, schedule: func(s *Step, dep Handle) Handle {
		return s.Single("after", dep, func() { ran.Store(true) })
	}}

	s := New(pool, []Phase{boom, after}, nil, Options{})
	err := s.Step()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskPanic))
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, ran.Load())
	assert.Equal(t, 0, s.StepCount())
}

func TestStepParamsAreSnapshotted(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	f := flock.New("f", 1, flock.DefaultParams())
	var seen []float64

	probe := funcPhase{name: "probe", schedule: func(s *Step, dep Handle) Handle {
		// an edit racing with the step must not leak into its snapshot
		f.UpdateParams(func(p *flock.Params) { p.Separation = 99 })
		return s.Single("probe", dep, func() { seen = append(seen, s.Params[0].Separation) })
	}}

	s := New(pool, []Phase{probe}, []*flock.Flock{f}, Options{})
	require.NoError(t, s.Step())
	require.NoError(t, s.Step())

	assert.Equal(t, []float64{1, 99}, seen)
}

func TestConfigureWaitsForRunningStep(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	f := flock.New("f", 1, flock.DefaultParams())
	started := make(chan struct{})
	release := make(chan struct{})

	slow := funcPhase{name: "slow", schedule: func(s *Step, dep Handle) Handle {
		return s.Single("slow", dep, func() {
			close(started)
			<-release
		})
	}}
	s := New(pool, []Phase{slow}, []*flock.Flock{f}, Options{})

	stepDone := make(chan error, 1)
	go func() { stepDone <- s.Step() }()
	<-started

	configured := make(chan struct{})
	go func() {
		s.Configure(0, func(p *flock.Params) { p.Cohesion = 7 })
		close(configured)
	}()

	select {
	case <-configured:
		t.Fatal("Configure returned while a step was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-stepDone)
	<-configured
	assert.Equal(t, 7.0, f.Params().Cohesion)
}

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine().Complete())
	assert.NoError(t, Combine(Handle{}, Handle{}).Complete())

	errA := errors.New("a")
	a := newTask()
	a.err = errA
	close(a.done)
	b := newTask()
	close(b.done)

	err := Combine(Handle{t: a}, Handle{t: b}, Handle{t: a}).Complete()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errA))
	assert.Equal(t, "a", err.Error())
}

type countingObserver struct {
	mu    sync.Mutex
	names map[string]int
}

func (o *countingObserver) RecordPhase(name string, _ time.Duration) {
	o.mu.Lock()
	o.names[name]++
	o.mu.Unlock()
}

func TestObserverSeesEveryTask(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	var (
		log []string
		mu  sync.Mutex
	)
	s := New(pool, []Phase{
		recordingPhase{name: "x", log: &log, mu: &mu},
		recordingPhase{name: "y", priority: 1, log: &log, mu: &mu},
	}, nil, Options{})
	obs := &countingObserver{names: map[string]int{}}
	s.SetObserver(obs)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Step())
	}
	assert.Equal(t, map[string]int{"x": 3, "y": 3}, obs.names)
}

func TestPoolRunCoversRangeOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		pool := NewPool(workers)
		hits := make([]int32, 1000)
		require.NoError(t, pool.Run(len(hits), 37, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		}))
		for i, h := range hits {
			require.Equal(t, int32(1), h, "workers=%d index=%d", workers, i)
		}
		pool.Close()
		pool.Close()
	}
}
