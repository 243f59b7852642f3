package scheduler

import (
	"fmt"
	"time"

	"github.com/pthm-cable/flock/flock"
)

// Observer receives the wall time of every scheduled task, keyed by the
// name it was scheduled under. It is called from many goroutines.
type Observer interface {
	RecordPhase(name string, d time.Duration)
}

// Step is the context shared by every phase of one simulation step.
// Params[k] is the parameter snapshot of Ensembles[k]; it does not change
// while the step runs.
type Step struct {
	Number    int
	DT        float64
	Ensembles []*flock.Flock
	Params    []flock.Params

	pool     *Pool
	batch    int
	observer Observer
}

// ParallelFor schedules fn over [0,n) in batches on the worker pool. The
// batches start after dep completed; if dep failed they are skipped and the
// returned handle carries dep's error.
func (s *Step) ParallelFor(name string, n int, dep Handle, fn func(start, end int)) Handle {
	t := newTask()
	go func() {
		defer close(t.done)
		if err := dep.Complete(); err != nil {
			t.err = err
			return
		}
		started := time.Now()
		if err := s.pool.Run(n, s.batch, fn); err != nil {
			t.err = fmt.Errorf("%s: %w", name, err)
		}
		s.observe(name, time.Since(started))
	}()
	return Handle{t: t}
}

// Single schedules one task after dep.
func (s *Step) Single(name string, dep Handle, fn func()) Handle {
	return s.ParallelFor(name, 1, dep, func(int, int) { fn() })
}

func (s *Step) observe(name string, d time.Duration) {
	if s.observer != nil {
		s.observer.RecordPhase(name, d)
	}
}
