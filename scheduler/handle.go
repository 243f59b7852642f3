package scheduler

import "errors"

// task is the completion state behind a Handle.
type task struct {
	done chan struct{}
	err  error
}

func newTask() *task {
	return &task{done: make(chan struct{})}
}

// Handle is a dependency token for scheduled work. Work scheduled with a
// handle as its dependency starts only after that handle completes. The zero
// Handle is already complete.
type Handle struct {
	t *task
}

// Complete blocks until the work behind h finished and returns its error.
func (h Handle) Complete() error {
	if h.t == nil {
		return nil
	}
	<-h.t.done
	return h.t.err
}

// Done returns a channel closed when the work behind h finished.
func (h Handle) Done() <-chan struct{} {
	if h.t == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return h.t.done
}

// Combine returns a handle that completes once all of hs completed.
// Errors are joined; the same error reached through several chains is
// reported once.
func Combine(hs ...Handle) Handle {
	pending := make([]*task, 0, len(hs))
	for _, h := range hs {
		if h.t != nil {
			pending = append(pending, h.t)
		}
	}
	switch len(pending) {
	case 0:
		return Handle{}
	case 1:
		return Handle{t: pending[0]}
	}

	t := newTask()
	go func() {
		defer close(t.done)
		var errs []error
		for _, p := range pending {
			<-p.done
			if p.err != nil && !containsErr(errs, p.err) {
				errs = append(errs, p.err)
			}
		}
		t.err = errors.Join(errs...)
	}()
	return Handle{t: t}
}

func containsErr(errs []error, err error) bool {
	for _, e := range errs {
		if e == err {
			return true
		}
	}
	return false
}
