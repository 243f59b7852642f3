package scheduler

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrTaskPanic wraps a panic recovered from a batch.
var ErrTaskPanic = errors.New("scheduler: task panicked")

// parallelThreshold is the minimum item count to use the worker pool.
// Below this, running inline is faster than the channel round trips.
const parallelThreshold = 64

// chunk is a range of indices for one worker.
type chunk struct {
	start, end int
	fn         func(start, end int)
	wg         *sync.WaitGroup
	fail       *failure
}

// failure records the first panic of a batch set.
type failure struct {
	mu  sync.Mutex
	err error
}

func (f *failure) set(err error) {
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
}

func (f *failure) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Pool is a set of persistent worker goroutines executing index ranges.
// It is safe for concurrent use by several coordinators.
type Pool struct {
	numWorkers int

	workChan chan chunk
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu      sync.RWMutex
	running bool
}

// NewPool starts a pool with the given number of workers.
// A non-positive count uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: workers,
		workChan:   make(chan chunk, workers),
		stopChan:   make(chan struct{}),
		running:    true,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// Close signals all workers to exit and waits for them. Pending Run calls
// must have returned.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case c := <-p.workChan:
			runChunk(c)
		}
	}
}

// runChunk executes one chunk, converting a panic into a recorded failure.
func runChunk(c chunk) {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.fail.set(fmt.Errorf("%w: range [%d,%d): %v", ErrTaskPanic, c.start, c.end, r))
		}
	}()
	c.fn(c.start, c.end)
}

// Run executes fn over [0,n) in batches of at most batch indices and
// blocks until every batch returned. Small ranges, single-worker pools and
// closed pools run inline on the caller.
func (p *Pool) Run(n, batch int, fn func(start, end int)) error {
	if n <= 0 {
		return nil
	}
	if batch < 1 {
		batch = 1
	}

	var wg sync.WaitGroup
	fail := &failure{}

	p.mu.RLock()
	parallel := p.running && p.numWorkers > 1 && n >= parallelThreshold
	if !parallel {
		p.mu.RUnlock()
		wg.Add(1)
		runChunk(chunk{start: 0, end: n, fn: fn, wg: &wg, fail: fail})
		return fail.get()
	}

	for start := 0; start < n; start += batch {
		end := start + batch
		if end > n {
			end = n
		}
		wg.Add(1)
		p.workChan <- chunk{start: start, end: end, fn: fn, wg: &wg, fail: fail}
	}
	p.mu.RUnlock()

	wg.Wait()
	return fail.get()
}
