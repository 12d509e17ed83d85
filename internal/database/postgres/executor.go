package postgres

import (
	"fmt"
	"log/slog"
	"sync"
)

// Executor runs posted tasks on a fixed set of worker goroutines draining one
// shared queue. With more than one worker, tasks may complete in any order.
type Executor struct {
	log *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	wg     sync.WaitGroup
}

// NewExecutor starts workers goroutines (at least one).
func NewExecutor(workers int, logger *slog.Logger) *Executor {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{log: logger}
	e.cond = sync.NewCond(&e.mu)
	e.wg.Add(workers)
	for range workers {
		go e.work()
	}
	return e
}

// Post queues a task. It reports false if the executor is closed.
func (e *Executor) Post(task func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.queue = append(e.queue, task)
	e.cond.Signal()
	return true
}

func (e *Executor) work() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.cond.Wait()
		}
		if len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		task := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()

		e.run(task)
	}
}

func (e *Executor) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("executor task panicked", "panic", r)
		}
	}()
	task()
}

// Close stops accepting tasks, lets the workers drain the queue and waits
// for them to exit.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()
	e.wg.Wait()
}

// Future is the pending result of a task posted with Submit.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Get blocks until the task has finished and returns its result. A task
// that panicked yields the zero value; see Err.
func (f *Future[T]) Get() T {
	<-f.done
	return f.value
}

// Err blocks until the task has finished and reports ErrTaskPanicked if it
// did not return normally.
func (f *Future[T]) Err() error {
	<-f.done
	return f.err
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Submit posts fn to the executor. If the executor is closed, fn runs on the
// calling goroutine before Submit returns.
func Submit[T any](e *Executor, fn func() T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	task := func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
				e.log.Error("executor task panicked", "panic", r)
			}
		}()
		f.value = fn()
	}
	if !e.Post(task) {
		e.run(task)
	}
	return f
}
