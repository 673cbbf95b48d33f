// Package workerpool bounds the goroutines spent on product image uploads.
//
// A Pool runs at most its configured number of tasks at once. SubmitWait
// blocks until a worker slot frees up, so a burst of admin uploads queues
// instead of fanning out one goroutine per image:
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//	pool.SubmitWait(func() { pushImage(slot) })
package workerpool

import (
	"errors"
	"sync"
)

// ErrClosed is returned by SubmitWait after Shutdown.
var ErrClosed = errors.New("workerpool: pool is closed")

// Pool is a fixed-size worker pool.
type Pool struct {
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// New starts size workers. A size below one is clamped to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.work()
	}
	return p
}

// SubmitWait enqueues task, blocking until a queue slot is free. The task
// has been accepted when SubmitWait returns nil; it runs asynchronously.
func (p *Pool) SubmitWait(task func()) error {
	select {
	case <-p.done:
		return ErrClosed
	case p.tasks <- task:
		return nil
	}
}

// Shutdown stops accepting tasks and waits for the in-flight ones.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.done)
		close(p.tasks)
		p.wg.Wait()
	})
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		run(task)
	}
}

// run isolates task panics so one bad upload cannot take a worker down.
func run(task func()) {
	defer func() { recover() }() //nolint:errcheck
	task()
}
