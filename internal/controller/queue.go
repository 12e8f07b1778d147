package controller

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/issueview/internal/preference"
)

type opKind int

const (
	opSaveCurrent opKind = iota
	opSaveDefault
	opLoad
)

func (k opKind) String() string {
	switch k {
	case opSaveCurrent:
		return "save_current"
	case opSaveDefault:
		return "save_default"
	case opLoad:
		return "load"
	default:
		return "unknown"
	}
}

// op is one remote call on the sync stream.
type op struct {
	kind     opKind
	ctx      context.Context // parent for spans; never cancelled
	state    preference.State
	reason   string
	onLoad   func(preference.Remembered, error)
	coalesce int // saves folded into this one
}

// syncQueue runs ops one at a time in push order on a single goroutine.
// A save-current pushed while another save-current is still pending
// replaces it, so only the newest snapshot is written.
type syncQueue struct {
	run      func(op)
	debounce time.Duration

	mu      sync.Mutex
	pending []op
	idle    chan struct{}
	isIdle  bool
	closing bool
	closed  bool

	wake  chan struct{}
	flush chan struct{}
	stop  chan struct{}
	done  chan struct{}
}

func newSyncQueue(run func(op), debounce time.Duration) *syncQueue {
	idle := make(chan struct{})
	close(idle)
	q := &syncQueue{
		run:      run,
		debounce: debounce,
		idle:     idle,
		isIdle:   true,
		wake:     make(chan struct{}, 1),
		flush:    make(chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go q.loop()
	return q
}

// push enqueues o. It reports false when the queue is closed.
func (q *syncQueue) push(o op) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if n := len(q.pending); o.kind == opSaveCurrent && n > 0 && q.pending[n-1].kind == opSaveCurrent {
		o.coalesce = q.pending[n-1].coalesce + 1
		q.pending[n-1] = o
	} else {
		q.pending = append(q.pending, o)
	}
	if q.isIdle {
		q.idle = make(chan struct{})
		q.isIdle = false
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

func (q *syncQueue) loop() {
	defer close(q.done)
	for {
		select {
		case <-q.wake:
		case <-q.stop:
			return
		}
		q.wait()
		for q.next() {
		}
	}
}

// wait holds the batch for the debounce window so rapid transitions
// coalesce. Closing the queue skips the wait.
func (q *syncQueue) wait() {
	if q.debounce <= 0 {
		return
	}
	t := time.NewTimer(q.debounce)
	defer t.Stop()
	select {
	case <-t.C:
	case <-q.flush:
	case <-q.stop:
	}
}

// next runs the head op. It returns false once the queue is drained.
func (q *syncQueue) next() bool {
	q.mu.Lock()
	if len(q.pending) == 0 {
		if !q.isIdle {
			close(q.idle)
			q.isIdle = true
		}
		q.mu.Unlock()
		return false
	}
	o := q.pending[0]
	q.pending[0] = op{}
	q.pending = q.pending[1:]
	q.mu.Unlock()

	q.run(o)
	return true
}

// waitIdle blocks until nothing is pending or running.
func (q *syncQueue) waitIdle(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drains pending ops for up to timeout, then stops the worker.
// It returns the number of ops that never ran.
func (q *syncQueue) close(timeout time.Duration) int {
	q.mu.Lock()
	if q.closing {
		q.mu.Unlock()
		<-q.done
		return 0
	}
	q.closing = true
	close(q.flush)
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	_ = q.waitIdle(ctx)
	cancel()

	q.mu.Lock()
	q.closed = true
	left := len(q.pending)
	q.pending = nil
	close(q.stop)
	q.mu.Unlock()

	<-q.done

	q.mu.Lock()
	if !q.isIdle {
		close(q.idle)
		q.isIdle = true
	}
	q.mu.Unlock()
	return left
}
