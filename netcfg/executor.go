// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: shrek82-jorm pool.go (Pool interface shape)
// Adapted from: original_source/tests/include/mysql_io_context.hpp (single
// executor serializing pool state mutations)

package netcfg

import "context"

// Executor is a serialized strand: a single goroutine draining a buffered
// command channel. Both the MySQL and HTTP connection pools post their
// internal state mutations (acquire bookkeeping, idle-deque splicing,
// reaper sweeps) to one *Executor each, so those mutations never race one
// another without an interior mutex.
type Executor struct {
	commands chan func()
	done     chan struct{}
}

// NewExecutor returns an [*Executor] with the given command queue depth.
// A depth of zero makes Post block until Run is draining.
func NewExecutor(queueDepth int) *Executor {
	return &Executor{
		commands: make(chan func(), queueDepth),
		done:     make(chan struct{}),
	}
}

// Post enqueues f to run on the executor's goroutine. Post may block if
// the queue is full; callers on a hot path should keep f short.
//
// Post is a no-op once the executor has stopped running.
func (e *Executor) Post(f func()) {
	select {
	case e.commands <- f:
	case <-e.done:
	}
}

// Run drains the command queue on the calling goroutine until ctx is
// canceled. Callers typically invoke Run in its own goroutine at
// construction time.
func (e *Executor) Run(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-e.commands:
			f()
		}
	}
}
