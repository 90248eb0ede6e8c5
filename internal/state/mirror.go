package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/logging"
)

const (
	DefaultMirrorQueueSize = 64
	DefaultMirrorTimeout   = 10 * time.Second
)

type mirrorJob struct {
	op string
	fn func(ctx context.Context) error
}

// Mirror runs backup writes on a single background worker in FIFO order, so
// writes to the same record reach the backup in the order the primary
// accepted them. Failures are logged and dropped.
type Mirror struct {
	jobs    chan mirrorJob
	log     logging.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewMirror starts the worker. queueSize and timeout fall back to the
// defaults when not positive.
func NewMirror(log logging.Logger, queueSize int, timeout time.Duration) *Mirror {
	if queueSize <= 0 {
		queueSize = DefaultMirrorQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultMirrorTimeout
	}
	m := &Mirror{
		jobs:    make(chan mirrorJob, queueSize),
		log:     log.With("module", "backup_mirror"),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	go m.run()
	return m
}

// Enqueue schedules fn without blocking. It reports false when the job was
// dropped because the queue is full or the mirror is closed.
func (m *Mirror) Enqueue(op string, fn func(ctx context.Context) error) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		m.log.Warn(context.Background(), "backup mirror closed, dropping write", "op", op)
		return false
	}
	select {
	case m.jobs <- mirrorJob{op: op, fn: fn}:
		return true
	default:
		m.log.Warn(context.Background(), "backup mirror queue full, dropping write", "op", op)
		return false
	}
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (m *Mirror) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.jobs)
	}
	m.mu.Unlock()
	<-m.done
}

func (m *Mirror) run() {
	defer close(m.done)
	for j := range m.jobs {
		m.exec(j)
	}
}

func (m *Mirror) exec(j mirrorJob) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			m.log.Error(ctx, "backup write panicked", "op", j.op, "panic", fmt.Sprint(p))
		}
	}()

	if err := j.fn(ctx); err != nil {
		m.log.Warn(ctx, "backup write failed", "op", j.op, "error", err)
		return
	}
	m.log.Debug(ctx, "backup write done", "op", j.op)
}
