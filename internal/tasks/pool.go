package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultWorkers   = 2
	DefaultQueueSize = 100
)

type Pool struct {
	handlers    map[string]Handler
	queue       chan *Task
	logger      *slog.Logger
	workerCount int

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewPool(handlers map[string]Handler, logger *slog.Logger, workerCount, queueSize int) *Pool {
	if workerCount <= 0 {
		workerCount = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		handlers:    handlers,
		queue:       make(chan *Task, queueSize),
		logger:      logger,
		workerCount: workerCount,
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop rejects new tasks, lets the workers drain the queue and waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// Enqueue queues a task without blocking and returns its id.
func (p *Pool) Enqueue(typ string, payload any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	t := &Task{ID: uuid.NewString(), Type: typ, Payload: b, Enqueued: time.Now()}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return "", ErrStopped
	}
	select {
	case p.queue <- t:
		return t.ID, nil
	default:
		return "", ErrQueueFull
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("context canceled, worker exiting", "id", id)
			return
		case t, ok := <-p.queue:
			if !ok {
				p.logger.Debug("worker stopping", "id", id)
				return
			}
			if err := p.run(ctx, t); err != nil {
				p.logger.Error("task failed", "task_id", t.ID, "type", t.Type, "err", err)
			}
		}
	}
}

func (p *Pool) run(ctx context.Context, t *Task) (err error) {
	h, ok := p.handlers[t.Type]
	if !ok {
		return fmt.Errorf("%w %q", ErrNoHandler, t.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()

	return h(ctx, t)
}
