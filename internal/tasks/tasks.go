// Package tasks runs fire-and-forget side effects on a bounded in-memory
// queue. Tasks are not retried and do not survive a restart.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Task is a unit of background work.
type Task struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Enqueued time.Time       `json:"enqueued"`
}

// Handler processes one task type.
type Handler func(ctx context.Context, t *Task) error

var (
	ErrQueueFull = errors.New("task queue full")
	ErrStopped   = errors.New("task pool stopped")
	ErrNoHandler = errors.New("no handler for task type")
)
