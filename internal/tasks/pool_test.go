package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garnizeh/quantumwork/internal/notify"
	"github.com/garnizeh/quantumwork/internal/tasks"
)

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestPool_EnqueueAndProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan map[string]string, 1)
	handlers := map[string]tasks.Handler{
		"test": func(ctx context.Context, task *tasks.Task) error {
			var p map[string]string
			if err := json.Unmarshal(task.Payload, &p); err != nil {
				return err
			}
			handled <- p
			return nil
		},
	}
	pool := tasks.NewPool(handlers, discard(), 1, 4)
	pool.Start(ctx)
	defer pool.Stop()

	id, err := pool.Enqueue("test", map[string]string{"foo": "bar"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id == "" {
		t.Fatalf("expected task id")
	}

	select {
	case p := <-handled:
		if p["foo"] != "bar" {
			t.Fatalf("unexpected payload %v", p)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}
}

func TestPool_QueueFull(t *testing.T) {
	pool := tasks.NewPool(map[string]tasks.Handler{}, discard(), 1, 1)
	// not started: the single slot fills up
	if _, err := pool.Enqueue("x", nil); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if _, err := pool.Enqueue("x", nil); !errors.Is(err, tasks.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	pool.Stop()
}

func TestPool_StopDrainsQueue(t *testing.T) {
	var count atomic.Int32
	handlers := map[string]tasks.Handler{
		"count": func(ctx context.Context, task *tasks.Task) error {
			time.Sleep(5 * time.Millisecond)
			count.Add(1)
			return nil
		},
	}
	pool := tasks.NewPool(handlers, discard(), 2, 10)
	for i := 0; i < 6; i++ {
		if _, err := pool.Enqueue("count", i); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	pool.Start(context.Background())
	pool.Stop()

	if got := count.Load(); got != 6 {
		t.Fatalf("expected 6 drained tasks, got %d", got)
	}
	if _, err := pool.Enqueue("count", 7); !errors.Is(err, tasks.ErrStopped) {
		t.Fatalf("expected ErrStopped after Stop, got %v", err)
	}
	pool.Stop()
}

func TestPool_FailuresDoNotStopWorkers(t *testing.T) {
	done := make(chan struct{}, 1)
	handlers := map[string]tasks.Handler{
		"boom":  func(ctx context.Context, task *tasks.Task) error { panic("kaboom") },
		"fail":  func(ctx context.Context, task *tasks.Task) error { return errors.New("nope") },
		"after": func(ctx context.Context, task *tasks.Task) error { done <- struct{}{}; return nil },
	}
	pool := tasks.NewPool(handlers, discard(), 1, 10)
	pool.Start(context.Background())
	defer pool.Stop()

	for _, typ := range []string{"boom", "fail", "missing", "after"} {
		if _, err := pool.Enqueue(typ, nil); err != nil {
			t.Fatalf("enqueue %s: %v", typ, err)
		}
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("worker did not survive failing tasks")
	}
}

type fakeMailer struct {
	to, tmpl string
	data     notify.Data
	result   notify.Result
}

func (f *fakeMailer) Send(ctx context.Context, to, tmpl string, data notify.Data) notify.Result {
	f.to, f.tmpl, f.data = to, tmpl, data
	return f.result
}

func TestWelcomeEmailHandler(t *testing.T) {
	m := &fakeMailer{result: notify.Result{Success: true}}
	h := tasks.WelcomeEmailHandler(m)

	payload, _ := json.Marshal(tasks.WelcomePayload{Email: "ana@x.com", FullName: "Ana"})
	if err := h(context.Background(), &tasks.Task{Payload: payload}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if m.to != "ana@x.com" || m.tmpl != notify.TemplateWelcome || m.data.FullName != "Ana" {
		t.Fatalf("unexpected send %q %q %+v", m.to, m.tmpl, m.data)
	}

	m.result = notify.Result{Error: "smtp down"}
	if err := h(context.Background(), &tasks.Task{Payload: payload}); err == nil || err.Error() != "smtp down" {
		t.Fatalf("expected send error, got %v", err)
	}

	if err := h(context.Background(), &tasks.Task{Payload: json.RawMessage(`{`)}); err == nil {
		t.Fatalf("expected decode error")
	}
}
