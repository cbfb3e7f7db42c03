package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := New("not a spec", func(context.Context) error { return nil }, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestScheduler_RunsAndSkipsOverlap(t *testing.T) {
	var runs atomic.Int32
	release := make(chan struct{})
	s := New("@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Fatalf("scheduled run never started")
	}

	// the first run is still blocked, so further ticks are skipped
	time.Sleep(2200 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected overlapping ticks to be skipped, got %d runs", got)
	}

	close(release)
	s.Stop()
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestScheduler_LogsRunError(t *testing.T) {
	buf := &syncBuffer{}
	done := make(chan struct{})
	var once sync.Once
	s := New("@every 1s", func(ctx context.Context) error {
		once.Do(func() { close(done) })
		return errors.New("sources down")
	}, slog.New(slog.NewJSONHandler(buf, nil)))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduled run never started")
	}
	s.Stop()

	if !strings.Contains(buf.String(), "sources down") {
		t.Fatalf("run error not logged: %s", buf.String())
	}
}
