package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordingFlusher struct {
	mu      sync.Mutex
	batches [][]int
}

func (r *recordingFlusher) Flush(ctx context.Context, batch []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]int, len(batch))
	copy(cp, batch)
	r.batches = append(r.batches, cp)
	return nil
}

func (r *recordingFlusher) all() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func TestEnqueueFull(t *testing.T) {
	// Pool is never started, so nothing drains the queue
	pool := NewPool[int](PoolConfig{Name: "test_full", QueueSize: 1, Logger: zap.NewNop()}, &recordingFlusher{})

	if !pool.Enqueue(1) {
		t.Fatal("Failed to enqueue first job")
	}

	start := time.Now()
	enqueued := pool.Enqueue(2)
	duration := time.Since(start)

	if enqueued {
		t.Error("Enqueue should have returned false when queue is full")
	}
	if duration > 10*time.Millisecond {
		t.Errorf("Enqueue took too long (%v), expected immediate return", duration)
	}
	if pool.QueueDepth() != 1 {
		t.Errorf("QueueDepth() = %d, want 1", pool.QueueDepth())
	}
}

func TestStopFlushesRemainingInOrder(t *testing.T) {
	flusher := &recordingFlusher{}
	pool := NewPool[int](PoolConfig{
		Name:          "test_order",
		BatchSize:     3,
		FlushInterval: time.Hour,
		Logger:        zap.NewNop(),
	}, flusher)
	pool.Start(context.Background())

	for i := 1; i <= 7; i++ {
		if !pool.Enqueue(i) {
			t.Fatalf("Enqueue(%d) failed", i)
		}
	}
	pool.Stop()

	got := flusher.all()
	if len(got) != 7 {
		t.Fatalf("flushed %d jobs, want 7: %v", len(got), got)
	}
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("flush order = %v, want 1..7", got)
		}
	}
}

func TestEnqueueAfterStop(t *testing.T) {
	pool := NewPool[int](PoolConfig{Name: "test_stopped", Logger: zap.NewNop()}, &recordingFlusher{})
	pool.Start(context.Background())
	pool.Stop()

	if pool.Enqueue(1) {
		t.Error("Enqueue after Stop should return false")
	}
	// Second Stop is a no-op
	pool.Stop()
}

func TestFlushOnInterval(t *testing.T) {
	flusher := &recordingFlusher{}
	pool := NewPool[int](PoolConfig{
		Name:          "test_interval",
		BatchSize:     100,
		FlushInterval: 10 * time.Millisecond,
		Logger:        zap.NewNop(),
	}, flusher)
	pool.Start(context.Background())
	defer pool.Stop()

	pool.Enqueue(42)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(flusher.all()) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job was not flushed by the interval ticker")
}

func TestFlusherPanicIsContained(t *testing.T) {
	panicky := FlushFunc[int](func(ctx context.Context, batch []int) error {
		panic("boom")
	})
	pool := NewPool[int](PoolConfig{Name: "test_panic", Logger: zap.NewNop()}, panicky)
	pool.Start(context.Background())
	pool.Enqueue(1)
	pool.Stop()
}
